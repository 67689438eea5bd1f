package client

import "errors"

var (
	// ErrNotConnected is returned when sign-in is attempted without a wallet.
	ErrNotConnected = errors.New("wallet is not connected")

	// ErrWrongNetwork is returned when the wallet is on an unexpected chain.
	ErrWrongNetwork = errors.New("wallet is connected to the wrong network")

	// ErrSignInInFlight is returned when a sign-in attempt is already running.
	ErrSignInInFlight = errors.New("a sign-in attempt is already in flight")

	// ErrSignatureRejected means the user declined the wallet signing prompt.
	// Distinct from a backend rejection; surfaced as a dismissible notice.
	ErrSignatureRejected = errors.New("signature request rejected")

	// ErrAttemptSuperseded means the address or network changed while the
	// attempt was in flight, so its result was discarded.
	ErrAttemptSuperseded = errors.New("sign-in attempt superseded by wallet change")

	// ErrBackendRejected means the verification endpoint refused the proof.
	ErrBackendRejected = errors.New("backend rejected authentication")
)
