// Package client implements the wallet-side session flow: reacting to wallet
// connect/disconnect and account/network changes, driving the sign-in
// handshake against the verification endpoint, caching the signed session,
// and deriving proof headers for outbound requests.
package client

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/siwe"
)

// State of the session manager.
type State string

const (
	StateDisconnected             State = "disconnected"
	StateConnectedUnauthenticated State = "connected_unauthenticated"
	StateWrongNetwork             State = "wrong_network"
	StateSigning                  State = "signing"
	StateAuthenticated            State = "authenticated"
)

// DefaultExpirationMinutes bounds a signed session's lifetime when the
// config does not override it.
const DefaultExpirationMinutes = 60

// Config carries the site identity embedded in every challenge and the
// network the wallet is expected to be on.
type Config struct {
	Domain            string
	URI               string
	ChainID           int64
	Statement         string
	ExpirationMinutes int
	Resources         []string
}

// Status is a read-only snapshot of the manager for UI consumption.
type Status struct {
	State            State
	Address          string
	TruncatedAddress string
	Balance          string
	Authenticated    bool
}

// Manager orchestrates the end-to-end sign-in flow and keeps the session
// valid over the connected wallet's lifetime. Wallet events arrive one at a
// time; the mutex only guards against the sign-in attempt resolving
// concurrently with a wallet change.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	signer WalletSigner
	api    AuthAPI
	store  SessionStore

	state   State
	address string
	chainID int64
	balance string

	// attempt tags the in-flight sign-in; any wallet change increments it so
	// a stale result is discarded instead of applied.
	attempt uint64

	session *SignedSession
}

// NewManager creates a session manager in the Disconnected state.
func NewManager(cfg Config, signer WalletSigner, api AuthAPI, store SessionStore) *Manager {
	if cfg.ExpirationMinutes <= 0 {
		cfg.ExpirationMinutes = DefaultExpirationMinutes
	}
	return &Manager{
		cfg:     cfg,
		signer:  signer,
		api:     api,
		store:   store,
		state:   StateDisconnected,
		balance: "0.0000",
	}
}

// Connect handles a wallet connection. A previously persisted session is
// restored when it still matches the connected address and network and has
// not expired; otherwise it is discarded.
func (m *Manager) Connect(address string, chainID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempt++
	m.address = address
	m.chainID = chainID

	if chainID != m.cfg.ChainID {
		m.state = StateWrongNetwork
		return
	}

	if m.restoreLocked() {
		m.state = StateAuthenticated
		return
	}
	m.state = StateConnectedUnauthenticated
}

// restoreLocked loads the persisted session and reports whether it is valid
// for the current address and network.
func (m *Manager) restoreLocked() bool {
	if m.store == nil {
		return false
	}
	stored, ok, err := m.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to restore signed session")
		_ = m.store.Clear()
		return false
	}
	if !ok {
		return false
	}
	if !strings.EqualFold(stored.Challenge.Address, m.address) ||
		stored.Challenge.ChainID != m.cfg.ChainID ||
		stored.Challenge.Expired(time.Now()) ||
		stored.Backend == nil {
		_ = m.store.Clear()
		return false
	}
	m.session = stored
	return true
}

// NetworkChanged handles a chain switch. A session is only valid on the
// expected network, so moving away discards it.
func (m *Manager) NetworkChanged(chainID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempt++
	m.chainID = chainID
	if m.state == StateDisconnected {
		return
	}

	if chainID != m.cfg.ChainID {
		if m.state == StateAuthenticated {
			m.discardSessionLocked()
		}
		m.state = StateWrongNetwork
		return
	}

	if m.state == StateWrongNetwork || m.state == StateSigning {
		m.state = StateConnectedUnauthenticated
	}
}

// AddressChanged handles an account switch. A session for address A must
// never be treated as valid for address B, so the prior session is discarded
// immediately.
func (m *Manager) AddressChanged(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.EqualFold(address, m.address) {
		return
	}

	m.attempt++
	m.address = address
	m.discardSessionLocked()

	if m.state == StateDisconnected {
		return
	}
	if m.chainID != m.cfg.ChainID {
		m.state = StateWrongNetwork
		return
	}
	m.state = StateConnectedUnauthenticated
}

// Disconnect handles wallet disconnection or explicit sign-out of the whole
// wallet; local session storage is cleared.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempt++
	m.discardSessionLocked()
	m.address = ""
	m.chainID = 0
	m.state = StateDisconnected
}

// SignOut discards the session but keeps the wallet connected.
func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempt++
	m.discardSessionLocked()
	if m.state == StateDisconnected {
		return
	}
	if m.chainID != m.cfg.ChainID {
		m.state = StateWrongNetwork
		return
	}
	m.state = StateConnectedUnauthenticated
}

func (m *Manager) discardSessionLocked() {
	m.session = nil
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear session store")
		}
	}
}

// SignIn runs one sign-in attempt: build a challenge, request the wallet
// signature, post the proof to the verification endpoint, and persist the
// resulting session. If the wallet address or network changes while the
// attempt is in flight, the result is discarded.
func (m *Manager) SignIn(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateDisconnected:
		m.mu.Unlock()
		return ErrNotConnected
	case StateWrongNetwork:
		m.mu.Unlock()
		return ErrWrongNetwork
	case StateSigning:
		m.mu.Unlock()
		return ErrSignInInFlight
	case StateAuthenticated:
		m.mu.Unlock()
		return nil
	}

	token := m.attempt
	address := m.address
	m.state = StateSigning

	nonce, err := siwe.GenerateNonce()
	if err != nil {
		m.state = StateConnectedUnauthenticated
		m.mu.Unlock()
		return err
	}

	challenge := siwe.NewChallenge(siwe.ChallengeParams{
		Domain:            m.cfg.Domain,
		URI:               m.cfg.URI,
		Address:           address,
		ChainID:           m.cfg.ChainID,
		Nonce:             nonce,
		Statement:         m.cfg.Statement,
		ExpirationMinutes: m.cfg.ExpirationMinutes,
		Resources:         m.cfg.Resources,
	})
	message := siwe.Format(challenge)
	m.mu.Unlock()

	signature, err := m.signer.SignMessage(ctx, address, message)
	if err != nil {
		m.failAttempt(token)
		if errors.Is(err, ErrSignatureRejected) {
			return ErrSignatureRejected
		}
		return err
	}

	backend, user, err := m.api.Authenticate(ctx, core.AuthProof{
		Message:   message,
		Signature: signature,
		Address:   address,
	})
	if err != nil {
		m.failAttempt(token)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The wallet moved on while we were waiting; the result belongs to a
	// stale address/network context and must not be applied.
	if m.attempt != token {
		return ErrAttemptSuperseded
	}

	session := &SignedSession{
		Challenge: *challenge,
		Signature: signature,
		Message:   message,
		Backend:   backend,
		User:      user,
	}
	m.session = session
	m.state = StateAuthenticated

	if m.store != nil {
		if err := m.store.Save(session); err != nil {
			log.Warn().Err(err).Msg("failed to persist signed session")
		}
	}

	return nil
}

// failAttempt returns the machine to ConnectedUnauthenticated unless the
// attempt was already superseded by a wallet change.
func (m *Manager) failAttempt(token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt == token && m.state == StateSigning {
		m.state = StateConnectedUnauthenticated
	}
}

// AuthHeaders derives the proof-of-signature headers plus the backend bearer
// token from the current session. An empty map means unauthenticated;
// callers must not retry with stale credentials.
func (m *Manager) AuthHeaders() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	headers := make(map[string]string)
	if !m.authenticatedLocked(time.Now()) {
		return headers
	}

	headers["X-SIWE-Message"] = m.session.Message
	headers["X-SIWE-Signature"] = m.session.Signature
	headers["X-SIWE-Address"] = m.session.Challenge.Address
	headers["Authorization"] = "Bearer " + m.session.Backend.AccessToken
	return headers
}

// authenticatedLocked validates the cached session against the current
// wallet context, demoting the state when the challenge has lapsed.
func (m *Manager) authenticatedLocked(now time.Time) bool {
	if m.state != StateAuthenticated || m.session == nil || m.session.Backend == nil {
		return false
	}
	if !strings.EqualFold(m.session.Challenge.Address, m.address) {
		return false
	}
	if m.session.Challenge.Expired(now) {
		m.discardSessionLocked()
		m.state = StateConnectedUnauthenticated
		return false
	}
	return true
}

// State returns the current machine state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the current signed session, or nil.
func (m *Manager) Session() *SignedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	clone := *m.session
	return &clone
}

// SetBalance records the wallet's native balance in wei for display.
func (m *Manager) SetBalance(wei *big.Int, decimals int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wei == nil {
		m.balance = "0.0000"
		return
	}
	m.balance = decimal.NewFromBigInt(wei, -decimals).StringFixed(4)
}

// Status returns a snapshot for UI consumption.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:            m.state,
		Address:          m.address,
		TruncatedAddress: TruncateAddress(m.address),
		Balance:          m.balance,
		Authenticated:    m.authenticatedLocked(time.Now()),
	}
}

// TruncateAddress shortens an address for display: 0x1234...abcd.
func TruncateAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
