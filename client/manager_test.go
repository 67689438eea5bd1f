package client

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/intent-app/auth-service/core"
	"github.com/intent-app/auth-service/internal/eth"
	"github.com/intent-app/auth-service/siwe"
)

const (
	testChainID     int64 = 5042002
	testOtherChain  int64 = 1
	testOtherWallet       = "0x00000000000000000000000000000000000000ab"
)

// fakeAPI verifies the proof locally and hands back a canned session. The
// hook, when set, runs while the request is "in flight", before the manager
// reacquires its lock.
type fakeAPI struct {
	hook  func()
	err   error
	calls int
}

func (a *fakeAPI) Authenticate(ctx context.Context, proof core.AuthProof) (*core.BackendSession, *core.User, error) {
	a.calls++
	if a.hook != nil {
		a.hook()
	}
	if a.err != nil {
		return nil, nil, a.err
	}
	if valid, err := eth.Verify(proof.Message, proof.Signature, proof.Address); err != nil || !valid {
		return nil, nil, core.ErrBadSignature
	}
	return &core.BackendSession{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    300,
			TokenType:    "bearer",
		}, &core.User{
			ID:            "user-1",
			WalletAddress: strings.ToLower(proof.Address),
		}, nil
}

type rejectingSigner struct{}

func (rejectingSigner) SignMessage(ctx context.Context, address, message string) (string, error) {
	return "", ErrSignatureRejected
}

func newTestManager(t *testing.T, api AuthAPI) (*Manager, *KeySigner) {
	t.Helper()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)

	m := NewManager(Config{
		Domain:  "localhost:3000",
		URI:     "http://localhost:3000",
		ChainID: testChainID,
	}, signer, api, NewMemorySessionStore())

	return m, signer
}

func TestSignInFlow(t *testing.T) {
	api := &fakeAPI{}
	m, signer := newTestManager(t, api)
	require.Equal(t, StateDisconnected, m.State())

	m.Connect(signer.Address(), testChainID)
	require.Equal(t, StateConnectedUnauthenticated, m.State())

	require.NoError(t, m.SignIn(context.Background()))
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, 1, api.calls)

	session := m.Session()
	require.NotNil(t, session)
	require.Equal(t, signer.Address(), session.Challenge.Address)
	require.Equal(t, testChainID, session.Challenge.ChainID)

	headers := m.AuthHeaders()
	require.Equal(t, session.Message, headers["X-SIWE-Message"])
	require.Equal(t, session.Signature, headers["X-SIWE-Signature"])
	require.Equal(t, signer.Address(), headers["X-SIWE-Address"])
	require.Equal(t, "Bearer access-token", headers["Authorization"])

	// Already authenticated; a second attempt is a no-op.
	require.NoError(t, m.SignIn(context.Background()))
	require.Equal(t, 1, api.calls)
}

func TestSignInRequiresConnection(t *testing.T) {
	m, _ := newTestManager(t, &fakeAPI{})

	require.ErrorIs(t, m.SignIn(context.Background()), ErrNotConnected)
	require.Empty(t, m.AuthHeaders())
}

func TestWrongNetwork(t *testing.T) {
	m, signer := newTestManager(t, &fakeAPI{})

	m.Connect(signer.Address(), testOtherChain)
	require.Equal(t, StateWrongNetwork, m.State())
	require.ErrorIs(t, m.SignIn(context.Background()), ErrWrongNetwork)

	m.NetworkChanged(testChainID)
	require.Equal(t, StateConnectedUnauthenticated, m.State())
}

func TestNetworkChangeDiscardsSession(t *testing.T) {
	store := NewMemorySessionStore()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)
	m := NewManager(Config{
		Domain:  "localhost:3000",
		URI:     "http://localhost:3000",
		ChainID: testChainID,
	}, signer, &fakeAPI{}, store)

	m.Connect(signer.Address(), testChainID)
	require.NoError(t, m.SignIn(context.Background()))

	m.NetworkChanged(testOtherChain)
	require.Equal(t, StateWrongNetwork, m.State())
	require.Empty(t, m.AuthHeaders())
	require.Nil(t, m.Session())

	_, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAddressChangeInvalidatesSession(t *testing.T) {
	m, signer := newTestManager(t, &fakeAPI{})

	m.Connect(signer.Address(), testChainID)
	require.NoError(t, m.SignIn(context.Background()))
	require.NotEmpty(t, m.AuthHeaders())

	m.AddressChanged(testOtherWallet)
	require.Equal(t, StateConnectedUnauthenticated, m.State())
	require.Empty(t, m.AuthHeaders())
	require.Nil(t, m.Session())

	// Same address again, case-folded, is not a change.
	m.AddressChanged("0x" + strings.ToUpper(testOtherWallet[2:]))
	require.Equal(t, StateConnectedUnauthenticated, m.State())
}

func TestAddressChangeSupersedesInFlightAttempt(t *testing.T) {
	api := &fakeAPI{}
	m, signer := newTestManager(t, api)
	api.hook = func() { m.AddressChanged(testOtherWallet) }

	m.Connect(signer.Address(), testChainID)

	require.ErrorIs(t, m.SignIn(context.Background()), ErrAttemptSuperseded)
	require.Equal(t, StateConnectedUnauthenticated, m.State())
	require.Empty(t, m.AuthHeaders())
	require.Nil(t, m.Session())
}

func TestSignInWhileSigningIsRejected(t *testing.T) {
	api := &fakeAPI{}
	m, signer := newTestManager(t, api)

	var reentrant error
	api.hook = func() { reentrant = m.SignIn(context.Background()) }

	m.Connect(signer.Address(), testChainID)
	require.NoError(t, m.SignIn(context.Background()))
	require.ErrorIs(t, reentrant, ErrSignInInFlight)
	require.Equal(t, 1, api.calls)
}

func TestSignatureRejection(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	m := NewManager(Config{
		Domain:  "localhost:3000",
		URI:     "http://localhost:3000",
		ChainID: testChainID,
	}, rejectingSigner{}, &fakeAPI{}, NewMemorySessionStore())

	m.Connect(address, testChainID)
	require.ErrorIs(t, m.SignIn(context.Background()), ErrSignatureRejected)
	require.Equal(t, StateConnectedUnauthenticated, m.State())
}

func TestBackendRejection(t *testing.T) {
	api := &fakeAPI{err: core.ErrBadSignature}
	m, signer := newTestManager(t, api)

	m.Connect(signer.Address(), testChainID)
	require.ErrorIs(t, m.SignIn(context.Background()), core.ErrBadSignature)
	require.Equal(t, StateConnectedUnauthenticated, m.State())
	require.Empty(t, m.AuthHeaders())
}

func TestConnectRestoresPersistedSession(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)

	store := NewMemorySessionStore()
	challenge := siwe.NewChallenge(siwe.ChallengeParams{
		Domain:            "localhost:3000",
		URI:               "http://localhost:3000",
		Address:           signer.Address(),
		ChainID:           testChainID,
		Nonce:             "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6",
		ExpirationMinutes: 60,
	})
	message := siwe.Format(challenge)
	signature, err := signer.SignMessage(context.Background(), signer.Address(), message)
	require.NoError(t, err)
	require.NoError(t, store.Save(&SignedSession{
		Challenge: *challenge,
		Signature: signature,
		Message:   message,
		Backend:   &core.BackendSession{AccessToken: "restored-token", TokenType: "bearer"},
		User:      &core.User{ID: "user-1", WalletAddress: strings.ToLower(signer.Address())},
	}))

	api := &fakeAPI{}
	m := NewManager(Config{
		Domain:  "localhost:3000",
		URI:     "http://localhost:3000",
		ChainID: testChainID,
	}, signer, api, store)

	m.Connect(signer.Address(), testChainID)
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, 0, api.calls)
	require.Equal(t, "Bearer restored-token", m.AuthHeaders()["Authorization"])
}

func TestConnectDiscardsExpiredPersistedSession(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)

	store := NewMemorySessionStore()
	challenge := siwe.NewChallenge(siwe.ChallengeParams{
		Domain:            "localhost:3000",
		URI:               "http://localhost:3000",
		Address:           signer.Address(),
		ChainID:           testChainID,
		Nonce:             "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6",
		ExpirationMinutes: 60,
	})
	expired := time.Now().Add(-time.Minute)
	challenge.ExpirationTime = &expired
	require.NoError(t, store.Save(&SignedSession{
		Challenge: *challenge,
		Signature: "0xsig",
		Message:   siwe.Format(challenge),
		Backend:   &core.BackendSession{AccessToken: "stale"},
	}))

	m := NewManager(Config{
		Domain:  "localhost:3000",
		URI:     "http://localhost:3000",
		ChainID: testChainID,
	}, signer, &fakeAPI{}, store)

	m.Connect(signer.Address(), testChainID)
	require.Equal(t, StateConnectedUnauthenticated, m.State())

	_, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDisconnectAndSignOut(t *testing.T) {
	m, signer := newTestManager(t, &fakeAPI{})

	m.Connect(signer.Address(), testChainID)
	require.NoError(t, m.SignIn(context.Background()))

	m.SignOut()
	require.Equal(t, StateConnectedUnauthenticated, m.State())
	require.Nil(t, m.Session())

	require.NoError(t, m.SignIn(context.Background()))
	m.Disconnect()
	require.Equal(t, StateDisconnected, m.State())
	require.Empty(t, m.AuthHeaders())
}

func TestStatusAndBalance(t *testing.T) {
	m, signer := newTestManager(t, &fakeAPI{})
	m.Connect(signer.Address(), testChainID)

	wei, ok := new(big.Int).SetString("1234500000000000000", 10)
	require.True(t, ok)
	m.SetBalance(wei, 18)

	status := m.Status()
	require.Equal(t, StateConnectedUnauthenticated, status.State)
	require.Equal(t, signer.Address(), status.Address)
	require.Equal(t, "1.2345", status.Balance)
	require.False(t, status.Authenticated)

	m.SetBalance(nil, 18)
	require.Equal(t, "0.0000", m.Status().Balance)
}

func TestTruncateAddress(t *testing.T) {
	require.Equal(t, "0xABCD...EF01", TruncateAddress("0xABCDEF0123456789ABCDEF0123456789ABCDEF01"))
	require.Equal(t, "0xshort", TruncateAddress("0xshort"))
}
