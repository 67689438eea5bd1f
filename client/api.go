package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/intent-app/auth-service/core"
)

// AuthAPI is the client's view of the verification endpoint.
type AuthAPI interface {
	// Authenticate posts a proof and returns the issued backend session.
	Authenticate(ctx context.Context, proof core.AuthProof) (*core.BackendSession, *core.User, error)
}

// HTTPAuthAPI talks to the auth service over HTTP.
type HTTPAuthAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPAuthAPI creates a client for the verification endpoint at baseURL.
// apiKey is attached as the "apikey" header when non-empty.
func NewHTTPAuthAPI(baseURL, apiKey string) *HTTPAuthAPI {
	return &HTTPAuthAPI{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type authResponse struct {
	Success bool                 `json:"success"`
	Session *core.BackendSession `json:"session"`
	User    *core.User           `json:"user"`
	Error   string               `json:"error"`
}

// Authenticate posts a proof to the verification endpoint and maps HTTP
// failure classes onto typed errors the state machine can act on.
func (a *HTTPAuthAPI) Authenticate(ctx context.Context, proof core.AuthProof) (*core.BackendSession, *core.User, error) {
	body, err := json.Marshal(map[string]string{
		"message":   proof.Message,
		"signature": proof.Signature,
		"address":   proof.Address,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/siwe", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("apikey", a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", core.ErrAuthService, err)
	}
	defer resp.Body.Close()

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode == http.StatusOK {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if parsed.Session == nil || parsed.User == nil {
			return nil, nil, fmt.Errorf("%w: empty session in response", core.ErrAuthService)
		}
		return parsed.Session, parsed.User, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, nil, fmt.Errorf("%w: %s", core.ErrBadSignature, parsed.Error)

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, nil, fmt.Errorf("%w: retry after %ss", core.ErrRateLimited, retryAfter)

	case resp.StatusCode >= 500:
		// The server never echoes internals; back off before retrying.
		return nil, nil, fmt.Errorf("%w: status %d", core.ErrAuthService, resp.StatusCode)

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrBackendRejected, parsed.Error)
	}
}
