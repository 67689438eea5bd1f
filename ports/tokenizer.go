package ports

import "github.com/intent-app/auth-service/core"

// Tokenizer issues and validates backend session tokens.
type Tokenizer interface {
	// IssueSession creates a fresh access/refresh pair for an identity.
	IssueSession(identity *core.Identity) (*core.BackendSession, error)

	// ParseAccess validates an access token and returns its grant.
	ParseAccess(token string) (*core.Grant, error)

	// ParseRefresh validates a refresh token and returns its grant.
	ParseRefresh(token string) (*core.Grant, error)
}
