package port

import "github.com/google/uuid"

// TokenIssuer turns a user identity into an opaque credential and back.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
}
