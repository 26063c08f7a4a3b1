package refresh

import (
	"time"
)

// OutstandingToken is the server-side record of an issued refresh token,
// keyed by its jti claim. A blacklisted token can no longer be exchanged.
type OutstandingToken struct {
	JTI           string
	UserID        string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	BlacklistedAt *time.Time
}

func (t *OutstandingToken) Blacklisted() bool {
	return t.BlacklistedAt != nil
}

// Repo stores outstanding refresh tokens.
type Repo interface {
	Upsert(token *OutstandingToken) error
	Delete(jti string) error
	Get(jti string) (*OutstandingToken, error)
	ListByUserID(userID string) ([]*OutstandingToken, error)
	List(offset, limit int) ([]*OutstandingToken, error)
}
