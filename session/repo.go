package session

import "context"

// Repo is the persistent key/value store holding the session fields. It
// performs no validation. Reads of a missing field report ok == false.
type Repo interface {
	Get(ctx context.Context, field Field) (value string, ok bool, err error)
	Set(ctx context.Context, field Field, value string) error
	// Clear removes all session fields. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
