package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/rideon-session/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	values map[session.Field]string
	lock   sync.RWMutex
}

func NewFakeSessionRepo() session.Repo {
	return &FakeSessionRepo{
		values: make(map[session.Field]string),
	}
}

func (r *FakeSessionRepo) Get(_ context.Context, field session.Field) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[field]
	return v, ok, nil
}

func (r *FakeSessionRepo) Set(_ context.Context, field session.Field, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.values[field] = value
	return nil
}

func (r *FakeSessionRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, f := range session.Fields {
		delete(r.values, f)
	}
	return nil
}
