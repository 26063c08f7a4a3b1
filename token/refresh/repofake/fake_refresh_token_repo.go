package refreshrepofake

import (
	"errors"
	"sort"
	"sync"

	"github.com/jrsteele09/rideon-session/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.OutstandingToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() refresh.Repo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.OutstandingToken),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(token *refresh.OutstandingToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	stored := *token
	tr.tokens[token.JTI] = &stored
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(jti string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[jti]; !ok {
		return errors.New("not found")
	}
	delete(tr.tokens, jti)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(jti string) (*refresh.OutstandingToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[jti]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *rt
	return &copied, nil
}

func (tr *FakeRefreshTokenRepo) ListByUserID(userID string) ([]*refresh.OutstandingToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tokens := make([]*refresh.OutstandingToken, 0)
	for _, rt := range tr.tokens {
		if rt.UserID == userID {
			copied := *rt
			tokens = append(tokens, &copied)
		}
	}
	return tokens, nil
}

func (tr *FakeRefreshTokenRepo) List(offset, limit int) ([]*refresh.OutstandingToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tokens := make([]*refresh.OutstandingToken, 0, len(tr.tokens))
	for _, rt := range tr.tokens {
		copied := *rt
		tokens = append(tokens, &copied)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].IssuedAt.Before(tokens[j].IssuedAt)
	})

	if offset >= len(tokens) {
		return nil, nil
	}
	end := offset + limit
	if end > len(tokens) {
		end = len(tokens)
	}
	return tokens[offset:end], nil
}
