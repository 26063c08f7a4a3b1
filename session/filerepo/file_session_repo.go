package filerepo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/rideon-session/session"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var _ session.Repo = (*FileSessionRepo)(nil)

// FileSessionRepo keeps the session fields in a single JSON document on disk.
// With a key the document is sealed with NaCl secretbox and stored as
// nonce || ciphertext.
type FileSessionRepo struct {
	path string
	key  *[keySize]byte
	lock sync.Mutex
}

type Option func(*FileSessionRepo)

// WithKey enables at-rest encryption.
func WithKey(key *[keySize]byte) Option {
	return func(r *FileSessionRepo) {
		r.key = key
	}
}

func NewFileSessionRepo(path string, options ...Option) session.Repo {
	r := &FileSessionRepo{path: path}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *FileSessionRepo) Get(_ context.Context, field session.Field) (string, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[field]
	return v, ok, nil
}

func (r *FileSessionRepo) Set(_ context.Context, field session.Field, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[field] = value
	return r.write(values)
}

func (r *FileSessionRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (r *FileSessionRepo) read() (map[session.Field]string, error) {
	values := make(map[session.Field]string)

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if r.key != nil {
		if len(data) < nonceSize {
			return nil, fmt.Errorf("session file too short")
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, r.key)
		if !ok {
			return nil, fmt.Errorf("failed to decrypt session file")
		}
		data = plain
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return values, nil
}

func (r *FileSessionRepo) write(values map[session.Field]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if r.key != nil {
		var nonce [nonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return fmt.Errorf("failed to generate nonce: %w", err)
		}
		data = secretbox.Seal(nonce[:], data, &nonce, r.key)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
