package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrNoLocalSecret means this machine holds no owner secret for a
// registration. It is distinct from the server rejecting a secret.
var ErrNoLocalSecret = errors.New("no owner secret saved locally for this registration")

// Credential is a saved owner secret
type Credential struct {
	Secret     string    `json:"secret"`
	PlayerName string    `json:"playerName"`
	Faction    string    `json:"faction"`
	SavedAt    time.Time `json:"savedAt"`
}

// Credentials persists owner secrets keyed by registration id. The server
// never returns a secret after creation, so losing this file loses control
// of the registrations in it.
type Credentials struct {
	path string
	lock *flock.Flock
}

// NewCredentials opens the credentials file at path
func NewCredentials(path string) *Credentials {
	return &Credentials{path: path, lock: flock.New(path + ".lock")}
}

// Get returns the saved credential for id
func (c *Credentials) Get(id string) (*Credential, error) {
	var cred *Credential
	err := c.withLock(func(all map[string]*Credential) (bool, error) {
		cred = all[id]
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLocalSecret, id)
	}
	return cred, nil
}

// Secret returns the saved owner secret for id
func (c *Credentials) Secret(id string) (string, error) {
	cred, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return cred.Secret, nil
}

// Save stores a credential for id
func (c *Credentials) Save(id string, cred Credential) error {
	return c.withLock(func(all map[string]*Credential) (bool, error) {
		all[id] = &cred
		return true, nil
	})
}

// Update applies fn to the saved credential for id, if there is one
func (c *Credentials) Update(id string, fn func(*Credential)) error {
	return c.withLock(func(all map[string]*Credential) (bool, error) {
		cred, ok := all[id]
		if !ok {
			return false, nil
		}
		fn(cred)
		return true, nil
	})
}

// Remove forgets the credential for id
func (c *Credentials) Remove(id string) error {
	return c.withLock(func(all map[string]*Credential) (bool, error) {
		if _, ok := all[id]; !ok {
			return false, nil
		}
		delete(all, id)
		return true, nil
	})
}

// withLock loads the file under an exclusive lock and writes it back when
// fn reports a change
func (c *Credentials) withLock(fn func(map[string]*Credential) (bool, error)) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	all := make(map[string]*Credential)
	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read credentials: %w", err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &all); err != nil {
			return fmt.Errorf("parse credentials %s: %w", c.path, err)
		}
	}

	changed, err := fn(all)
	if err != nil || !changed {
		return err
	}

	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, out, 0600)
}
