// Package file stores registrations as a single JSON array on disk.
//
// The whole array is read on every operation and rewritten on every
// mutation. A process-local mutex plus an advisory lock file serialize the
// read-check-write cycle, so several processes may share one data file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gofrs/flock"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage"
)

// DefaultPath is the data file used when none is configured
const DefaultPath = "data/registrations.json"

// Storage is a JSON-file-backed implementation of the storage interface
type Storage struct {
	mu    sync.Mutex
	path  string
	flock *flock.Flock
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New creates a file storage at path, creating its directory if needed.
// The data file itself is created on the first write.
func New(path string) (*Storage, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Storage{
		path:  path,
		flock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the data file location
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) ListRegistrations(ctx context.Context) ([]*model.Registration, error) {
	var result []*model.Registration
	err := s.withLock(func() error {
		regs, err := s.load()
		result = regs
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.Registration, error) {
	var result *model.Registration
	err := s.withLock(func() error {
		regs, err := s.load()
		if err != nil {
			return err
		}
		i := indexOf(regs, id)
		if i < 0 {
			return model.ErrRegistrationNotFound
		}
		result = regs[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	return s.withLock(func() error {
		regs, err := s.load()
		if err != nil {
			return err
		}
		if nameTaken(regs, reg.NormalizedName(), "") {
			return model.ErrDuplicatePlayer
		}
		return s.save(append(regs, reg.Clone()))
	})
}

func (s *Storage) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	return s.withLock(func() error {
		regs, err := s.load()
		if err != nil {
			return err
		}
		i := indexOf(regs, reg.ID)
		if i < 0 {
			return model.ErrRegistrationNotFound
		}
		if nameTaken(regs, reg.NormalizedName(), reg.ID) {
			return model.ErrDuplicatePlayer
		}
		regs[i] = reg.Clone()
		return s.save(regs)
	})
}

func (s *Storage) DeleteRegistration(ctx context.Context, id model.RegistrationID) error {
	return s.withLock(func() error {
		regs, err := s.load()
		if err != nil {
			return err
		}
		i := indexOf(regs, id)
		if i < 0 {
			return model.ErrRegistrationNotFound
		}
		return s.save(slices.Delete(regs, i, i+1))
	})
}

// withLock runs fn holding both the process mutex and the lock file
func (s *Storage) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.flock.Path(), err)
	}
	defer func() {
		_ = s.flock.Unlock()
	}()

	return fn()
}

// load reads the data file. A missing or empty file is an empty set.
func (s *Storage) load() ([]*model.Registration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.Registration{}, nil
		}
		return nil, fmt.Errorf("read registrations: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Registration{}, nil
	}

	var regs []*model.Registration
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("parse registrations: %w", err)
	}
	return regs, nil
}

// save rewrites the data file through a temp file and rename
func (s *Storage) save(regs []*model.Registration) error {
	data, err := json.MarshalIndent(regs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registrations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write registrations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write registrations: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace registrations file: %w", err)
	}
	return nil
}

func indexOf(regs []*model.Registration, id model.RegistrationID) int {
	return slices.IndexFunc(regs, func(r *model.Registration) bool { return r.ID == id })
}

// nameTaken reports whether any registration other than except uses name
func nameTaken(regs []*model.Registration, name string, except model.RegistrationID) bool {
	return slices.ContainsFunc(regs, func(r *model.Registration) bool {
		return r.ID != except && r.NormalizedName() == name
	})
}
