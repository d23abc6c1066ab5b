package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/factionboard/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned first; once a queue is empty a
// deterministic sequence ("uuid-1", "token-1", ...) is used.
type MockRandom struct {
	mu sync.Mutex

	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidCount   int

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenCount   int

	// TokenErr, when set, is returned by every Token call
	TokenErr error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// UUID returns the next queued UUID or a generated one
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uuidCount++
	if len(r.UUIDResults) > 0 {
		result := r.UUIDResults[0]
		r.UUIDResults = r.UUIDResults[1:]
		return result
	}
	return fmt.Sprintf("uuid-%d", r.uuidCount)
}

// Token returns the next queued token or a generated one
func (r *MockRandom) Token(n int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TokenErr != nil {
		return "", r.TokenErr
	}
	r.tokenCount++
	if len(r.TokenResults) > 0 {
		result := r.TokenResults[0]
		r.TokenResults = r.TokenResults[1:]
		return result, nil
	}
	return fmt.Sprintf("token-%d", r.tokenCount), nil
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = append(r.UUIDResults, values...)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results and counters
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = nil
	r.TokenResults = nil
	r.uuidCount = 0
	r.tokenCount = 0
	r.TokenErr = nil
}
