package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/factionboard/internal/dependencies/mocks"
	"github.com/mcoot/factionboard/internal/metrics"
	"github.com/mcoot/factionboard/internal/services/auth"
	"github.com/mcoot/factionboard/internal/storage/memory"
	"github.com/mcoot/factionboard/internal/testutil"
)

// TestAdminPassword is the admin password accepted by a TestApp
const TestAdminPassword = "test-admin-password"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and in-memory storage
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	app, err := newWithDependencies(store, mockClock, mockRandom, auth.Config{
		PasswordHash:    string(hash),
		TokenSecret:     []byte("test-token-secret"),
		SessionDuration: time.Hour,
	}, metrics.New(), testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
