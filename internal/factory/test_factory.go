package factory

import (
	"time"

	"github.com/mcoot/wordparty/internal/dependencies/mocks"
	"github.com/mcoot/wordparty/internal/dependencies/retry"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/services/identity"
	"github.com/mcoot/wordparty/internal/store/memory"
	"github.com/mcoot/wordparty/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MemoryStore *memory.Store
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	st := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(st, mockClock, mockRandom, dictionary.New(), Config{
		IdentityConfig: identity.Config{Enabled: true, BcryptCost: 4},
		RetryPolicy: retry.Policy{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1,
		},
	}, testutil.NopLogger())

	return &TestApp{
		App:         app,
		MemoryStore: st,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	answers := []string{"crane", "slate", "trace"}
	allowed := []string{
		"adieu", "blast", "brace", "cramp", "eerie", "pious", "shard", "stern",
		"track", "train", "words", "zesty",
	}
	return t.DictionaryService.LoadWords(answers, allowed)
}
