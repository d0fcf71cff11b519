package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/wordparty/internal/dependencies/clock"
	"github.com/mcoot/wordparty/internal/dependencies/random"
	"github.com/mcoot/wordparty/internal/dependencies/retry"
	"github.com/mcoot/wordparty/internal/services/bot"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/services/identity"
	"github.com/mcoot/wordparty/internal/services/party"
	"github.com/mcoot/wordparty/internal/store"
	"github.com/mcoot/wordparty/internal/store/memory"
	redisstore "github.com/mcoot/wordparty/internal/store/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Store is the shared store every session talks to
	Store store.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	IdentityProvider  identity.Provider

	RetryPolicy retry.Policy
	PartyConfig party.Config
	Logger      *slog.Logger

	closeStore func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AnswersPath and AllowedPath are optional word list files.
	// If AnswersPath is empty, the built-in lists are used.
	AnswersPath string
	AllowedPath string
	// IdentityConfig holds configuration for the identity provider (optional)
	// If BcryptCost is zero, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// RetryPolicy governs identity acquisition (optional)
	// If MaxAttempts is zero, defaults to retry.DefaultPolicy()
	RetryPolicy retry.Policy
	// PartyConfig holds per-session game settings (optional)
	PartyConfig party.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the shared store backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstore.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create the shared store based on type
	var st store.Store
	closeStore := func() error { return nil }
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		st = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstore.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		st = redisStore
		closeStore = redisStore.Close
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	dict := dictionary.New()
	var err error
	if cfg.AnswersPath != "" {
		err = dict.LoadFromFile(cfg.AnswersPath, cfg.AllowedPath)
	} else {
		err = dict.LoadDefaults()
	}
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	app := newWithDependencies(st, clock.New(), random.New(), dict, cfg, logger)
	app.closeStore = closeStore
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	st store.Store,
	clk clock.Clock,
	rnd random.Random,
	dict *dictionary.Service,
	cfg Config,
	logger *slog.Logger,
) *App {
	// Use defaults where not provided
	idCfg := cfg.IdentityConfig
	if idCfg.BcryptCost == 0 {
		idCfg = identity.DefaultConfig()
	}
	policy := cfg.RetryPolicy
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}

	return &App{
		Store:             st,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dict,
		IdentityProvider:  identity.New(st, clk, idCfg, logger),
		RetryPolicy:       policy,
		PartyConfig:       cfg.PartyConfig,
		Logger:            logger,
		closeStore:        func() error { return nil },
	}
}

// SignIn acquires an identity under the retry policy. A nil credential
// issues a fresh identity.
func (a *App) SignIn(ctx context.Context, cred *identity.Credential) (*identity.Identity, error) {
	return identity.Acquire(ctx, a.IdentityProvider, cred, a.RetryPolicy, a.Logger)
}

// NewSession signs in and returns a party session acting as that identity
func (a *App) NewSession(ctx context.Context, cred *identity.Credential, observer party.Observer) (*party.Session, *identity.Identity, error) {
	id, err := a.SignIn(ctx, cred)
	if err != nil {
		return nil, nil, err
	}
	return a.SessionFor(id, observer), id, nil
}

// SessionFor returns a party session for an identity that is already signed in
func (a *App) SessionFor(id *identity.Identity, observer party.Observer) *party.Session {
	return party.New(a.Store, id.UID, a.DictionaryService, a.Random, a.Clock, a.PartyConfig, observer, a.Logger)
}

// NewBot signs in a fresh identity and returns a session played by a bot.
// Events are forwarded to next after the bot has acted.
func (a *App) NewBot(ctx context.Context, next party.Observer) (*bot.Bot, *party.Session, error) {
	id, err := a.SignIn(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	b := bot.New(bot.NewRandomStrategy(a.DictionaryService, a.Random), next, a.Logger)
	sess := a.SessionFor(id, b)
	b.Attach(ctx, sess)
	return b, sess, nil
}

// Close releases the shared store
func (a *App) Close() error {
	return a.closeStore()
}
