// Package identity issues the stable per-device identities players act under.
package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordparty/internal/dependencies/clock"
	"github.com/mcoot/wordparty/internal/dependencies/retry"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// Errors
var (
	// ErrProviderDisabled means sign-in is switched off and retrying cannot help
	ErrProviderDisabled = errors.New("identity provider disabled")
)

const (
	fieldSecretHash = "secretHash"
	fieldCreatedAt  = "createdAt"
)

// Credential is what a device keeps to sign in as the same identity again
type Credential struct {
	UID    model.PlayerID `json:"uid"`
	Secret string         `json:"secret"`
}

// Identity is a signed-in player identity
type Identity struct {
	UID        model.PlayerID
	Credential Credential
	CreatedAt  time.Time

	// Restored is true when an existing credential was accepted
	Restored bool
}

// Provider signs a device in
type Provider interface {
	// SignIn returns the identity for cred, or a new one when cred is nil or not recognised
	SignIn(ctx context.Context, cred *Credential) (*Identity, error)
}

// Config holds configuration for the anonymous provider
type Config struct {
	Enabled    bool
	BcryptCost int
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// AnonymousProvider issues identities backed by records in the shared store.
// Each identity has a random secret whose bcrypt hash is stored.
type AnonymousProvider struct {
	store  store.Store
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// Ensure AnonymousProvider implements Provider
var _ Provider = (*AnonymousProvider)(nil)

// New creates an anonymous provider
func New(st store.Store, clk clock.Clock, cfg Config, logger *slog.Logger) *AnonymousProvider {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &AnonymousProvider{
		store:  st,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "identity")),
	}
}

func (p *AnonymousProvider) SignIn(ctx context.Context, cred *Credential) (*Identity, error) {
	if !p.cfg.Enabled {
		return nil, ErrProviderDisabled
	}

	if cred != nil && cred.UID != "" {
		id, err := p.restore(ctx, *cred)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}
		p.logger.Info("credential not recognised, issuing new identity",
			slog.String("uid", string(cred.UID)))
	}

	return p.issue(ctx)
}

// restore returns nil without error when the credential does not match
func (p *AnonymousProvider) restore(ctx context.Context, cred Credential) (*Identity, error) {
	snap, err := p.store.Get(ctx, model.IdentityPath(cred.UID))
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, nil
	}

	hash := snap.Child(fieldSecretHash).String()
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(cred.Secret)) != nil {
		return nil, nil
	}

	createdAt, _ := time.Parse(time.RFC3339, snap.Child(fieldCreatedAt).String())
	return &Identity{
		UID:        cred.UID,
		Credential: cred,
		CreatedAt:  createdAt,
		Restored:   true,
	}, nil
}

func (p *AnonymousProvider) issue(ctx context.Context) (*Identity, error) {
	uid := model.PlayerID(uuid.NewString())
	secret := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), p.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now().UTC()
	err = p.store.Set(ctx, model.IdentityPath(uid), map[string]any{
		fieldSecretHash: string(hash),
		fieldCreatedAt:  now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("issued identity", slog.String("uid", string(uid)))
	return &Identity{
		UID:        uid,
		Credential: Credential{UID: uid, Secret: secret},
		CreatedAt:  now,
	}, nil
}

// Acquire signs in under the retry policy. Provider-disabled errors are not
// retried. Any final failure is reported as model.ErrIdentityUnavailable.
func Acquire(ctx context.Context, p Provider, cred *Credential, policy retry.Policy, logger *slog.Logger) (*Identity, error) {
	policy.Fatal = append(append([]error(nil), policy.Fatal...), ErrProviderDisabled)

	var id *Identity
	err := retry.Do(ctx, policy, logger, func(ctx context.Context) error {
		var err error
		id, err = p.SignIn(ctx, cred)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrIdentityUnavailable, err)
	}
	return id, nil
}
