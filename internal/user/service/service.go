// Package service implements the user lifecycle: dual writes against the
// identity provider and the local user store, with compensation on partial
// failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/keycloak"
	"poseidon-capital/backend/internal/platform/keyedlock"
	"poseidon-capital/backend/internal/user/domain"
	userrepo "poseidon-capital/backend/internal/user/repository"
)

// ErrNotFound is returned when no local user record exists for the given id.
// Lookups fail before any remote call is made.
var ErrNotFound = errors.New("user not found")

// IdentityProvider is the minimal identity-provider client needed by the
// lifecycle. The provider is the source of truth for credentials and roles.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, username, password, role string) (string, error)
	DeleteAccount(ctx context.Context, externalID string) error
	SetPassword(ctx context.Context, externalID, password string) error
	SetRole(ctx context.Context, externalID, role string) error
}

// Service orchestrates create/update/delete of users across the identity
// provider and the local store. Operations on the same internal id serialize
// through a keyed lock; neither backing system coordinates the pair of writes.
type Service struct {
	provider IdentityProvider
	repo     userrepo.Repository
	recorder audit.Recorder
	locks    keyedlock.KeyedLock
	tracer   trace.Tracer
}

// NewService returns a Service with the given dependencies. recorder may be
// nil; then lifecycle events are not audited.
func NewService(provider IdentityProvider, repo userrepo.Repository, recorder audit.Recorder) *Service {
	return &Service{
		provider: provider,
		repo:     repo,
		recorder: recorder,
		tracer:   otel.Tracer("poseidon-capital/backend/internal/user/service"),
	}
}

// CreateUser provisions the provider account first, then persists the local
// record linked by the returned external id. If the local save fails, the
// just-created account is deleted again (best-effort). A provider conflict
// surfaces as keycloak.ErrDuplicateAccount with no local state touched.
//
// On success u carries the assigned internal id, the external id, and the
// password sentinel in place of the submitted plaintext.
func (s *Service) CreateUser(ctx context.Context, u *domain.User) error {
	ctx, span := s.tracer.Start(ctx, "user.create")
	defer span.End()

	if err := u.Validate(); err != nil {
		return err
	}
	if u.Password == "" || u.Password == domain.PasswordSentinel {
		return errors.New("password is required")
	}

	var externalID string
	err := runSteps(ctx, "create user", []step{
		{
			name: "provider-create",
			run: func(ctx context.Context) error {
				id, err := s.provider.CreateAccount(ctx, u.Username, u.Password, string(u.Role))
				if err != nil {
					if errors.Is(err, keycloak.ErrDuplicateAccount) {
						return err
					}
					return fmt.Errorf("create account for %q: %w", u.Username, err)
				}
				externalID = id
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.provider.DeleteAccount(ctx, externalID)
			},
		},
		{
			name: "store-save",
			run: func(ctx context.Context) error {
				u.KeycloakID = externalID
				u.Password = domain.PasswordSentinel
				if err := s.repo.Create(ctx, u); err != nil {
					return fmt.Errorf("persist user %q: %w", u.Username, err)
				}
				return nil
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.logEvent(ctx, "user_created", u)
	return nil
}

// UpdateUser applies fullname/role to the local record after synchronizing the
// provider: the password is replaced when a new one is supplied (non-empty and
// not the sentinel), then the realm role is reset to exactly role.
//
// The steps are not atomic with each other: a role failure after a password
// change leaves the remote password updated and the role unsynchronized until
// the caller retries.
func (s *Service) UpdateUser(ctx context.Context, id int64, fullname string, role domain.Role, password string) error {
	ctx, span := s.tracer.Start(ctx, "user.update")
	defer span.End()

	key := lockKey(id)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", id, err)
	}
	if u == nil {
		return ErrNotFound
	}

	updated := *u
	updated.Fullname = fullname
	updated.Role = role
	if err := updated.Validate(); err != nil {
		return err
	}

	if password != "" && password != domain.PasswordSentinel {
		if err := s.provider.SetPassword(ctx, u.KeycloakID, password); err != nil {
			span.RecordError(err)
			if errors.Is(err, keycloak.ErrInvalidPassword) {
				return err
			}
			return fmt.Errorf("set password for user %d: %w", id, err)
		}
	}
	if err := s.provider.SetRole(ctx, u.KeycloakID, string(role)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("set role for user %d: %w", id, err)
	}

	updated.Password = domain.PasswordSentinel
	if err := s.repo.Update(ctx, &updated); err != nil {
		span.RecordError(err)
		return fmt.Errorf("persist user %d: %w", id, err)
	}

	s.logEvent(ctx, "user_updated", &updated)
	return nil
}

// DeleteUser removes the provider account first, then the local record. With a
// missing-account-tolerant provider delete, a failed local delete is retryable:
// the next call converges instead of failing on the already-removed account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "user.delete")
	defer span.End()

	key := lockKey(id)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", id, err)
	}
	if u == nil {
		return ErrNotFound
	}

	if err := s.provider.DeleteAccount(ctx, u.KeycloakID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete account for user %d: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("remove user %d after account deletion: %w", id, err)
	}

	s.logEvent(ctx, "user_deleted", u)
	return nil
}

// GetUser returns the local record for id.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up user %d: %w", id, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// ListUsers returns all local records.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) logEvent(ctx context.Context, action string, u *domain.User) {
	if s.recorder == nil {
		return
	}
	s.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "user",
		strconv.FormatInt(u.ID, 10), fmt.Sprintf(`{"username":%q,"role":%q}`, u.Username, u.Role))
}

func lockKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}
