// Package users implements admin account management.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/audit"
	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/store"
)

const (
	MsgNotFound     = "User does not exist"
	MsgInvalidRole  = "Invalid role specified"
	MsgConflict     = "Email or username already exists"
	MsgInvalidID    = "Invalid user id"
	MsgInvalidQuery = "Invalid audit query"
)

// UpdateRequest changes an identity. Empty fields keep their current value.
type UpdateRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Validate checks the role when one is given.
func (r UpdateRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.By(func(value any) error {
			role, _ := value.(string)
			if role != "" && !models.Role(role).Valid() {
				return errors.New("unknown role")
			}
			return nil
		})),
	)
	if err != nil {
		return apierr.Validation(MsgInvalidRole)
	}
	return nil
}

// AuditQuery narrows an audit trail. Zero values mean no filter.
type AuditQuery struct {
	EventType string
	Limit     int
}

// Validate checks the event type and limit.
func (q AuditQuery) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.EventType, validation.By(func(value any) error {
			eventType, _ := value.(string)
			if eventType != "" && !models.EventType(eventType).Valid() {
				return errors.New("unknown event type")
			}
			return nil
		})),
		validation.Field(&q.Limit, validation.Min(0)),
	)
	if err != nil {
		return apierr.Validation(MsgInvalidQuery)
	}
	return nil
}

// Revocation counts what EndSessions removed.
type Revocation struct {
	Sessions int
	Tokens   int
}

// Deps are the collaborators of the service.
type Deps struct {
	Identities store.IdentityStore
	Hotels     store.HotelStore
	Sessions   *auth.Sessions
	Tokens     *auth.Tokens
	Audit      *audit.Recorder
}

// Service manages identities on behalf of an admin.
type Service struct {
	deps Deps

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewService creates the admin service.
func NewService(deps Deps) (*Service, error) {
	if deps.Identities == nil || deps.Hotels == nil || deps.Sessions == nil ||
		deps.Tokens == nil || deps.Audit == nil {
		return nil, errors.New("identities, hotels, sessions, tokens and audit are required")
	}
	return &Service{deps: deps, Now: time.Now}, nil
}

// List returns every identity ordered by creation.
func (s *Service) List(ctx context.Context) ([]*models.Identity, error) {
	identities, err := s.deps.Identities.List(ctx)
	if err != nil {
		return nil, apierr.Store(err)
	}
	return identities, nil
}

// Get returns one identity.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	identity, err := s.deps.Identities.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return identity, nil
}

// Update applies the non-empty fields of req.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Identity, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.deps.Identities.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if req.Name != "" {
		identity.Username = req.Name
	}
	if req.Email != "" {
		identity.Email = req.Email
	}
	if req.Role != "" {
		identity.Role = models.Role(req.Role)
	}
	identity.UpdatedAt = s.Now().UTC()

	if err := s.deps.Identities.Update(ctx, identity); err != nil {
		return nil, mapStoreError(err)
	}

	log.Info().
		Str("user_id", id.String()).
		Str("role", string(identity.Role)).
		Msg("Identity updated")

	return identity, nil
}

// EndSessions destroys every session and token held by the identity. The
// account status is left alone.
func (s *Service) EndSessions(ctx context.Context, id uuid.UUID) (*Revocation, error) {
	if _, err := s.deps.Identities.Get(ctx, id); err != nil {
		return nil, mapStoreError(err)
	}

	sessions, err := s.deps.Sessions.DestroyAll(ctx, id)
	if err != nil {
		return nil, apierr.Store(err)
	}

	tokens, err := s.deps.Tokens.RevokeAll(ctx, id)
	if err != nil {
		return nil, apierr.Store(err)
	}

	log.Info().
		Str("user_id", id.String()).
		Int("sessions", sessions).
		Int("tokens", tokens).
		Msg("Identity signed out everywhere")

	return &Revocation{Sessions: sessions, Tokens: tokens}, nil
}

// Hotels returns the hotels provisioned for the identity.
func (s *Service) Hotels(ctx context.Context, id uuid.UUID) ([]*models.Hotel, error) {
	if _, err := s.deps.Identities.Get(ctx, id); err != nil {
		return nil, mapStoreError(err)
	}

	hotels, err := s.deps.Hotels.ListByManager(ctx, id)
	if err != nil {
		return nil, apierr.Store(err)
	}
	return hotels, nil
}

// AuditTrail returns the identity's audit entries, oldest first.
func (s *Service) AuditTrail(ctx context.Context, id uuid.UUID, q AuditQuery) ([]*models.AuditEntry, error) {
	q.EventType = strings.TrimSpace(q.EventType)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.deps.Identities.Get(ctx, id); err != nil {
		return nil, mapStoreError(err)
	}

	entries, err := s.deps.Audit.Entries(ctx, store.AuditFilter{
		UserID:    &id,
		EventType: models.EventType(q.EventType),
		Limit:     q.Limit,
	})
	if err != nil {
		return nil, apierr.Store(err)
	}
	return entries, nil
}

// Activate marks the identity active.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.StatusActive)
}

// Deactivate marks the identity deactivated. Live sessions are kept; the gate
// denies them on the next call.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.StatusDeactivated)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	if err := s.deps.Identities.SetStatus(ctx, id, status, s.Now().UTC()); err != nil {
		return mapStoreError(err)
	}

	log.Info().
		Str("user_id", id.String()).
		Str("status", string(status)).
		Msg("Identity status changed")

	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrIdentityNotFound):
		return apierr.NotFound(MsgNotFound, err)
	case errors.Is(err, store.ErrIdentityAlreadyExists):
		return apierr.Conflict(MsgConflict, err)
	default:
		return apierr.Store(err)
	}
}
