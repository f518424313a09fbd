// Package login implements signup, login and logout on top of the credential
// store, the session manager and the token issuer.
package login

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
	"github.com/wolfeidau/moontravel/internal/password"
	"github.com/wolfeidau/moontravel/internal/store"
	"github.com/wolfeidau/moontravel/internal/telemetry"
)

// Client-facing messages.
const (
	MsgMissingFields       = "Missing fields"
	MsgInvalidRole         = "Invalid role specified"
	MsgConflict            = "Email or username already exists"
	MsgCredentialsRequired = "Email and password are required"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
)

// Defaults for the hotel provisioned with a hotel manager account.
const (
	DefaultHotelLocation    = "Cairo"
	DefaultHotelPrice       = 100
	DefaultHotelDescription = "Default description"
	DefaultHotelRooms       = 10
)

// roleValues lists the assignable roles for validation.In.
var roleValues = func() []any {
	values := make([]any, 0, len(models.Roles))
	for _, r := range models.Roles {
		values = append(values, string(r))
	}
	return values
}()

// SignupRequest is the signup input.
type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	HotelName string `json:"hotelName,omitempty"`
}

// Validate checks required fields first and then the role.
func (r SignupRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required),
	)
	if err != nil {
		return apierr.Validation(MsgMissingFields)
	}

	if err := validation.Validate(r.Role, validation.In(roleValues...)); err != nil {
		return apierr.Validation(MsgInvalidRole)
	}

	return nil
}

// SignupResult describes the created identity.
type SignupResult struct {
	UserID uuid.UUID
	Role   models.Role

	// HotelName is set when a hotel was requested for a hotel manager.
	HotelName string
	// HotelFailed is true when the identity exists but the hotel insert failed.
	HotelFailed bool
}

// LoginRequest is the login input.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Validate checks that both credentials are present.
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
	if err != nil {
		return apierr.Validation(MsgCredentialsRequired)
	}
	return nil
}

// LoginResult carries the credentials to hand to the client.
type LoginResult struct {
	UserID         uuid.UUID
	Role           models.Role
	SessionID      string
	Token          string
	TokenExpiresAt time.Time
	Remember       bool
}

// Deps are the collaborators of the service.
type Deps struct {
	Identities store.IdentityStore
	Hotels     store.HotelStore
	Hasher     *password.Hasher
	Sessions   *auth.Sessions
	Tokens     *auth.Tokens
	Audit      *audit.Recorder

	// Metrics is optional.
	Metrics *telemetry.Metrics
}

// Service runs the signup, login and logout flows.
type Service struct {
	deps Deps

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewService creates the service.
func NewService(deps Deps) (*Service, error) {
	if deps.Identities == nil || deps.Hotels == nil || deps.Hasher == nil ||
		deps.Sessions == nil || deps.Tokens == nil || deps.Audit == nil {
		return nil, errors.New("identities, hotels, hasher, sessions, tokens and audit are required")
	}
	return &Service{deps: deps, Now: time.Now}, nil
}

// Signup registers a new identity. A hotel manager who names a hotel also gets
// a hotel row; if that insert fails the identity is kept and HotelFailed is set.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.HotelName = strings.TrimSpace(req.HotelName)

	if err := req.Validate(); err != nil {
		s.recordSignup(ctx, req.Role, "invalid")
		return nil, err
	}

	digest, err := s.hash(ctx, req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, apierr.Validation(MsgPasswordTooLong)
		}
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	identity := &models.Identity{
		ID:           id,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         models.Role(req.Role),
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.deps.Identities.Create(ctx, identity); err != nil {
		if errors.Is(err, store.ErrIdentityAlreadyExists) {
			s.recordSignup(ctx, req.Role, "conflict")
			return nil, apierr.Conflict(MsgConflict, err)
		}
		return nil, apierr.Store(err)
	}

	log.Info().
		Str("user_id", identity.ID.String()).
		Str("role", req.Role).
		Msg("Identity registered")

	result := &SignupResult{UserID: identity.ID, Role: identity.Role}

	if identity.Role == models.RoleHotelManager && req.HotelName != "" {
		result.HotelName = req.HotelName
		if err := s.provisionHotel(ctx, identity, req.HotelName); err != nil {
			log.Error().Err(err).Str("user_id", identity.ID.String()).Msg("Hotel insert failed after signup")
			result.HotelFailed = true
		}
	}

	s.recordSignup(ctx, req.Role, "success")
	return result, nil
}

func (s *Service) provisionHotel(ctx context.Context, manager *models.Identity, name string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	return s.deps.Hotels.Create(ctx, &models.Hotel{
		HotelID:        id,
		Name:           name,
		Location:       DefaultHotelLocation,
		Price:          DefaultHotelPrice,
		Description:    DefaultHotelDescription,
		RoomsAvailable: DefaultHotelRooms,
		ManagerID:      manager.ID,
		CreatedAt:      s.Now().UTC(),
	})
}

// Login verifies credentials and starts a session with a fresh bearer token.
// Unknown emails and wrong passwords both return InvalidCredentials after a
// bcrypt comparison, and both are audited.
func (s *Service) Login(ctx context.Context, req LoginRequest, client auth.ClientInfo) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.deps.Identities.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrIdentityNotFound) {
			return nil, apierr.Store(err)
		}

		s.timed(ctx, "equalize", func() { s.deps.Hasher.Equalize(req.Password) })
		return nil, s.loginFailed(ctx, nil, client, req.Email)
	}

	var match bool
	s.timed(ctx, "verify", func() { match = s.deps.Hasher.Verify(req.Password, identity.PasswordHash) })
	if !match {
		return nil, s.loginFailed(ctx, &identity.ID, client, req.Email)
	}

	sessionID, err := s.deps.Sessions.Create(ctx, identity.ID, client)
	if err != nil {
		return nil, apierr.Store(err)
	}

	token, expiresAt, err := s.deps.Tokens.Issue(ctx, identity.ID)
	if err != nil {
		// the session is useless without its token
		_ = s.deps.Sessions.Destroy(ctx, sessionID)
		return nil, apierr.Store(err)
	}

	_ = s.deps.Audit.Record(ctx, &identity.ID, models.EventLoginSuccess, client.IPAddress)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordLogin(ctx, true)
	}

	log.Info().
		Str("user_id", identity.ID.String()).
		Str("role", string(identity.Role)).
		Bool("remember", req.RememberMe).
		Msg("Login successful")

	return &LoginResult{
		UserID:         identity.ID,
		Role:           identity.Role,
		SessionID:      sessionID,
		Token:          token,
		TokenExpiresAt: expiresAt,
		Remember:       req.RememberMe,
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, userID *uuid.UUID, client auth.ClientInfo, email string) error {
	_ = s.deps.Audit.Record(ctx, userID, models.EventLoginFailure, client.IPAddress)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordLogin(ctx, false)
	}

	log.Warn().
		Str("email", email).
		Str("ip", client.IPAddress).
		Bool("known_identity", userID != nil).
		Msg("Login failed")

	return apierr.InvalidCredentials()
}

// Logout destroys the session and revokes the presented token. Missing or
// already destroyed credentials are not an error. Both deletions are attempted
// and the logout is audited before any store error is returned.
func (s *Service) Logout(ctx context.Context, sessionID, token string, client auth.ClientInfo) error {
	var userID *uuid.UUID
	if id, err := s.deps.Sessions.Resolve(ctx, sessionID); err == nil {
		userID = &id
	}

	err := errors.Join(
		s.deps.Sessions.Destroy(ctx, sessionID),
		s.deps.Tokens.Revoke(ctx, token),
	)

	// the attempt is recorded even when the stores fail
	_ = s.deps.Audit.Record(ctx, userID, models.EventLogout, client.IPAddress)
	if err != nil {
		return apierr.Store(err)
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordLogout(ctx)
	}

	return nil
}

func (s *Service) hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest string
		err    error
	)
	s.timed(ctx, "hash", func() { digest, err = s.deps.Hasher.Hash(plaintext) })
	return digest, err
}

func (s *Service) timed(ctx context.Context, op string, fn func()) {
	started := time.Now()
	fn()
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordPasswordHash(ctx, op, time.Since(started))
	}
}

func (s *Service) recordSignup(ctx context.Context, role, outcome string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSignup(ctx, role, outcome)
	}
}
