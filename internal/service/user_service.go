package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// UserService normalizes and upserts directory records. The lowercased email
// is the single key: registering the same address under different casing can
// never create a second record.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	BcryptCost int
}

// UserUpsertInput is the registration payload. DisplayName and PhotoURL are
// accepted as fallbacks for clients that send profile-provider field names.
type UserUpsertInput struct {
	Email        string
	Name         string
	DisplayName  string
	Photo        string
	PhotoURL     string
	Role         string
	Designation  string
	Department   string
	MobileNumber string
	Suspended    bool
	Password     string
}

// UpsertResult reports whether the registration inserted a new record or
// updated an existing one.
type UpsertResult struct {
	Email    string
	Inserted bool
}

// RoleUpdateInput is a partial update; nil fields are left untouched.
type RoleUpdateInput struct {
	Role      *string
	Suspended *bool
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 10
	}
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: cost,
	}
}

// Upsert canonicalizes the email, applies field defaults and writes the
// record additively: created_at is set once at first creation and a stored
// password hash is only replaced when a new plaintext password arrives.
func (s *UserService) Upsert(ctx context.Context, input UserUpsertInput) (*UpsertResult, error) {
	email := CanonicalEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewInvalidArgument("email required")
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = string(domain.RoleCitizen)
	}

	user := &domain.User{
		Email:        email,
		Name:         firstNonEmpty(input.Name, input.DisplayName),
		Photo:        firstNonEmpty(input.Photo, input.PhotoURL, domain.DefaultPhoto),
		Role:         domain.UserRole(role),
		Designation:  input.Designation,
		Department:   input.Department,
		MobileNumber: input.MobileNumber,
		Suspended:    input.Suspended,
	}

	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = &hash
	}

	inserted, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if inserted {
		s.publishEvent(ctx, events.Event{
			Type: events.EventUserRegistered,
			Payload: events.UserRegisteredPayload{
				Email: user.Email,
				Role:  user.Role,
			},
		})
	}
	return &UpsertResult{Email: email, Inserted: inserted}, nil
}

// FindByEmail looks a user up by canonical email. An absent user yields
// (nil, nil) rather than an error.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	canonical := CanonicalEmail(email)
	if canonical == "" {
		return nil, apperrors.NewInvalidArgument("email required")
	}
	user, err := s.users.GetByEmail(ctx, canonical)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role string) ([]domain.User, error) {
	var roleFilter *string
	if role != "" {
		roleFilter = &role
	}
	users, err := s.users.List(ctx, roleFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateRole applies a partial role/suspension update. A missing email is not
// distinguished from a no-field update; the matched count is reported as-is.
func (s *UserService) UpdateRole(ctx context.Context, email string, input RoleUpdateInput) (int64, error) {
	canonical := CanonicalEmail(email)
	if canonical == "" {
		return 0, apperrors.NewInvalidArgument("email required")
	}
	matched, err := s.users.UpdateRole(ctx, canonical, input.Role, input.Suspended)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return matched, nil
}

// Delete removes a user by canonical email. Deleting an absent user is not an
// error.
func (s *UserService) Delete(ctx context.Context, email string) (int64, error) {
	canonical := CanonicalEmail(email)
	if canonical == "" {
		return 0, apperrors.NewInvalidArgument("email required")
	}
	deleted, err := s.users.Delete(ctx, canonical)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return deleted, nil
}

// CanonicalEmail returns the lowercase-normalized form used as the unique
// user key.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
