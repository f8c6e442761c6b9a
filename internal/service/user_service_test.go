package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// fakeUserRepo mirrors the documented Upsert contract of the Postgres
// repository: insert-or-update keyed on email, created_at written once, the
// stored hash kept when the incoming record carries none.
type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *domain.User) (bool, error) {
	existing, ok := f.byEmail[user.Email]
	if !ok {
		user.ID = uuid.NewString()
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
		stored := *user
		f.byEmail[user.Email] = &stored
		return true, nil
	}
	existing.Name = user.Name
	existing.Photo = user.Photo
	existing.Role = user.Role
	existing.Designation = user.Designation
	existing.Department = user.Department
	existing.MobileNumber = user.MobileNumber
	existing.Suspended = user.Suspended
	if user.PasswordHash != nil {
		existing.PasswordHash = user.PasswordHash
	}
	existing.UpdatedAt = time.Now()
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = existing.UpdatedAt
	return false, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) List(_ context.Context, role *string) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.byEmail {
		if role != nil && string(user.Role) != *role {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, email string, role *string, suspended *bool) (int64, error) {
	user, ok := f.byEmail[email]
	if !ok || (role == nil && suspended == nil) {
		return 0, nil
	}
	if role != nil {
		user.Role = domain.UserRole(*role)
	}
	if suspended != nil {
		user.Suspended = *suspended
	}
	return 1, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, email string) (int64, error) {
	if _, ok := f.byEmail[email]; !ok {
		return 0, nil
	}
	delete(f.byEmail, email)
	return 1, nil
}

func TestUserUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("first registration applies defaults", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		result, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com"})
		require.NoError(t, err)
		require.True(t, result.Inserted)
		require.Equal(t, "a@x.com", result.Email)

		stored := repo.byEmail["a@x.com"]
		require.NotNil(t, stored)
		require.Equal(t, domain.RoleCitizen, stored.Role)
		require.Equal(t, domain.DefaultPhoto, stored.Photo)
		require.Empty(t, stored.Name)
		require.False(t, stored.Suspended)
		require.Nil(t, stored.PasswordHash)
	})

	t.Run("email casing never creates a second record", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		first, err := svc.Upsert(ctx, UserUpsertInput{Email: "A@X.com"})
		require.NoError(t, err)
		require.True(t, first.Inserted)
		createdAt := repo.byEmail["a@x.com"].CreatedAt

		second, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com"})
		require.NoError(t, err)
		require.False(t, second.Inserted)

		require.Len(t, repo.byEmail, 1)
		require.Equal(t, createdAt, repo.byEmail["a@x.com"].CreatedAt)
	})

	t.Run("password is hashed, never stored in the clear", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		_, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com", Password: "p"})
		require.NoError(t, err)

		stored := repo.byEmail["a@x.com"]
		require.NotNil(t, stored.PasswordHash)
		require.NotEqual(t, "p", *stored.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("p")))
	})

	t.Run("re-registration without password keeps the stored hash", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		_, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com", Password: "p"})
		require.NoError(t, err)
		hash := *repo.byEmail["a@x.com"].PasswordHash

		result, err := svc.Upsert(ctx, UserUpsertInput{Email: "A@X.com", Name: "New"})
		require.NoError(t, err)
		require.False(t, result.Inserted)

		stored := repo.byEmail["a@x.com"]
		require.Equal(t, "New", stored.Name)
		require.NotNil(t, stored.PasswordHash)
		require.Equal(t, hash, *stored.PasswordHash)
		require.Equal(t, domain.RoleCitizen, stored.Role)
	})

	t.Run("display name and photo url are accepted as fallbacks", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		_, err := svc.Upsert(ctx, UserUpsertInput{
			Email:       "b@x.com",
			DisplayName: "B Citizen",
			PhotoURL:    "https://example.com/b.png",
		})
		require.NoError(t, err)

		stored := repo.byEmail["b@x.com"]
		require.Equal(t, "B Citizen", stored.Name)
		require.Equal(t, "https://example.com/b.png", stored.Photo)
	})

	t.Run("missing email is rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

		_, err := svc.Upsert(ctx, UserUpsertInput{})
		requireErrorCode(t, err, "INVALID_ARGUMENT")
	})
}

func TestUserFindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

	_, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		user, err := svc.FindByEmail(ctx, "A@X.COM")
		require.NoError(t, err)
		require.NotNil(t, user)
		require.Equal(t, "A", user.Name)
	})

	t.Run("absent user is empty, not an error", func(t *testing.T) {
		user, err := svc.FindByEmail(ctx, "nobody@x.com")
		require.NoError(t, err)
		require.Nil(t, user)
	})
}

func TestUserUpdateRole(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

	_, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com"})
	require.NoError(t, err)

	role := "employee"
	suspended := true

	t.Run("only supplied fields change", func(t *testing.T) {
		matched, err := svc.UpdateRole(ctx, "A@X.com", RoleUpdateInput{Role: &role})
		require.NoError(t, err)
		require.EqualValues(t, 1, matched)
		require.Equal(t, domain.RoleEmployee, repo.byEmail["a@x.com"].Role)
		require.False(t, repo.byEmail["a@x.com"].Suspended)
	})

	t.Run("missing email is a zero-match no-op", func(t *testing.T) {
		matched, err := svc.UpdateRole(ctx, "nobody@x.com", RoleUpdateInput{Suspended: &suspended})
		require.NoError(t, err)
		require.EqualValues(t, 0, matched)
	})
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(UserDependencies{UserRepo: repo, BcryptCost: bcrypt.MinCost})

	_, err := svc.Upsert(ctx, UserUpsertInput{Email: "a@x.com"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UserUpsertInput{Email: "b@x.com"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, "A@X.com")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	deleted, err = svc.Delete(ctx, "a@x.com")
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)

	require.Len(t, repo.byEmail, 1)
	require.NotNil(t, repo.byEmail["b@x.com"])
}

func TestCanonicalEmail(t *testing.T) {
	require.Equal(t, "a@x.com", CanonicalEmail(" A@X.com "))
	require.Equal(t, "", CanonicalEmail("   "))
}
