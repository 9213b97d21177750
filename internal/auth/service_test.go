package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hisaab-pk/hisaab/internal/shared"
)

type memoryAuthRepo struct {
	usersByEmail  map[string]*User
	nextUserID    int64
	nextCompanyID int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{usersByEmail: make(map[string]*User)}
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.usersByEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryAuthRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	for _, u := range r.usersByEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryAuthRepo) CreateAccount(ctx context.Context, companyName, email, fullName, passwordHash string) (*User, error) {
	if _, exists := r.usersByEmail[email]; exists {
		return nil, ErrEmailTaken
	}
	r.nextUserID++
	r.nextCompanyID++
	u := &User{
		ID:           r.nextUserID,
		CompanyID:    r.nextCompanyID,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	r.usersByEmail[email] = u
	return u, nil
}

func registerInput() RegisterInput {
	return RegisterInput{
		CompanyName: "Khan Textiles",
		FullName:    "Ayesha Khan",
		Email:       "ayesha@khantextiles.pk",
		Password:    "correct-horse",
	}
}

func TestRegisterCreatesCompanyAndHashesPassword(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotZero(t, user.CompanyID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := NewService(repo)

	input := registerInput()
	input.Email = "  Ayesha@KhanTextiles.PK "
	user, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "ayesha@khantextiles.pk", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerInput())
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := NewService(repo)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "ayesha@khantextiles.pk", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "Ayesha Khan", user.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ayesha@khantextiles.pk", "wrong-horse")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@khantextiles.pk", "correct-horse")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		repo.usersByEmail["ayesha@khantextiles.pk"].IsActive = false
		_, err := svc.Authenticate(context.Background(), "ayesha@khantextiles.pk", "correct-horse")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}
