package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbpulse/dbpulse/internal/auth"
	"github.com/dbpulse/dbpulse/internal/models"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}}
}

func (s *fakeUserStore) Insert(_ context.Context, user *models.User) error {
	copied := *user
	s.byEmail[user.Email] = &copied
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) FindAll(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range s.byEmail {
		out = append(out, *user)
	}
	return out, nil
}

func validInput() RegisterInput {
	return RegisterInput{Name: "Ada", Age: 36, Email: "ada@example.com", Password: "hunter2"}
}

func TestRegister_RequiresAllFields(t *testing.T) {
	service := NewService(newFakeUserStore(), auth.NewManager("secret"))

	for _, input := range []RegisterInput{
		{Age: 36, Email: "a@b.c", Password: "p"},
		{Name: "Ada", Email: "a@b.c", Password: "p"},
		{Name: "Ada", Age: 36, Password: "p"},
		{Name: "Ada", Age: 36, Email: "a@b.c"},
	} {
		_, err := service.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, auth.NewManager("secret"))

	user, err := service.Register(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "hunter2", user.PasswordHash)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, "hunter2"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, auth.NewManager("secret"))

	_, err := service.Register(context.Background(), validInput())
	require.NoError(t, err)

	_, err = service.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	store := newFakeUserStore()
	tokens := auth.NewManager("secret")
	service := NewService(store, tokens)

	registered, err := service.Register(context.Background(), validInput())
	require.NoError(t, err)

	user, token, err := service.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	ownerID, err := tokens.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, ownerID)
}

func TestLogin_BadCredentials(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, auth.NewManager("secret"))

	_, err := service.Register(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)

	_, _, err = service.Login(context.Background(), "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)

	_, _, err = service.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestList_ReturnsRegisteredUsers(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, auth.NewManager("secret"))

	_, err := service.Register(context.Background(), validInput())
	require.NoError(t, err)

	listed, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
