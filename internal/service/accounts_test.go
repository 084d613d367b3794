package service

import (
	"context"
	"testing"

	"shop-service/internal/auth"
	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountFixture(accounts ...*models.Account) (*AccountService, *fakeAccounts, *auth.TokenManager) {
	store := newFakeAccounts(accounts...)
	tokens := auth.NewTokenManager("test-secret", 0)
	return NewAccountService(store, tokens), store, tokens
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store, _ := newAccountFixture()

	account, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ana Souza",
		Email:    "ana@example.com",
		Password: "s3cret",
		Document: "12345678901",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, account.Role)
	assert.NotEqual(t, "s3cret", account.PasswordHash)

	stored, err := store.GetAccountByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)

	ok, err := auth.VerifyPassword(stored.PasswordHash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterReportsAllMissingFields(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, err := svc.Register(context.Background(), &RegisterRequest{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	for _, field := range []string{"name", "email", "password", "document"} {
		assert.Contains(t, validationErr.Fields, field)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountFixture(&models.Account{
		ID: "acc-1", Email: "ana@example.com",
	})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "x", Document: "12345678901",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "email")
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newAccountFixture()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "s3cret", Document: "12345678901",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(context.Background(), "ana@example.com", "s3cret")
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestProfileUnknownAccount(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, err := svc.Profile(context.Background(), "missing")

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
