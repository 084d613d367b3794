package service

import (
	"context"
	"errors"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for a login with an unknown email or a
// wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountService handles registration, login and profile lookup
type AccountService struct {
	accounts AccountStore
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, tokens *auth.TokenManager) *AccountService {
	return &AccountService{
		accounts: accounts,
		tokens:   tokens,
		logger:   util.GetLogger(),
	}
}

// RegisterRequest carries a new account registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Document string `json:"document"`
}

// Register creates a new CUSTOMER account with a hashed password
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.Account, error) {
	fields := map[string][]string{}
	if req.Name == "" {
		fields["name"] = append(fields["name"], "is required")
	}
	if req.Email == "" {
		fields["email"] = append(fields["email"], "is required")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "is required")
	}
	if req.Document == "" {
		fields["document"] = append(fields["document"], "is required")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.accounts.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Fields: map[string][]string{
			"email": {"is already registered"},
		}}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Document:     req.Document,
		Role:         models.RoleCustomer,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account registered", zap.String("account_id", account.ID))
	return account, nil
}

// Login verifies credentials and mints a bearer token
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", &ValidationError{Fields: map[string][]string{
			"email":    {"is required"},
			"password": {"is required"},
		}}
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(account.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(account.ID)
}

// Profile loads the account bound to an authenticated identity
func (s *AccountService) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &NotFoundError{Resource: "account", ID: accountID}
	}
	return account, nil
}
