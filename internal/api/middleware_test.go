package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-service/internal/auth"
	"shop-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccounts struct {
	account *models.Account
}

func (s *stubAccounts) GetAccountByID(_ context.Context, _ string) (*models.Account, error) {
	return s.account, nil
}

func newAuthRouter(tokens *auth.TokenManager, accounts AccountSource, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{Authenticate(tokens)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(accounts, roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": c.GetString(ctxAccountID)})
	})

	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectionsAreIndistinguishable(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 0)
	router := newAuthRouter(tokens, nil)

	otherToken, err := auth.NewTokenManager("other-secret", 0).Issue("acc-1")
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":        "",
		"missing token segment": "Bearer",
		"empty token":           "Bearer ",
		"garbage token":         "Bearer not.a.token",
		"wrong signature":       "Bearer " + otherToken,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, header)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"message":"not authenticated"}`, w.Body.String())
		})
	}
}

func TestAuthenticateAttachesAccountID(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 0)
	router := newAuthRouter(tokens, nil)

	token, err := tokens.Issue("acc-42")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"account_id":"acc-42"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 0)
	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	t.Run("allowed role passes", func(t *testing.T) {
		accounts := &stubAccounts{account: &models.Account{ID: "acc-1", Role: models.RoleAdmin}}
		router := newAuthRouter(tokens, accounts, models.RoleAdmin)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("customer hitting admin route is forbidden", func(t *testing.T) {
		accounts := &stubAccounts{account: &models.Account{ID: "acc-1", Role: models.RoleCustomer}}
		router := newAuthRouter(tokens, accounts, models.RoleAdmin)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"message":"operation not allowed"}`, w.Body.String())
	})

	t.Run("unknown account", func(t *testing.T) {
		accounts := &stubAccounts{account: nil}
		router := newAuthRouter(tokens, accounts, models.RoleAdmin)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
