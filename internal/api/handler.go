package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/gateway"
	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	accountService  *service.AccountService
	catalogService  *service.CatalogService
	checkoutService *service.CheckoutService
	reconciler      *service.Reconciler
	tokens          *auth.TokenManager
	accounts        AccountSource
}

// NewHandler creates a new HTTP handler
func NewHandler(
	accountService *service.AccountService,
	catalogService *service.CatalogService,
	checkoutService *service.CheckoutService,
	reconciler *service.Reconciler,
	tokens *auth.TokenManager,
	accounts AccountSource,
) *Handler {
	return &Handler{
		accountService:  accountService,
		catalogService:  catalogService,
		checkoutService: checkoutService,
		reconciler:      reconciler,
		tokens:          tokens,
		accounts:        accounts,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := Authenticate(h.tokens)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/profile", authenticated, h.profile)
	}

	products := router.Group("/products")
	{
		products.POST("", authenticated, RequireRole(h.accounts, models.RoleAdmin), h.createProduct)
		products.PATCH("/:id", authenticated, h.updateProduct)
		products.DELETE("/:id", authenticated, h.deleteProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
	}

	orders := router.Group("/orders")
	{
		orders.POST("/buy", authenticated, h.checkout)
		orders.GET("", authenticated, h.listOrders)
		orders.POST("/gateway-confirm", h.gatewayConfirm)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) profile(c *gin.Context) {
	account, err := h.accountService.Profile(c.Request.Context(), c.GetString(ctxAccountID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	product, err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": product})
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": product})
}

// checkout handles the order checkout
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.checkoutService.Checkout(c.Request.Context(), c.GetString(ctxAccountID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listOrders passes the gateway's paginated order list through
func (h *Handler) listOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	orders, err := h.checkoutService.ListOrders(c.Request.Context(), c.GetString(ctxAccountID), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", orders)
}

// gatewayConfirm handles the gateway's asynchronous confirmation webhook.
// The signature over the raw body is verified before the payload is trusted.
func (h *Handler) gatewayConfirm(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	signature := c.GetHeader("X-Gateway-Signature")
	if signature == "" || !h.reconciler.VerifySignature(body, signature) {
		util.WebhookDeliveriesTotal.WithLabelValues("bad_signature").Inc()
		c.JSON(http.StatusForbidden, gin.H{"message": "invalid signature"})
		return
	}

	var conf service.Confirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.reconciler.Apply(c.Request.Context(), &conf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "invalid request",
		"details": err.Error(),
	})
}

// respondError maps service error kinds to HTTP responses
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var notFoundErr *service.NotFoundError
	var conflictErr *service.IntegrityConflictError
	var gatewayErr *gateway.Error

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid request",
			"details": validationErr.Fields,
		})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusForbidden, gin.H{"message": "not authenticated"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "operation not allowed"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"message": conflictErr.Error()})
	case errors.Is(err, service.ErrOrderBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "try again later"})
	case errors.As(err, &gatewayErr):
		if gatewayErr.Kind == gateway.KindUnavailable {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "payment gateway unavailable"})
			return
		}
		// Rejection detail is forwarded verbatim for client remediation.
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "payment gateway rejected the charge",
			"details": json.RawMessage(gatewayErr.Body),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
