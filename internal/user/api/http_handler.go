package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/user/domain"
	"github.com/ridloal/fashion-dropship-store/internal/user/repository"
	"github.com/ridloal/fashion-dropship-store/internal/user/service"
)

const (
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAuthError          = "AUTH_ERROR"
)

type UserHandler struct {
	userService service.UserService
	auth        *AuthMiddleware
}

func NewUserHandler(us service.UserService, auth *AuthMiddleware) *UserHandler {
	return &UserHandler{userService: us, auth: auth}
}

// RegisterRoutes mounts /auth. The caller's order history lives in the order handler.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.GET("/me", h.auth.RequireAuth(), h.Me)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Register: bad request: %v", err)
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			httpx.Fail(c, http.StatusConflict, CodeUserExists, err.Error())
			return
		}
		logger.Error("Register: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeAuthError, "Failed to register user")
		return
	}

	httpx.OK(c, http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Login: bad request: %v", err)
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	response, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.Fail(c, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
			return
		}
		logger.Error("Login: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeAuthError, "Failed to login")
		return
	}

	httpx.OK(c, http.StatusOK, response)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeUserNotFound, "User not found")
			return
		}
		logger.Error("Me: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeAuthError, "Failed to fetch user")
		return
	}
	httpx.OK(c, http.StatusOK, user)
}
