package api

import (
	"net/http"

	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service auth.AuthUseCase
	logger  *zap.Logger
}

type loginRequest struct {
	PNO      string `json:"pno"`
	Password string `json:"password"`
}

func NewAuthHandler(service auth.AuthUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Register mounts login on public and logout on the session-protected group.
func (h *AuthHandler) Register(public, protected *gin.RouterGroup) {
	public.POST("/login", h.login)
	protected.POST("/logout", h.logout)
}

// RequireSession rejects requests without a valid bearer session token and
// stores the caller for the handlers that follow.
func (h *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.service.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			writeError(c, h.logger, err)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// login godoc
// @Summary  Log in with personnel number and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} auth.Session
// @Failure  401 {object} errorResponse
// @Router   /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	session, err := h.service.Login(c.Request.Context(), req.PNO, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization"))); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
