package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutorgate/internal/domain"
	"tutorgate/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger      *zap.Logger
	userServ    *service.UserService
	sessionServ *service.SessionService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, sessionServ *service.SessionService) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userServ:    userServ,
		sessionServ: sessionServ,
	}
}

// SignIn maneja POST /auth/sign-in.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign-in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("sign-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
		return
	}

	h.issueSession(c, user, http.StatusOK)
}

// SignUp maneja POST /auth/sign-up.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign-up request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.SignUp(c.Request.Context(), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("sign-up failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign up"})
			return
		}
	}

	h.issueSession(c, user, http.StatusCreated)
}

// ProviderSignIn maneja POST /auth/sign-in/provider para login federado.
// Asume que el callback del proveedor ya verifico subject y email.
func (h *AuthHandler) ProviderSignIn(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider" binding:"required"`
		Subject     string `json:"subject" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid provider sign-in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.ProviderSignIn(c.Request.Context(), service.ProviderSignInInput{
		Provider:    req.Provider,
		Subject:     req.Subject,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProviderInvalid),
			errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("provider sign-in failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
			return
		}
	}

	h.issueSession(c, user, http.StatusOK)
}

// SignOut maneja POST /auth/sign-out. Siempre responde success para que el
// cliente pueda limpiar su estado local aunque el token ya fuera invalido.
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := bearerToken(c)
	if token != "" {
		if err := h.sessionServ.Revoke(token); err != nil {
			h.logger.Warn("session revoke failed", zap.Error(err))
		} else {
			h.logger.Info("session revoked")
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session maneja GET /auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	token := bearerToken(c)
	session, ok := h.sessionServ.Resolve(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session.User, "expires_at": session.ExpiresAt})
}

// Health maneja GET /health.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tutorgate"})
}

func (h *AuthHandler) issueSession(c *gin.Context, user domain.User, status int) {
	session, err := h.sessionServ.Issue(user)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue session"})
		return
	}
	h.logger.Info("session issued", zap.String("user_id", user.ID))
	c.JSON(status, gin.H{
		"token":      session.Token,
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}
