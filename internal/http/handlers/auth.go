package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/http/response"
	errs "github.com/estol/auth-service/internal/pkg/errors"
	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/services"
)

const (
	sessionCookie = "sid"
	stateCookie   = "oauth_state"
)

type AuthHandler struct {
	log          *logger.Logger
	registration services.RegistrationService
	sessions     services.SessionService
	strategies   map[string]services.LoginStrategy
	oauth        map[string]services.OAuthClient
}

// NewAuthHandler receives the verifier strategies as an explicit list built
// once at process start; dispatch is by name, nothing is registered globally.
func NewAuthHandler(
	log *logger.Logger,
	registration services.RegistrationService,
	sessions services.SessionService,
	strategies []services.LoginStrategy,
	oauthClients []services.OAuthClient,
) *AuthHandler {
	byName := make(map[string]services.LoginStrategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}
	byProvider := make(map[string]services.OAuthClient, len(oauthClients))
	for _, c := range oauthClients {
		byProvider[c.Provider()] = c
	}
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		registration: registration,
		sessions:     sessions,
		strategies:   byName,
		oauth:        byProvider,
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := ah.registration.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		ah.respondError(c, err)
		return
	}
	response.RespondCreated(c, u)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	local, ok := ah.strategies["local"]
	if !ok {
		response.Fail(c, http.StatusInternalServerError, "local login is not configured")
		return
	}
	u, err := local.AttemptLogin(c.Request.Context(), services.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		ah.respondError(c, err)
		return
	}
	ah.establishSession(c, u)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil && token != "" {
		if dErr := ah.sessions.Destroy(c.Request.Context(), token); dErr != nil {
			ah.log.Warn("Failed to destroy session", "error", dErr)
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, response.Envelope{Success: true, Message: "User logged out"})
}

// OAuthRedirect sends the browser to the provider's consent screen with a
// fresh state value bound to this browser through a short-lived cookie.
func (ah *AuthHandler) OAuthRedirect(c *gin.Context) {
	client, ok := ah.oauth[c.Param("provider")]
	if !ok {
		response.Fail(c, http.StatusNotFound, "unknown provider")
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, client.AuthCodeURL(state))
}

func (ah *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	client, ok := ah.oauth[provider]
	if !ok {
		response.Fail(c, http.StatusNotFound, "unknown provider")
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		response.Fail(c, http.StatusUnauthorized, "state mismatch")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Fail(c, http.StatusBadRequest, "missing authorization code")
		return
	}

	profile, err := client.FetchProfile(c.Request.Context(), code)
	if err != nil {
		ah.log.Warn("OAuth profile fetch failed", "provider", provider, "error", err)
		response.Fail(c, http.StatusUnauthorized, errs.ErrInvalidCredentials.Error())
		return
	}

	strategy, ok := ah.strategies[provider]
	if !ok {
		response.Fail(c, http.StatusInternalServerError, "provider login is not configured")
		return
	}
	u, err := strategy.AttemptLogin(c.Request.Context(), services.LoginInput{Profile: profile})
	if err != nil {
		ah.respondError(c, err)
		return
	}
	ah.establishSession(c, u)
}

func (ah *AuthHandler) establishSession(c *gin.Context, u *types.User) {
	token, err := ah.sessions.Establish(c.Request.Context(), u)
	if err != nil {
		ah.log.Error("Failed to establish session", "error", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(ah.sessions.TTL().Seconds()), "/", "", false, true)
	response.Success(c, "User logged in", u)
}

// respondError maps the core's typed failures onto the boundary's status
// codes; anything untyped is internal.
func (ah *AuthHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotRegistered), errors.Is(err, errs.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, err.Error())
	case errs.IsValidation(err):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errs.IsDuplicate(err):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
	default:
		ah.log.Error("Unexpected auth failure", "error", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
