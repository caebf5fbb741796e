package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estol/auth-service/internal/http/response"
	"github.com/estol/auth-service/internal/pkg/authctx"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

// GetMe returns the principal the session gate resolved for this request.
func (uh *UserHandler) GetMe(c *gin.Context) {
	u := authctx.GetPrincipal(c.Request.Context())
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	response.RespondOK(c, u)
}
