package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the fixed body shape of the auth boundary: every failure is
// {success:false, message}, every login success carries the user view with
// the password hash already stripped upstream.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
}

func Success(c *gin.Context, message string, user any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, User: user})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
