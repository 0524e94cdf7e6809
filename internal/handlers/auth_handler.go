package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/middleware"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

// CookieConfig controls the token cookie written on login.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login returns a signed token and also stores it in an http-only cookie.
func Login(u *services.UserService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(httperr.Invalid("email and password are required"))
			return
		}

		token, user, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.Error(err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, token, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"token": token,
			"user":  user,
		}, "login successful"))
	}
}

func Logout(cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", cookie.Secure, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out successfully"))
	}
}
