package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/middleware"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/services"
)

type signupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Gender          string `json:"gender"`
	PhoneNumber     string `json:"phoneNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ProfilePicture  string `json:"profilePicture"`
	Role            string `json:"role"`
}

func CreateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(httperr.Invalid("invalid request payload"))
			return
		}

		user, err := u.CreateUser(c.Request.Context(), services.CreateUserInput(req))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "account created"))
	}
}

// Profile returns the stored account of the authenticated caller.
func Profile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.Error(httperr.New(httperr.Unauthenticated, "authentication required"))
			return
		}

		user, err := u.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}
