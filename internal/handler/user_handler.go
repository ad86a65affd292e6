package handler

import (
	"errors"
	"net/http"

	"sunnah_sayings/internal/model"
	"sunnah_sayings/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user registration and role lookups
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		serverError(c, "error", "Failed to add user", err)
		return
	}
	if !res.Created {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insertedId": res.User.ID})
}

func (h *UserHandler) GetRole(c *gin.Context) {
	role, err := h.service.GetRole(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		serverError(c, "error", "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(rg gin.IRoutes, authMW gin.HandlerFunc) {
	rg.POST("/users", h.Register)
	rg.GET("/users/:email/role", authMW, h.GetRole)
}
