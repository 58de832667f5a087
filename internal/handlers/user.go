package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/services"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

type userProfileBody struct {
	IdentityType   string `json:"identity_type"`
	IdentityNumber string `json:"identity_number"`
	Address        string `json:"address"`
}

type createUserRequest struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Password string           `json:"password" binding:"required"`
	Profile  *userProfileBody `json:"profile"`
}

type updateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Password *string          `json:"password"`
	Profile  *userProfileBody `json:"profile"`
}

func (b *userProfileBody) toProfile() *types.UserProfile {
	if b == nil {
		return nil
	}
	return &types.UserProfile{
		IdentityType:   b.IdentityType,
		IdentityNumber: b.IdentityNumber,
		Address:        b.Address,
	}
}

// POST /api/v1/users
func (uh *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), req.Name, req.Email, req.Password, req.Profile.toProfile())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, user)
}

// GET /api/v1/users
func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, users)
}

// GET /api/v1/users/:userId
func (uh *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := uh.userService.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, user)
}

// PUT /api/v1/users/:userId
func (uh *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile.toProfile(),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, user)
}

// DELETE /api/v1/users/:userId
func (uh *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	if err := uh.userService.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "User deleted"})
}
