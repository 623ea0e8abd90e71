package public

import (
	"github.com/storefront-api/internal/http/response"
	"github.com/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// GetProfile 查询用户资料
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, "", gin.H{"user": user})
}

// UpdateProfile 更新用户资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(userID, service.UpdateProfileInput{
		Username: req.Username,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, "profile updated", gin.H{"user": user})
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "oldPassword and newPassword are required")
		return
	}

	if err := h.userService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, "password updated", nil)
}
