package business

import (
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProfile 获取当前商家档案
func (h *Handler) GetProfile(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	response.Success(c, profile)
}

// UpdateProfileRequest 商家档案更新请求
type UpdateProfileRequest struct {
	Name       string   `json:"name" binding:"required"`
	CategoryID *uint    `json:"category_id"`
	CityID     *uint    `json:"city_id"`
	Address    string   `json:"address"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// UpdateProfile 更新当前商家档案
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.BusinessService.UpdateProfile(userID, service.UpdateBusinessProfileInput{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		CityID:     req.CityID,
		Address:    req.Address,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		respondServiceError(c, err, profileErrorRules, "failed to update profile")
		return
	}
	response.Success(c, profile)
}
