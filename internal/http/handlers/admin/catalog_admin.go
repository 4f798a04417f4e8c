package admin

import (
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// ServiceCategoryRequest 服务分类请求
type ServiceCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListServiceCategories 服务分类列表
func (h *Handler) ListServiceCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListServiceCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list categories", err)
		return
	}
	response.Success(c, categories)
}

// CreateServiceCategory 创建服务分类
func (h *Handler) CreateServiceCategory(c *gin.Context) {
	var req ServiceCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.CatalogService.CreateServiceCategory(service.ServiceCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to create category")
		return
	}

	h.recordAudit(c, "service-category-create", c.Request.URL.Path, models.JSON{"category_id": category.ID})
	response.Success(c, category)
}

// UpdateServiceCategory 更新服务分类
func (h *Handler) UpdateServiceCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ServiceCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.CatalogService.UpdateServiceCategory(categoryID, service.ServiceCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to update category")
		return
	}

	h.recordAudit(c, "service-category-update", c.Request.URL.Path, models.JSON{"category_id": categoryID})
	response.Success(c, category)
}

// DeleteServiceCategory 删除服务分类
func (h *Handler) DeleteServiceCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.CatalogService.DeleteServiceCategory(categoryID); err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to delete category")
		return
	}

	h.recordAudit(c, "service-category-delete", c.Request.URL.Path, models.JSON{"category_id": categoryID})
	response.SuccessWithMsg(c, "category deleted", nil)
}

// VipCategoryRequest VIP 体验分类请求
type VipCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	VipType     string `json:"vip_type" binding:"required"`
	CategoryID  *uint  `json:"category_id"`
}

// ListVipCategories VIP 体验分类列表
func (h *Handler) ListVipCategories(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.VipExperienceCategoryListFilter{
		Page:       page,
		PageSize:   pageSize,
		VipType:    c.Query("vip_type"),
		CategoryID: uint(queryInt(c, "category_id", 0)),
		Keyword:    c.Query("keyword"),
	}

	categories, total, err := h.CatalogService.ListVipCategories(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list vip categories", err)
		return
	}
	response.SuccessWithPage(c, categories, buildPagination(page, pageSize, total))
}

// CreateVipCategory 创建 VIP 体验分类
func (h *Handler) CreateVipCategory(c *gin.Context) {
	var req VipCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.CatalogService.CreateVipCategory(service.VipCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		VipType:     req.VipType,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to create vip category")
		return
	}

	h.recordAudit(c, "vip-category-create", c.Request.URL.Path, models.JSON{"vip_category_id": category.ID})
	response.Success(c, category)
}

// UpdateVipCategory 更新 VIP 体验分类
func (h *Handler) UpdateVipCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req VipCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.CatalogService.UpdateVipCategory(categoryID, service.VipCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		VipType:     req.VipType,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to update vip category")
		return
	}

	h.recordAudit(c, "vip-category-update", c.Request.URL.Path, models.JSON{"vip_category_id": categoryID})
	response.Success(c, category)
}

// DeleteVipCategory 删除 VIP 体验分类
func (h *Handler) DeleteVipCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.CatalogService.DeleteVipCategory(categoryID); err != nil {
		respondServiceError(c, err, catalogAdminErrorRules, "failed to delete vip category")
		return
	}

	h.recordAudit(c, "vip-category-delete", c.Request.URL.Path, models.JSON{"vip_category_id": categoryID})
	response.SuccessWithMsg(c, "vip category deleted", nil)
}
