package public

import (
	"strconv"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetProvinces 省份列表
func (h *Handler) GetProvinces(c *gin.Context) {
	provinces, err := h.CatalogService.ListProvinces()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load provinces", err)
		return
	}
	response.Success(c, provinces)
}

// GetCities 指定省份下属城市
func (h *Handler) GetCities(c *gin.Context) {
	provinceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || provinceID == 0 {
		badRequest(c, err)
		return
	}

	cities, err := h.CatalogService.ListCities(uint(provinceID))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cities", err)
		return
	}
	response.Success(c, cities)
}

// GetServiceCategories 商家服务分类列表
func (h *Handler) GetServiceCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListServiceCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load categories", err)
		return
	}
	response.Success(c, categories)
}

// GetBusinesses 商家目录（支持关键字与分类/城市筛选）
func (h *Handler) GetBusinesses(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))

	filter := repository.BusinessListFilter{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    c.Query("keyword"),
		CategoryID: uint(queryInt(c, "category_id", 0)),
		CityID:     uint(queryInt(c, "city_id", 0)),
	}

	businesses, total, err := h.BusinessService.ListBusinesses(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load businesses", err)
		return
	}
	response.SuccessWithPage(c, businesses, buildPagination(page, pageSize, total))
}

// GetActivePackages 当前生效套餐的公开列表
func (h *Handler) GetActivePackages(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))

	packages, total, err := h.PackageBuilderService.ListActive(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load packages", err)
		return
	}
	response.SuccessWithPage(c, packages, buildPagination(page, pageSize, total))
}
