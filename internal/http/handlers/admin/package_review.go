package admin

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"

	"github.com/gin-gonic/gin"
)

// ListPendingPackages 待审核套餐列表
func (h *Handler) ListPendingPackages(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))

	packages, total, err := h.PackageLifecycleService.ListPending(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list pending packages", err)
		return
	}
	response.SuccessWithPage(c, packages, buildPagination(page, pageSize, total))
}

// GetPackageDetail 审核视角的套餐详情
func (h *Handler) GetPackageDetail(c *gin.Context) {
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageRepo.GetByIDWithDetails(packageID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load package", err)
		return
	}
	if pkg == nil {
		respondError(c, response.CodeNotFound, "package not found", nil)
		return
	}
	response.Success(c, pkg)
}

// ApprovePackage 审核通过套餐；满足条件时立即激活，否则排队等待
func (h *Handler) ApprovePackage(c *gin.Context) {
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.PackageLifecycleService.Approve(packageID)
	if err != nil {
		respondServiceError(c, err, packageReviewErrorRules, "failed to approve package")
		return
	}

	h.recordAudit(c, "package-approve", c.Request.URL.Path, models.JSON{
		"package_id": packageID,
		"activated":  result.Activated,
	})
	response.SuccessWithMsg(c, result.Message, gin.H{
		"package":   result.Package,
		"activated": result.Activated,
	})
}

// RejectPackage 驳回套餐
func (h *Handler) RejectPackage(c *gin.Context) {
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageLifecycleService.Reject(packageID)
	if err != nil {
		respondServiceError(c, err, packageReviewErrorRules, "failed to reject package")
		return
	}

	h.recordAudit(c, "package-reject", c.Request.URL.Path, models.JSON{"package_id": packageID})
	response.SuccessWithMsg(c, "package rejected", pkg)
}

// ActivatePackage 管理员手工激活套餐
func (h *Handler) ActivatePackage(c *gin.Context) {
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageLifecycleService.AdminOverrideActivate(packageID)
	if err != nil {
		respondServiceError(c, err, packageReviewErrorRules, "failed to activate package")
		return
	}

	h.recordAudit(c, "package-activate", c.Request.URL.Path, models.JSON{"package_id": packageID})
	response.SuccessWithMsg(c, "package activated", pkg)
}

// DeactivatePackage 管理员手工停用套餐
func (h *Handler) DeactivatePackage(c *gin.Context) {
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageLifecycleService.AdminOverrideDeactivate(packageID)
	if err != nil {
		respondServiceError(c, err, packageReviewErrorRules, "failed to deactivate package")
		return
	}

	h.recordAudit(c, "package-deactivate", c.Request.URL.Path, models.JSON{"package_id": packageID})
	response.SuccessWithMsg(c, "package deactivated", pkg)
}

// ReconcilePackages 手工触发一轮套餐对账
func (h *Handler) ReconcilePackages(c *gin.Context) {
	result, err := h.PackageSchedulerService.Reconcile(time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "reconcile failed", err)
		return
	}

	h.recordAudit(c, "package-reconcile", c.Request.URL.Path, models.JSON{
		"deactivated": result.Deactivated,
		"activated":   result.Activated,
	})
	response.Success(c, result)
}
