package admin

import (
	"net/url"
	"strings"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetStaffRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前员工权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roles", err)
		return
	}
	policies, err := h.AuthzService.GetStaffPolicies(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load policies", err)
		return
	}

	response.Success(c, gin.H{
		"user_id":  userID,
		"role":     c.GetString("user_role"),
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list roles", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid role", err)
		return
	}

	h.recordAudit(c, "role-create", c.Request.URL.Path, models.JSON{"role": role})
	logger.Infow("authz_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		badRequest(c, nil)
		return
	}

	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "failed to delete role", err)
		return
	}

	h.recordAudit(c, "role-delete", c.Request.URL.Path, models.JSON{"role": role})
	logger.Infow("authz_role_deleted", "role", role)
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		badRequest(c, nil)
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "failed to load role policies", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "failed to grant policy", err)
		return
	}

	h.recordAudit(c, "policy-grant", c.Request.URL.Path, models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	logger.Infow("authz_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "failed to revoke policy", err)
		return
	}

	h.recordAudit(c, "policy-revoke", c.Request.URL.Path, models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	logger.Infow("authz_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// GetAuthzStaffRoles 获取员工的直授角色
func (h *Handler) GetAuthzStaffRoles(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.UserRepo.GetByID(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	if staff == nil {
		respondServiceError(c, service.ErrUserNotFound, userAdminErrorRules, "user not found")
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load staff roles", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzStaffRoles 设置员工的直授角色
func (h *Handler) SetAuthzStaffRoles(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.UserRepo.GetByID(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	if staff == nil {
		respondServiceError(c, service.ErrUserNotFound, userAdminErrorRules, "user not found")
		return
	}
	if !isStaffRole(staff.Role) {
		respondError(c, response.CodeBadRequest, "target user is not staff", nil)
		return
	}

	var req authzSetStaffRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.AuthzService.SetStaffRoles(staffID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "failed to set staff roles", err)
		return
	}

	h.recordAudit(c, "staff-roles-update", c.Request.URL.Path, models.JSON{
		"staff_id": staffID,
		"username": staff.Username,
		"roles":    req.Roles,
	})
	logger.Infow("authz_staff_roles_updated", "staff_id", staffID, "roles", req.Roles)
	response.Success(c, nil)
}

func isStaffRole(role string) bool {
	for _, staffRole := range constants.StaffRoles {
		if role == staffRole {
			return true
		}
	}
	return false
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
