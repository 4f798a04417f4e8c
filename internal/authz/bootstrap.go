package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置员工角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "supporter",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "project_manager",
			Inherits: []string{"supporter"},
			Policies: []Policy{
				{Object: "/admin/packages", Action: "GET"},
				{Object: "/admin/packages/:id", Action: "GET"},
				{Object: "/admin/packages/:id/approve", Action: "POST"},
				{Object: "/admin/packages/:id/reject", Action: "POST"},
				{Object: "/admin/packages/:id/activate", Action: "POST"},
				{Object: "/admin/packages/:id/deactivate", Action: "POST"},
				{Object: "/admin/packages/reconcile", Action: "POST"},
				{Object: "/admin/vip-categories", Action: "*"},
				{Object: "/admin/vip-categories/:id", Action: "*"},
				{Object: "/admin/service-categories", Action: "*"},
				{Object: "/admin/service-categories/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "financial_manager",
			Inherits: []string{"supporter"},
			Policies: []Policy{
				{Object: "/admin/transactions", Action: "GET"},
				{Object: "/admin/transactions/:id", Action: "GET"},
				{Object: "/admin/loyalties", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "it_manager",
			Inherits: []string{"project_manager", "financial_manager"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
