package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceStaffWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/packages/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetStaffRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	allow, err := svc.EnforceStaff(1, "/api/v1/admin/packages/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceStaff(1, "/api/v1/admin/packages/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetStaffRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/packages", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("finance", "/admin/transactions", "GET"); err != nil {
		t.Fatalf("grant finance policy failed: %v", err)
	}

	if err := svc.SetStaffRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ops" {
		t.Fatalf("roles want [role:ops], got=%v", roles)
	}

	if err := svc.SetStaffRoles(2, []string{"finance"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("roles want [role:finance], got=%v", roles)
	}

	allow, err := svc.EnforceStaff(2, "/admin/packages", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceStaff(2, "/admin/transactions", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/packages/:id", want: "/admin/packages/:id"},
		{in: "/admin/packages/:id", want: "/admin/packages/:id"},
		{in: "admin/users", want: "/admin/users"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:supporter":         true,
		"role:project_manager":   true,
		"role:financial_manager": true,
		"role:it_manager":        true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetStaffRoles(3, []string{"project_manager"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	allow, err := svc.EnforceStaff(3, "/admin/user-login-logs", "GET")
	if err != nil {
		t.Fatalf("enforce inherited readonly failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected inherited supporter permission")
	}

	allow, err = svc.EnforceStaff(3, "/admin/packages/9/approve", "POST")
	if err != nil {
		t.Fatalf("enforce approve failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected project manager approve permission")
	}

	allow, err = svc.EnforceStaff(3, "/admin/users/batch-status", "PUT")
	if err != nil {
		t.Fatalf("enforce write failed: %v", err)
	}
	if allow {
		t.Fatalf("expected project manager deny user writes")
	}
}

func TestEnforceRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	allow, err := svc.EnforceRole("financial_manager", "/api/v1/admin/transactions", "GET")
	if err != nil {
		t.Fatalf("enforce role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected financial manager read transactions")
	}

	allow, err = svc.EnforceRole("financial_manager", "/api/v1/admin/packages/9/approve", "POST")
	if err != nil {
		t.Fatalf("enforce role deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected financial manager deny package approve")
	}
}
