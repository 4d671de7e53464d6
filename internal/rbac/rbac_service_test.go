package rbac

import (
	"path/filepath"
	"testing"

	"go-payroll/internal/rbac/infra"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

	m, err := model.NewModelFromString(modelText)
	require.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)

	_, err = e.AddPolicy("EMPLOYEE", "payroll", "read")
	require.NoError(t, err)
	_, err = e.AddPolicy("PAYROLL_OFFICER", "payroll", "*")
	require.NoError(t, err)
	_, err = e.AddGroupingPolicy("PAYROLL_OFFICER", "EMPLOYEE")
	require.NoError(t, err)

	return e
}

func TestRBACService_Enforce(t *testing.T) {
	service := NewService(newTestEnforcer(t))

	tests := []struct {
		name    string
		req     EnforceRequest
		allowed bool
	}{
		{"employee reads payroll", EnforceRequest{Role: "EMPLOYEE", CompanyID: "c-1", Resource: "payroll", Action: "read"}, true},
		{"employee cannot approve", EnforceRequest{Role: "EMPLOYEE", CompanyID: "c-1", Resource: "payroll", Action: "approve"}, false},
		{"officer approves through wildcard", EnforceRequest{Role: "PAYROLL_OFFICER", CompanyID: "c-1", Resource: "payroll", Action: "approve"}, true},
		{"officer inherits employee read", EnforceRequest{Role: "PAYROLL_OFFICER", CompanyID: "c-1", Resource: "payroll", Action: "read"}, true},
		{"unknown role", EnforceRequest{Role: "GUEST", CompanyID: "c-1", Resource: "payroll", Action: "read"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := service.Enforce(tt.req)
			assert.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestStaticPolicy(t *testing.T) {
	enforcer, err := infra.NewEnforcer(
		filepath.Join("infra", "model.conf"),
		filepath.Join("infra", "policy.csv"),
	)
	require.NoError(t, err)
	service := NewService(enforcer)

	check := func(role, resource, action string) bool {
		allowed, err := service.Enforce(EnforceRequest{Role: role, CompanyID: "c-1", Resource: resource, Action: action})
		require.NoError(t, err)
		return allowed
	}

	assert.True(t, check(RoleHRAdmin, "employee", "delete"))
	assert.True(t, check(RoleHRAdmin, "payroll", "read"))
	assert.True(t, check(RolePayrollOfficer, "payroll", "generate"))
	assert.True(t, check(RolePayrollOfficer, "holiday", "read"))
	assert.False(t, check(RolePayrollOfficer, "employee", "create"))
	assert.True(t, check(RoleEmployee, "attendance", "read"))
	assert.False(t, check(RoleEmployee, "attendance", "create"))
	assert.False(t, check(RoleEmployee, "payroll", "approve"))
}

func TestIsSelfService(t *testing.T) {
	service := NewService(newTestEnforcer(t))

	assert.True(t, service.IsSelfService(RoleEmployee))
	assert.False(t, service.IsSelfService(RolePayrollOfficer))
	assert.False(t, service.IsSelfService(RoleHRAdmin))
}
