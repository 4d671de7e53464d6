package rbac

const (
	RoleHRAdmin        = "HR_ADMIN"
	RolePayrollOfficer = "PAYROLL_OFFICER"
	RoleEmployee       = "EMPLOYEE"
)

type EnforceRequest struct {
	Role      string `json:"role" binding:"required"`
	CompanyID string `json:"company_id" binding:"required"`
	Resource  string `json:"resource" binding:"required"`
	Action    string `json:"action" binding:"required"`
}
