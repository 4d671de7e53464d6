package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer loads the role model and the static role policy from disk.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath, policyPath)
}
