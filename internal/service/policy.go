package service

import "fmt"

// RolePolicy 角色分配策略
//   - admin_only：注册为 admin 或修改他人角色，调用者本身必须是 admin
//   - open：不限制
type RolePolicy string

const (
	RolePolicyAdminOnly RolePolicy = "admin_only"
	RolePolicyOpen      RolePolicy = "open"
)

func ParseRolePolicy(s string) (RolePolicy, error) {
	switch p := RolePolicy(s); p {
	case RolePolicyAdminOnly, RolePolicyOpen:
		return p, nil
	case "":
		return RolePolicyAdminOnly, nil
	}
	return "", fmt.Errorf("unknown role policy %q", s)
}
