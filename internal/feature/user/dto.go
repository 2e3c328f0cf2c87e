package user

import (
	"user-api/internal/core/validate"
	"user-api/internal/domain"
)

const (
	MsgRoleEnum     = `Only "user" or "admin" roles are allowed`
	MsgRoleElevated = `Only admins can set the role to "admin"`
	MsgRoleChange   = "Only admins can change a user's role"
	MsgPasswordLong = "Password must be at most 72 bytes long"
)

var roleRules = []validate.Rule{
	validate.String(MsgRoleEnum),
	validate.OneOf(MsgRoleEnum, string(domain.RoleUser), string(domain.RoleAdmin)),
}

var RegisterShape = validate.Shape{Name: "register", Fields: []validate.Field{
	{Name: "name", Rules: []validate.Rule{
		validate.Required("Name cannot be empty"),
		validate.String("Name must be a string"),
	}},
	{Name: "lastName", Rules: []validate.Rule{
		validate.Required("Last name cannot be empty"),
		validate.String("Last name must be a string"),
	}},
	{Name: "email", Rules: []validate.Rule{
		validate.Required("Email cannot be empty"),
		validate.Email("Email must be valid"),
	}},
	{Name: "password", Rules: []validate.Rule{
		validate.Required("Password cannot be empty"),
		validate.String("Password must be a string"),
		validate.MinLen(8, "Password must be at least 8 characters long"),
	}},
	{Name: "avatarUrl", Optional: true, Rules: []validate.Rule{
		validate.URL("Avatar URL must be a valid URL"),
	}},
	{Name: "role", Optional: true, Rules: roleRules},
}}

var UpdateShape = RegisterShape.Partial("update")

var LoginShape = validate.Shape{Name: "login", Fields: []validate.Field{
	{Name: "email", Rules: []validate.Rule{
		validate.Required("Email cannot be empty"),
		validate.String("Email must be a string"),
	}},
	{Name: "password", Rules: []validate.Rule{
		validate.Required("Password cannot be empty"),
		validate.String("Password must be a string"),
	}},
}}

var RoleShape = validate.Shape{Name: "role", Fields: []validate.Field{
	{Name: "role", Rules: append([]validate.Rule{validate.Required("Role cannot be empty")}, roleRules...)},
}}

type RegisterInput struct {
	Name      string
	LastName  string
	Email     string
	Password  string
	AvatarURL *string
	Role      domain.Role
}

// UpdateInput nil = 请求里没带该字段
type UpdateInput struct {
	Name      *string
	LastName  *string
	Email     *string
	Password  *string
	AvatarURL *string
	Role      *domain.Role
}

type LoginInput struct {
	Email    string
	Password string
}

func ParseRegister(raw map[string]any) (RegisterInput, error) {
	if vs := RegisterShape.Apply(raw); len(vs) > 0 {
		return RegisterInput{}, domain.Invalid(vs)
	}
	in := RegisterInput{
		Name:      raw["name"].(string),
		LastName:  raw["lastName"].(string),
		Email:     raw["email"].(string),
		Password:  raw["password"].(string),
		AvatarURL: optString(raw, "avatarUrl"),
		Role:      domain.RoleUser,
	}
	if r := optString(raw, "role"); r != nil {
		in.Role = domain.Role(*r)
	}
	return in, nil
}

func ParseUpdate(raw map[string]any) (UpdateInput, error) {
	if vs := UpdateShape.Apply(raw); len(vs) > 0 {
		return UpdateInput{}, domain.Invalid(vs)
	}
	in := UpdateInput{
		Name:      optString(raw, "name"),
		LastName:  optString(raw, "lastName"),
		Email:     optString(raw, "email"),
		Password:  optString(raw, "password"),
		AvatarURL: optString(raw, "avatarUrl"),
	}
	if r := optString(raw, "role"); r != nil {
		role := domain.Role(*r)
		in.Role = &role
	}
	return in, nil
}

func ParseLogin(raw map[string]any) (LoginInput, error) {
	if vs := LoginShape.Apply(raw); len(vs) > 0 {
		return LoginInput{}, domain.Invalid(vs)
	}
	return LoginInput{Email: raw["email"].(string), Password: raw["password"].(string)}, nil
}

func ParseRole(raw map[string]any) (domain.Role, error) {
	if vs := RoleShape.Apply(raw); len(vs) > 0 {
		return "", domain.Invalid(vs)
	}
	return domain.Role(raw["role"].(string)), nil
}

func optString(raw map[string]any, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &s
}
