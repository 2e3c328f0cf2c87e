package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch 部分更新；nil 字段保持不变
type UserPatch struct {
	Name         *string
	LastName     *string
	Email        *string
	PasswordHash *string
	AvatarURL    *string
	Role         *Role
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.LastName == nil && p.Email == nil &&
		p.PasswordHash == nil && p.AvatarURL == nil && p.Role == nil
}

// KeyField 单行定位方式（路径里的 id / username）
type KeyField string

const (
	KeyID    KeyField = "id"
	KeyEmail KeyField = "email"
)

type Key struct {
	Field KeyField
	Value string
}

func ByID(id string) Key       { return Key{Field: KeyID, Value: id} }
func ByEmail(email string) Key { return Key{Field: KeyEmail, Value: email} }

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, key Key, patch UserPatch) (*User, error)
	DeleteAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, key Key) error
}
