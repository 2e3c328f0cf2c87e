package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"user-api/internal/domain"
	"user-api/internal/feature/user"
	"user-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Migrate() error { return r.db.AutoMigrate(&user.UserModel{}) }

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&ms).Error; err != nil {
		return nil, domain.Internal("list users failed", errors.Wrap(err, "select users"))
	}
	if len(ms) == 0 {
		return nil, domain.EmptyCollection("There are no users registered yet")
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, r.db, domain.ByID(id))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, r.db, domain.ByEmail(email))
}

func (r *UserRepo) find(ctx context.Context, db *gorm.DB, key domain.Key) (*domain.User, error) {
	col, err := column(key)
	if err != nil {
		return nil, err
	}
	var m user.UserModel
	err = db.WithContext(ctx).Where(col+" = ?", key.Value).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound(notFoundMsg(key))
	}
	if err != nil {
		return nil, domain.Internal("query user failed", errors.Wrapf(err, "select user by %s", col))
	}
	return m.ToDomain(), nil
}

// Create 先查重给出友好消息；并发下由唯一索引兜底
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return domain.Internal("create user failed", errors.Wrap(err, "count by email"))
	}
	if n > 0 {
		return domain.Conflict(conflictMsg(u.Email))
	}
	m := user.FromDomain(u)
	if m.ID == "" {
		m.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict(conflictMsg(u.Email))
		}
		return domain.Internal("create user failed", errors.Wrap(err, "insert user"))
	}
	*u = *m.ToDomain()
	return nil
}

// Update 行不存在返回 NotFound，表不变；返回刷新后的记录
func (r *UserRepo) Update(ctx context.Context, key domain.Key, patch domain.UserPatch) (*domain.User, error) {
	col, err := column(key)
	if err != nil {
		return nil, err
	}
	var out *domain.User
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := r.find(ctx, tx, key)
		if err != nil {
			return err
		}
		if !patch.Empty() {
			res := tx.Model(&user.UserModel{}).Where(col+" = ?", key.Value).Updates(user.Columns(patch))
			if res.Error != nil {
				if isDupKey(res.Error) && patch.Email != nil {
					return domain.Conflict(conflictMsg(*patch.Email))
				}
				return domain.Internal("update user failed", errors.Wrap(res.Error, "update user"))
			}
		}
		out, err = r.find(ctx, tx, domain.ByID(cur.ID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&user.UserModel{})
	if res.Error != nil {
		return 0, domain.Internal("delete users failed", errors.Wrap(res.Error, "delete all"))
	}
	if res.RowsAffected == 0 {
		return 0, domain.EmptyCollection("No users to delete")
	}
	return res.RowsAffected, nil
}

func (r *UserRepo) Delete(ctx context.Context, key domain.Key) error {
	col, err := column(key)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where(col+" = ?", key.Value).Delete(&user.UserModel{})
	if res.Error != nil {
		return domain.Internal("delete user failed", errors.Wrap(res.Error, "delete user"))
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(notFoundMsg(key))
	}
	return nil
}

// column 只允许白名单列
func column(key domain.Key) (string, error) {
	switch key.Field {
	case domain.KeyID:
		return "id", nil
	case domain.KeyEmail:
		return "email", nil
	}
	return "", domain.Internal(fmt.Sprintf("unknown lookup field %q", key.Field), nil)
}

func notFoundMsg(key domain.Key) string {
	if key.Field == domain.KeyEmail {
		return fmt.Sprintf("Username %s not found", key.Value)
	}
	return fmt.Sprintf("User with ID %s not found", key.Value)
}

func conflictMsg(email string) string {
	return fmt.Sprintf("User %s has already been registered", email)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 老驱动没做 TranslateError 时按消息判断
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
