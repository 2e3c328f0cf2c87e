package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"user-api/internal/core/cache"
	"user-api/internal/domain"
	"user-api/internal/feature/user"
	"user-api/pkg/utils"
)

const cachePrefix = "user:"

type Hasher interface {
	Hash(pw string) (string, error)
	Check(pw, hashed string) bool
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type Option func(*UserService)

// WithCache 读路径走缓存；store 为 nil 等于不启用
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *UserService) {
		s.cache = store
		s.cacheTTL = ttl
	}
}

func WithRolePolicy(p RolePolicy) Option {
	return func(s *UserService) { s.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) { s.log = l }
}

type UserService struct {
	repo     domain.UserRepository
	hasher   Hasher
	tokens   TokenIssuer
	log      *zap.Logger
	policy   RolePolicy
	cache    cache.Store
	cacheTTL time.Duration
}

func NewUserService(repo domain.UserRepository, hasher Hasher, tokens TokenIssuer, opts ...Option) *UserService {
	s := &UserService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		log:      zap.NewNop(),
		policy:   RolePolicyAdminOnly,
		cacheTTL: 5 * time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// actor 发起请求的人；system 用于启动引导等内部调用，跳过角色策略
type actor struct {
	id     string
	system bool
}

func (s *UserService) Register(ctx context.Context, actorID string, in user.RegisterInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if in.Role == domain.RoleAdmin {
		if err := s.authorizeRole(ctx, actor{id: actorID}, user.MsgRoleElevated); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in user.RegisterInput) (*domain.User, error) {
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         in.Name,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		AvatarURL:    in.AvatarURL,
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	registrationsTotal.Inc()
	s.log.Info("user registered", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login 成功返回 token；邮箱不存在 NotFound，密码错 Unauthorized
func (s *UserService) Login(ctx context.Context, in user.LoginInput) (string, error) {
	u, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			loginsTotal.WithLabelValues("not_found").Inc()
			return "", domain.NotFound("User not found")
		}
		return "", err
	}
	if !s.hasher.Check(in.Password, u.PasswordHash) {
		loginsTotal.WithLabelValues("bad_credentials").Inc()
		s.log.Info("login rejected", zap.String("id", u.ID))
		return "", domain.Unauthorized("Invalid credentials")
	}
	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", domain.Internal("issue token failed", err)
	}
	loginsTotal.WithLabelValues("ok").Inc()
	return tok, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.cached(ctx, idKey(id), func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByID(ctx, id)
	})
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.cached(ctx, emailKey(email), func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByEmail(ctx, email)
	})
}

// RoleOf 鉴权用，直接读库
func (s *UserService) RoleOf(ctx context.Context, id string) (domain.Role, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *UserService) UpdateByID(ctx context.Context, actorID, id string, in user.UpdateInput) (*domain.User, error) {
	return s.update(ctx, actor{id: actorID}, domain.ByID(id), in)
}

func (s *UserService) UpdateByEmail(ctx context.Context, actorID, email string, in user.UpdateInput) (*domain.User, error) {
	return s.update(ctx, actor{id: actorID}, domain.ByEmail(email), in)
}

func (s *UserService) SetRole(ctx context.Context, actorID, id string, role domain.Role) (*domain.User, error) {
	return s.update(ctx, actor{id: actorID}, domain.ByID(id), user.UpdateInput{Role: &role})
}

func (s *UserService) update(ctx context.Context, a actor, key domain.Key, in user.UpdateInput) (*domain.User, error) {
	cur, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	patch := domain.UserPatch{
		Name:      in.Name,
		LastName:  in.LastName,
		Email:     in.Email,
		AvatarURL: in.AvatarURL,
	}
	if in.Role != nil && *in.Role != cur.Role {
		msg := user.MsgRoleChange
		if *in.Role == domain.RoleAdmin {
			msg = user.MsgRoleElevated
		}
		if err := s.authorizeRole(ctx, a, msg); err != nil {
			return nil, err
		}
		patch.Role = in.Role
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	u, err := s.repo.Update(ctx, domain.ByID(cur.ID), patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, idKey(cur.ID), emailKey(cur.Email), emailKey(u.Email))
	return u, nil
}

func (s *UserService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
			s.log.Warn("cache invalidate failed", zap.Error(err))
		}
	}
	s.log.Info("all users deleted", zap.Int64("count", n))
	return n, nil
}

func (s *UserService) DeleteByID(ctx context.Context, id string) error {
	return s.delete(ctx, domain.ByID(id))
}

func (s *UserService) DeleteByEmail(ctx context.Context, email string) error {
	return s.delete(ctx, domain.ByEmail(email))
}

func (s *UserService) delete(ctx context.Context, key domain.Key) error {
	cur, err := s.lookup(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, domain.ByID(cur.ID)); err != nil {
		return err
	}
	s.invalidate(ctx, idKey(cur.ID), emailKey(cur.Email))
	s.log.Info("user deleted", zap.String("id", cur.ID))
	return nil
}

// EnsureAdmin 启动引导：账号不存在则创建为 admin，存在则提升为 admin（不改密码）
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	cur, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.create(ctx, user.RegisterInput{
			Name:     "admin",
			LastName: "admin",
			Email:    email,
			Password: password,
			Role:     domain.RoleAdmin,
		})
	case err != nil:
		return nil, err
	case cur.Role == domain.RoleAdmin:
		return cur, nil
	}
	role := domain.RoleAdmin
	return s.update(ctx, actor{system: true}, domain.ByID(cur.ID), user.UpdateInput{Role: &role})
}

func (s *UserService) authorizeRole(ctx context.Context, a actor, msg string) error {
	if a.system || s.policy == RolePolicyOpen {
		return nil
	}
	denied := domain.Invalid([]domain.Violation{{Field: "role", Message: msg}})
	if a.id == "" {
		return denied
	}
	role, err := s.RoleOf(ctx, a.id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return denied
		}
		return err
	}
	if role != domain.RoleAdmin {
		return denied
	}
	return nil
}

func (s *UserService) hash(pw string) (string, error) {
	h, err := s.hasher.Hash(pw)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", domain.Invalid([]domain.Violation{{Field: "password", Message: user.MsgPasswordLong}})
	}
	if err != nil {
		return "", domain.Internal("hash password failed", err)
	}
	return h, nil
}

func (s *UserService) lookup(ctx context.Context, key domain.Key) (*domain.User, error) {
	if key.Field == domain.KeyEmail {
		return s.repo.FindByEmail(ctx, key.Value)
	}
	return s.repo.FindByID(ctx, key.Value)
}

func (s *UserService) cached(ctx context.Context, key string, load func(context.Context) (*domain.User, error)) (*domain.User, error) {
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, key, s.cacheTTL, load)
}

func (s *UserService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func idKey(id string) string       { return cachePrefix + "id:" + id }
func emailKey(email string) string { return cachePrefix + "email:" + email }
