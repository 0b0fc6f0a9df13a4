package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fitness-tracker/internal/core/auth"
	"fitness-tracker/internal/domain"
	"fitness-tracker/pkg/utils"
)

const msgInvalidCredentials = "invalid credentials"

type AuthService struct {
	users *UserService
	store domain.Store
	jwt   *auth.JWTer
	log   *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store domain.Store, users *UserService, jwt *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, store: store, jwt: jwt, log: log}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session 注册/登录的返回
type Session struct {
	UserID string       `json:"userId"`
	Token  string       `json:"token"`
	User   *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, domain.Validation("username, email and password are required")
	}
	u, err := s.users.Create(ctx, domain.CreateUserInput{
		Name:     in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login 用户不存在与密码错误返回同一错误，且都做一次 bcrypt 比较
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	name := strings.TrimSpace(in.Username)
	if name == "" || in.Password == "" {
		return nil, domain.Validation("username and password are required")
	}
	u, err := s.store.Users().FindByName(ctx, name)
	if err != nil {
		return nil, internal("login failed", err)
	}
	if u == nil || u.PasswordHash == "" {
		utils.CheckPassword(in.Password, s.dummy())
		return nil, domain.Auth(msgInvalidCredentials)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, domain.Auth(msgInvalidCredentials)
	}
	if utils.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, in.Password)
	}
	return s.session(u)
}

// Verify token → Caller；用户已被删除的 token 同样拒绝
func (s *AuthService) Verify(ctx context.Context, token string) (domain.Caller, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return domain.Caller{}, domain.Auth("invalid token")
	}
	u, err := s.store.Users().FindByID(ctx, claims.UID)
	if err != nil {
		return domain.Caller{}, internal("verify token failed", err)
	}
	if u == nil {
		return domain.Caller{}, domain.Auth("user not found")
	}
	// 角色以库内为准，降权立即生效
	return domain.Caller{UserID: u.ID, Role: u.Role}, nil
}

// EnsureAdmin 管理端启动时保证存在一个管理员；已存在同名用户时只校正角色
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, nil
	}
	u, err := s.store.Users().FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, false, internal("ensure admin failed", err)
	}
	if u != nil {
		if u.Role == domain.RoleAdmin {
			return u, false, nil
		}
		u.Role = domain.RoleAdmin
		if err := s.store.Users().Update(ctx, u); err != nil {
			return nil, false, internal("ensure admin failed", err)
		}
		s.log.Warn("existing user promoted to admin", zap.String("user_id", u.ID))
		return u, false, nil
	}
	if password == "" {
		return nil, false, domain.Validation("bootstrap admin password is required")
	}
	u, err = s.users.Create(ctx, domain.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	return &Session{UserID: u.ID, Token: tok, User: u}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("fitness-tracker-dummy")
	})
	return s.dummyHash
}

// rehash 登录成功后按当前 cost 重新哈希；失败只记日志，不影响登录
func (s *AuthService) rehash(ctx context.Context, u *domain.User, pw string) {
	hash, err := utils.HashPassword(pw)
	if err == nil {
		u.PasswordHash = hash
		err = s.store.Users().Update(ctx, u)
	}
	if err != nil {
		s.log.Warn("password rehash failed", zap.String("user_id", u.ID), zap.Error(err))
		return
	}
	s.log.Info("password rehashed", zap.String("user_id", u.ID))
}
