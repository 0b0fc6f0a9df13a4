package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/pkg/utils"
)

type UserService struct {
	store domain.Store
	log   *zap.Logger
}

func NewUserService(store domain.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, internal("list users failed", err)
	}
	return us, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, internal("get user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound(msgUserNotFound)
	}
	return u, nil
}

func validateProfile(age *int, weight, height *float64) error {
	if age != nil && *age < 0 {
		return domain.Validation("age must be >= 0")
	}
	if weight != nil && *weight < 0 {
		return domain.Validation("weight must be >= 0")
	}
	if height != nil && *height < 0 {
		return domain.Validation("height must be >= 0")
	}
	return nil
}

// Create name、email 必填；password 可选（管理端建档），role 缺省为 user
func (s *UserService) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, domain.Validation("name and email are required")
	}
	if !validEmail(email) {
		return nil, domain.Validation("invalid email %q", email)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, domain.Validation("invalid role %q", role)
	}
	if err := validateProfile(in.Age, in.Weight, in.Height); err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:     utils.NewID(),
		Name:   name,
		Email:  email,
		Role:   role,
		Age:    in.Age,
		Weight: in.Weight,
		Height: in.Height,
		Goal:   strings.TrimSpace(in.Goal),
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, domain.Validation("invalid password: %v", err)
		}
		u.PasswordHash = hash
	}

	users := s.store.Users()
	existing, err := users.FindConflicting(ctx, name, email, "")
	if err != nil {
		return nil, internal("create user failed", err)
	}
	if existing != nil {
		return nil, domain.Conflict("user already exists")
	}
	// 并发下仍可能撞唯一索引，仓储层会转成 Conflict
	if err := users.Create(ctx, u); err != nil {
		return nil, internal("create user failed", err)
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

// Update 先读后合并：未传字段保持原值，再校验唯一性
func (s *UserService) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := trimPtr(p.Name); v != nil {
		u.Name = *v
	}
	if v := trimPtr(p.Email); v != nil {
		u.Email = strings.ToLower(*v)
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Weight != nil {
		u.Weight = p.Weight
	}
	if p.Height != nil {
		u.Height = p.Height
	}
	if v := trimPtr(p.Goal); v != nil {
		u.Goal = *v
	}

	if u.Name == "" || u.Email == "" {
		return nil, domain.Validation("name and email are required")
	}
	if !validEmail(u.Email) {
		return nil, domain.Validation("invalid email %q", u.Email)
	}
	if err := validateProfile(u.Age, u.Weight, u.Height); err != nil {
		return nil, err
	}

	other, err := s.store.Users().FindConflicting(ctx, u.Name, u.Email, u.ID)
	if err != nil {
		return nil, internal("update user failed", err)
	}
	if other != nil {
		return nil, domain.Conflict("user already exists")
	}
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, internal("update user failed", err)
	}
	return u, nil
}

// Delete 事务内级联：组合行 → 训练 → 用户
func (s *UserService) Delete(ctx context.Context, id string) error {
	var workouts, rows int64
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		ids, err := tx.Workouts().IDsByUser(ctx, id)
		if err != nil {
			return err
		}
		if rows, err = tx.Compositions().DeleteByWorkouts(ctx, ids...); err != nil {
			return err
		}
		if workouts, err = tx.Workouts().DeleteByUser(ctx, id); err != nil {
			return err
		}
		ok, err := tx.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(msgUserNotFound)
		}
		return nil
	})
	if err != nil {
		return internal("delete user failed", err)
	}
	s.log.Info("user deleted",
		zap.String("user_id", id),
		zap.Int64("workouts", workouts),
		zap.Int64("workout_exercises", rows),
	)
	return nil
}
