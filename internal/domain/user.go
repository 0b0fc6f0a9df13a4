package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:191" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	Age          *int      `json:"age"`
	Weight       *float64  `json:"weight"`
	Height       *float64  `json:"height"`
	Goal         string    `gorm:"size:255" json:"goal"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type CreateUserInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     string   `json:"role"`
	Age      *int     `json:"age"`
	Weight   *float64 `json:"weight"`
	Height   *float64 `json:"height"`
	Goal     string   `json:"goal"`
}

// UserPatch 部分更新：nil 字段保持原值
type UserPatch struct {
	Name   *string  `json:"name"`
	Email  *string  `json:"email"`
	Age    *int     `json:"age"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
	Goal   *string  `json:"goal"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	// FindConflicting 返回与 name 或 email 冲突的其他用户（排除 excludeID）
	FindConflicting(ctx context.Context, name, email, excludeID string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) (bool, error)
}
