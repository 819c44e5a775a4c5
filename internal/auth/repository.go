// internal/auth/repository.go
package auth

import (
	"context"
	"errors"

	"tally/internal/users"

	"gorm.io/gorm"
)

type Repository interface {
	CreateUser(ctx context.Context, user *users.User) error
	GetUserByAccount(ctx context.Context, account string) (*users.User, error)
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	AccountExists(ctx context.Context, account string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateUser(ctx context.Context, user *users.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	return nil
}

func (r *repository) getUserBy(ctx context.Context, column, value string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByAccount(ctx context.Context, account string) (*users.User, error) {
	return r.getUserBy(ctx, "account", account)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *repository) GetUserByPhone(ctx context.Context, phone string) (*users.User, error) {
	return r.getUserBy(ctx, "phone", phone)
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *repository) existsBy(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&users.User{}).Where(column+" = ?", value).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AccountExists(ctx context.Context, account string) (bool, error) {
	return r.existsBy(ctx, "account", account)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.existsBy(ctx, "email", email)
}

func (r *repository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return r.existsBy(ctx, "phone", phone)
}
