package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	MemberID string `gorm:"not null;uniqueIndex:uniq_users_member_id"`
	Email    string
	Phone    string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return User{}, translateUniqueViolation(result.Error)
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) List(ctx context.Context, params ListParams) ([]User, int64, error) {
	search := func(db *gorm.DB) *gorm.DB {
		if params.Search == "" {
			return db
		}
		pattern := likePattern(params.Search)
		return db.Where("name ILIKE ? OR member_id ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&User{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	result := d.db.WithContext(ctx).Scopes(search, paginate(params)).
		Order("created_at DESC").Order("id DESC").
		Find(&users)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return users, total, nil
}
