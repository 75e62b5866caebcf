package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/SkillSynth/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据主键获取用户（含技能）
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*schema.User, error) {
	var user schema.User
	err := preloadSkills(r.db.WithContext(ctx)).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// GetByUsername 用户名不唯一，返回最早创建的一个
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*schema.User, error) {
	var user schema.User
	err := preloadSkills(r.db.WithContext(ctx)).Where("username = ?", username).Order("id").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// GetAll 获取所有用户
func (r *UserRepository) GetAll(ctx context.Context) ([]schema.User, error) {
	return r.list(ctx, "")
}

func (r *UserRepository) ListLevelGreaterThan(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(ctx, "level > ?", level)
}

func (r *UserRepository) ListLevelLessThan(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(ctx, "level < ?", level)
}

func (r *UserRepository) ListLevelEqualTo(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(ctx, "level = ?", level)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]schema.User, error) {
	var users []schema.User
	db := preloadSkills(r.db.WithContext(ctx))
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return users, nil
}

// Save 保存用户标量字段并改写技能关联
func (r *UserRepository) Save(ctx context.Context, user *schema.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return fmt.Errorf("保存用户失败: %w", err)
		}
		if err := replaceSkills(tx, user, user.Skills); err != nil {
			return fmt.Errorf("保存用户技能失败: %w", err)
		}
		return nil
	})
}

// Delete 删除用户；共享技能保留
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_skills WHERE user_id = ?", id).Error; err != nil {
			return fmt.Errorf("清理用户技能失败: %w", err)
		}
		if err := tx.Delete(&schema.User{}, id).Error; err != nil {
			return fmt.Errorf("删除用户失败: %w", err)
		}
		return nil
	})
}

// Exists 判断用户是否存在
func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &schema.User{}, id)
}
