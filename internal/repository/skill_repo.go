package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/schema"
	"gorm.io/gorm"
)

// SkillRepository 技能目录仓储
type SkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository 创建仓储
func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// GetByID 根据主键获取技能
func (r *SkillRepository) GetByID(ctx context.Context, id uint) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).First(&skill, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// GetByName 根据名称（精确匹配）获取技能
func (r *SkillRepository) GetByName(ctx context.Context, name string) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// GetByCategory 返回分类下最早创建的技能
func (r *SkillRepository) GetByCategory(ctx context.Context, category string) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("id").First(&skill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// Search 按名称模糊搜索（大小写不敏感）
func (r *SkillRepository) Search(ctx context.Context, keyword string) ([]schema.Skill, error) {
	var skills []schema.Skill
	pattern := "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("level DESC, xp DESC").
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("搜索技能失败: %w", err)
	}
	return skills, nil
}

// GetAll 获取所有技能
func (r *SkillRepository) GetAll(ctx context.Context) ([]schema.Skill, error) {
	var skills []schema.Skill
	err := r.db.WithContext(ctx).Order("id").Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return skills, nil
}

// Create 插入新技能；同名已存在时由唯一索引拒绝
func (r *SkillRepository) Create(ctx context.Context, skill *schema.Skill) error {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return fmt.Errorf("插入技能失败: %w", err)
	}
	return nil
}

// Save 按主键插入或更新，并刷新所有持有者的 total_xp
func (r *SkillRepository) Save(ctx context.Context, skill *schema.Skill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(skill).Error; err != nil {
			return fmt.Errorf("保存技能失败: %w", err)
		}
		owners := tx.Table("user_skills").Select("user_id").Where("skill_id = ?", skill.ID)
		return refreshTotalXP(tx, owners)
	})
}

// Delete 删除技能及其关联行
func (r *SkillRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners []uint
		if err := tx.Table("user_skills").Where("skill_id = ?", id).Pluck("user_id", &owners).Error; err != nil {
			return fmt.Errorf("查询技能持有者失败: %w", err)
		}
		for _, table := range []string{"user_skills", "project_skills"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE skill_id = ?", id).Error; err != nil {
				return fmt.Errorf("清理 %s 失败: %w", table, err)
			}
		}
		if err := tx.Delete(&schema.Skill{}, id).Error; err != nil {
			return fmt.Errorf("删除技能失败: %w", err)
		}
		if len(owners) == 0 {
			return nil
		}
		return refreshTotalXP(tx, owners)
	})
}

// refreshTotalXP 按关联表重算指定用户的 total_xp
// users 可以是 id 切片或子查询
func refreshTotalXP(tx *gorm.DB, users any) error {
	sum := tx.Table("user_skills").
		Select("COALESCE(SUM(skills.xp), 0)").
		Joins("JOIN skills ON skills.id = user_skills.skill_id").
		Where("user_skills.user_id = users.id")
	err := tx.Model(&schema.User{}).
		Where("id IN (?)", users).
		UpdateColumn("total_xp", sum).Error
	if err != nil {
		return fmt.Errorf("刷新用户总经验失败: %w", err)
	}
	return nil
}

// Exists 判断技能是否存在
func (r *SkillRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &schema.Skill{}, id)
}

// Count 统计技能数量
func (r *SkillRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Skill{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计技能失败: %w", err)
	}
	return count, nil
}

func exists(ctx context.Context, db *gorm.DB, model any, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询记录失败: %w", err)
	}
	return count > 0, nil
}

// preloadSkills 按目录顺序预加载技能
func preloadSkills(db *gorm.DB) *gorm.DB {
	return db.Preload("Skills", func(db *gorm.DB) *gorm.DB {
		return db.Order("skills.id")
	})
}

// replaceSkills 只改写关联表，不回写技能本身
func replaceSkills(tx *gorm.DB, owner any, skills []schema.Skill) error {
	assoc := tx.Model(owner).Omit("Skills.*").Association("Skills")
	if len(skills) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(skills)
}
