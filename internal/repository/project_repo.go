package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/SkillSynth/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository 项目仓储
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建仓储
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID 根据主键获取项目（含技能）
func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*schema.Project, error) {
	var project schema.Project
	err := preloadSkills(r.db.WithContext(ctx)).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

// GetByName 根据名称获取项目
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*schema.Project, error) {
	var project schema.Project
	err := preloadSkills(r.db.WithContext(ctx)).Where("name = ?", name).Order("id").First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

// GetAll 获取所有项目
func (r *ProjectRepository) GetAll(ctx context.Context) ([]schema.Project, error) {
	return r.list(ctx, "")
}

func (r *ProjectRepository) ListExperienceGreaterThan(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(ctx, "experience_level > ?", level)
}

// ListExperienceLessThan 0 表示未设置经验要求，不计入
func (r *ProjectRepository) ListExperienceLessThan(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(ctx, "experience_level < ? AND experience_level <> 0", level)
}

func (r *ProjectRepository) ListExperienceEqualTo(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(ctx, "experience_level = ?", level)
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...any) ([]schema.Project, error) {
	var projects []schema.Project
	db := preloadSkills(r.db.WithContext(ctx))
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return projects, nil
}

// Save 保存项目标量字段并改写技能关联
func (r *ProjectRepository) Save(ctx context.Context, project *schema.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return fmt.Errorf("保存项目失败: %w", err)
		}
		if err := replaceSkills(tx, project, project.Skills); err != nil {
			return fmt.Errorf("保存项目技能失败: %w", err)
		}
		return nil
	})
}

// Delete 删除项目；共享技能保留
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_skills WHERE project_id = ?", id).Error; err != nil {
			return fmt.Errorf("清理项目技能失败: %w", err)
		}
		if err := tx.Delete(&schema.Project{}, id).Error; err != nil {
			return fmt.Errorf("删除项目失败: %w", err)
		}
		return nil
	})
}

// Exists 判断项目是否存在
func (r *ProjectRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &schema.Project{}, id)
}
