package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/schema"
)

// SkillRef 请求中携带的技能引用（按名称）
type SkillRef struct {
	Name     string `json:"skillName"`
	Category string `json:"category,omitempty"`
	Level    int    `json:"level,omitempty"` // 仅在新建时生效
}

// SkillResolver 技能目录的按名幂等 upsert
// lookup-then-create 不是原子的；并发创建同名技能时依赖 skills.name 唯一索引兜底
type SkillResolver struct {
	skills   SkillRepository
	projects ProjectRepository
}

// NewSkillResolver 创建解析器
func NewSkillResolver(skills SkillRepository, projects ProjectRepository) *SkillResolver {
	return &SkillResolver{skills: skills, projects: projects}
}

// ResolveOrCreate 按名称（精确匹配）查找技能，不存在则创建
func (r *SkillResolver) ResolveOrCreate(ctx context.Context, name, category string) (*schema.Skill, error) {
	return r.resolve(ctx, SkillRef{Name: name, Category: category})
}

func (r *SkillResolver) resolve(ctx context.Context, ref SkillRef) (*schema.Skill, error) {
	name := ref.Name
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("技能名不能为空")
	}

	existing, err := r.skills.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	skill := NewSkill(name, ref.Category)
	if ref.Level > 0 {
		skill.Level = clampInt(ref.Level, 1, MaxSkillLevel)
	}
	if err := r.skills.Create(ctx, skill); err != nil {
		// 并发下可能输给另一个请求，唯一索引拒绝后回读胜者
		winner, getErr := r.skills.GetByName(ctx, name)
		if getErr == nil && winner != nil {
			slog.Debug("技能已被并发创建，复用已有记录", "skill", name)
			return winner, nil
		}
		return nil, fmt.Errorf("创建技能失败: %w", err)
	}
	slog.Info("创建新技能", "skill", name, "category", skill.Category)
	return skill, nil
}

// ResolveAll 依次解析一组引用，跳过空名称，按精确名称去重
func (r *SkillResolver) ResolveAll(ctx context.Context, refs []SkillRef) ([]schema.Skill, error) {
	out := make([]schema.Skill, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.Name) == "" {
			slog.Warn("跳过空技能引用")
			continue
		}
		if _, ok := seen[ref.Name]; ok {
			continue
		}
		skill, err := r.resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		seen[ref.Name] = struct{}{}
		out = append(out, *skill)
	}
	return out, nil
}

// DeleteSkill 删除技能：先从所有引用它的项目中摘除，再删除技能本身
// 不存在时返回 false, nil
func (r *SkillResolver) DeleteSkill(ctx context.Context, id uint) (bool, error) {
	skill, err := r.skills.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if skill == nil {
		return false, nil
	}

	projects, err := r.projects.GetAll(ctx)
	if err != nil {
		return false, err
	}
	detached := 0
	for i := range projects {
		p := &projects[i]
		if !p.HasSkillID(skill.ID) {
			continue
		}
		kept := make([]schema.Skill, 0, len(p.Skills))
		for _, s := range p.Skills {
			if s.ID != skill.ID {
				kept = append(kept, s)
			}
		}
		p.Skills = kept
		if err := r.projects.Save(ctx, p); err != nil {
			return false, fmt.Errorf("从项目 %d 摘除技能失败: %w", p.ID, err)
		}
		detached++
	}

	if err := r.skills.Delete(ctx, skill.ID); err != nil {
		return false, err
	}
	slog.Info("已删除技能", "skill", skill.Name, "detached_projects", detached)
	return true, nil
}
