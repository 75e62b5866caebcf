package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/schema"
)

// SkillService 技能目录服务
type SkillService struct {
	skillRepo SkillRepository
	resolver  *SkillResolver
	sync      *SyncService
}

// NewSkillService 创建技能服务
func NewSkillService(skillRepo SkillRepository, resolver *SkillResolver, sync *SyncService) *SkillService {
	return &SkillService{
		skillRepo: skillRepo,
		resolver:  resolver,
		sync:      sync,
	}
}

// CreateSkill 按名幂等创建技能，随后后台同步到推荐服务
func (s *SkillService) CreateSkill(ctx context.Context, name, category string) (*schema.Skill, error) {
	skill, err := s.resolver.ResolveOrCreate(ctx, strings.TrimSpace(name), category)
	if err != nil {
		return nil, err
	}
	s.sync.SyncSkill(skill)
	return skill, nil
}

// SkillUpdate 可更新字段（等级/经验只能通过经验累积变化）
type SkillUpdate struct {
	ID       uint
	Name     string
	Category string
}

// UpdateSkill 更新名称/分类，随后后台同步
func (s *SkillService) UpdateSkill(ctx context.Context, in SkillUpdate) (*schema.Skill, error) {
	skill, err := s.skillRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, ErrNotFound
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		skill.Name = name
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		skill.Category = category
	}
	if err := s.skillRepo.Save(ctx, skill); err != nil {
		return nil, err
	}
	s.sync.SyncSkill(skill)
	return skill, nil
}

// DeleteSkill 删除技能（自动从项目摘除引用）；不存在返回 false
func (s *SkillService) DeleteSkill(ctx context.Context, id uint) (bool, error) {
	ok, err := s.resolver.DeleteSkill(ctx, id)
	if err != nil {
		slog.Error("删除技能失败", "id", id, "error", err)
	}
	return ok, err
}

func (s *SkillService) GetSkill(ctx context.Context, id uint) (*schema.Skill, error) {
	return s.skillRepo.GetByID(ctx, id)
}

func (s *SkillService) GetSkillByName(ctx context.Context, name string) (*schema.Skill, error) {
	return s.skillRepo.GetByName(ctx, name)
}

// GetSkillByCategory 返回该分类下的第一个技能
func (s *SkillService) GetSkillByCategory(ctx context.Context, category string) (*schema.Skill, error) {
	return s.skillRepo.GetByCategory(ctx, category)
}

func (s *SkillService) SearchSkills(ctx context.Context, keyword string) ([]schema.Skill, error) {
	return s.skillRepo.Search(ctx, keyword)
}

func (s *SkillService) GetAllSkills(ctx context.Context) ([]schema.Skill, error) {
	return s.skillRepo.GetAll(ctx)
}

// RelevantSkills 远程查询相关技能，失败时结果中带 error 字段
func (s *SkillService) RelevantSkills(ctx context.Context, mainSkill string, topK int) map[string]any {
	return s.sync.RelevantSkills(ctx, mainSkill, topK)
}

// SkillView 技能展示视图
type SkillView struct {
	schema.Skill
	XPToNext int     `json:"xp_to_next"`
	Progress float64 `json:"progress"`
}

// ViewOf 构建展示视图
func ViewOf(skill schema.Skill) SkillView {
	return SkillView{
		Skill:    skill,
		XPToNext: XPToNextLevel(skill.Level),
		Progress: ProgressPercentage(&skill),
	}
}

// DefaultCatalog 默认技能目录（分类 -> 技能）
var DefaultCatalog = map[string][]string{
	"Web Frontend":  {"React", "Svelte", "Vue", "Angular"},
	"Web Backend":   {"Node.js", "Express", "Django", "Flask", "FastAPI", "Spring Boot", "ASP.NET Core", "Laravel"},
	"Databases":     {"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis", "Prisma", "Mongoose", "SQLAlchemy"},
	"DevOps":        {"Docker", "Kubernetes", "AWS", "Azure", "Google Cloud", "CI/CD", "Linux", "Terraform"},
	"Tools":         {"Git", "GitHub", "GitLab", "Bitbucket", "Jira", "Notion", "Figma"},
	"Data Science":  {"NumPy", "Pandas", "Matplotlib", "Seaborn"},
	"AI":            {"TensorFlow", "PyTorch", "Scikit-learn", "Prompt Engineering"},
	"Soft Skills":   {"Teamwork", "Communication", "Problem Solving", "Leadership", "Time Management", "Critical Thinking"},
}

// SeedCatalog 写入默认技能目录（幂等），返回新建/已存在的技能数
func (s *SkillService) SeedCatalog(ctx context.Context, catalog map[string][]string) (int, error) {
	n := 0
	for category, names := range catalog {
		for _, name := range names {
			if _, err := s.CreateSkill(ctx, name, category); err != nil {
				return n, err
			}
			n++
		}
	}
	slog.Info("默认技能目录已写入", "count", n)
	return n, nil
}
