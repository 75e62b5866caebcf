package service

import (
	"context"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

// ProjectService 项目服务
type ProjectService struct {
	projectRepo ProjectRepository
	resolver    *SkillResolver
	sync        *SyncService
}

// NewProjectService 创建项目服务
func NewProjectService(projectRepo ProjectRepository, resolver *SkillResolver, sync *SyncService) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		resolver:    resolver,
		sync:        sync,
	}
}

// ProjectInput 创建/更新项目的输入
type ProjectInput struct {
	Name            string
	Description     string
	DateRange       string
	ExperienceLevel int
	Skills          []SkillRef
}

// CreateProject 校验 -> 解析技能 -> 保存 -> 后台同步
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*schema.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr("项目名不能为空")
	}
	skills, err := s.resolver.ResolveAll(ctx, in.Skills)
	if err != nil {
		return nil, err
	}

	project := &schema.Project{
		Name:            name,
		Description:     in.Description,
		DateRange:       in.DateRange,
		ExperienceLevel: in.ExperienceLevel,
		Skills:          skills,
	}
	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	s.sync.SyncProject(project)
	return project, nil
}

// UpdateProject 替换标量字段与技能集合
func (s *ProjectService) UpdateProject(ctx context.Context, id uint, in ProjectInput) (*schema.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		project.Name = name
	}
	project.Description = in.Description
	project.DateRange = in.DateRange
	project.ExperienceLevel = in.ExperienceLevel

	skills, err := s.resolver.ResolveAll(ctx, in.Skills)
	if err != nil {
		return nil, err
	}
	project.Skills = skills

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	s.sync.SyncProject(project)
	return project, nil
}

// DeleteProject 删除项目，技能保留；不存在返回 false
func (s *ProjectService) DeleteProject(ctx context.Context, id uint) (bool, error) {
	ok, err := s.projectRepo.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// AIProjectInput AI 生成项目的输入
type AIProjectInput struct {
	Name             string
	Skills           []SkillRef
	TimeAvailability int
	ExperienceLevel  int
	DateRange        string
}

// CreateAIProject 由推荐服务生成项目并保存；远程失败时保存兜底项目，不返回错误
func (s *ProjectService) CreateAIProject(ctx context.Context, in AIProjectInput) (*schema.Project, bool, error) {
	generated, err := s.sync.GenerateProject(ctx, in.Name, in.Skills, in.TimeAvailability, in.ExperienceLevel)
	if err != nil {
		return nil, false, err
	}

	project := &schema.Project{
		Name:            generated.Name,
		Description:     generated.Description,
		DateRange:       in.DateRange,
		ExperienceLevel: in.ExperienceLevel,
		Skills:          generated.Skills,
	}
	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, false, err
	}
	return project, generated.Fallback, nil
}

// GenerateProjectIdea 只请求建议，不落库
func (s *ProjectService) GenerateProjectIdea(ctx context.Context, req *recommender.ProjectRequest) (*recommender.ProjectSuggestion, bool) {
	return s.sync.GenerateProjectSafe(ctx, req)
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*schema.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *ProjectService) GetProjectByName(ctx context.Context, name string) (*schema.Project, error) {
	return s.projectRepo.GetByName(ctx, name)
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]schema.Project, error) {
	return s.projectRepo.GetAll(ctx)
}

func (s *ProjectService) ProjectsExperienceGreaterThan(ctx context.Context, level int) ([]schema.Project, error) {
	return s.projectRepo.ListExperienceGreaterThan(ctx, level)
}

// ProjectsExperienceLessThan 经验要求低于 level 的项目（不含未设置经验要求的 0）
func (s *ProjectService) ProjectsExperienceLessThan(ctx context.Context, level int) ([]schema.Project, error) {
	return s.projectRepo.ListExperienceLessThan(ctx, level)
}

func (s *ProjectService) ProjectsExperienceEqualTo(ctx context.Context, level int) ([]schema.Project, error) {
	return s.projectRepo.ListExperienceEqualTo(ctx, level)
}

// TopSkills 返回项目的前 n 个推荐技能
func (s *ProjectService) TopSkills(ctx context.Context, id uint, n int) ([]schema.Skill, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project.TopSkills(n), nil
}
