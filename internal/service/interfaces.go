package service

import (
	"context"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）
// 查询不到时返回 (nil, nil)

type SkillRepository interface {
	GetByID(ctx context.Context, id uint) (*schema.Skill, error)
	GetByName(ctx context.Context, name string) (*schema.Skill, error)
	GetByCategory(ctx context.Context, category string) (*schema.Skill, error)
	Search(ctx context.Context, keyword string) ([]schema.Skill, error)
	GetAll(ctx context.Context) ([]schema.Skill, error)
	Create(ctx context.Context, skill *schema.Skill) error
	Save(ctx context.Context, skill *schema.Skill) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*schema.User, error)
	GetByUsername(ctx context.Context, username string) (*schema.User, error)
	GetAll(ctx context.Context) ([]schema.User, error)
	ListLevelGreaterThan(ctx context.Context, level int) ([]schema.User, error)
	ListLevelLessThan(ctx context.Context, level int) ([]schema.User, error)
	ListLevelEqualTo(ctx context.Context, level int) ([]schema.User, error)
	Save(ctx context.Context, user *schema.User) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (*schema.Project, error)
	GetByName(ctx context.Context, name string) (*schema.Project, error)
	GetAll(ctx context.Context) ([]schema.Project, error)
	ListExperienceGreaterThan(ctx context.Context, level int) ([]schema.Project, error)
	ListExperienceLessThan(ctx context.Context, level int) ([]schema.Project, error)
	ListExperienceEqualTo(ctx context.Context, level int) ([]schema.Project, error)
	Save(ctx context.Context, project *schema.Project) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

// Recommender 远程推荐服务（黑盒，只通过约定的请求/响应访问）
type Recommender interface {
	GrabRelevantSkills(ctx context.Context, mainSkill string, topK int) (*recommender.RelevantSkillsResult, error)
	GetProject(ctx context.Context, req *recommender.ProjectRequest) (*recommender.ProjectSuggestion, error)
	ProcessAndUploadSkills(ctx context.Context, skills map[string][]string) error
	UploadUsers(ctx context.Context, users []recommender.UserProfile) error
	FindTeammates(ctx context.Context, user recommender.UserProfile, topK int) ([]recommender.Teammate, error)
}

// Dispatcher 后台任务投递，不返回句柄
type Dispatcher interface {
	Submit(kind string, job func(ctx context.Context) error)
}
