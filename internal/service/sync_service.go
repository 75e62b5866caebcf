package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

const (
	// FallbackProjectName 推荐服务不可用时的兜底项目
	FallbackProjectName        = "Example Practice Project"
	FallbackProjectDescription = "AI generation service unavailable. Here's a fallback idea!"

	// AIRecommendedCategory 推荐服务给出的新技能使用此分类
	AIRecommendedCategory = "AI-recommended skill"

	defaultAIProjectName        = "AI Suggested Project"
	defaultAIProjectDescription = "AI-generated project description"

	SyncKindUser    = "user.upload"
	SyncKindSkill   = "skill.upload"
	SyncKindProject = "project.sync"
)

// FallbackProject 返回固定的兜底项目（每次新建，调用方可随意修改）
func FallbackProject() *recommender.ProjectSuggestion {
	return &recommender.ProjectSuggestion{
		ProjectName:    FallbackProjectName,
		Description:    FallbackProjectDescription,
		RelevantSkills: []string{"React", "Node.js"},
	}
}

// SyncService 把本地变更传播到远程推荐服务
// 两种模式：后台 fire-and-forget（失败只记日志），以及同步调用 + 兜底（AI 生成项目）
type SyncService struct {
	remote          Recommender
	dispatcher      Dispatcher
	resolver        *SkillResolver
	generateTimeout time.Duration
}

// SyncConfig 配置
type SyncConfig struct {
	GenerateTimeout time.Duration // 同步生成项目的超时
}

// NewSyncService 创建同步服务
func NewSyncService(remote Recommender, dispatcher Dispatcher, resolver *SkillResolver, cfg *SyncConfig) *SyncService {
	if cfg == nil {
		cfg = &SyncConfig{}
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 10 * time.Second
	}
	return &SyncService{
		remote:          remote,
		dispatcher:      dispatcher,
		resolver:        resolver,
		generateTimeout: cfg.GenerateTimeout,
	}
}

// SyncUser 后台上传用户画像。payload 在提交前生成，后续对 user 的修改不影响本次同步
func (s *SyncService) SyncUser(user *schema.User) {
	if user == nil {
		return
	}
	profile := UserProfilePayload(user)
	s.dispatch(SyncKindUser, func(ctx context.Context) error {
		return s.remote.UploadUsers(ctx, []recommender.UserProfile{profile})
	})
}

// SyncSkill 后台上传技能
func (s *SyncService) SyncSkill(skill *schema.Skill) {
	if skill == nil {
		return
	}
	payload := SkillPayload(skill)
	s.dispatch(SyncKindSkill, func(ctx context.Context) error {
		return s.remote.ProcessAndUploadSkills(ctx, payload)
	})
}

// SyncProject 后台把项目摘要推给推荐服务，响应内容被忽略
func (s *SyncService) SyncProject(project *schema.Project) {
	if project == nil {
		return
	}
	req := ProjectPayload(project)
	s.dispatch(SyncKindProject, func(ctx context.Context) error {
		_, err := s.remote.GetProject(ctx, req)
		return err
	})
}

func (s *SyncService) dispatch(kind string, job func(ctx context.Context) error) {
	if s.remote == nil || s.dispatcher == nil {
		return
	}
	s.dispatcher.Submit(kind, job)
}

// GenerateProjectSafe 同步请求项目建议；任何失败都返回兜底项目，永不报错
// 第二个返回值表示是否使用了兜底
func (s *SyncService) GenerateProjectSafe(ctx context.Context, req *recommender.ProjectRequest) (*recommender.ProjectSuggestion, bool) {
	if s.remote == nil {
		slog.Warn("推荐服务未配置，返回兜底项目")
		return FallbackProject(), true
	}
	if req == nil {
		req = &recommender.ProjectRequest{}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	suggestion, err := s.remote.GetProject(callCtx, req)
	if err != nil {
		slog.Warn("AI 项目生成失败，使用兜底项目", "error", err)
		return FallbackProject(), true
	}
	return suggestion, false
}

// GeneratedProject AI 生成结果（技能已落入本地目录）
type GeneratedProject struct {
	Name        string
	Description string
	Skills      []schema.Skill
	Fallback    bool
}

// GenerateProject 解析请求技能 -> 调远程（失败兜底）-> 解析结果技能 -> 与请求技能合并
// 合并时按名称大小写不敏感去重；只有本地目录读写失败才会返回错误
func (s *SyncService) GenerateProject(ctx context.Context, name string, refs []SkillRef, timeAvailability, experienceLevel int) (*GeneratedProject, error) {
	base, err := s.resolver.ResolveAll(ctx, refs)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(base))
	for _, sk := range base {
		names = append(names, sk.Name)
	}
	suggestion, fallback := s.GenerateProjectSafe(ctx, &recommender.ProjectRequest{
		MainSkills:       names,
		TimeAvailability: timeAvailability,
		ExperienceLevel:  experienceLevel,
	})

	// 兜底技能不是推荐服务给出的，归入默认分类
	category := AIRecommendedCategory
	if fallback {
		category = DefaultSkillCategory
	}
	suggestedRefs := make([]SkillRef, 0, len(suggestion.RelevantSkills))
	for _, n := range suggestion.RelevantSkills {
		suggestedRefs = append(suggestedRefs, SkillRef{Name: n, Category: category})
	}
	recommended, err := s.resolver.ResolveAll(ctx, suggestedRefs)
	if err != nil {
		return nil, err
	}

	for _, b := range base {
		if !containsFold(recommended, b.Name) {
			recommended = append(recommended, b)
		}
	}

	out := &GeneratedProject{
		Name:        strings.TrimSpace(suggestion.ProjectName),
		Description: strings.TrimSpace(suggestion.Description),
		Skills:      recommended,
		Fallback:    fallback,
	}
	if out.Name == "" {
		out.Name = strings.TrimSpace(name)
	}
	if out.Name == "" {
		out.Name = defaultAIProjectName
	}
	if out.Description == "" {
		out.Description = defaultAIProjectDescription
	}
	return out, nil
}

// RelevantSkills 查询相关技能；失败时返回 {"error": msg} 而不是错误
func (s *SyncService) RelevantSkills(ctx context.Context, mainSkill string, topK int) map[string]any {
	if s.remote == nil {
		return map[string]any{"error": "推荐服务未配置"}
	}
	callCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	res, err := s.remote.GrabRelevantSkills(callCtx, mainSkill, topK)
	if err != nil {
		slog.Warn("获取相关技能失败", "skill", mainSkill, "error", err)
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{
		"main_skill":      res.MainSkill,
		"relevant_skills": res.RelevantSkills,
	}
}

// FindTeammates 为用户查找队友（同步、带超时）
func (s *SyncService) FindTeammates(ctx context.Context, user *schema.User, topK int) ([]recommender.Teammate, error) {
	if s.remote == nil {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	return s.remote.FindTeammates(callCtx, UserProfilePayload(user), topK)
}

func containsFold(skills []schema.Skill, name string) bool {
	for _, s := range skills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}
