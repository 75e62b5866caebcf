package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

// UserService 用户服务：本地写入 + 后台同步画像
type UserService struct {
	userRepo    UserRepository
	skillRepo   SkillRepository
	projectRepo ProjectRepository
	resolver    *SkillResolver
	sync        *SyncService
}

// NewUserService 创建用户服务
func NewUserService(userRepo UserRepository, skillRepo SkillRepository, projectRepo ProjectRepository, resolver *SkillResolver, sync *SyncService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		skillRepo:   skillRepo,
		projectRepo: projectRepo,
		resolver:    resolver,
		sync:        sync,
	}
}

// UserInput 创建/更新用户的输入
type UserInput struct {
	Username string
	Level    int
	Skills   []SkillRef
}

// CreateUser 创建用户；技能引用经目录解析，TotalXP 为所持技能经验之和
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*schema.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, validationErr("用户名不能为空")
	}
	skills, err := s.resolver.ResolveAll(ctx, in.Skills)
	if err != nil {
		return nil, err
	}

	user := &schema.User{
		Username: username,
		Level:    in.Level,
		Skills:   skills,
		TotalXP:  sumXP(skills),
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// UpdateUser 覆盖用户名/等级/技能集合
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UserInput) (*schema.User, error) {
	user, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if username := strings.TrimSpace(in.Username); username != "" {
		user.Username = username
	}
	user.Level = in.Level

	skills, err := s.resolver.ResolveAll(ctx, in.Skills)
	if err != nil {
		return nil, err
	}
	user.Skills = skills
	user.TotalXP = sumXP(skills)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// UpdateLevel 直接设置用户等级（与技能等级无关）
func (s *UserService) UpdateLevel(ctx context.Context, id uint, level int) (*schema.User, error) {
	user, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Level = level
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// DeleteUser 删除用户，不删除共享技能；不存在返回 false
func (s *UserService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// AddSkill 为用户添加技能；已拥有则不变
func (s *UserService) AddSkill(ctx context.Context, userID uint, ref SkillRef) (*schema.User, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasSkill(ref.Name) {
		return user, nil
	}
	skill, err := s.resolver.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	user.Skills = append(user.Skills, *skill)
	user.TotalXP = sumXP(user.Skills)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// RemoveSkill 移除用户的技能引用（技能本身保留）
func (s *UserService) RemoveSkill(ctx context.Context, userID uint, skillName string) (*schema.User, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := user.SkillIndex(skillName)
	if idx < 0 {
		return user, nil
	}
	user.Skills = append(user.Skills[:idx], user.Skills[idx+1:]...)
	user.TotalXP = sumXP(user.Skills)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// AddSkillXP 通过目录为用户持有的技能累积经验
// 技能是共享的，经验变化对所有持有者可见；其他持有者的 TotalXP 由技能仓储刷新
func (s *UserService) AddSkillXP(ctx context.Context, userID uint, skillName string, amount int) (*schema.User, error) {
	if amount < 0 {
		return nil, ErrInvalidXP
	}
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := user.SkillIndex(skillName)
	if idx < 0 {
		return nil, ErrNotFound
	}

	skill, err := s.skillRepo.GetByID(ctx, user.Skills[idx].ID)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, ErrNotFound
	}
	before := skill.Level
	if err := AddSkillXP(skill, amount); err != nil {
		return nil, err
	}
	if err := s.skillRepo.Save(ctx, skill); err != nil {
		return nil, err
	}
	if skill.Level > before {
		slog.Info("技能升级", "skill", skill.Name, "from", before, "to", skill.Level)
	}

	user.Skills[idx] = *skill
	user.TotalXP = sumXP(user.Skills)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.sync.SyncUser(user)
	return user, nil
}

// MatchProject 计算用户与项目需求的匹配分；项目无技能要求时为 -1
func (s *UserService) MatchProject(ctx context.Context, userID, projectID uint) (float64, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return 0, err
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project == nil {
		return 0, ErrNotFound
	}
	return MatchSkills(user.Skills, project.Skills), nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*schema.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByName(ctx context.Context, username string) (*schema.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]schema.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *UserService) UsersLevelGreaterThan(ctx context.Context, level int) ([]schema.User, error) {
	return s.userRepo.ListLevelGreaterThan(ctx, level)
}

func (s *UserService) UsersLevelLessThan(ctx context.Context, level int) ([]schema.User, error) {
	return s.userRepo.ListLevelLessThan(ctx, level)
}

func (s *UserService) UsersLevelEqualTo(ctx context.Context, level int) ([]schema.User, error) {
	return s.userRepo.ListLevelEqualTo(ctx, level)
}

// FindTeammates 远程查找队友
func (s *UserService) FindTeammates(ctx context.Context, userID uint, topK int) ([]recommender.Teammate, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sync.FindTeammates(ctx, user, topK)
}

func (s *UserService) mustGet(ctx context.Context, id uint) (*schema.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// sumXP TotalXP 始终由所持技能推导，不做增量维护
func sumXP(skills []schema.Skill) int {
	total := 0
	for _, s := range skills {
		total += s.XP
	}
	return total
}
