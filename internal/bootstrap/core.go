package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yuqie6/SkillSynth/internal/eventbus"
	"github.com/yuqie6/SkillSynth/internal/jobs"
	"github.com/yuqie6/SkillSynth/internal/pkg/config"
	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/repository"
	"github.com/yuqie6/SkillSynth/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg  *config.Config
	DB   *repository.Database
	Hub  *eventbus.Hub
	Pool *jobs.Pool

	Repos struct {
		Skill   *repository.SkillRepository
		User    *repository.UserRepository
		Project *repository.ProjectRepository
	}

	Services struct {
		Resolver *service.SkillResolver
		Sync     *service.SyncService
		Skills   *service.SkillService
		Users    *service.UserService
		Projects *service.ProjectService
	}

	Clients struct {
		Recommender *recommender.Client
	}
}

// Options 构建选项
type Options struct {
	ConfigPath string
	Registerer prometheus.Registerer // 为空时使用默认 registry
}

// NewCore 加载配置并构建全部依赖
func NewCore(opts Options) (*Core, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)
	return NewCoreWithConfig(cfg, opts.Registerer)
}

// NewCoreWithConfig 使用已加载的配置构建依赖
func NewCoreWithConfig(cfg *config.Config, reg prometheus.Registerer) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	db, err := repository.NewDatabase(repository.Config{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.DBPath,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return nil, err
	}
	if db.SafeMode {
		_ = db.Close()
		return nil, fmt.Errorf("数据库不可用: %s", db.MigrationError)
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Skill = repository.NewSkillRepository(db.DB)
	c.Repos.User = repository.NewUserRepository(db.DB)
	c.Repos.Project = repository.NewProjectRepository(db.DB)

	// Clients / background pool
	c.Clients.Recommender = recommender.NewClient(&recommender.Config{
		BaseURL: cfg.Recommender.BaseURL,
		Timeout: cfg.Recommender.SyncTimeout(),
	})
	c.Pool = jobs.NewPool(jobs.Options{
		Workers:    cfg.Recommender.SyncWorkers,
		Timeout:    cfg.Recommender.SyncTimeout(),
		Hub:        c.Hub,
		Registerer: reg,
	})

	// Services
	c.Services.Resolver = service.NewSkillResolver(c.Repos.Skill, c.Repos.Project)
	c.Services.Sync = service.NewSyncService(c.Clients.Recommender, c.Pool, c.Services.Resolver, &service.SyncConfig{
		GenerateTimeout: cfg.Recommender.GenerateTimeout(),
	})
	c.Services.Skills = service.NewSkillService(c.Repos.Skill, c.Services.Resolver, c.Services.Sync)
	c.Services.Users = service.NewUserService(c.Repos.User, c.Repos.Skill, c.Repos.Project, c.Services.Resolver, c.Services.Sync)
	c.Services.Projects = service.NewProjectService(c.Repos.Project, c.Services.Resolver, c.Services.Sync)

	return c, nil
}

// Close 等待在途同步任务（最多 shutdown_grace_sec），再关闭数据库
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if c.Pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.Cfg.Recommender.ShutdownGrace())
		defer cancel()
		_ = c.Pool.Close(ctx)
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
