package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuqie6/SkillSynth/internal/bootstrap"
)

type Server struct {
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8080"
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Start 启动 HTTP 服务，ctx 结束时自动关闭
func Start(ctx context.Context, core *bootstrap.Core, opts Options) (*Server, error) {
	if core == nil {
		return nil, fmt.Errorf("core 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           NewRouter(core, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s := &Server{ln: ln, srv: srv, baseURL: "http://" + ln.Addr().String()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("HTTP 服务已启动", "base_url", s.baseURL)
	return s, nil
}

func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// NewRouter 构建 gin 路由
func NewRouter(core *bootstrap.Core, opts Options) *gin.Engine {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(NewMetricsBuilder(reg).Build())
	r.Use(newCORS(core.Cfg.Server.CORSOrigins))

	a := newAPI(core)

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/status", a.handleStatus)
		api.GET("/events", a.handleSSE)

		// Users
		api.GET("/users", a.listUsers)
		api.POST("/users", a.createUser)
		api.GET("/users/:id", a.getUser)
		api.PUT("/users/:id", a.updateUser)
		api.DELETE("/users/:id", a.deleteUser)
		api.PATCH("/users/:id/level", a.updateUserLevel)
		api.POST("/users/:id/skills", a.addUserSkill)
		api.DELETE("/users/:id/skills/:name", a.removeUserSkill)
		api.POST("/users/:id/xp", a.addUserXP)
		api.GET("/users/:id/match/:projectId", a.matchProject)
		api.POST("/users/:id/teammates", a.findTeammates)
		api.GET("/users/username/:username", a.getUserByName)
		api.GET("/users/level/:op/:level", a.listUsersByLevel)

		// Skills
		api.GET("/skills", a.listSkills)
		api.POST("/skills", a.createSkill)
		api.GET("/skills/search", a.searchSkills)
		api.GET("/skills/category", a.getSkillByCategory)
		api.GET("/skills/name/:name", a.getSkillByName)
		api.GET("/skills/:id", a.getSkill)
		api.PUT("/skills/:id", a.updateSkill)
		api.DELETE("/skills/:id", a.deleteSkill)

		// Projects
		api.GET("/projects", a.listProjects)
		api.POST("/projects", a.createProject)
		api.POST("/projects/ai-generate", a.createAIProject)
		api.GET("/projects/name/:name", a.getProjectByName)
		api.GET("/projects/level/:op/:level", a.listProjectsByLevel)
		api.GET("/projects/:id", a.getProject)
		api.PUT("/projects/:id", a.updateProject)
		api.DELETE("/projects/:id", a.deleteProject)
		api.GET("/projects/:id/top-skills", a.topSkills)

		// Remote recommender
		api.POST("/ml/relevant-skills", a.relevantSkills)
		api.POST("/ml/generate-project", a.generateProject)
	}

	return r
}

// newCORS 未配置来源时放开全部来源（不带凭证）
func newCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http 请求",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"cost", time.Since(start).String(),
		)
	}
}
