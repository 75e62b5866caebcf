package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/SkillSynth/internal/bootstrap"
	"github.com/yuqie6/SkillSynth/internal/dto"
	"github.com/yuqie6/SkillSynth/internal/pkg/buildinfo"
	"github.com/yuqie6/SkillSynth/internal/service"
)

type apiServer struct {
	core      *bootstrap.Core
	startTime time.Time
}

func newAPI(core *bootstrap.Core) *apiServer {
	return &apiServer{core: core, startTime: time.Now()}
}

func (a *apiServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"name":       a.core.Cfg.App.Name,
		"version":    buildinfo.Version,
		"started_at": a.startTime.Format(time.RFC3339),
	})
}

func (a *apiServer) handleStatus(c *gin.Context) {
	cfg := a.core.Cfg
	c.JSON(http.StatusOK, dto.StatusDTO{
		App: dto.AppStatusDTO{
			Name:      cfg.App.Name,
			Version:   buildinfo.String(),
			StartedAt: a.startTime.Format(time.RFC3339),
			UptimeSec: int64(time.Since(a.startTime).Seconds()),
		},
		Storage: dto.StorageStatusDTO{
			Driver:        a.core.DB.Driver,
			SchemaVersion: a.core.DB.SchemaVersion,
		},
		Sync: dto.SyncStatusDTO{
			RecommenderURL: a.core.Clients.Recommender.BaseURL(),
			Workers:        cfg.Recommender.SyncWorkers,
			Subscribers:    a.core.Hub.Subscribers(),
		},
	})
}

// writeError 按错误类型映射状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("请求处理失败", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部错误"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
}

// respond 统一处理 (entity, err)：nil 实体视为 404
func respond[T any](c *gin.Context, v *T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if v == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, v)
}

func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func respondDeleted(c *gin.Context, ok bool, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "非法的 "+name)
		return 0, false
	}
	return uint(v), true
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "非法的 "+name)
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func toSkillRefs(in []dto.SkillRefDTO) []service.SkillRef {
	out := make([]service.SkillRef, 0, len(in))
	for _, r := range in {
		out = append(out, service.SkillRef{Name: r.SkillName, Category: r.Category, Level: r.Level})
	}
	return out
}
