package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/SkillSynth/internal/bootstrap"
	"github.com/yuqie6/SkillSynth/internal/httpapi"
	"github.com/yuqie6/SkillSynth/internal/pkg/buildinfo"
	"github.com/yuqie6/SkillSynth/internal/pkg/config"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	core, err := bootstrap.NewCore(bootstrap.Options{ConfigPath: *cfgPath})
	if err != nil {
		slog.Error("启动失败", "error", err)
		os.Exit(1)
	}

	slog.Info("SkillSynth 启动中...", "name", core.Cfg.App.Name, "version", buildinfo.String())

	if path := core.Cfg.Path(); path != "" {
		if err := config.WatchLogLevel(ctx, path); err != nil {
			slog.Warn("配置热更新不可用", "error", err)
		}
	}

	srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: core.Cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "error", err)
		_ = core.Close()
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("收到退出信号，正在关闭...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = srv.Shutdown(shutdownCtx)
	shutdownCancel()

	// 等待在途同步任务
	if err := core.Close(); err != nil {
		slog.Warn("关闭数据库失败", "error", err)
	}
	slog.Info("SkillSynth 已退出")
}
