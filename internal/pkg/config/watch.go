package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch 监听配置文件变化，重新加载后回调 onChange
// 监听目录而不是文件，编辑器的原子替换（rename）也能被捕获
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建配置监听失败: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("监听配置目录失败: %w", err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce = time.After(200 * time.Millisecond)
			case <-debounce:
				debounce = nil
				cfg, err := Load(path)
				if err != nil {
					slog.Warn("重新加载配置失败", "path", path, "error", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("配置监听出错", "error", err)
			}
		}
	}()
	return nil
}

// WatchLogLevel 配置文件中的 app.log_level 变化时即时生效
func WatchLogLevel(ctx context.Context, path string) error {
	return Watch(ctx, path, func(cfg *Config) {
		SetLogLevel(cfg.App.LogLevel)
	})
}
