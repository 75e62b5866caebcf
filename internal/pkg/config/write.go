package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// Default 返回全部默认值构成的配置
func Default() *Config {
	return &Config{
		App:     AppConfig{Name: "skillsynth", Version: "0.1.0", LogLevel: "info"},
		Server:  ServerConfig{ListenAddr: "127.0.0.1:8080", CORSOrigins: []string{"http://localhost:3000"}},
		Storage: StorageConfig{Driver: "sqlite", DBPath: "./data/skillsynth.db"},
		Recommender: RecommenderConfig{
			BaseURL:            "http://localhost:8000",
			GenerateTimeoutSec: 10,
			SyncTimeoutSec:     15,
			SyncWorkers:        4,
			ShutdownGraceSec:   5,
			RelevantTopK:       3,
		},
	}
}

func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"server": map[string]any{
			"listen_addr":  cfg.Server.ListenAddr,
			"cors_origins": cfg.Server.CORSOrigins,
		},
		"storage": map[string]any{
			"driver":  cfg.Storage.Driver,
			"db_path": cfg.Storage.DBPath,
			"dsn":     cfg.Storage.DSN,
		},
		"recommender": map[string]any{
			"base_url":             cfg.Recommender.BaseURL,
			"generate_timeout_sec": cfg.Recommender.GenerateTimeoutSec,
			"sync_timeout_sec":     cfg.Recommender.SyncTimeoutSec,
			"sync_workers":         cfg.Recommender.SyncWorkers,
			"shutdown_grace_sec":   cfg.Recommender.ShutdownGraceSec,
			"relevant_top_k":       cfg.Recommender.RelevantTopK,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
