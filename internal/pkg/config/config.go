package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Recommender RecommenderConfig `mapstructure:"recommender"`

	path string
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr  string   `mapstructure:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DBPath string `mapstructure:"db_path"`
	DSN    string `mapstructure:"dsn"`
}

// RecommenderConfig 远程推荐服务配置
type RecommenderConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	GenerateTimeoutSec int    `mapstructure:"generate_timeout_sec"`
	SyncTimeoutSec     int    `mapstructure:"sync_timeout_sec"`
	SyncWorkers        int    `mapstructure:"sync_workers"`
	ShutdownGraceSec   int    `mapstructure:"shutdown_grace_sec"`
	RelevantTopK       int    `mapstructure:"relevant_top_k"`
}

func (c RecommenderConfig) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}

func (c RecommenderConfig) SyncTimeout() time.Duration {
	return time.Duration(c.SyncTimeoutSec) * time.Second
}

func (c RecommenderConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSec) * time.Second
}

// Path 实际加载的配置文件路径；未找到文件时为空
func (c *Config) Path() string {
	return c.path
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量，如 SKILLSYNTH_RECOMMENDER_BASE_URL
	v.SetEnvPrefix("SKILLSYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("配置文件不存在，使用默认配置", "path", configPath)
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.path = v.ConfigFileUsed()

	cfg.Storage.DSN = expandEnv(cfg.Storage.DSN)
	cfg.Recommender.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Recommender.BaseURL), "/")
	if cfg.Storage.DBPath != ":memory:" {
		cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case "", "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("storage.driver 不支持: %s", c.Storage.Driver)
	}
	if c.Recommender.SyncWorkers <= 0 {
		return fmt.Errorf("recommender.sync_workers 必须大于 0")
	}
	if c.Recommender.GenerateTimeoutSec <= 0 || c.Recommender.SyncTimeoutSec <= 0 {
		return fmt.Errorf("recommender 超时必须大于 0")
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "skillsynth")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	// Storage
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.db_path", "./data/skillsynth.db")

	// Recommender
	v.SetDefault("recommender.base_url", "http://localhost:8000")
	v.SetDefault("recommender.generate_timeout_sec", 10)
	v.SetDefault("recommender.sync_timeout_sec", 15)
	v.SetDefault("recommender.sync_workers", 4)
	v.SetDefault("recommender.shutdown_grace_sec", 5)
	v.SetDefault("recommender.relevant_top_k", 3)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径（相对可执行文件目录）
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

var logLevel = new(slog.LevelVar)

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger 安装默认 logger；级别可在运行时通过 SetLogLevel 调整
func SetupLogger(level string) {
	logLevel.Set(ParseLevel(level))
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLogLevel 动态调整日志级别
func SetLogLevel(level string) {
	next := ParseLevel(level)
	if logLevel.Level() == next {
		return
	}
	logLevel.Set(next)
	slog.Info("日志级别已更新", "level", next.String())
}

// LogLevel 当前日志级别
func LogLevel() slog.Level {
	return logLevel.Level()
}
