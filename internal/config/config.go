package config

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个桥接进程的配置项。
type Config struct {
	Relay      RelayConfig
	Engine     EngineConfig
	Admin      AdminConfig
	Watch      WatchConfig
	AI         AIConfig
	Codegen    CodegenConfig
	Collective CollectiveConfig
	Log        LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv 将环境变量解析到带 env 标签的结构体。
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Relay.Port <= 0 || c.Relay.Port > 65535 {
		return fmt.Errorf("invalid BRIDGE_PORT value: %d", c.Relay.Port)
	}
	if c.Engine.Port <= 0 || c.Engine.Port > 65535 {
		return fmt.Errorf("invalid ENGINE_PORT value: %d", c.Engine.Port)
	}
	if strings.Contains(c.Relay.Host, " ") {
		return fmt.Errorf("invalid BRIDGE_HOST value: %q", c.Relay.Host)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("invalid WATCH_INTERVAL value: %s", c.Watch.Interval)
	}
	return nil
}

// RelayConfig 描述引擎入站连接的监听配置。
type RelayConfig struct {
	Host            string        `env:"BRIDGE_HOST" envDefault:"localhost"`
	Port            int           `env:"BRIDGE_PORT" envDefault:"6969"`
	MaxMessageBytes int64         `env:"BRIDGE_MAX_MESSAGE_BYTES" envDefault:"1048576"`
	IdleTimeout     time.Duration `env:"BRIDGE_IDLE_TIMEOUT" envDefault:"0s"`
	WriteTimeout    time.Duration `env:"BRIDGE_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"BRIDGE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr 返回 host:port 形式的监听地址。
func (c RelayConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// EngineConfig 描述向引擎编辑器推送消息的目标。
type EngineConfig struct {
	Host        string        `env:"ENGINE_HOST" envDefault:"localhost"`
	Port        int           `env:"ENGINE_PORT" envDefault:"6970"`
	DialTimeout time.Duration `env:"ENGINE_DIAL_TIMEOUT" envDefault:"3s"`
}

// Addr 返回推送目标地址。
func (c EngineConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AdminConfig 描述管理与监控 HTTP 服务。
type AdminConfig struct {
	Enabled bool   `env:"ADMIN_ENABLED" envDefault:"true"`
	Addr    string `env:"ADMIN_ADDR" envDefault:"localhost:8080"`
}

// WatchConfig 描述源码目录轮询。Dir 为空时不启动。
type WatchConfig struct {
	Dir          string        `env:"WATCH_DIR"`
	Extensions   []string      `env:"WATCH_EXTENSIONS" envDefault:".cpp,.h" envSeparator:","`
	Interval     time.Duration `env:"WATCH_INTERVAL" envDefault:"500ms"`
	ErrorBackoff time.Duration `env:"WATCH_ERROR_BACKOFF" envDefault:"1s"`
}

// Enabled 表示是否配置了监听目录。
func (c WatchConfig) Enabled() bool {
	return strings.TrimSpace(c.Dir) != ""
}

// AIConfig 描述大模型相关配置，默认指向本地 OpenAI 兼容服务。
type AIConfig struct {
	Enabled     bool          `env:"AI_ENABLED" envDefault:"false"`
	BaseURL     string        `env:"LLM_BASE_URL" envDefault:"http://localhost:1234/v1"`
	Model       string        `env:"LLM_MODEL" envDefault:"local-model"`
	APIKey      string        `env:"LLM_API_KEY" envDefault:"lm-studio"`
	Temperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"2000"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

// Ready 表示是否启用且提供了必需的模型参数。
func (c AIConfig) Ready() bool {
	return c.Enabled && c.Model != "" && c.BaseURL != "" && c.APIKey != ""
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("LLM 配置缺失，至少提供 AI_ENABLED、LLM_BASE_URL、LLM_MODEL 与 LLM_API_KEY")
	}

	temperature := float32(c.Temperature)
	maxTokens := c.MaxTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

// CodegenConfig 描述代码生成输出。
type CodegenConfig struct {
	OutputDir string `env:"CODEGEN_OUTPUT_DIR" envDefault:"Source/Generated"`
}

// CollectiveConfig 控制是否挂载进程内的决策协作者。
type CollectiveConfig struct {
	Enabled bool `env:"COLLECTIVE_ENABLED" envDefault:"true"`
	Memory  int  `env:"COLLECTIVE_MEMORY" envDefault:"64"`
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
}
