package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Vision      LLMConfig         `yaml:"vision"`
	FactCheck   FactCheckConfig   `yaml:"fact_check"`
	Search      SearchConfig      `yaml:"search"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"` // eino (默认) 或 openai
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  int    `yaml:"timeout"` // 秒
}

// FactCheckConfig 事实核查服务配置
type FactCheckConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
	Timeout  int    `yaml:"timeout"`
	// WebFallback 为 true 时，在 Google 接口不可用时使用通用搜索
	WebFallback bool `yaml:"web_fallback"`
	CacheTTL    int  `yaml:"cache_ttl"` // 秒
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// AnalysisConfig 分析流程配置
type AnalysisConfig struct {
	MaxContentLength int    `yaml:"max_content_length"`
	MinContentLength int    `yaml:"min_content_length"`
	MaxBatchSize     int    `yaml:"max_batch_size"`
	Timeout          int    `yaml:"timeout"` // 秒
	ContextEnabled   bool   `yaml:"context_enabled"`
	ContextUseOracle bool   `yaml:"context_use_oracle"`
	MaxKeywords      int    `yaml:"max_keywords"`
	RecencyDays      int    `yaml:"recency_days"`
	RetentionDays    int    `yaml:"retention_days"`
	RetentionCron    string `yaml:"retention_cron"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS         int `yaml:"qps"`
	RPM         int `yaml:"rpm"`
	BatchWorker int `yaml:"batch_worker"`
}

// DBConfig 数据库相关配置，Driver 为 postgres 或 sqlite
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// RedisConfig Redis 缓存配置，Addr 为空时不启用缓存
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig 权威用户认证配置
type AuthConfig struct {
	JWTKey   string          `yaml:"jwt_key"`
	TokenTTL int             `yaml:"token_ttl"` // 小时
	Seed     []AuthorityUser `yaml:"seed"`
}

// AuthorityUser 初始化写入的权威账号
type AuthorityUser struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Department string `yaml:"department"`
	Role       string `yaml:"role"`
}

// LoadConfig 从指定路径加载配置，并用环境变量覆盖密钥
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	// .env 文件可选
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// LoadOrDefault 配置文件不存在时使用默认配置，仍然读取环境变量
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg = Default()
	_ = godotenv.Load()
	cfg.applyEnv()
	return cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{
		FactCheck: FactCheckConfig{WebFallback: true},
		Analysis: AnalysisConfig{
			ContextEnabled:   true,
			ContextUseOracle: true,
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "eino"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 30
	}
	if c.Vision.Timeout <= 0 {
		c.Vision.Timeout = 30
	}
	if c.FactCheck.BaseURL == "" {
		c.FactCheck.BaseURL = "https://factchecktools.googleapis.com/v1alpha1"
	}
	if c.FactCheck.Language == "" {
		c.FactCheck.Language = "en"
	}
	if c.FactCheck.Timeout <= 0 {
		c.FactCheck.Timeout = 15
	}
	if c.FactCheck.CacheTTL <= 0 {
		c.FactCheck.CacheTTL = 3600
	}

	a := &c.Analysis
	if a.MaxContentLength <= 0 {
		a.MaxContentLength = 10000
	}
	if a.MinContentLength <= 0 {
		a.MinContentLength = 10
	}
	if a.MaxBatchSize <= 0 {
		a.MaxBatchSize = 10
	}
	if a.Timeout <= 0 {
		a.Timeout = 30
	}
	if a.MaxKeywords <= 0 {
		a.MaxKeywords = 12
	}
	if a.RecencyDays <= 0 {
		a.RecencyDays = 14
	}
	if a.RetentionDays <= 0 {
		a.RetentionDays = 90
	}
	if a.RetentionCron == "" {
		a.RetentionCron = "0 3 * * *"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.BatchWorker <= 0 {
		c.Concurrency.BatchWorker = 4
	}
	if c.DB.Driver == "" && c.DB.Host != "" {
		c.DB.Driver = "postgres"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24
	}
}

func (c *Config) applyEnv() {
	setIfEnv(&c.LLM.APIKey, "TRUTH_LLM_API_KEY")
	setIfEnv(&c.Vision.APIKey, "TRUTH_VISION_API_KEY")
	setIfEnv(&c.FactCheck.APIKey, "GOOGLE_API_KEY")
	setIfEnv(&c.Search.Tavily.APIKey, "TAVILY_API_KEY")
	setIfEnv(&c.DB.Password, "TRUTH_DB_PASSWORD")
	setIfEnv(&c.Redis.Password, "TRUTH_REDIS_PASSWORD")
	setIfEnv(&c.Auth.JWTKey, "TRUTH_JWT_KEY")
	if v := os.Getenv("TRUTH_MAX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Analysis.MaxBatchSize = n
		}
	}
	// vision 未单独配置时沿用文本模型
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = c.LLM.BaseURL
	}
	if c.Vision.APIKey == "" {
		c.Vision.APIKey = c.LLM.APIKey
	}
	if c.Vision.Model == "" {
		c.Vision.Model = c.LLM.Model
	}
	if c.Vision.Provider == "" {
		c.Vision.Provider = c.LLM.Provider
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
