package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server          ServerConfig       `mapstructure:"server"`           // 服务器配置
	Database        DatabaseConfig     `mapstructure:"database"`         // PostgreSQL配置
	Redis           RedisConfig        `mapstructure:"redis"`            // Redis配置（任务队列）
	Resolver        ResolverConfig     `mapstructure:"resolver"`         // URL解析配置
	Enrichment      CollaboratorConfig `mapstructure:"enrichment"`       // 打分/富化服务
	MatchGeneration CollaboratorConfig `mapstructure:"match_generation"` // 匹配生成服务
	Queue           QueueConfig        `mapstructure:"queue"`            // 异步任务队列
	Radar           RadarConfig        `mapstructure:"radar"`            // 雷达表配置
	Validator       ValidatorConfig    `mapstructure:"validator"`        // 视图校验配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`         // 服务端口
	Mode        string   `mapstructure:"mode"`         // Gin运行模式：debug/release/test
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许的前端来源
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ResolverConfig URL→初创公司解析配置
type ResolverConfig struct {
	FallbackGodScore   float64       `mapstructure:"fallback_god_score"`   // 临时记录的中性分
	DefaultSector      string        `mapstructure:"default_sector"`       // 临时记录的默认行业
	LegacyWebsiteMatch bool          `mapstructure:"legacy_website_match"` // 是否启用旧website模糊匹配（回填完成后关闭）
	CacheSize          int           `mapstructure:"cache_size"`           // 域名缓存条数，0为关闭
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`            // 域名缓存过期时间
}

// CollaboratorConfig 外部HTTP协作方配置
type CollaboratorConfig struct {
	BaseURL   string `mapstructure:"base_url"`   // API基础地址
	Path      string `mapstructure:"path"`       // 接口路径
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
	Proxy     string `mapstructure:"proxy"`      // 代理地址
	AuthToken string `mapstructure:"auth_token"` // Bearer Token
}

// QueueConfig 异步任务队列配置
type QueueConfig struct {
	Backend      string        `mapstructure:"backend"`       // redis / memory
	Key          string        `mapstructure:"key"`           // Redis list key
	Workers      int           `mapstructure:"workers"`       // 消费协程数
	Buffer       int           `mapstructure:"buffer"`        // memory 队列容量
	MaxAttempts  int           `mapstructure:"max_attempts"`  // 单任务最大尝试次数，超过进入死信
	BlockTimeout time.Duration `mapstructure:"block_timeout"` // BRPOP 阻塞时长

	SweepInterval time.Duration `mapstructure:"sweep_interval"` // 未富化记录补投间隔，0为关闭
	SweepGrace    time.Duration `mapstructure:"sweep_grace"`    // 创建后多久仍未富化才补投
	SweepBatch    int           `mapstructure:"sweep_batch"`    // 单次补投上限
	SweepMax      int           `mapstructure:"sweep_max"`      // 每条记录最多补投次数
}

// RadarConfig 雷达表配置
type RadarConfig struct {
	AutoUnlockCount int `mapstructure:"auto_unlock_count"` // 前N行自动解锁
	DailyUnlocks    int `mapstructure:"daily_unlocks"`     // 每个初创公司每日可手动解锁数
	TableLimit      int `mapstructure:"table_limit"`       // 雷达表最大行数
}

// ValidatorConfig 视图模型校验配置
type ValidatorConfig struct {
	FallbackSentinels []float64 `mapstructure:"fallback_sentinels"` // 疑似上游兜底值的GOD分
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	v := viper.New()
	setDefaults(v)

	// 2. 读取 config.yaml（文件缺失时使用默认值）
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("resolver.fallback_god_score", 45)
	v.SetDefault("resolver.default_sector", "Technology")
	v.SetDefault("resolver.legacy_website_match", true)
	v.SetDefault("resolver.cache_size", 4096)
	v.SetDefault("resolver.cache_ttl", 10*time.Minute)
	v.SetDefault("enrichment.path", "/api/enrich")
	v.SetDefault("enrichment.timeout", 30)
	v.SetDefault("match_generation.path", "/api/matches/generate")
	v.SetDefault("match_generation.timeout", 10)
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.key", "pythh:jobs")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.buffer", 256)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.block_timeout", 5*time.Second)
	v.SetDefault("queue.sweep_interval", 10*time.Minute)
	v.SetDefault("queue.sweep_grace", 15*time.Minute)
	v.SetDefault("queue.sweep_batch", 100)
	v.SetDefault("queue.sweep_max", 3)
	v.SetDefault("radar.auto_unlock_count", 5)
	v.SetDefault("radar.daily_unlocks", 3)
	v.SetDefault("radar.table_limit", 50)
	v.SetDefault("validator.fallback_sentinels", []float64{100})
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ENRICHMENT_TOKEN"); v != "" {
		cfg.Enrichment.AuthToken = v
		cfg.MatchGeneration.AuthToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
