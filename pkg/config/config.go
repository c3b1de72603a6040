package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 LOGICORE_REDIS_ADDR 覆盖 redis.addr
const EnvPrefix = "LOGICORE"

// Config 全局配置
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Server  ServerConfig   `mapstructure:"server"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Workers []WorkerConfig `mapstructure:"workers"`
	Rates   RatesConfig    `mapstructure:"rates"`
	Store   StoreConfig    `mapstructure:"store"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	MachineID int64  `mapstructure:"machine_id"` // 雪花 ID 机器号（0-99）
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"` // gin 模式：debug/release/test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	MaxWait      time.Duration `mapstructure:"max_wait"`  // Smart Wait 上限
	QuoteTTL     time.Duration `mapstructure:"quote_ttl"` // 异步报价结果保留时长
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Namespace  string        `mapstructure:"namespace"`
	Token      string        `mapstructure:"token"`
	QuoteQueue string        `mapstructure:"quote_queue"` // apiserver 投递报价任务的队列
	JobTTL     time.Duration `mapstructure:"job_ttl"`     // 任务在队列中的存活时间，0 表示不过期
	JobTries   int           `mapstructure:"job_tries"`   // 最大投递次数（含重试）
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// RatesConfig 费率引擎配置
type RatesConfig struct {
	Source      string           `mapstructure:"source"`    // static/http/mysql
	Directory   string           `mapstructure:"directory"` // static/mysql
	Concurrency int              `mapstructure:"concurrency"`
	HTTP        RatesHTTPConfig  `mapstructure:"http"`
	Cards       []RateCardConfig `mapstructure:"cards"`
}

// RatesHTTPConfig 远程费率卡服务
type RatesHTTPConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"`
}

// RateCardConfig 配置文件中的费率卡（金额以数字书写）
type RateCardConfig struct {
	Mode                 string                  `mapstructure:"mode"`
	Courier              string                  `mapstructure:"courier"`
	Service              string                  `mapstructure:"service"`
	BaseRate             float64                 `mapstructure:"base_rate"`
	AdditionalWeightRate float64                 `mapstructure:"additional_weight_rate"`
	CODRate              float64                 `mapstructure:"cod_rate"`
	CODPercentage        float64                 `mapstructure:"cod_percentage"`
	GSTPercentage        float64                 `mapstructure:"gst_percentage"`
	FreeWeightThreshold  float64                 `mapstructure:"free_weight_threshold"`
	WeightStep           float64                 `mapstructure:"weight_step"`
	TransitDays          int                     `mapstructure:"transit_days"`
	Zones                map[string]TariffConfig `mapstructure:"zones"`
}

// TariffConfig 区域档位
type TariffConfig struct {
	BaseRate             float64 `mapstructure:"base_rate"`
	AdditionalWeightRate float64 `mapstructure:"additional_weight_rate"`
}

// StoreConfig 加密存储配置
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // memory/file/redis
	Path       string `mapstructure:"path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	QuotaBytes int    `mapstructure:"quota_bytes"`
	Passphrase string `mapstructure:"passphrase"`
	Salt       string `mapstructure:"salt"`
	Iterations int    `mapstructure:"iterations"`
}

// 费率卡来源
const (
	SourceStatic = "static"
	SourceHTTP   = "http"
	SourceMySQL  = "mysql"
)

// 存储后端
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Load 加载配置文件，环境变量优先
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "logicore")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.machine_id", 1)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 35*time.Second)
	v.SetDefault("server.max_wait", 30*time.Second)
	v.SetDefault("server.quote_ttl", 10*time.Minute)

	v.SetDefault("redis.addr", "127.0.0.1:6379")

	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.quote_queue", "rate_quote")
	v.SetDefault("lmstfy.job_ttl", time.Hour)
	v.SetDefault("lmstfy.job_tries", 3)

	v.SetDefault("rates.source", SourceStatic)
	v.SetDefault("rates.directory", "static")
	v.SetDefault("rates.http.timeout", 5*time.Second)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", "data/securestore.json")
	v.SetDefault("store.key_prefix", "securestore:")
	v.SetDefault("store.iterations", 100000)
}

// Validate 验证通用配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.App.MachineID < 0 || c.App.MachineID > 99 {
		return fmt.Errorf("app.machine_id must be in [0, 99]")
	}

	switch c.Rates.Source {
	case SourceStatic:
		if len(c.Rates.Cards) == 0 {
			return fmt.Errorf("rates.cards is required when rates.source is static")
		}
	case SourceHTTP:
		if c.Rates.HTTP.BaseURL == "" {
			return fmt.Errorf("rates.http.base_url is required when rates.source is http")
		}
	case SourceMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("mysql.dsn is required when rates.source is mysql")
		}
	default:
		return fmt.Errorf("unknown rates.source: %q", c.Rates.Source)
	}

	switch c.Rates.Directory {
	case "static":
	case SourceMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("mysql.dsn is required when rates.directory is mysql")
		}
	default:
		return fmt.Errorf("unknown rates.directory: %q", c.Rates.Directory)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.KeyPrefix == "" {
			return fmt.Errorf("store.key_prefix is required for redis backend")
		}
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for file backend")
		}
	default:
		return fmt.Errorf("unknown store.backend: %q", c.Store.Backend)
	}

	return nil
}

// ValidateWorker 验证 worker 进程所需配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for _, w := range c.Workers {
		if w.QueueName == "" {
			return fmt.Errorf("worker %q: queue_name is required", w.Name)
		}
		if w.Subscriber.Threads <= 0 || w.Processor.Threads <= 0 {
			return fmt.Errorf("worker %q: subscriber and processor threads must be positive", w.Name)
		}
	}
	return nil
}

// ValidateServer 验证 apiserver 进程所需配置
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxWait <= 0 {
		return fmt.Errorf("server.max_wait must be positive")
	}
	return nil
}
