package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tip-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Dtk        DtkConfig        `mapstructure:"dtk"`
	Tb         TbConfig         `mapstructure:"tb"`
	Profit     ProfitConfig     `mapstructure:"profit"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Goods      GoodsConfig      `mapstructure:"goods"`
	Sync       SyncConfig       `mapstructure:"sync"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为日志初始化选项
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string       `mapstructure:"driver"`
	DSN    string       `mapstructure:"dsn"`
	Pool   DBPoolConfig `mapstructure:"pool"`
}

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// DtkConfig 大淘客开放平台配置
type DtkConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	AppKey        string `mapstructure:"app_key"`
	AppSecret     string `mapstructure:"app_secret"`
	Pid           string `mapstructure:"pid"`
	PageSize      int    `mapstructure:"page_size"`
	PageDelayMs   int    `mapstructure:"page_delay_ms"`
	HTTPTimeoutMs int    `mapstructure:"http_timeout_ms"`
}

// TbConfig 淘宝开放平台直连配置
type TbConfig struct {
	GatewayURL       string `mapstructure:"gateway_url"`
	AppKey           string `mapstructure:"app_key"`
	AppSecret        string `mapstructure:"app_secret"`
	SessionKey       string `mapstructure:"session_key"`
	MaxWindowMinutes int    `mapstructure:"max_window_minutes"`
	PageSize         int    `mapstructure:"page_size"`
	Fields           string `mapstructure:"fields"`
	PageDelayMs      int    `mapstructure:"page_delay_ms"`
	HTTPTimeoutMs    int    `mapstructure:"http_timeout_ms"`
}

// ProfitRuleConfig 单条盈利规则配置
type ProfitRuleConfig struct {
	RuleID             string  `mapstructure:"rule_id"`
	UnionPlatform      string  `mapstructure:"union_platform"`
	EcommercePlatform  string  `mapstructure:"ecommerce_platform"`
	EffectiveFrom      string  `mapstructure:"effective_from"` // yyyy-MM-dd HH:mm:ss
	BaseDeductionRate  float64 `mapstructure:"base_deduction_rate"`
	PlatformProfitRate float64 `mapstructure:"platform_profit_rate"`
	UserShareRate      float64 `mapstructure:"user_share_rate"`
}

// ProfitConfig 盈利/分成配置
type ProfitConfig struct {
	DefaultRule ProfitRuleConfig   `mapstructure:"default_rule"`
	Rules       []ProfitRuleConfig `mapstructure:"rules"`
}

// SettlementConfig 结算对账配置
type SettlementConfig struct {
	PageSize int    `mapstructure:"page_size"`
	Cron     string `mapstructure:"cron"`
}

// GoodsConfig 本地商品库同步配置
type GoodsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	PageSize           int  `mapstructure:"page_size"`
	LockTimeoutSeconds int  `mapstructure:"lock_timeout_seconds"`
	CacheTTLSeconds    int  `mapstructure:"cache_ttl_seconds"`
}

// SyncConfig 周期同步调度配置（asynq scheduler cron 表达式）
type SyncConfig struct {
	OrderCron       string `mapstructure:"order_cron"`       // 联盟订单增量同步
	LookbackMinutes int    `mapstructure:"lookback_minutes"` // 增量同步回看窗口
	TbCron          string `mapstructure:"tb_cron"`          // 淘宝直连增量同步
	TbRefundCron    string `mapstructure:"tb_refund_cron"`   // 淘宝退款补偿
	TbPunishCron    string `mapstructure:"tb_punish_cron"`   // 淘宝处罚补偿
	GoodsCron       string `mapstructure:"goods_cron"`       // 商品增量同步
	GoodsStaleCron  string `mapstructure:"goods_stale_cron"` // 失效商品标记
}

// LockTimeout 同步互斥锁等待超时
func (c GoodsConfig) LockTimeout() time.Duration {
	if c.LockTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// CacheTTL 首屏缓存过期时间
func (c GoodsConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./")
	viper.AddConfigPath("../") // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "tip.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/tip.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "tip")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("dtk.base_url", "https://openapi.dataoke.com")
	viper.SetDefault("dtk.app_key", "")
	viper.SetDefault("dtk.app_secret", "")
	viper.SetDefault("dtk.pid", "")
	viper.SetDefault("dtk.page_size", 100)
	viper.SetDefault("dtk.page_delay_ms", 200)
	viper.SetDefault("dtk.http_timeout_ms", 10000)
	viper.SetDefault("tb.gateway_url", "https://eco.taobao.com/router/rest")
	viper.SetDefault("tb.app_key", "")
	viper.SetDefault("tb.app_secret", "")
	viper.SetDefault("tb.session_key", "")
	viper.SetDefault("tb.max_window_minutes", 20)
	viper.SetDefault("tb.page_size", 100)
	viper.SetDefault("tb.fields", "trade_id,tk_status,refund_tag,pub_share_fee,pub_share_pre_fee,adzone_id,relation_id,special_id,tk_paid_time,tk_create_time,tk_earning_time,tk_modified_time,item_title,item_img,alipay_total_price,pay_price,deposit_price,item_id")
	viper.SetDefault("tb.page_delay_ms", 200)
	viper.SetDefault("tb.http_timeout_ms", 10000)
	viper.SetDefault("profit.default_rule.rule_id", "default")
	viper.SetDefault("profit.default_rule.base_deduction_rate", 0.0)
	viper.SetDefault("profit.default_rule.platform_profit_rate", 0.02)
	viper.SetDefault("profit.default_rule.user_share_rate", 1.0)
	viper.SetDefault("settlement.page_size", 500)
	viper.SetDefault("settlement.cron", "0 1 24 * *")
	viper.SetDefault("sync.order_cron", "@every 10m")
	viper.SetDefault("sync.lookback_minutes", 30)
	viper.SetDefault("sync.tb_cron", "@every 5m")
	viper.SetDefault("sync.tb_refund_cron", "0 2 * * *")
	viper.SetDefault("sync.tb_punish_cron", "30 2 * * *")
	viper.SetDefault("sync.goods_cron", "@every 10m")
	viper.SetDefault("sync.goods_stale_cron", "@every 10m")
	viper.SetDefault("goods.enabled", false)
	viper.SetDefault("goods.page_size", 100)
	viper.SetDefault("goods.lock_timeout_seconds", 0)
	viper.SetDefault("goods.cache_ttl_seconds", 600)

	// 环境变量支持
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
