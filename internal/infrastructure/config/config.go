package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件与环境变量覆盖（STOREFRONT_前缀）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Lock     LockConfig     `mapstructure:"lock"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"` // 允许跨域的来源，"*"表示全部
	SSEHeartbeat time.Duration `mapstructure:"sse_heartbeat"`
}

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// StorageConfig 共享键值存储
// 同一个Namespace下的所有执行上下文（API进程、CLI调用）共享库存账本和购物车
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	Namespace  string `mapstructure:"namespace"`
	Dir        string `mapstructure:"dir"`         // file驱动的数据目录
	SQLitePath string `mapstructure:"sqlite_path"` // sqlite驱动的数据库文件
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// 变更信号传输方式
const (
	TransportNone     = "none"     // 只有本地信号
	TransportMemory   = "memory"   // 进程内（同一进程的多个上下文）
	TransportFile     = "file"     // fsnotify监听数据目录
	TransportRedis    = "redis"    // Redis Pub/Sub
	TransportPostgres = "postgres" // LISTEN/NOTIFY
	TransportRabbitMQ = "rabbitmq" // fanout交换机
)

// NotifyConfig 跨上下文变更信号
type NotifyConfig struct {
	Transport string `mapstructure:"transport"` // 为空时跟随storage.driver
}

// LockConfig 存储级单写锁（可选）
// 开启后同一存储上的预留操作串行执行，消除跨上下文的丢失更新
type LockConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type CatalogConfig struct {
	URL     string        `mapstructure:"url"`  // 远程目录（优先）
	Path    string        `mapstructure:"path"` // 本地目录文件（.json/.yaml）
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type CheckoutConfig struct {
	ShippingFee     float64       `mapstructure:"shipping_fee"`
	ProcessingDelay time.Duration `mapstructure:"processing_delay"`
	Currency        string        `mapstructure:"currency"`
	PaymentMethods  []string      `mapstructure:"payment_methods"`
}

// ShippingFeeAmount 运费（decimal）
func (c CheckoutConfig) ShippingFeeAmount() decimal.Decimal {
	return decimal.NewFromFloat(c.ShippingFee)
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TransportName 实际使用的变更信号传输方式
func (c *Config) TransportName() string {
	if c.Notify.Transport != "" {
		return c.Notify.Transport
	}
	switch c.Storage.Driver {
	case DriverFile:
		return TransportFile
	case DriverRedis:
		return TransportRedis
	case DriverPostgres:
		return TransportPostgres
	case DriverMemory:
		return TransportMemory
	default:
		// sqlite/mysql 没有原生通知机制
		return TransportNone
	}
}

// Load 加载配置文件
// 支持：
// 1. 默认加载 ./config/config.yaml 或 ./config.yaml，找不到文件时使用默认值
// 2. 通过环境变量STOREFRONT_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如STOREFRONT_STORAGE_DRIVER=redis）
func Load() (*Config, error) {
	return load(newViper(""))
}

// LoadFrom 加载指定路径的配置文件（CLI的--config参数）
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	return load(newViper(path))
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v
	}

	v.SetConfigName("config")
	if env := v.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	return v
}

func load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 0) // SSE长连接不设写超时
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.sse_heartbeat", 15*time.Second)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.namespace", "storefront")
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.sqlite_path", "./data/storefront.db")

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("postgres.max_conns", 10)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "storefront.changes")

	// 空值也要注册，否则环境变量覆盖在Unmarshal时不可见
	v.SetDefault("notify.transport", "")
	v.SetDefault("catalog.url", "")
	v.SetDefault("postgres.dsn", "")

	v.SetDefault("lock.enabled", false)
	v.SetDefault("lock.ttl", 5*time.Second)
	v.SetDefault("lock.retry_interval", 20*time.Millisecond)

	v.SetDefault("catalog.path", "./config/products.json")
	v.SetDefault("catalog.timeout", 5*time.Second)
	v.SetDefault("catalog.breaker.max_failures", 3)
	v.SetDefault("catalog.breaker.timeout", 30*time.Second)

	v.SetDefault("checkout.shipping_fee", 50)
	v.SetDefault("checkout.processing_delay", 2*time.Second)
	v.SetDefault("checkout.currency", "USD")
	v.SetDefault("checkout.payment_methods", []string{"credit-card", "paypal", "cash-on-delivery"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("tracing.service_name", "storefront")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("不支持的存储驱动: %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Namespace == "" {
		return fmt.Errorf("storage.namespace不能为空")
	}
	if cfg.Storage.Driver == DriverPostgres && cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres驱动需要配置postgres.dsn")
	}

	switch cfg.TransportName() {
	case TransportNone, TransportMemory, TransportFile, TransportRedis, TransportPostgres:
	case TransportRabbitMQ:
		if cfg.RabbitMQ.URL == "" {
			return fmt.Errorf("rabbitmq传输需要配置rabbitmq.url")
		}
	default:
		return fmt.Errorf("不支持的通知传输: %q", cfg.Notify.Transport)
	}

	if cfg.Catalog.URL == "" && cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.url和catalog.path至少配置一个")
	}

	if cfg.Checkout.ShippingFee < 0 {
		return fmt.Errorf("运费不能为负数: %v", cfg.Checkout.ShippingFee)
	}
	if len(cfg.Checkout.PaymentMethods) == 0 {
		return fmt.Errorf("至少配置一种支付方式")
	}

	return nil
}
