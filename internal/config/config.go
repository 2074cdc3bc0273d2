package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置（订阅模式数据源）
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// PollConfig HTTP轮询配置（后备数据源）
type PollConfig struct {
	URL       string        // 轮询端点，返回 {items: [...]}
	Interval  time.Duration // 轮询间隔
	Limit     int           // limit 查询参数
	Timeframe string        // timeframe 查询参数
}

// Config 服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Poll     PollConfig

	// 监控管道配置
	Monitor struct {
		PatientID      string        // 患者ID
		AgeGroup       string        // 阈值档位："child", "adult", "elderly"
		BufferCapacity int           // 读数缓冲区容量，默认 100
		StaleAfter     time.Duration // 无新数据多久后标记 stale，默认 15秒
		AlertCooldown  time.Duration // 报警冷却时间，默认 5分钟
		SourceMode     string        // "mqtt" 或 "poll"，默认 mqtt
	}

	// 缓存配置
	Cache struct {
		LatestKeyPrefix string // 实时读数缓存键前缀，如 "vitals:patient:"
		LatestSuffix    string // 实时读数缓存键后缀，如 ":latest"
		AlertKeyPrefix  string // 活跃报警缓存键前缀
		AlertSuffix     string // 活跃报警缓存键后缀
		LatestTTL       time.Duration
		AlertTTL        time.Duration
		StateKeyPrefix  string // 冷却状态键前缀，如 "alert:state:"
	}

	// 报警分发配置
	Notify struct {
		WebhookURL  string // 为空则不启用 webhook 分发
		AlertStream string // Redis Stream 名称，为空则不发布
	}

	// HTTP API 配置
	HTTP struct {
		Port int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量 + 默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "vitals")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "vitals-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "vitals/+/readings")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.Poll.URL = getEnv("POLL_URL", "")
	cfg.Poll.Interval = getEnvDuration("POLL_INTERVAL", 5*time.Second)
	cfg.Poll.Limit = getEnvInt("POLL_LIMIT", 20)
	cfg.Poll.Timeframe = getEnv("POLL_TIMEFRAME", "1h")

	cfg.Monitor.PatientID = getEnv("PATIENT_ID", "")
	cfg.Monitor.AgeGroup = getEnv("AGE_GROUP", "adult")
	cfg.Monitor.BufferCapacity = getEnvInt("BUFFER_CAPACITY", 100)
	cfg.Monitor.StaleAfter = getEnvDuration("STALE_AFTER", 15*time.Second)
	cfg.Monitor.AlertCooldown = getEnvDuration("ALERT_COOLDOWN", 5*time.Minute)
	cfg.Monitor.SourceMode = getEnv("SOURCE_MODE", "mqtt")

	cfg.Cache.LatestKeyPrefix = getEnv("CACHE_LATEST_PREFIX", "vitals:patient:")
	cfg.Cache.LatestSuffix = ":latest"
	cfg.Cache.AlertKeyPrefix = getEnv("CACHE_ALERT_PREFIX", "vitals:patient:")
	cfg.Cache.AlertSuffix = ":alerts"
	cfg.Cache.LatestTTL = getEnvDuration("CACHE_LATEST_TTL", 30*time.Second)
	cfg.Cache.AlertTTL = getEnvDuration("CACHE_ALERT_TTL", 30*time.Second)
	cfg.Cache.StateKeyPrefix = getEnv("CACHE_STATE_PREFIX", "alert:state:")

	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", "")
	cfg.Notify.AlertStream = getEnv("NOTIFY_ALERT_STREAM", "vitals:alerts")

	cfg.HTTP.Port = getEnvInt("HTTP_PORT", 8080)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Monitor.SourceMode != "mqtt" && cfg.Monitor.SourceMode != "poll" {
		return nil, fmt.Errorf("invalid SOURCE_MODE: %s (must be \"mqtt\" or \"poll\")", cfg.Monitor.SourceMode)
	}
	if cfg.Monitor.SourceMode == "poll" && cfg.Poll.URL == "" {
		return nil, fmt.Errorf("POLL_URL is required when SOURCE_MODE=poll")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
