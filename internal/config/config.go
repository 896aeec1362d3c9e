// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName  string `toml:"appName"`  // 应用名称，用于日志标识等
	Host     string `toml:"host"`     // 服务器监听地址，如 "0.0.0.0"
	Port     int    `toml:"port"`     // 服务器监听端口，如 8000
	Mode     string `toml:"mode"`     // 运行模式："dev" 或 "release"
	ForceTLS bool   `toml:"forceTLS"` // 是否把 HTTP 请求重定向到 HTTPS
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	MaxOpenConns int    `toml:"maxOpenConns"` // 最大打开连接数
	MaxIdleConns int    `toml:"maxIdleConns"` // 最大空闲连接数
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host        string `toml:"host"`        // Redis 服务器地址
	Port        int    `toml:"port"`        // Redis 端口，默认 6379
	Password    string `toml:"password"`    // Redis 密码，无密码留空
	Db          int    `toml:"db"`          // Redis 数据库编号，默认 0
	WorkerNum   int    `toml:"workerNum"`   // 异步缓存任务 Worker 数量
	TaskBufSize int    `toml:"taskBufSize"` // 异步缓存任务通道缓冲大小
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 事件总线配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // 事件模式："channel"（单机）或 "kafka"（多实例）
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string        `toml:"eventTopic"`  // 实时事件主题
	Timeout     time.Duration `toml:"timeout"`     // 读写超时（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// PresenceConfig 在线状态配置
type PresenceConfig struct {
	LeaseSeconds  int `toml:"leaseSeconds"`  // 心跳租约，超过该时长未收到心跳视为掉线
	SweepSeconds  int `toml:"sweepSeconds"`  // 过期在线记录的巡检间隔
	TypingSeconds int `toml:"typingSeconds"` // "正在输入" 状态的存活时长
}

// MessageConfig 消息配置
type MessageConfig struct {
	MaxContentLength int `toml:"maxContentLength"` // 单条消息最大字符数
}

// MatchConfig 随机匹配配置
type MatchConfig struct {
	Cost int64 `toml:"cost"` // 每次随机匹配扣除的金币，0 表示免费
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // MySQL 配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // Kafka 配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
	PresenceConfig  `toml:"presenceConfig"`  // 在线状态配置
	MessageConfig   `toml:"messageConfig"`   // 消息配置
	MatchConfig     `toml:"matchConfig"`     // 随机匹配配置
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Decode 从 TOML 文本解析配置并补齐默认值
func Decode(data string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.Decode(data, conf); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	conf.ApplyDefaults()
	return conf, nil
}

// ApplyDefaults 为未配置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "spark_chat_server"
	}
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.RedisConfig.WorkerNum <= 0 {
		c.RedisConfig.WorkerNum = 15
	}
	if c.RedisConfig.TaskBufSize <= 0 {
		c.RedisConfig.TaskBufSize = 3000
	}
	if c.KafkaConfig.MessageMode == "" {
		c.KafkaConfig.MessageMode = "channel"
	}
	if c.KafkaConfig.EventTopic == "" {
		c.KafkaConfig.EventTopic = "spark_chat_events"
	}
	if c.KafkaConfig.Timeout <= 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.JWTConfig.AccessTokenExpiry <= 0 {
		c.JWTConfig.AccessTokenExpiry = 120
	}
	if c.PresenceConfig.LeaseSeconds <= 0 {
		c.PresenceConfig.LeaseSeconds = 90
	}
	if c.PresenceConfig.SweepSeconds <= 0 {
		c.PresenceConfig.SweepSeconds = 30
	}
	if c.PresenceConfig.TypingSeconds <= 0 {
		c.PresenceConfig.TypingSeconds = 6
	}
	if c.MessageConfig.MaxContentLength <= 0 {
		c.MessageConfig.MaxContentLength = 2000
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.ApplyDefaults()
	}
	return config
}
