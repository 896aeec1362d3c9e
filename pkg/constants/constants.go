package constants

const (
	CHANNEL_SIZE           = 100 // 通道大小
	REDIS_TIMEOUT          = 1   // redis timeout (分钟)
	PROFILE_CACHE_TTL      = 10  // 资料缓存有效期（分钟）
	REPORT_ALERT_THRESHOLD = 5   // 被举报次数达到该值时告警
)

// Redis 键前缀
const (
	PROFILE_CACHE_PREFIX = "profile:"
	TYPING_PREFIX        = "typing:"
)
