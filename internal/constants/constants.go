package constants

const (
	// Session
	SessionCookieName = "task_session"
	SessionMaxAge     = 86400 * 7

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"

	// AI task drafting
	MaxAIGeneratedTasks = 20

	// Redis session pool
	RedisPoolSize = 10
)
