package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"

	// Route parameters
	ParamProvider  = "provider"
	ParamProjectID = "projectId"
	ParamChannelID = "channelId"

	// Redis key prefixes
	RedisPrefixRateLimit = "channelsync:ratelimit:"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgUnauthorized        = "Unauthorized access"
	ErrMsgRateLimited         = "rate limit exceeded, please try again later"
)
