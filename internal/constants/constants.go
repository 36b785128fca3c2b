package constants

const (
	// Context keys
	ContextKeyUser      = "current_user"
	ContextKeyAPIKey    = "current_api_key"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"

	// Headers
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "X-API-Key"
	HeaderRequestID     = "X-Request-ID"

	// Credentials
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 3
	APIKeyBytes       = 32
	APIKeyPrefixLen   = 8

	// VerificationTokenBytes is the entropy of an email verification token.
	VerificationTokenBytes = 16

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 100000

	// MaxBulkItems limits each section of a bulk task request.
	MaxBulkItems = 100

	MaxAIGeneratedTasks = 20
)
