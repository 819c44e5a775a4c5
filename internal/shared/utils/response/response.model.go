package response

// Result is the envelope every endpoint answers with, success or failure.
// The code field mirrors the HTTP status so clients reading only the body
// still see the outcome.
type Result struct {
	Code      int         `json:"code"`                // mirrors the HTTP status
	Message   string      `json:"message"`             // human-readable, user-facing
	Data      interface{} `json:"data,omitempty"`      // payload for success
	Timestamp *int64      `json:"timestamp,omitempty"` // unix milliseconds, opt-in
}

const (
	CodeSuccess            = 200
	CodeBadRequest         = 400
	CodeUnauthorized       = 401
	CodeForbidden          = 403
	CodeNotFound           = 404
	CodeTooManyRequests    = 429
	CodeInternalError      = 500
	CodeServiceUnavailable = 503
)

const (
	defaultSuccessMessage = "success"
	defaultFailureMessage = "操作失败"
)
