package errs

// Error codes for the DM domain. Grouped the way the HTTP layer maps them:
// 401x -> 401, 403x -> 403, 404x -> 404, 400x -> 400.
const (
	CodeUnauthorized = 4010 // no caller identity
	CodeForbidden    = 4030 // not a participant / not the author / bad emoji
	CodeNotFound     = 4040 // thread or message missing, or not the caller's
	CodeInvalidPeer  = 4001 // self-messaging or nonexistent target
	CodeNotActive    = 4002 // thread not mutual yet
	CodeEmptyBody    = 4003 // blank message body

	CodeServerInternal = 5000
)

var (
	ErrUnauthorized = NewCodeError(CodeUnauthorized, "unauthorized")
	ErrForbidden    = NewCodeError(CodeForbidden, "forbidden")
	ErrNotFound     = NewCodeError(CodeNotFound, "not found")
	ErrInvalidPeer  = NewCodeError(CodeInvalidPeer, "invalid peer")
	ErrNotActive    = NewCodeError(CodeNotActive, "thread not active")
	ErrEmptyBody    = NewCodeError(CodeEmptyBody, "empty body")

	ErrInternal = NewCodeError(CodeServerInternal, "internal error")
)
