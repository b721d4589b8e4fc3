package hookspec

// Code is the stable numeric error code surfaced to callers, matching the
// original library's taxonomy: OK=0, INVAL, NOMEM, UNKNOWN.
type Code int

const (
	CodeOK Code = iota
	CodeInvalidArg
	CodeNoMemory
	CodeUnknown
)

// HookError is a sentinel error carrying a stable Code.
type HookError struct {
	code Code
	msg  string
}

func (e *HookError) Error() string { return e.msg }

// Code returns the stable numeric code for this error.
func (e *HookError) Code() Code { return e.code }

var (
	// ErrInvalidArg is returned for null/empty required arguments or a
	// regex that fails to compile.
	ErrInvalidArg = &HookError{code: CodeInvalidArg, msg: "hookspec: invalid argument"}

	// ErrNoMemory is retained for parity with the original C library's
	// error table; under the Go runtime's memory model this path is not
	// reachable (allocation failure is not a recoverable condition here).
	ErrNoMemory = &HookError{code: CodeNoMemory, msg: "hookspec: allocation failed"}

	// ErrUnknown covers initialization failures (probe guard install,
	// worker create) and any other environmental failure not otherwise
	// classified.
	ErrUnknown = &HookError{code: CodeUnknown, msg: "hookspec: initialization failed"}
)
