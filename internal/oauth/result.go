package oauth

// ResultKind discriminates the terminal outcomes of one callback wait.
type ResultKind int

const (
	// ResultCode means the provider redirected back with an authorization code.
	ResultCode ResultKind = iota

	// ResultError means the provider reported an error in the callback.
	ResultError

	// ResultTimeout means no callback arrived within the configured bound,
	// or the wait was cancelled before one arrived.
	ResultTimeout
)

// String returns the string representation of the result kind.
func (k ResultKind) String() string {
	switch k {
	case ResultCode:
		return "code"
	case ResultError:
		return "error"
	case ResultTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one flow attempt's callback wait.
// Exactly one Result is produced per attempt; which fields are meaningful
// depends on Kind.
type Result struct {
	// Kind selects the variant.
	Kind ResultKind

	// Code is the authorization code (Kind == ResultCode).
	Code string

	// State is the state parameter echoed by the provider, if any.
	State string

	// Message is the error text (Kind == ResultError or ResultTimeout).
	Message string
}

// noCodeMessage is latched when a callback carries neither a code nor an
// error parameter.
const noCodeMessage = "No authorization code found in callback"
