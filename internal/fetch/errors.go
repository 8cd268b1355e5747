package fetch

import "fmt"

// ErrorKind classifies a failed fetch attempt per the agent's error taxonomy.
type ErrorKind int

const (
	// ParseError means the payload was malformed. The caller fails open
	// toward "no alert".
	ParseError ErrorKind = iota
	// NetworkError covers transport failures, timeouts and 5xx responses.
	// Transient; the prior presentation state is retained.
	NetworkError
	// AuthError covers 401/403. Terminal until the credential refreshes,
	// but retried every tick regardless.
	AuthError
	// FileSystemError covers unreadable local alert files (not missing
	// ones). Treated like NetworkError: retain state, retry next tick.
	FileSystemError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse"
	case NetworkError:
		return "network"
	case AuthError:
		return "auth"
	case FileSystemError:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether the failure should leave the last known
// presentation state untouched. Every kind except ParseError qualifies;
// a parse failure means the source is reachable but serving garbage.
func (e *Error) Transient() bool {
	return e.Kind != ParseError
}

func wrap(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
