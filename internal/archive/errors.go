package archive

import "fmt"

// FailureKind categorizes a RequestFailure. The browser does not distinguish kinds;
// they only enrich diagnostics.
type FailureKind int

const (
	KindNetwork FailureKind = iota
	KindStatus
	KindDecode
)

func (k FailureKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// RequestFailure is the single error kind surfaced by Client: transport failures,
// non-success responses and payloads that do not decode.
type RequestFailure struct {
	Op     string // endpoint operation, e.g. "conversations"
	Kind   FailureKind
	Status int // HTTP status for KindStatus
	Err    error
}

func (e *RequestFailure) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: %s %d: %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}
