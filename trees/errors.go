package trees

import (
	"errors"
	"fmt"
)

// Kind classifies table and tree errors so callers can react to the
// class of failure without parsing messages.
type Kind string

const (
	// KindTables marks structural problems in a TableCollection:
	// out of range references, unsorted rows, overlapping edges.
	KindTables Kind = "tables"

	// KindTopology marks problems with the shape of a marginal tree,
	// such as asking for the single root of a multi-root tree.
	KindTopology Kind = "topology"

	// KindSimplify marks inputs that Simplify cannot process.
	KindSimplify Kind = "simplify"
)

// Error is the error type returned by this package. It carries the
// kind of failure and, where one exists, the table row or node that
// triggered it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is, or wraps, a trees Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
