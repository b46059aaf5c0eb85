package obj

import (
	"errors"
	"fmt"

	"github.com/milk9111/poles/ecs"
)

var (
	ErrNoPosition       = errors.New("obj: game object has no position component")
	ErrNoParentPosition = errors.New("obj: parent has no position component")
	ErrNoParent         = errors.New("obj: game object has no parent")
	ErrNilParent        = errors.New("obj: parent is nil")
	ErrParentCycle      = errors.New("obj: parent chain would form a cycle")
	ErrDanglingParent   = errors.New("obj: parent was destroyed")
	ErrNilComponent     = errors.New("obj: component is nil")
	ErrNoComponent      = errors.New("obj: component not attached")
	ErrPositionRequired = errors.New("obj: position component cannot be removed")
	ErrNoVelocity       = errors.New("obj: game object has no velocity component")
	ErrNoAnimation      = errors.New("obj: game object has no animation component")
	ErrNoCamera         = errors.New("obj: game object has no camera component")
	ErrDestroyed        = errors.New("obj: game object was destroyed")
	ErrNilObject        = errors.New("obj: game object is nil")
	ErrForeignObject    = errors.New("obj: game object belongs to another session")
)

// Severity tells the caller what to do with an Error. Soft errors come with a
// best-effort result and are safe to log and ignore; halting errors mean the
// operation could not act at all and the game loop should stop and surface it.
type Severity uint8

const (
	SeveritySoft Severity = iota + 1
	SeverityHalting
)

func (s Severity) String() string {
	switch s {
	case SeveritySoft:
		return "soft"
	case SeverityHalting:
		return "halting"
	default:
		return "unknown"
	}
}

// Error is returned by every GameObject operation that fails.
type Error struct {
	Op       string
	Object   string
	Entity   ecs.Entity
	Severity Severity
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("obj: %s %q (entity %s): %v", e.Op, e.Object, e.Entity, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsHalting reports whether err carries SeverityHalting.
func IsHalting(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Severity == SeverityHalting
}

// SeverityOf returns the severity of err, or 0 when err is not an *Error.
func SeverityOf(err error) Severity {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Severity
	}
	return 0
}
