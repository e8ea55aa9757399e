package engine

import (
	"errors"
	"fmt"

	"github.com/trackline/trackline/internal/model"
)

// RuleViolation means a domain invariant or rate limit rejected the
// action. It always aborts the enclosing transaction; no partial state
// survives. The message is human-readable and safe to surface to clients.
type RuleViolation struct {
	Msg string
}

func (e *RuleViolation) Error() string {
	return "rule violation: " + e.Msg
}

// IsRuleViolation reports whether err is (or wraps) a RuleViolation.
func IsRuleViolation(err error) bool {
	var rv *RuleViolation
	return errors.As(err, &rv)
}

// deny builds the RuleViolation every guard fails with.
func deny(format string, args ...any) error {
	return &RuleViolation{Msg: fmt.Sprintf(format, args...)}
}

// UnknownEntity means a referenced key does not exist in the store. It
// aborts resolution before any mutation runs.
type UnknownEntity struct {
	ID model.ID
}

func (e *UnknownEntity) Error() string {
	return fmt.Sprintf("unknown entity: %s", e.ID.String())
}

// IsUnknownEntity reports whether err is (or wraps) an UnknownEntity.
func IsUnknownEntity(err error) bool {
	var ue *UnknownEntity
	return errors.As(err, &ue)
}
