package skyjo

import "fmt"

// ViolationKind classifies a rejected engine operation.
type ViolationKind string

const (
	ViolationWrongPhase    ViolationKind = "WrongPhase"
	ViolationInvalidTarget ViolationKind = "InvalidTarget"
	ViolationCardLocked    ViolationKind = "CardLocked"
	ViolationEmptySlot     ViolationKind = "EmptySlot"
)

// RuleViolation is returned by every engine operation that rejects a call.
// The game state is guaranteed unchanged when one is returned. Callers
// surface it to the user; the AI is built so it never triggers one.
type RuleViolation struct {
	Kind   ViolationKind
	Op     string
	Reason string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Reason, e.Kind)
}

func wrongPhase(op, reason string) *RuleViolation {
	return &RuleViolation{Kind: ViolationWrongPhase, Op: op, Reason: reason}
}

func invalidTarget(op, reason string) *RuleViolation {
	return &RuleViolation{Kind: ViolationInvalidTarget, Op: op, Reason: reason}
}

func cardLocked(op, reason string) *RuleViolation {
	return &RuleViolation{Kind: ViolationCardLocked, Op: op, Reason: reason}
}

func emptySlot(op, reason string) *RuleViolation {
	return &RuleViolation{Kind: ViolationEmptySlot, Op: op, Reason: reason}
}
