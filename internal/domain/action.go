package domain

import "strings"

// Action is a lending-protocol action type.
type Action string

const (
	ActionDeposit          Action = "deposit"
	ActionBorrow           Action = "borrow"
	ActionRepay            Action = "repay"
	ActionRedeemUnderlying Action = "redeemunderlying"
	ActionLiquidationCall  Action = "liquidationcall"
	ActionUnknown          Action = ""
)

// ParseAction matches raw against the action vocabulary, ignoring case.
// Anything outside the vocabulary yields ActionUnknown.
func ParseAction(raw string) Action {
	switch a := Action(strings.ToLower(raw)); a {
	case ActionDeposit, ActionBorrow, ActionRepay, ActionRedeemUnderlying, ActionLiquidationCall:
		return a
	default:
		return ActionUnknown
	}
}

// String returns the string representation of Action.
func (a Action) String() string {
	return string(a)
}

// IsKnown reports whether the action belongs to the vocabulary.
func (a Action) IsKnown() bool {
	return a != ActionUnknown
}
