package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type effect int

const (
	effectNone effect = iota
	effectApply
	effectReverse
)

type recordTransition struct {
	from   TxStatus
	action Action
}

type recordOutcome struct {
	to     TxStatus
	effect effect
}

// recordTransitions is the complete state machine for transfers and deposits.
// Combinations missing from the table are either repeats (AlreadyProcessed) or unknown actions.
var recordTransitions = map[recordTransition]recordOutcome{
	{TxStatusPending, ActionApprove}:  {TxStatusSuccess, effectApply},
	{TxStatusFailed, ActionApprove}:   {TxStatusSuccess, effectApply},
	{TxStatusDeclined, ActionApprove}: {TxStatusSuccess, effectApply},
	{TxStatusPending, ActionDecline}:  {TxStatusDeclined, effectNone},
	{TxStatusFailed, ActionDecline}:   {TxStatusDeclined, effectNone},
	{TxStatusSuccess, ActionDecline}:  {TxStatusDeclined, effectReverse},
}

// Resolution is the outcome of an admin action on a record: the next status and the
// signed amount to add to the record's wallet account (zero means no wallet write).
type Resolution struct {
	Next  TxStatus
	Delta decimal.Decimal
}

func ResolveRecord(r Resolvable, action Action) (Resolution, error) {
	if action != ActionApprove && action != ActionDecline {
		return Resolution{}, fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, action)
	}
	out, ok := recordTransitions[recordTransition{from: r.Status, action: action}]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: transaction already %sd", ErrAlreadyProcessed, action)
	}

	apply, err := applyDelta(r)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Next: out.to, Delta: decimal.Zero}
	switch out.effect {
	case effectApply:
		res.Delta = apply
	case effectReverse:
		res.Delta = apply.Neg()
	}
	return res, nil
}

// applyDelta is the wallet change made when a record is approved.
func applyDelta(r Resolvable) (decimal.Decimal, error) {
	switch r.Kind {
	case KindDeposit:
		return r.Amount, nil
	case KindTransfer:
		return r.Amount.Add(r.Fee).Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: invalid transaction type specified: %q", ErrInvalidArgument, r.Kind)
	}
}

type loanTransition struct {
	from   LoanStatus
	action Action
}

// Loans are terminal once approved or rejected.
var loanTransitions = map[loanTransition]LoanStatus{
	{LoanStatusPending, ActionApprove}: LoanStatusApproved,
	{LoanStatusPending, ActionReject}:  LoanStatusRejected,
}

func ResolveLoan(current LoanStatus, action Action) (LoanStatus, error) {
	if action != ActionApprove && action != ActionReject {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, action)
	}
	next, ok := loanTransitions[loanTransition{from: current, action: action}]
	if !ok {
		return "", fmt.Errorf("%w: loan application already %s", ErrAlreadyProcessed, current)
	}
	return next, nil
}

var userStatusTargets = map[StatusAction]UserStatus{
	StatusActionApprove:    UserStatusActive,
	StatusActionDeny:       UserStatusDenied,
	StatusActionDeactivate: UserStatusDeactivated,
}

func ResolveUserStatus(current UserStatus, action StatusAction) (UserStatus, error) {
	next, ok := userStatusTargets[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown status action %q", ErrInvalidArgument, action)
	}
	if current == next {
		return "", fmt.Errorf("%w: user account already %s", ErrAlreadyProcessed, next)
	}
	return next, nil
}
