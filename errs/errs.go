package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that only care about the category
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidState      Kind = "invalid_state"
	KindInvalidArgument   Kind = "invalid_argument"
	KindNotEligible       Kind = "not_eligible"
	KindCycleNotEnded     Kind = "cycle_not_ended"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
)

// Error is a domain failure carrying a machine-readable code and a human-readable message.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a domain error
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// With returns a copy of e with extra detail appended to the message
func (e *Error) With(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Msg: e.Msg + ": " + fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first domain error in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf returns the code of the first domain error in err's chain
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Unauthorized
var (
	ErrUnauthorized      = New(KindUnauthorized, "unauthorized", "caller lacks the required capability")
	ErrNotOwner          = New(KindUnauthorized, "not_owner", "caller does not own the token")
	ErrNotOwnerOrManager = New(KindUnauthorized, "not_owner_or_manager", "caller neither owns nor manages the node")
	ErrNotAuthorized     = New(KindUnauthorized, "not_authorized", "caller may not detach this node")
)

// Invalid state
var (
	ErrNodeAlreadyAttached  = New(KindInvalidState, "node_already_attached", "node is attached to another token")
	ErrTokenAlreadyAttached = New(KindInvalidState, "token_already_attached", "token already has a node attached")
	ErrNodeNotAttached      = New(KindInvalidState, "node_not_attached", "node is not attached to the token")
	ErrAttachedToNode       = New(KindInvalidState, "attached_to_node", "token is attached to a node")
	ErrAlreadyClaimed       = New(KindInvalidState, "already_claimed", "reward already claimed")
	ErrNothingToClaim       = New(KindInvalidState, "nothing_to_claim", "voter has no weight in cycle")
	ErrMintingPaused        = New(KindInvalidState, "minting_paused", "minting is paused")
	ErrCycleClosed          = New(KindInvalidState, "cycle_closed", "cycle no longer accepts votes")
)

// Invalid argument
var (
	ErrZeroAddress        = New(KindInvalidArgument, "zero_address", "address is empty or zero")
	ErrInvalidAddress     = New(KindInvalidArgument, "invalid_address", "address is not a 0x-prefixed 20-byte hex string")
	ErrInvalidCycle       = New(KindInvalidArgument, "invalid_cycle", "cycle id is zero or unknown")
	ErrAboveMaxLevel      = New(KindInvalidArgument, "above_max_level", "token is already at the maximum level")
	ErrInvalidAmount      = New(KindInvalidArgument, "invalid_amount", "amount must be a non-negative integer")
	ErrInvalidThresholds  = New(KindInvalidArgument, "invalid_thresholds", "thresholds must be positive and strictly increasing")
	ErrMissingThresholds  = New(KindInvalidArgument, "missing_thresholds", "thresholds do not cover every level up to the ceiling")
	ErrInvalidLevel       = New(KindInvalidArgument, "invalid_level", "level out of range")
	ErrInvalidTier        = New(KindInvalidArgument, "invalid_tier", "node tier out of range")
	ErrInvalidBallot      = New(KindInvalidArgument, "invalid_ballot", "unknown ballot kind")
	ErrInvalidRole        = New(KindInvalidArgument, "invalid_role", "unknown role")
	ErrNodeAlreadyExists  = New(KindInvalidArgument, "node_exists", "node id already registered")
	ErrSelfTransfer       = New(KindInvalidArgument, "self_transfer", "sender and receiver are the same account")
	ErrInvalidBlockNumber = New(KindInvalidArgument, "invalid_block", "block number is in the future")
)

// Not found
var (
	ErrTokenNotFound = New(KindNotFound, "token_not_found", "token does not exist")
	ErrNodeNotFound  = New(KindNotFound, "node_not_found", "node does not exist")
)

var (
	ErrNotEligible       = New(KindNotEligible, "not_eligible", "account has not participated in any ballot")
	ErrCycleNotEnded     = New(KindCycleNotEnded, "cycle_not_ended", "cycle has not ended")
	ErrInsufficientFunds = New(KindInsufficientFunds, "insufficient_funds", "balance too low for transfer")
)
