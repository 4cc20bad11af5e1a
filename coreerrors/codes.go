// Package coreerrors defines the stable error taxonomy shared by every
// trading-engine entry point (spec §7). Each error carries a Code so keeper
// batches can surface a typed result without string matching, alongside a
// human-readable message for logs, grounded on the sentinel-error style of
// the teacher's core/errors package.
package coreerrors

import "fmt"

// Code is the stable u32 surface exposed to callers. Values are append-only:
// never renumber an existing code once it ships.
type Code uint32

const (
	CodeNone Code = iota

	// Configuration
	CodeAlreadyInitialized
	CodeNotInitialized
	CodeInvalidConfig
	CodeUpdateNotQueued
	CodeUpdateNotUnlocked

	// Market
	CodeMarketNotFound
	CodeMarketDisabled

	// Oracle
	CodePriceNotFound
	CodePriceStale

	// Position
	CodePositionNotFound
	CodePositionAlreadyClosed
	CodePositionNotOpen
	CodePositionNotPending
	CodeMaxPositionsReached
	CodeInvalidCollateral
	CodeInvalidEntryPrice
	CodeWithdrawalBreaksMargin
	CodeInvalidTakeProfitPrice
	CodeInvalidStopLossPrice
	CodeTakeProfitNotTriggered
	CodeStopLossNotTriggered
	CodePositionNotLiquidatable
	CodeLimitOrderNotFillable

	// Status / action
	CodeActionNotAllowedForStatus
	CodeContractPaused

	// Utilization
	CodeUtilizationLimitExceeded

	// Vault
	CodeZeroAmount
	CodeInsufficientShares
	CodeInvalidAmount
	CodeInsufficientVaultBalance
	CodeWithdrawalInProgress
	CodeWithdrawalLocked
	CodeUnauthorizedStrategy

	// Authorization / host
	CodeUnauthorized
	CodeArithmeticOverflow
)

var codeNames = map[Code]string{
	CodeNone:                      "None",
	CodeAlreadyInitialized:        "AlreadyInitialized",
	CodeNotInitialized:            "NotInitialized",
	CodeInvalidConfig:             "InvalidConfig",
	CodeUpdateNotQueued:           "UpdateNotQueued",
	CodeUpdateNotUnlocked:         "UpdateNotUnlocked",
	CodeMarketNotFound:            "MarketNotFound",
	CodeMarketDisabled:            "MarketDisabled",
	CodePriceNotFound:             "PriceNotFound",
	CodePriceStale:                "PriceStale",
	CodePositionNotFound:          "PositionNotFound",
	CodePositionAlreadyClosed:     "PositionAlreadyClosed",
	CodePositionNotOpen:           "PositionNotOpen",
	CodePositionNotPending:        "PositionNotPending",
	CodeMaxPositionsReached:       "MaxPositionsReached",
	CodeInvalidCollateral:         "InvalidCollateral",
	CodeInvalidEntryPrice:         "InvalidEntryPrice",
	CodeWithdrawalBreaksMargin:    "WithdrawalBreaksMargin",
	CodeInvalidTakeProfitPrice:    "InvalidTakeProfitPrice",
	CodeInvalidStopLossPrice:      "InvalidStopLossPrice",
	CodeTakeProfitNotTriggered:    "TakeProfitNotTriggered",
	CodeStopLossNotTriggered:      "StopLossNotTriggered",
	CodePositionNotLiquidatable:   "PositionNotLiquidatable",
	CodeLimitOrderNotFillable:     "LimitOrderNotFillable",
	CodeActionNotAllowedForStatus: "ActionNotAllowedForStatus",
	CodeContractPaused:            "ContractPaused",
	CodeUtilizationLimitExceeded:  "UtilizationLimitExceeded",
	CodeZeroAmount:                "ZeroAmount",
	CodeInsufficientShares:        "InsufficientShares",
	CodeInvalidAmount:             "InvalidAmount",
	CodeInsufficientVaultBalance:  "InsufficientVaultBalance",
	CodeWithdrawalInProgress:      "WithdrawalInProgress",
	CodeWithdrawalLocked:          "WithdrawalLocked",
	CodeUnauthorizedStrategy:      "UnauthorizedStrategy",
	CodeUnauthorized:              "Unauthorized",
	CodeArithmeticOverflow:        "ArithmeticOverflow",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Error is the engine's uniform error type: a stable Code plus a message.
// errors.Is/As work against the Code via Is, and Error satisfies the
// standard error interface so it composes with fmt.Errorf("%w", ...).
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is lets errors.Is(err, coreerrors.New(CodeX)) match any *Error with the
// same Code, regardless of message.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// New constructs an *Error with the given code and an optional formatted
// message.
func New(code Code, format string, args ...interface{}) *Error {
	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Msg: msg}
}

// CodeOf extracts the stable Code from err, returning CodeNone (with ok
// false) when err is not a tagged *Error — the case a keeper batch should
// treat as an unexpected host-level failure rather than a precondition
// miss.
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return CodeNone, true
	}
	var e *Error
	if as(err, &e) {
		return e.Code, true
	}
	return CodeNone, false
}

// Is reports whether err carries the given Code, unwrapping through any
// Unwrap() error chain the way CodeOf does.
func Is(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
