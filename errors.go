package blueocean

import "errors"

var (
	// ErrLengthMismatch indicates calldata, counterpart calldata, and
	// replacement pattern lengths that cannot be reconciled.
	ErrLengthMismatch = errors.New("array length mismatch")

	// ErrInvalidOrder indicates an order that failed structural, window,
	// signature, or replay validation.
	ErrInvalidOrder = errors.New("order failed validation")

	// ErrOrdersCannotMatch indicates a buy/sell pair rejected by the
	// match gate.
	ErrOrdersCannotMatch = errors.New("orders cannot match")

	// ErrCalldataMismatch indicates calldata the replacement patterns
	// could not reconcile into one call.
	ErrCalldataMismatch = errors.New("order calldata does not match")

	// ErrPriceMismatch indicates a sell price above the buy price.
	ErrPriceMismatch = errors.New("sell price exceeds buy price")

	// ErrInsufficientValue indicates native currency below the required
	// settlement amount.
	ErrInsufficientValue = errors.New("insufficient value supplied")

	// ErrUnexpectedValue indicates native currency supplied with a
	// token-settled match.
	ErrUnexpectedValue = errors.New("value supplied with token payment")

	// ErrInsufficientTakerFee indicates a counter-order that consented
	// to lower taker fees than the maker-side order demands.
	ErrInsufficientTakerFee = errors.New("taker fees below maker order's schedule")

	// ErrFeeExceedsPrice indicates fees that would leave a negative
	// settlement amount.
	ErrFeeExceedsPrice = errors.New("fees exceed settlement price")

	// ErrNotMaker indicates a maker-only operation attempted by another
	// caller.
	ErrNotMaker = errors.New("caller is not the order maker")

	// ErrNotOwner indicates an admin operation attempted by a caller
	// other than the exchange owner.
	ErrNotOwner = errors.New("caller is not the exchange owner")

	// ErrOrderFinalized indicates an order hash already filled or
	// cancelled.
	ErrOrderFinalized = errors.New("order already filled or cancelled")

	// ErrUnknownProxy indicates a maker with no registered proxy.
	ErrUnknownProxy = errors.New("maker has no registered proxy")

	// ErrUnknownPaymentToken indicates a payment token the engine cannot
	// resolve to a ledger.
	ErrUnknownPaymentToken = errors.New("unknown payment token")

	// ErrStaticCallFailed indicates a failed static precondition check.
	ErrStaticCallFailed = errors.New("static precondition failed")

	// ErrTargetCallFailed indicates the embedded proxy call failed.
	ErrTargetCallFailed = errors.New("target call failed")
)
