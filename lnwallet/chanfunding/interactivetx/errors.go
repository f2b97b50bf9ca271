package interactivetx

import "fmt"

// AbortKind identifies one member of the interactive transaction
// construction abort taxonomy. It is the terminal failure carried by the
// Aborted state.
type AbortKind uint8

const (
	// IncorrectSerialIdParity is returned when a received serial id's
	// parity doesn't match the counterparty's role (even for the
	// initiator, odd for the non-initiator).
	IncorrectSerialIdParity AbortKind = iota

	// ReceivedTooManyTxAddInputs is returned once more than 4096
	// tx_add_input messages have been received.
	ReceivedTooManyTxAddInputs

	// ReceivedTooManyTxAddOutputs is returned once more than 4096
	// tx_add_output messages have been received.
	ReceivedTooManyTxAddOutputs

	// IncorrectInputSequenceValue is returned when an input's sequence
	// is 0xFFFFFFFE or 0xFFFFFFFF.
	IncorrectInputSequenceValue

	// SerialIdUnknown is returned when a remove message references a
	// serial id that isn't in the relevant table.
	SerialIdUnknown

	// DuplicateSerialId is returned when an add message reuses a
	// serial id already present in the relevant table.
	DuplicateSerialId

	// PrevTxOutInvalid is returned when a referenced previous output is
	// missing, non-witness, or its outpoint has already been
	// contributed by another input.
	PrevTxOutInvalid

	// ExceededMaximumSatsAllowed is returned when the running sum of
	// output values would exceed the total Bitcoin supply.
	ExceededMaximumSatsAllowed

	// ExceededNumberOfInputsOrOutputs is returned at build time when
	// more than 252 inputs or outputs are present.
	ExceededNumberOfInputsOrOutputs

	// TransactionTooLarge is returned when the assembled transaction's
	// weight exceeds the standard transaction weight limit.
	TransactionTooLarge

	// BelowDustLimit is returned when an output's value is below its
	// script's dust threshold.
	BelowDustLimit

	// InvalidOutputScript is returned when an output's script is not a
	// P2WPKH, P2WSH, or a witness program of version >= 1.
	InvalidOutputScript

	// InsufficientFees is returned when the counterparty's contributed
	// fee is below the amount required of them.
	InsufficientFees

	// OutputsValueExceedsInputsValue is returned at build time when the
	// value of the counterparty's contributed outputs exceeds the value
	// of the counterparty's contributed inputs.
	OutputsValueExceedsInputsValue

	// UnexpectedCounterpartyMessage is returned when a message is sent
	// or received in a state that doesn't allow it.
	UnexpectedCounterpartyMessage

	// InvalidStateTransition is returned on an internal consistency
	// failure of the state machine itself.
	InvalidStateTransition

	// InvalidTx is reserved for a final sanity check on the assembled
	// transaction.
	InvalidTx
)

// abortMessages gives each AbortKind a stable, human readable
// description, mirroring interactivetxs.rs's Display impl for its
// AbortReason enum.
var abortMessages = map[AbortKind]string{
	IncorrectSerialIdParity:          "received serial id does not match the counterparty's expected parity",
	ReceivedTooManyTxAddInputs:       "received too many tx_add_input messages during this negotiation",
	ReceivedTooManyTxAddOutputs:      "received too many tx_add_output messages during this negotiation",
	IncorrectInputSequenceValue:      "input sequence number is not RBF-compatible",
	SerialIdUnknown:                  "serial id unknown",
	DuplicateSerialId:                "serial id already used in this negotiation",
	PrevTxOutInvalid:                 "previous transaction output is invalid",
	ExceededMaximumSatsAllowed:       "sum of output values exceeds total possible bitcoin supply",
	ExceededNumberOfInputsOrOutputs:  "too many inputs or outputs",
	TransactionTooLarge:              "transaction weight exceeds the standard transaction weight limit",
	BelowDustLimit:                   "output amount is below the dust limit",
	InvalidOutputScript:              "output script is not a recognized witness program",
	InsufficientFees:                 "insufficient fees paid by the counterparty",
	OutputsValueExceedsInputsValue:   "outputs value exceeds inputs value",
	UnexpectedCounterpartyMessage:    "unexpected message received from counterparty",
	InvalidStateTransition:           "invalid state transition",
	InvalidTx:                        "invalid transaction",
}

// AbortReason is the terminal failure value carried by the Aborted state.
// It implements error so callers can log or compare it directly.
type AbortReason struct {
	Kind AbortKind

	// Detail, when non-empty, augments the static message for the Kind
	// with context specific to the failure (e.g. the offending serial
	// id).
	Detail string
}

// NewAbortReason builds an AbortReason of the given kind with an optional
// formatted detail.
func NewAbortReason(kind AbortKind, format string, args ...interface{}) *AbortReason {
	return &AbortReason{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (a *AbortReason) Error() string {
	msg := abortMessages[a.Kind]
	if a.Detail == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, a.Detail)
}

// Is reports whether other is an *AbortReason of the same Kind, enabling
// errors.Is(err, &AbortReason{Kind: SomeKind}) style comparisons.
func (a *AbortReason) Is(other error) bool {
	o, ok := other.(*AbortReason)
	if !ok {
		return false
	}
	return o.Kind == a.Kind
}
