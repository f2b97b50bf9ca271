package interactivetx

import "github.com/btcsuite/btcd/wire"

// State is the tagged union of states the negotiation may occupy. Each
// concrete type is only ever produced by stateMachine's transition
// methods, which enforce the legal-transition table; there is no way to
// construct an illegal state from outside this package.
type State interface {
	isState()

	// Terminal reports whether no further transitions are possible from
	// this state.
	Terminal() bool
}

// SentChange means the holder just sent an add/remove message and is
// awaiting the peer.
type SentChange struct{}

func (SentChange) isState()       {}
func (SentChange) Terminal() bool { return false }

// ReceivedChange means the peer just sent an add/remove message; it is
// the holder's turn.
type ReceivedChange struct{}

func (ReceivedChange) isState()       {}
func (ReceivedChange) Terminal() bool { return false }

// SentTxComplete means the holder just sent tx_complete and is awaiting
// the peer's.
type SentTxComplete struct{}

func (SentTxComplete) isState()       {}
func (SentTxComplete) Terminal() bool { return false }

// ReceivedTxComplete means the peer just sent tx_complete; it is the
// holder's turn to either add more or complete as well.
type ReceivedTxComplete struct{}

func (ReceivedTxComplete) isState()       {}
func (ReceivedTxComplete) Terminal() bool { return false }

// NegotiationComplete is terminal: both sides sent tx_complete
// consecutively, and the negotiated transaction has been assembled.
type NegotiationComplete struct {
	Tx *wire.MsgTx
}

func (NegotiationComplete) isState()       {}
func (NegotiationComplete) Terminal() bool { return true }

// Aborted is terminal: some message or build step failed validation.
type Aborted struct {
	Reason *AbortReason
}

func (Aborted) isState()       {}
func (Aborted) Terminal() bool { return true }

// initialState returns the state the machine starts in. The asymmetry
// ensures the initiator speaks first: it starts as if it had just
// received a change, so its first move is to send one, while the
// non-initiator starts as if it had just sent one, so it waits.
func initialState(role Role) State {
	if role == RoleInitiator {
		return ReceivedChange{}
	}
	return SentChange{}
}

// stateMachine layers the legal-transition table over a bare State. It
// never touches a NegotiationContext directly: callers apply the
// context mutation themselves and drive the matching transition here,
// passing a build closure only for the two transitions that can
// complete the negotiation.
type stateMachine struct {
	state State
}

func newStateMachine(role Role) *stateMachine {
	return &stateMachine{state: initialState(role)}
}

func (m *stateMachine) abort(reason *AbortReason) *AbortReason {
	log.Errorf("aborting negotiation from state %T: %v", m.state, reason)
	m.state = Aborted{Reason: reason}
	return reason
}

func (m *stateMachine) complete(tx *wire.MsgTx) {
	log.Infof("negotiation complete, txid=%v", tx.TxHash())
	m.state = NegotiationComplete{Tx: tx}
}

// receivedChange applies the transition for an inbound add/remove
// message. Legal from SentChange or SentTxComplete.
func (m *stateMachine) receivedChange() *AbortReason {
	switch m.state.(type) {
	case SentChange, SentTxComplete:
		m.state = ReceivedChange{}
		return nil
	default:
		return m.abort(NewAbortReason(
			UnexpectedCounterpartyMessage,
			"add/remove message received in state %T", m.state,
		))
	}
}

// receivedTxComplete applies the transition for an inbound tx_complete.
// Legal from SentChange (no completion yet) or SentTxComplete, the
// latter of which completes the negotiation via build.
func (m *stateMachine) receivedTxComplete(
	build func() (*wire.MsgTx, *AbortReason)) *AbortReason {

	switch m.state.(type) {
	case SentChange:
		m.state = ReceivedTxComplete{}
		return nil
	case SentTxComplete:
		tx, reason := build()
		if reason != nil {
			return m.abort(reason)
		}
		m.complete(tx)
		return nil
	default:
		return m.abort(NewAbortReason(
			UnexpectedCounterpartyMessage,
			"tx_complete received in state %T", m.state,
		))
	}
}

// sentChange applies the transition for an outgoing add/remove message.
// Legal from ReceivedChange, or from ReceivedTxComplete, where it means
// the holder has more to contribute after all and the peer's earlier
// tx_complete no longer stands.
func (m *stateMachine) sentChange() *AbortReason {
	switch m.state.(type) {
	case ReceivedChange, ReceivedTxComplete:
		m.state = SentChange{}
		return nil
	default:
		return m.abort(NewAbortReason(
			InvalidStateTransition,
			"cannot send add/remove message in state %T", m.state,
		))
	}
}

// sentTxComplete applies the transition for an outgoing tx_complete.
// Legal from ReceivedChange, or from ReceivedTxComplete, which completes
// the negotiation via build.
func (m *stateMachine) sentTxComplete(
	build func() (*wire.MsgTx, *AbortReason)) *AbortReason {

	switch m.state.(type) {
	case ReceivedChange:
		m.state = SentTxComplete{}
		return nil
	case ReceivedTxComplete:
		tx, reason := build()
		if reason != nil {
			return m.abort(reason)
		}
		m.complete(tx)
		return nil
	default:
		return m.abort(NewAbortReason(
			InvalidStateTransition,
			"cannot send tx_complete in state %T", m.state,
		))
	}
}
