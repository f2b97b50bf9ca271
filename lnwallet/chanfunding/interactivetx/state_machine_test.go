package interactivetx

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func buildOK() (*wire.MsgTx, *AbortReason) {
	return wire.NewMsgTx(2), nil
}

func buildFail() (*wire.MsgTx, *AbortReason) {
	return nil, NewAbortReason(InvalidTx, "forced failure")
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	require.IsType(t, ReceivedChange{}, newStateMachine(RoleInitiator).state)
	require.IsType(t, SentChange{}, newStateMachine(RoleNonInitiator).state)
}

// TestLegalTransitionTable exercises every cell of the legal-transition
// table: each of the four non-terminal states against both a change
// message and a tx_complete, in the direction (inbound or outbound)
// that state allows.
func TestLegalTransitionTable(t *testing.T) {
	t.Parallel()

	t.Run("SentChange receives change", func(t *testing.T) {
		m := &stateMachine{state: SentChange{}}
		require.Nil(t, m.receivedChange())
		require.IsType(t, ReceivedChange{}, m.state)
	})

	t.Run("SentChange receives tx_complete", func(t *testing.T) {
		m := &stateMachine{state: SentChange{}}
		require.Nil(t, m.receivedTxComplete(buildOK))
		require.IsType(t, ReceivedTxComplete{}, m.state)
	})

	t.Run("SentTxComplete receives change", func(t *testing.T) {
		m := &stateMachine{state: SentTxComplete{}}
		require.Nil(t, m.receivedChange())
		require.IsType(t, ReceivedChange{}, m.state)
	})

	t.Run("SentTxComplete receives tx_complete completes", func(t *testing.T) {
		m := &stateMachine{state: SentTxComplete{}}
		require.Nil(t, m.receivedTxComplete(buildOK))

		done, ok := m.state.(NegotiationComplete)
		require.True(t, ok)
		require.NotNil(t, done.Tx)
	})

	t.Run("ReceivedChange sends change", func(t *testing.T) {
		m := &stateMachine{state: ReceivedChange{}}
		require.Nil(t, m.sentChange())
		require.IsType(t, SentChange{}, m.state)
	})

	t.Run("ReceivedChange sends tx_complete", func(t *testing.T) {
		m := &stateMachine{state: ReceivedChange{}}
		require.Nil(t, m.sentTxComplete(buildOK))
		require.IsType(t, SentTxComplete{}, m.state)
	})

	t.Run("ReceivedTxComplete sends change", func(t *testing.T) {
		// The peer completed first, but the holder still has more to
		// contribute: the peer's tx_complete no longer stands once
		// the holder sends its own add/remove message.
		m := &stateMachine{state: ReceivedTxComplete{}}
		require.Nil(t, m.sentChange())
		require.IsType(t, SentChange{}, m.state)
	})

	t.Run("ReceivedTxComplete sends tx_complete completes", func(t *testing.T) {
		m := &stateMachine{state: ReceivedTxComplete{}}
		require.Nil(t, m.sentTxComplete(buildOK))

		done, ok := m.state.(NegotiationComplete)
		require.True(t, ok)
		require.NotNil(t, done.Tx)
	})
}

func TestIllegalTransitionsAbort(t *testing.T) {
	t.Parallel()

	t.Run("ReceivedChange cannot receive another change", func(t *testing.T) {
		m := &stateMachine{state: ReceivedChange{}}
		reason := m.receivedChange()
		require.NotNil(t, reason)
		require.Equal(t, UnexpectedCounterpartyMessage, reason.Kind)

		_, aborted := m.state.(Aborted)
		require.True(t, aborted)
	})

	t.Run("SentChange cannot send a change", func(t *testing.T) {
		m := &stateMachine{state: SentChange{}}
		reason := m.sentChange()
		require.NotNil(t, reason)
		require.Equal(t, InvalidStateTransition, reason.Kind)
	})

	t.Run("SentChange cannot send tx_complete", func(t *testing.T) {
		m := &stateMachine{state: SentChange{}}
		reason := m.sentTxComplete(buildOK)
		require.NotNil(t, reason)
		require.Equal(t, InvalidStateTransition, reason.Kind)
	})

	t.Run("ReceivedChange cannot receive tx_complete", func(t *testing.T) {
		m := &stateMachine{state: ReceivedChange{}}
		reason := m.receivedTxComplete(buildOK)
		require.NotNil(t, reason)
		require.Equal(t, UnexpectedCounterpartyMessage, reason.Kind)
	})

	t.Run("a failing build aborts with the build's own reason", func(t *testing.T) {
		m := &stateMachine{state: SentTxComplete{}}
		reason := m.receivedTxComplete(buildFail)
		require.NotNil(t, reason)
		require.Equal(t, InvalidTx, reason.Kind)

		_, aborted := m.state.(Aborted)
		require.True(t, aborted)
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		m := &stateMachine{state: Aborted{Reason: NewAbortReason(InvalidTx, "")}}
		reason := m.receivedChange()
		require.NotNil(t, reason)
		require.Equal(t, UnexpectedCounterpartyMessage, reason.Kind)
	})
}
