package interactivetx

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd-interactivetx/lnwire"
	"golang.org/x/exp/slices"
)

// PendingInput is a caller-supplied local input contribution, not yet
// assigned a serial id.
type PendingInput struct {
	PrevTxid  chainhash.Hash
	PrevIndex uint32
	Sequence  uint32
	PrevTx    *wire.MsgTx
	Value     btcutil.Amount
}

// PendingOutput is a caller-supplied local output contribution, not yet
// assigned a serial id. A pending output whose Script matches the
// negotiation's agreed new funding script is automatically tagged
// Shared once sent; callers add the new funding output this way rather
// than through a separate call.
type PendingOutput struct {
	Value  btcutil.Amount
	Script []byte
}

// ConstructorCfg configures a Constructor at construction time.
type ConstructorCfg struct {
	NegotiationContextCfg

	// ChanID tags every message the constructor emits.
	ChanID lnwire.ChannelID

	// Entropy mints the serial ids assigned to PendingInputs and
	// PendingOutputs.
	Entropy EntropySource

	// PendingInputs / PendingOutputs are the holder's local
	// contributions, in caller order. Constructor re-sorts them by
	// minted serial id before emitting anything.
	PendingInputs  []PendingInput
	PendingOutputs []PendingOutput
}

// Constructor is the outward-facing driver: it owns a NegotiationContext
// and a stateMachine, holds the holder's not-yet-sent contributions, and
// translates between wire messages and the two lower layers.
type Constructor struct {
	cfg ConstructorCfg
	ctx *NegotiationContext
	sm  *stateMachine

	pendingInputs  []*Input
	pendingOutputs []*Output
}

// NewConstructor builds a Constructor, minting serial ids for every
// pending contribution (and, when the holder is the initiator and a
// shared input is configured, appending it to the pending-input list)
// before sorting both pending lists ascending by serial id.
func NewConstructor(cfg ConstructorCfg) (*Constructor, *AbortReason) {
	c := &Constructor{
		cfg: cfg,
		ctx: NewNegotiationContext(cfg.NegotiationContextCfg),
		sm:  newStateMachine(cfg.HolderRole),
	}

	for _, p := range cfg.PendingInputs {
		id, err := c.mintSerialID()
		if err != nil {
			return nil, NewAbortReason(InvalidTx, "entropy source: %v", err)
		}
		c.pendingInputs = append(c.pendingInputs, &Input{
			Kind:         InputKindLocal,
			SerialID:     id,
			PrevTxid:     p.PrevTxid,
			PrevIndex:    p.PrevIndex,
			Sequence:     p.Sequence,
			PrevTx:       p.PrevTx,
			PrevoutValue: p.Value,
		})
	}

	if cfg.HolderRole == RoleInitiator && cfg.SharedInput != nil {
		id, err := c.mintSerialID()
		if err != nil {
			return nil, NewAbortReason(InvalidTx, "entropy source: %v", err)
		}
		si := cfg.SharedInput
		c.pendingInputs = append(c.pendingInputs, &Input{
			Kind:          InputKindShared,
			SerialID:      id,
			PrevTxid:      si.Txid,
			PrevIndex:     si.Index,
			Sequence:      si.Sequence,
			PrevoutValue:  si.Value,
			ToLocalValue:  si.ToLocalValue,
			ToRemoteValue: si.ToRemoteValue,
		})
	}

	for _, p := range cfg.PendingOutputs {
		id, err := c.mintSerialID()
		if err != nil {
			return nil, NewAbortReason(InvalidTx, "entropy source: %v", err)
		}
		c.pendingOutputs = append(c.pendingOutputs, &Output{
			Kind:     OutputKindLocal,
			SerialID: id,
			Value:    p.Value,
			Script:   p.Script,
		})
	}

	slices.SortFunc(c.pendingInputs, func(a, b *Input) bool {
		return a.SerialID < b.SerialID
	})
	slices.SortFunc(c.pendingOutputs, func(a, b *Output) bool {
		return a.SerialID < b.SerialID
	})

	return c, nil
}

// mintSerialID draws 32 random bytes from the configured entropy source,
// takes the first 8 as a big-endian uint64, and forces its low bit to
// the holder's required parity.
func (c *Constructor) mintSerialID() (SerialId, error) {
	b, err := c.cfg.Entropy.GenerateRandomBytes()
	if err != nil {
		return 0, err
	}

	id := SerialId(binary.BigEndian.Uint64(b[:8]))
	wantEven := c.cfg.HolderRole == RoleInitiator
	if (id%2 == 0) != wantEven {
		id ^= 1
	}
	return id, nil
}

// State returns the constructor's current negotiation state.
func (c *Constructor) State() State {
	return c.sm.state
}

// Start returns the constructor's first outgoing message. Only the
// initiator speaks first; a non-initiator Constructor returns a nil
// message and waits to be handed the peer's first message.
func (c *Constructor) Start() (lnwire.Message, *AbortReason) {
	if c.cfg.HolderRole != RoleInitiator {
		return nil, nil
	}
	return c.nextOutgoingMessage()
}

// nextOutgoingMessage emits the holder's next contribution, or, once
// none remain, sends tx_complete.
func (c *Constructor) nextOutgoingMessage() (lnwire.Message, *AbortReason) {
	if len(c.pendingInputs) > 0 {
		in := c.pendingInputs[0]
		c.pendingInputs = c.pendingInputs[1:]

		if err := c.ctx.SentAddInput(
			in.SerialID, in.PrevTxid, in.PrevIndex, in.Sequence,
			in.PrevTx, in.PrevoutValue,
		); err != nil {
			return nil, c.sm.abort(err)
		}
		if err := c.sm.sentChange(); err != nil {
			return nil, err
		}
		return c.addInputMessage(in), nil
	}

	if len(c.pendingOutputs) > 0 {
		out := c.pendingOutputs[0]
		c.pendingOutputs = c.pendingOutputs[1:]

		if err := c.ctx.SentAddOutput(
			out.SerialID, out.Value, out.Script,
		); err != nil {
			return nil, c.sm.abort(err)
		}
		if err := c.sm.sentChange(); err != nil {
			return nil, err
		}
		return c.addOutputMessage(out), nil
	}

	if err := c.sm.sentTxComplete(c.ctx.Build); err != nil {
		return nil, err
	}
	return &lnwire.TxComplete{ChanID: c.cfg.ChanID}, nil
}

func (c *Constructor) addInputMessage(in *Input) *lnwire.TxAddInput {
	msg := &lnwire.TxAddInput{
		ChanID:    c.cfg.ChanID,
		SerialID:  uint64(in.SerialID),
		PrevTxOut: in.PrevIndex,
		Sequence:  in.Sequence,
	}

	if in.Kind == InputKindShared {
		txid := in.PrevTxid
		msg.SharedInputTxid = &txid
	} else {
		msg.PrevTx = in.PrevTx
	}

	return msg
}

func (c *Constructor) addOutputMessage(out *Output) *lnwire.TxAddOutput {
	return &lnwire.TxAddOutput{
		ChanID:   c.cfg.ChanID,
		SerialID: uint64(out.SerialID),
		Sats:     out.Value,
		Script:   out.Script,
	}
}

// HandleTxAddInput processes an inbound tx_add_input and returns the
// holder's next outgoing message.
func (c *Constructor) HandleTxAddInput(
	msg *lnwire.TxAddInput) (lnwire.Message, *AbortReason) {

	if err := c.ctx.ReceivedAddInput(msg); err != nil {
		return nil, c.sm.abort(err)
	}
	if err := c.sm.receivedChange(); err != nil {
		return nil, err
	}
	return c.nextOutgoingMessage()
}

// HandleTxAddOutput processes an inbound tx_add_output and returns the
// holder's next outgoing message.
func (c *Constructor) HandleTxAddOutput(
	msg *lnwire.TxAddOutput) (lnwire.Message, *AbortReason) {

	if err := c.ctx.ReceivedAddOutput(msg); err != nil {
		return nil, c.sm.abort(err)
	}
	if err := c.sm.receivedChange(); err != nil {
		return nil, err
	}
	return c.nextOutgoingMessage()
}

// HandleTxRemoveInput processes an inbound tx_remove_input and returns
// the holder's next outgoing message.
func (c *Constructor) HandleTxRemoveInput(
	msg *lnwire.TxRemoveInput) (lnwire.Message, *AbortReason) {

	if err := c.ctx.ReceivedRemoveInput(SerialId(msg.SerialID)); err != nil {
		return nil, c.sm.abort(err)
	}
	if err := c.sm.receivedChange(); err != nil {
		return nil, err
	}
	return c.nextOutgoingMessage()
}

// HandleTxRemoveOutput processes an inbound tx_remove_output and returns
// the holder's next outgoing message.
func (c *Constructor) HandleTxRemoveOutput(
	msg *lnwire.TxRemoveOutput) (lnwire.Message, *AbortReason) {

	if err := c.ctx.ReceivedRemoveOutput(SerialId(msg.SerialID)); err != nil {
		return nil, c.sm.abort(err)
	}
	if err := c.sm.receivedChange(); err != nil {
		return nil, err
	}
	return c.nextOutgoingMessage()
}

// HandleTxCompleteResult is the three-outcome result of processing an
// inbound tx_complete: the negotiation completed on receipt because the
// holder had already sent its own tx_complete (Tx only), the holder's
// own tx_complete in reply completed it (Msg and Tx), or the holder
// still has another outgoing message to send (Msg only).
type HandleTxCompleteResult struct {
	// Msg is the holder's next outgoing message, nil only when the
	// negotiation completed without one.
	Msg lnwire.Message

	// Tx is set once the negotiation reaches NegotiationComplete.
	Tx *wire.MsgTx
}

// HandleTxComplete processes an inbound tx_complete.
func (c *Constructor) HandleTxComplete(
	_ *lnwire.TxComplete) (*HandleTxCompleteResult, *AbortReason) {

	if err := c.sm.receivedTxComplete(c.ctx.Build); err != nil {
		return nil, err
	}

	if done, ok := c.sm.state.(NegotiationComplete); ok {
		return &HandleTxCompleteResult{Tx: done.Tx}, nil
	}

	out, err := c.nextOutgoingMessage()
	if err != nil {
		return nil, err
	}

	if done, ok := c.sm.state.(NegotiationComplete); ok {
		return &HandleTxCompleteResult{Msg: out, Tx: done.Tx}, nil
	}

	return &HandleTxCompleteResult{Msg: out}, nil
}
