package interactivetx

import (
	"bytes"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd-interactivetx/lnwire"
	"golang.org/x/exp/slices"
)

// SerialId is the 64-bit identifier assigned to each contributed input or
// output. Its parity encodes the contributor's role: even for the
// initiator, odd for the non-initiator.
type SerialId uint64

// IsInitiatorOwned reports whether id, by its parity alone, was assigned
// by the initiator.
func (id SerialId) IsInitiatorOwned() bool {
	return id%2 == 0
}

// Role identifies which side of the negotiation the context's holder
// plays.
type Role int

const (
	// RoleInitiator is the party that originated the negotiation and
	// speaks first; it contributes even serial ids.
	RoleInitiator Role = iota

	// RoleNonInitiator is the counterparty; it contributes odd serial
	// ids.
	RoleNonInitiator
)

// InputKind distinguishes how an Input entered the negotiation.
type InputKind uint8

const (
	// InputKindLocal is an input contributed by the holder.
	InputKindLocal InputKind = iota

	// InputKindRemote is an input contributed by the counterparty.
	InputKindRemote

	// InputKindShared is the (at most one) pre-existing funding output
	// being re-spent in a splice.
	InputKindShared
)

// Input is one entry in the negotiation's input table.
type Input struct {
	Kind      InputKind
	SerialID  SerialId
	PrevTxid  chainhash.Hash
	PrevIndex uint32
	Sequence  uint32

	// PrevTx is the full previous transaction backing this input. It
	// is populated for Local and Remote inputs; Shared inputs rely on
	// the negotiation's SharedInputDescriptor instead.
	PrevTx *wire.MsgTx

	// PrevoutValue is the value of the spent output. For a Shared
	// input this is the full pre-splice value; ToLocalValue and
	// ToRemoteValue partition it.
	PrevoutValue btcutil.Amount

	ToLocalValue  btcutil.Amount
	ToRemoteValue btcutil.Amount
}

func (in *Input) outPoint() wire.OutPoint {
	return wire.OutPoint{Hash: in.PrevTxid, Index: in.PrevIndex}
}

func (in *Input) toTxIn() *wire.TxIn {
	return &wire.TxIn{
		PreviousOutPoint: in.outPoint(),
		Sequence:         in.Sequence,
	}
}

// OutputKind distinguishes how an Output entered the negotiation.
type OutputKind uint8

const (
	// OutputKindLocal is an output contributed by the holder.
	OutputKindLocal OutputKind = iota

	// OutputKindRemote is an output contributed by the counterparty.
	OutputKindRemote

	// OutputKindShared is the (exactly one) new funding output.
	OutputKindShared
)

// Output is one entry in the negotiation's output table.
type Output struct {
	Kind     OutputKind
	SerialID SerialId
	Value    btcutil.Amount
	Script   []byte

	// ToLocalValue / ToRemoteValue give the expected post-negotiation
	// split; populated only for a Shared output.
	ToLocalValue  btcutil.Amount
	ToRemoteValue btcutil.Amount
}

func (out *Output) toTxOut() *wire.TxOut {
	return &wire.TxOut{Value: int64(out.Value), PkScript: out.Script}
}

// SharedInputDescriptor describes the pre-existing funding output being
// re-spent in a splice, and how its value is split between the two
// channel parties prior to this negotiation.
type SharedInputDescriptor struct {
	Txid     chainhash.Hash
	Index    uint32
	Sequence uint32

	// Value is the total value of the shared prevout.
	Value btcutil.Amount

	// ToLocalValue / ToRemoteValue partition Value between the
	// negotiation's holder and its counterparty. ToLocalValue +
	// ToRemoteValue must not exceed Value.
	ToLocalValue  btcutil.Amount
	ToRemoteValue btcutil.Amount
}

// NegotiationContextCfg configures a NegotiationContext at construction.
type NegotiationContextCfg struct {
	// HolderRole is this side's role in the negotiation.
	HolderRole Role

	// SharedInput, if non-nil, is the pre-existing funding output being
	// re-spent in a splice.
	SharedInput *SharedInputDescriptor

	// LocalContribution / RemoteContribution are the signed amounts
	// (negative for a splice-out) each party is adding to or removing
	// from the shared funding output.
	LocalContribution  btcutil.Amount
	RemoteContribution btcutil.Amount

	// NewFundingScript is the pre-agreed script_pubkey of the new
	// funding output. An incoming add_output whose script matches this
	// exactly is tagged Shared rather than Remote.
	NewFundingScript []byte

	// Locktime is the negotiated absolute locktime for the resulting
	// transaction.
	Locktime uint32

	// FeeRate is the negotiated feerate, in satoshis per kiloweight.
	FeeRate SatPerKWeight
}

// NegotiationContext accumulates and validates one interactive
// transaction negotiation. It is the leaf layer of the construct: the
// state machine and constructor driver sit atop it and never mutate a
// transaction directly.
type NegotiationContext struct {
	cfg NegotiationContextCfg

	receivedInputCount  int
	receivedOutputCount int

	inputs     map[SerialId]*Input
	outputs    map[SerialId]*Output
	prevoutSet map[wire.OutPoint]struct{}
}

// NewNegotiationContext constructs an empty NegotiationContext.
func NewNegotiationContext(cfg NegotiationContextCfg) *NegotiationContext {
	return &NegotiationContext{
		cfg:        cfg,
		inputs:     make(map[SerialId]*Input),
		outputs:    make(map[SerialId]*Output),
		prevoutSet: make(map[wire.OutPoint]struct{}),
	}
}

// InputCount returns the number of inputs currently in the table.
func (c *NegotiationContext) InputCount() int { return len(c.inputs) }

// OutputCount returns the number of outputs currently in the table.
func (c *NegotiationContext) OutputCount() int { return len(c.outputs) }

// idBelongsToCounterparty reports whether id's parity matches the
// counterparty's role. The same predicate validates inbound serial ids
// and classifies ownership at Build time.
func (c *NegotiationContext) idBelongsToCounterparty(id SerialId) bool {
	return (c.cfg.HolderRole == RoleInitiator) == !id.IsInitiatorOwned()
}

func saturatingApply(base, signedDelta btcutil.Amount) btcutil.Amount {
	sum := int64(base) + int64(signedDelta)
	if sum < 0 {
		return 0
	}
	return btcutil.Amount(sum)
}

func (c *NegotiationContext) sharedValue() btcutil.Amount {
	if c.cfg.SharedInput == nil {
		return 0
	}
	return c.cfg.SharedInput.Value
}

func (c *NegotiationContext) sharedToLocalValue() btcutil.Amount {
	if c.cfg.SharedInput == nil {
		return 0
	}
	return c.cfg.SharedInput.ToLocalValue
}

func (c *NegotiationContext) sharedToRemoteValue() btcutil.Amount {
	if c.cfg.SharedInput == nil {
		return 0
	}
	return c.cfg.SharedInput.ToRemoteValue
}

// newFundingOutputValue derives the new funding output's total value:
// the pre-existing shared input's value adjusted by both parties'
// signed contributions.
func (c *NegotiationContext) newFundingOutputValue() btcutil.Amount {
	contribution := c.cfg.LocalContribution + c.cfg.RemoteContribution
	return saturatingApply(c.sharedValue(), contribution)
}

// fundingOutputLocalValue derives the holder's expected post-negotiation
// balance in the new funding output.
func (c *NegotiationContext) fundingOutputLocalValue() btcutil.Amount {
	return saturatingApply(c.sharedToLocalValue(), c.cfg.LocalContribution)
}

// fundingOutputRemoteValue derives the counterparty's expected
// post-negotiation balance in the new funding output.
func (c *NegotiationContext) fundingOutputRemoteValue() btcutil.Amount {
	return saturatingApply(c.sharedToRemoteValue(), c.cfg.RemoteContribution)
}

// isAllowedOutputScript reports whether script is a v0 P2WPKH, a v0
// P2WSH, or any witness program of version >= 1.
func isAllowedOutputScript(script []byte) bool {
	version, program, err := txscript.ExtractWitnessProgramInfo(script)
	if err != nil {
		return false
	}

	if version == 0 {
		return len(program) == 20 || len(program) == 32
	}

	return version >= 1
}

// ReceivedAddInput processes an inbound tx_add_input message.
func (c *NegotiationContext) ReceivedAddInput(msg *lnwire.TxAddInput) *AbortReason {
	id := SerialId(msg.SerialID)
	if !c.idBelongsToCounterparty(id) {
		return NewAbortReason(IncorrectSerialIdParity, "serial id %d", id)
	}

	c.receivedInputCount++
	if c.receivedInputCount > maxReceivedTxAddCount {
		return NewAbortReason(ReceivedTooManyTxAddInputs, "")
	}

	if msg.Sequence == nonFinalSequence || msg.Sequence == rbfMaxSequence {
		return NewAbortReason(
			IncorrectInputSequenceValue, "sequence 0x%x", msg.Sequence,
		)
	}

	var txid chainhash.Hash
	switch {
	case msg.SharedInputTxid != nil:
		txid = *msg.SharedInputTxid
	case msg.PrevTx != nil:
		txid = msg.PrevTx.TxHash()
	}

	var (
		prevoutValue btcutil.Amount
		haveTxOut    bool
	)
	if msg.PrevTx != nil && int(msg.PrevTxOut) < len(msg.PrevTx.TxOut) {
		txOut := msg.PrevTx.TxOut[msg.PrevTxOut]
		if !txscript.IsWitnessProgram(txOut.PkScript) {
			return NewAbortReason(
				PrevTxOutInvalid, "prevout is not a witness program",
			)
		}

		outpoint := wire.OutPoint{Hash: txid, Index: msg.PrevTxOut}
		if _, exists := c.prevoutSet[outpoint]; exists {
			return NewAbortReason(
				PrevTxOutInvalid, "duplicate outpoint %v", outpoint,
			)
		}
		c.prevoutSet[outpoint] = struct{}{}

		prevoutValue = btcutil.Amount(txOut.Value)
		haveTxOut = true
	} else if msg.SharedInputTxid == nil {
		return NewAbortReason(
			PrevTxOutInvalid, "prevtx_out %d out of range", msg.PrevTxOut,
		)
	}

	if _, exists := c.inputs[id]; exists {
		return NewAbortReason(DuplicateSerialId, "serial id %d", id)
	}

	in := &Input{
		SerialID:  id,
		PrevTxid:  txid,
		PrevIndex: msg.PrevTxOut,
		Sequence:  msg.Sequence,
		PrevTx:    msg.PrevTx,
	}

	sharedMatch := msg.SharedInputTxid != nil && c.cfg.SharedInput != nil &&
		*msg.SharedInputTxid == c.cfg.SharedInput.Txid

	if sharedMatch {
		if err := c.ensureSharedInputSingleton(); err != nil {
			return err
		}
		in.Kind = InputKindShared
		in.PrevoutValue = c.cfg.SharedInput.Value
		in.ToLocalValue = c.cfg.SharedInput.ToLocalValue
		in.ToRemoteValue = c.cfg.SharedInput.ToRemoteValue
	} else {
		if !haveTxOut {
			return NewAbortReason(
				PrevTxOutInvalid,
				"no resolvable prevout for serial id %d", id,
			)
		}
		in.Kind = InputKindRemote
		in.PrevoutValue = prevoutValue
	}

	c.inputs[id] = in
	return nil
}

// ReceivedRemoveInput processes an inbound tx_remove_input message.
func (c *NegotiationContext) ReceivedRemoveInput(id SerialId) *AbortReason {
	if !c.idBelongsToCounterparty(id) {
		return NewAbortReason(IncorrectSerialIdParity, "serial id %d", id)
	}

	in, ok := c.inputs[id]
	if !ok {
		return NewAbortReason(SerialIdUnknown, "serial id %d", id)
	}

	delete(c.inputs, id)
	delete(c.prevoutSet, in.outPoint())
	return nil
}

// ReceivedAddOutput processes an inbound tx_add_output message.
func (c *NegotiationContext) ReceivedAddOutput(msg *lnwire.TxAddOutput) *AbortReason {
	id := SerialId(msg.SerialID)
	if !c.idBelongsToCounterparty(id) {
		return NewAbortReason(IncorrectSerialIdParity, "serial id %d", id)
	}

	c.receivedOutputCount++
	if c.receivedOutputCount > maxReceivedTxAddCount {
		return NewAbortReason(ReceivedTooManyTxAddOutputs, "")
	}

	if msg.Sats < dustLimitForScript(msg.Script) {
		return NewAbortReason(BelowDustLimit, "value %d", msg.Sats)
	}

	if c.totalOutputValue()+msg.Sats > totalBitcoinSupplySatoshis {
		return NewAbortReason(ExceededMaximumSatsAllowed, "")
	}

	if !isAllowedOutputScript(msg.Script) {
		return NewAbortReason(InvalidOutputScript, "")
	}

	if _, exists := c.outputs[id]; exists {
		return NewAbortReason(DuplicateSerialId, "serial id %d", id)
	}

	out := &Output{
		SerialID: id,
		Value:    msg.Sats,
		Script:   msg.Script,
	}

	if c.cfg.NewFundingScript != nil &&
		bytes.Equal(msg.Script, c.cfg.NewFundingScript) {

		out.Kind = OutputKindShared
		out.ToLocalValue = c.fundingOutputLocalValue()
		out.ToRemoteValue = c.fundingOutputRemoteValue()
	} else {
		out.Kind = OutputKindRemote
	}

	c.outputs[id] = out
	return nil
}

// ReceivedRemoveOutput processes an inbound tx_remove_output message.
func (c *NegotiationContext) ReceivedRemoveOutput(id SerialId) *AbortReason {
	if !c.idBelongsToCounterparty(id) {
		return NewAbortReason(IncorrectSerialIdParity, "serial id %d", id)
	}

	if _, ok := c.outputs[id]; !ok {
		return NewAbortReason(SerialIdUnknown, "serial id %d", id)
	}

	delete(c.outputs, id)
	return nil
}

func (c *NegotiationContext) totalOutputValue() btcutil.Amount {
	var sum btcutil.Amount
	for _, out := range c.outputs {
		sum += out.Value
	}
	return sum
}

// ensureSharedInputSingleton enforces that at most one Shared entry ever
// occupies the input table, defensively re-checking spec.md's invariant
// beyond what prevout dedup already guarantees.
func (c *NegotiationContext) ensureSharedInputSingleton() *AbortReason {
	for _, existing := range c.inputs {
		if existing.Kind == InputKindShared {
			return NewAbortReason(
				PrevTxOutInvalid, "shared input already present",
			)
		}
	}
	return nil
}

// SentAddInput records a locally originated input (sent as an outgoing
// tx_add_input). Unlike ReceivedAddInput it does not enforce parity or
// received-message counters, but still enforces prevout uniqueness, id
// uniqueness, and tags the entry Shared when it matches the negotiated
// shared input, exactly as ReceivedAddInput does for the inbound side.
func (c *NegotiationContext) SentAddInput(
	id SerialId, prevTxid chainhash.Hash, prevIndex uint32, sequence uint32,
	prevTx *wire.MsgTx, prevoutValue btcutil.Amount) *AbortReason {

	outpoint := wire.OutPoint{Hash: prevTxid, Index: prevIndex}
	if _, exists := c.prevoutSet[outpoint]; exists {
		return NewAbortReason(PrevTxOutInvalid, "duplicate outpoint %v", outpoint)
	}
	if _, exists := c.inputs[id]; exists {
		return NewAbortReason(DuplicateSerialId, "serial id %d", id)
	}

	in := &Input{
		SerialID:     id,
		PrevTxid:     prevTxid,
		PrevIndex:    prevIndex,
		Sequence:     sequence,
		PrevTx:       prevTx,
		PrevoutValue: prevoutValue,
	}

	sharedMatch := c.cfg.SharedInput != nil &&
		prevTxid == c.cfg.SharedInput.Txid &&
		prevIndex == c.cfg.SharedInput.Index

	if sharedMatch {
		if err := c.ensureSharedInputSingleton(); err != nil {
			return err
		}
		in.Kind = InputKindShared
		in.PrevoutValue = c.cfg.SharedInput.Value
		in.ToLocalValue = c.cfg.SharedInput.ToLocalValue
		in.ToRemoteValue = c.cfg.SharedInput.ToRemoteValue
	} else {
		in.Kind = InputKindLocal
	}

	c.prevoutSet[outpoint] = struct{}{}
	c.inputs[id] = in
	return nil
}

// SentAddOutput records a locally originated output (sent as an outgoing
// tx_add_output), tagging it Shared when its script matches the
// pre-agreed new funding output, exactly as ReceivedAddOutput does for
// the inbound side.
func (c *NegotiationContext) SentAddOutput(
	id SerialId, value btcutil.Amount, script []byte) *AbortReason {

	if _, exists := c.outputs[id]; exists {
		return NewAbortReason(DuplicateSerialId, "serial id %d", id)
	}

	out := &Output{SerialID: id, Value: value, Script: script}
	if c.cfg.NewFundingScript != nil && bytes.Equal(script, c.cfg.NewFundingScript) {
		out.Kind = OutputKindShared
		out.ToLocalValue = c.fundingOutputLocalValue()
		out.ToRemoteValue = c.fundingOutputRemoteValue()
	} else {
		out.Kind = OutputKindLocal
	}

	c.outputs[id] = out
	return nil
}

// SentRemoveInput records a locally originated tx_remove_input.
func (c *NegotiationContext) SentRemoveInput(id SerialId) *AbortReason {
	in, ok := c.inputs[id]
	if !ok {
		return NewAbortReason(SerialIdUnknown, "serial id %d", id)
	}
	delete(c.inputs, id)
	delete(c.prevoutSet, in.outPoint())
	return nil
}

// SentRemoveOutput records a locally originated tx_remove_output.
func (c *NegotiationContext) SentRemoveOutput(id SerialId) *AbortReason {
	if _, ok := c.outputs[id]; !ok {
		return NewAbortReason(SerialIdUnknown, "serial id %d", id)
	}
	delete(c.outputs, id)
	return nil
}

// Build performs the terminal validation pass and, on success, assembles
// the single unsigned transaction both parties have negotiated.
//
// NOTE: as in the reference implementation this is modeled on, the
// counterparty's required fee contribution is computed using a fixed
// per-input weight that does not yet account for the witness the
// counterparty's inputs will carry once signed. See the design note
// beside inputWeight in fees.go.
func (c *NegotiationContext) Build() (*wire.MsgTx, *AbortReason) {
	var (
		counterpartyIn, counterpartyOut btcutil.Amount
		counterpartyInputCount          int64
		counterpartyWeight              int64
	)

	for id, in := range c.inputs {
		if !c.idBelongsToCounterparty(id) {
			continue
		}
		counterpartyInputCount++
		if in.Kind == InputKindShared {
			counterpartyIn += in.ToRemoteValue
		} else {
			counterpartyIn += in.PrevoutValue
		}
	}

	for id, out := range c.outputs {
		if !c.idBelongsToCounterparty(id) {
			continue
		}
		if out.Kind == OutputKindShared {
			counterpartyOut += out.ToRemoteValue
		} else {
			counterpartyOut += out.Value
		}
		counterpartyWeight += outputWeight(out.Script)
	}

	if counterpartyIn < counterpartyOut {
		return nil, NewAbortReason(OutputsValueExceedsInputsValue, "")
	}

	if len(c.inputs) > maxInputsOutputs || len(c.outputs) > maxInputsOutputs {
		return nil, NewAbortReason(ExceededNumberOfInputsOrOutputs, "")
	}

	counterpartyWeight += counterpartyInputCount * inputWeight

	requiredFee := feeForWeight(c.cfg.FeeRate, counterpartyWeight)
	if c.cfg.HolderRole == RoleNonInitiator {
		commonWeight := int64(commonFieldsWeight + segwitMarkerAndFlagWeight)
		requiredFee += feeForWeight(c.cfg.FeeRate, commonWeight)
	}

	actualFee := counterpartyIn - counterpartyOut
	if actualFee < requiredFee {
		return nil, NewAbortReason(InsufficientFees, "")
	}

	tx := wire.NewMsgTx(2)
	tx.LockTime = c.cfg.Locktime

	inputIDs := make([]SerialId, 0, len(c.inputs))
	for id := range c.inputs {
		inputIDs = append(inputIDs, id)
	}
	slices.Sort(inputIDs)
	for _, id := range inputIDs {
		tx.AddTxIn(c.inputs[id].toTxIn())
	}

	outputIDs := make([]SerialId, 0, len(c.outputs))
	for id := range c.outputs {
		outputIDs = append(outputIDs, id)
	}
	slices.Sort(outputIDs)
	for _, id := range outputIDs {
		tx.AddTxOut(c.outputs[id].toTxOut())
	}

	if blockchain.GetTransactionWeight(btcutil.NewTx(tx)) > maxStandardTxWeight {
		return nil, NewAbortReason(TransactionTooLarge, "")
	}

	return tx, nil
}
