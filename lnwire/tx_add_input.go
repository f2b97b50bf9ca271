package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TxAddInput is sent during interactive transaction construction to
// propose a single input to the other party.
type TxAddInput struct {
	// ChanID identifies the channel (or pending channel) this
	// negotiation belongs to.
	ChanID ChannelID

	// SerialID is the sender's serial id for this input.
	SerialID uint64

	// PrevTx is the previous transaction being spent, length-prefixed
	// with a 16-bit count so the peer can bound how much it reads. It is
	// nil on the wire (encoded as a zero-length blob, never as an empty
	// wire.MsgTx) when SharedInputTxid resolves the spending reference
	// instead.
	PrevTx *wire.MsgTx

	// PrevTxOut is the index within PrevTx being spent.
	PrevTxOut uint32

	// Sequence is the nSequence field for this input.
	Sequence uint32

	// SharedInputTxid, when non-nil, identifies the pre-existing
	// funding output being re-spent in a splice. When set, PrevTxOut
	// still carries the spent vout but PrevTx need not resolve a
	// real prevout.
	SharedInputTxid *chainhash.Hash
}

// NewTxAddInput creates a new, empty TxAddInput message tagged with chanID.
func NewTxAddInput(chanID ChannelID) *TxAddInput {
	return &TxAddInput{ChanID: chanID}
}

// A compile time check to ensure TxAddInput implements the lnwire.Message
// interface.
var _ Message = (*TxAddInput)(nil)

// Decode deserializes a serialized TxAddInput from the passed io.Reader.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddInput) Decode(r io.Reader, pver uint32) error {
	return readElements(r,
		&msg.ChanID,
		&msg.SerialID,
		&msg.PrevTx,
		&msg.PrevTxOut,
		&msg.Sequence,
		&msg.SharedInputTxid,
	)
}

// Encode serializes the target TxAddInput into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddInput) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		msg.ChanID,
		msg.SerialID,
		msg.PrevTx,
		msg.PrevTxOut,
		msg.Sequence,
		msg.SharedInputTxid,
	)
}

// MsgType returns the unique 2-byte identifier for the TxAddInput message.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddInput) MsgType() MessageType {
	return MsgTxAddInput
}

// MaxPayloadLength returns the maximum allowed payload size for a
// TxAddInput complying with the BOLT-mandated 64KB message limit.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddInput) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}
