package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcutil"
)

// TxAddOutput is sent during interactive transaction construction to
// propose a single output to the other party.
type TxAddOutput struct {
	// ChanID identifies the channel (or pending channel) this
	// negotiation belongs to.
	ChanID ChannelID

	// SerialID is the sender's serial id for this output.
	SerialID uint64

	// Sats is the value of the proposed output.
	Sats btcutil.Amount

	// Script is the proposed output's public key script.
	Script []byte
}

// NewTxAddOutput creates a new, empty TxAddOutput message tagged with
// chanID.
func NewTxAddOutput(chanID ChannelID) *TxAddOutput {
	return &TxAddOutput{ChanID: chanID}
}

// A compile time check to ensure TxAddOutput implements the lnwire.Message
// interface.
var _ Message = (*TxAddOutput)(nil)

// Decode deserializes a serialized TxAddOutput from the passed io.Reader.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddOutput) Decode(r io.Reader, pver uint32) error {
	var sats uint64
	if err := readElements(r,
		&msg.ChanID,
		&msg.SerialID,
		&sats,
		&msg.Script,
	); err != nil {
		return err
	}
	msg.Sats = btcutil.Amount(sats)

	return nil
}

// Encode serializes the target TxAddOutput into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddOutput) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		msg.ChanID,
		msg.SerialID,
		uint64(msg.Sats),
		msg.Script,
	)
}

// MsgType returns the unique 2-byte identifier for the TxAddOutput
// message.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddOutput) MsgType() MessageType {
	return MsgTxAddOutput
}

// MaxPayloadLength returns the maximum allowed payload size for a
// TxAddOutput complying with the BOLT-mandated 64KB message limit.
//
// This is part of the lnwire.Message interface.
func (msg *TxAddOutput) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}
