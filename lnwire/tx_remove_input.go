package lnwire

import "io"

// TxRemoveInput is sent during interactive transaction construction to
// withdraw a previously proposed input.
type TxRemoveInput struct {
	// ChanID identifies the channel (or pending channel) this
	// negotiation belongs to.
	ChanID ChannelID

	// SerialID identifies the input being withdrawn.
	SerialID uint64
}

// NewTxRemoveInput creates a new, empty TxRemoveInput message tagged with
// chanID.
func NewTxRemoveInput(chanID ChannelID) *TxRemoveInput {
	return &TxRemoveInput{ChanID: chanID}
}

// A compile time check to ensure TxRemoveInput implements the
// lnwire.Message interface.
var _ Message = (*TxRemoveInput)(nil)

// Decode deserializes a serialized TxRemoveInput from the passed
// io.Reader.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveInput) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &msg.ChanID, &msg.SerialID)
}

// Encode serializes the target TxRemoveInput into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveInput) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, msg.ChanID, msg.SerialID)
}

// MsgType returns the unique 2-byte identifier for the TxRemoveInput
// message.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveInput) MsgType() MessageType {
	return MsgTxRemoveInput
}

// MaxPayloadLength returns the maximum allowed payload size for a
// TxRemoveInput.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveInput) MaxPayloadLength(uint32) uint32 {
	return 32 + 8
}
