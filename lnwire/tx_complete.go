package lnwire

import "io"

// TxComplete is sent during interactive transaction construction to
// signal that the sender has no further inputs or outputs to contribute.
// Receiving TxComplete from both sides in immediate succession concludes
// the negotiation.
type TxComplete struct {
	// ChanID identifies the channel (or pending channel) this
	// negotiation belongs to.
	ChanID ChannelID
}

// NewTxComplete creates a new TxComplete message tagged with chanID.
func NewTxComplete(chanID ChannelID) *TxComplete {
	return &TxComplete{ChanID: chanID}
}

// A compile time check to ensure TxComplete implements the lnwire.Message
// interface.
var _ Message = (*TxComplete)(nil)

// Decode deserializes a serialized TxComplete from the passed io.Reader.
//
// This is part of the lnwire.Message interface.
func (msg *TxComplete) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &msg.ChanID)
}

// Encode serializes the target TxComplete into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (msg *TxComplete) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, msg.ChanID)
}

// MsgType returns the unique 2-byte identifier for the TxComplete
// message.
//
// This is part of the lnwire.Message interface.
func (msg *TxComplete) MsgType() MessageType {
	return MsgTxComplete
}

// MaxPayloadLength returns the maximum allowed payload size for a
// TxComplete.
//
// This is part of the lnwire.Message interface.
func (msg *TxComplete) MaxPayloadLength(uint32) uint32 {
	return 32
}
