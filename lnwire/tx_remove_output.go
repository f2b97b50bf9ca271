package lnwire

import "io"

// TxRemoveOutput is sent during interactive transaction construction to
// withdraw a previously proposed output.
type TxRemoveOutput struct {
	// ChanID identifies the channel (or pending channel) this
	// negotiation belongs to.
	ChanID ChannelID

	// SerialID identifies the output being withdrawn.
	SerialID uint64
}

// NewTxRemoveOutput creates a new, empty TxRemoveOutput message tagged
// with chanID.
func NewTxRemoveOutput(chanID ChannelID) *TxRemoveOutput {
	return &TxRemoveOutput{ChanID: chanID}
}

// A compile time check to ensure TxRemoveOutput implements the
// lnwire.Message interface.
var _ Message = (*TxRemoveOutput)(nil)

// Decode deserializes a serialized TxRemoveOutput from the passed
// io.Reader.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveOutput) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &msg.ChanID, &msg.SerialID)
}

// Encode serializes the target TxRemoveOutput into the passed io.Writer.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveOutput) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, msg.ChanID, msg.SerialID)
}

// MsgType returns the unique 2-byte identifier for the TxRemoveOutput
// message.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveOutput) MsgType() MessageType {
	return MsgTxRemoveOutput
}

// MaxPayloadLength returns the maximum allowed payload size for a
// TxRemoveOutput.
//
// This is part of the lnwire.Message interface.
func (msg *TxRemoveOutput) MaxPayloadLength(uint32) uint32 {
	return 32 + 8
}
