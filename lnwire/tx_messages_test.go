package lnwire_test

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd-interactivetx/lnwire"
	"github.com/stretchr/testify/require"
)

func testChanID(b byte) lnwire.ChannelID {
	var c lnwire.ChannelID
	for i := range c {
		c[i] = b
	}
	return c
}

func roundTrip(t *testing.T, msg lnwire.Message) lnwire.Message {
	t.Helper()

	var buf bytes.Buffer
	_, err := lnwire.WriteMessage(&buf, msg, 0)
	require.NoError(t, err)

	out, err := lnwire.ReadMessage(&buf, 0)
	require.NoErrorf(t, err, "decoding %v", spew.Sdump(msg))

	return out
}

func TestTxAddInputRoundTrip(t *testing.T) {
	t.Parallel()

	prevTx := wire.NewMsgTx(2)
	prevTx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0},
		Sequence:         0xffffffff,
	})
	prevTx.AddTxOut(wire.NewTxOut(50000, []byte{0x00, 0x14}))

	msg := &lnwire.TxAddInput{
		ChanID:    testChanID(0x01),
		SerialID:  4,
		PrevTx:    prevTx,
		PrevTxOut: 0,
		Sequence:  0xfffffffd,
	}

	out, ok := roundTrip(t, msg).(*lnwire.TxAddInput)
	require.True(t, ok)
	require.Equal(t, msg.ChanID, out.ChanID)
	require.Equal(t, msg.SerialID, out.SerialID)
	require.Equal(t, msg.PrevTxOut, out.PrevTxOut)
	require.Equal(t, msg.Sequence, out.Sequence)
	require.Equal(t, prevTx.TxHash(), out.PrevTx.TxHash())
	require.Nil(t, out.SharedInputTxid)
}

func TestTxAddInputRoundTripSharedInput(t *testing.T) {
	t.Parallel()

	var txid chainhash.Hash
	txid[0] = 0xaa

	msg := &lnwire.TxAddInput{
		ChanID:          testChanID(0x02),
		SerialID:        3,
		PrevTx:          nil,
		PrevTxOut:       0,
		Sequence:        0xfffffffd,
		SharedInputTxid: &txid,
	}

	out, ok := roundTrip(t, msg).(*lnwire.TxAddInput)
	require.True(t, ok)
	require.Nil(t, out.PrevTx)
	require.NotNil(t, out.SharedInputTxid)
	require.Equal(t, txid, *out.SharedInputTxid)
}

func TestTxAddOutputRoundTrip(t *testing.T) {
	t.Parallel()

	msg := &lnwire.TxAddOutput{
		ChanID:   testChanID(0x03),
		SerialID: 6,
		Sats:     btcutil.Amount(123456),
		Script:   []byte{0x00, 0x14, 0x01, 0x02, 0x03},
	}

	out, ok := roundTrip(t, msg).(*lnwire.TxAddOutput)
	require.True(t, ok)
	require.Equal(t, msg.ChanID, out.ChanID)
	require.Equal(t, msg.SerialID, out.SerialID)
	require.Equal(t, msg.Sats, out.Sats)
	require.Equal(t, msg.Script, out.Script)
}

func TestTxRemoveInputRoundTrip(t *testing.T) {
	t.Parallel()

	msg := &lnwire.TxRemoveInput{ChanID: testChanID(0x04), SerialID: 8}

	out, ok := roundTrip(t, msg).(*lnwire.TxRemoveInput)
	require.True(t, ok)
	require.Equal(t, msg.ChanID, out.ChanID)
	require.Equal(t, msg.SerialID, out.SerialID)
}

func TestTxRemoveOutputRoundTrip(t *testing.T) {
	t.Parallel()

	msg := &lnwire.TxRemoveOutput{ChanID: testChanID(0x05), SerialID: 9}

	out, ok := roundTrip(t, msg).(*lnwire.TxRemoveOutput)
	require.True(t, ok)
	require.Equal(t, msg.ChanID, out.ChanID)
	require.Equal(t, msg.SerialID, out.SerialID)
}

func TestTxCompleteRoundTrip(t *testing.T) {
	t.Parallel()

	msg := lnwire.NewTxComplete(testChanID(0x06))

	out, ok := roundTrip(t, msg).(*lnwire.TxComplete)
	require.True(t, ok)
	require.Equal(t, msg.ChanID, out.ChanID)
}
