package interactivetx_test

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd-interactivetx/lnwire"
)

const testFeerate = 2530 // FEERATE_FLOOR_SAT_PER_KW (253) * 10.

const testLocktime = 1337

// testChanID builds a ChannelID filled with a single repeated byte, for
// tests that only need a stable, distinguishable channel identifier.
func testChanID(b byte) lnwire.ChannelID {
	var c lnwire.ChannelID
	for i := range c {
		c[i] = b
	}
	return c
}

// p2wpkhScript returns a valid witness v0 P2WPKH script, varying its
// pushed data by seed so distinct calls produce distinct scripts.
func p2wpkhScript(seed byte) []byte {
	script := make([]byte, 22)
	script[0] = 0x00
	script[1] = 0x14
	for i := 2; i < len(script); i++ {
		script[i] = seed
	}
	return script
}

// p2shScript returns a legacy P2SH script, which is not a witness
// program and so is rejected anywhere a witness output is required.
func p2shScript(seed byte) []byte {
	script := make([]byte, 23)
	script[0] = 0xa9
	script[1] = 0x14
	for i := 2; i < 22; i++ {
		script[i] = seed
	}
	script[22] = 0x87
	return script
}

// makePrevTx builds a minimal previous transaction carrying a single
// output of value at script, suitable as the PrevTx of a tx_add_input.
func makePrevTx(value btcutil.Amount, script []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
	})
	tx.AddTxOut(wire.NewTxOut(int64(value), script))
	return tx
}

// seqEntropy is a deterministic EntropySource producing a strictly
// increasing sequence, used where tests need distinct minted serial ids.
type seqEntropy struct {
	next uint64
}

func (s *seqEntropy) GenerateRandomBytes() ([32]byte, error) {
	var b [32]byte
	binary.BigEndian.PutUint64(b[:8], s.next)
	s.next++
	return b, nil
}

// constEntropy is an EntropySource that always returns the same bytes,
// used to exercise DuplicateSerialId handling.
type constEntropy struct {
	val uint64
}

func (c constEntropy) GenerateRandomBytes() ([32]byte, error) {
	var b [32]byte
	binary.BigEndian.PutUint64(b[:8], c.val)
	return b, nil
}
