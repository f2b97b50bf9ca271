package interactivetx

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

// SatPerKWeight represents a fee rate in satoshis per kiloweight unit,
// Bitcoin's native fee-rate metric for witness transactions.
type SatPerKWeight int64

const (
	// witnessScaleFactor is the factor by which serialized transaction
	// size is scaled to get the transaction's weight. Non-witness data
	// counts 4x, witness data counts 1x.
	witnessScaleFactor = 4

	// baseInputWeight is the weight of a transaction input excluding
	// its scriptSig and witness: outpoint (36) + sequence (4) + the
	// scriptSig length varint (1), scaled by witnessScaleFactor.
	baseInputWeight = (36 + 4 + 1) * witnessScaleFactor

	// emptyScriptSigWeight accounts for the fact every segwit input
	// still carries a (possibly empty) scriptSig on the base
	// transaction; for fee-accounting purposes it is folded into
	// inputWeight rather than kept separate, matching the source's
	// BASE_INPUT_WEIGHT + EMPTY_SCRIPT_SIG_WEIGHT split.
	emptyScriptSigWeight = 0

	// inputWeight is the weight contributed by one counterparty input
	// at fee-validation time. As in the source, this does not yet
	// account for witness weight declared by the counterparty; see the
	// comment at its use in Build.
	inputWeight = baseInputWeight + emptyScriptSigWeight

	// commonFieldsWeight is the weight of the fields common to every
	// transaction (version, locktime, input count, output count),
	// scaled. The segwit marker and flag bytes are counted separately
	// by segwitMarkerAndFlagWeight.
	commonFieldsWeight = (4 + 4 + 1 + 1) * witnessScaleFactor

	// segwitMarkerAndFlagWeight is the weight of the two bytes that
	// mark a transaction as carrying witness data.
	segwitMarkerAndFlagWeight = 2

	// maxStandardTxWeight is the maximum weight policy-standard nodes
	// will relay or mine, per Bitcoin Core's default policy.
	maxStandardTxWeight = 400_000

	// totalBitcoinSupplySatoshis is the maximum number of satoshis that
	// will ever exist.
	totalBitcoinSupplySatoshis = 21_000_000 * 1e8

	// maxInputsOutputs is the maximum number of inputs, and separately
	// outputs, a negotiated transaction may have at build time.
	maxInputsOutputs = 252

	// maxReceivedTxAddCount is the maximum number of tx_add_input (and,
	// separately, tx_add_output) messages that may be received over
	// the course of one negotiation.
	maxReceivedTxAddCount = 4096

	// nonFinalSequence and the rbfMaxSequence enforce the BOLT
	// RBF-signaling input sequence constraint: sequences in this
	// range disable replace-by-fee and are not permitted here.
	nonFinalSequence uint32 = 0xFFFFFFFE
	rbfMaxSequence    uint32 = 0xFFFFFFFF
)

// feeForWeight computes the fee, in satoshis, owed for a given weight at
// the given feerate, rounding up to the next whole satoshi.
func feeForWeight(feerate SatPerKWeight, weight int64) btcutil.Amount {
	fee := (int64(feerate)*weight + 999) / 1000
	return btcutil.Amount(fee)
}

// outputWeight returns the weight contributed by a single output with the
// given pkScript: value (8 bytes) + script, scaled. The script length
// varint is not counted.
func outputWeight(pkScript []byte) int64 {
	return int64(8+len(pkScript)) * witnessScaleFactor
}

// dustLimitForScript returns the minimum economically spendable value for
// an output carrying pkScript, using the same relay-fee-derived formula
// the wallet's own transaction-construction code uses.
func dustLimitForScript(pkScript []byte) btcutil.Amount {
	return txrules.GetDustThreshold(len(pkScript), txrules.DefaultRelayFeePerKb)
}
