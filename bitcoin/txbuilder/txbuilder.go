// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package txbuilder constructs escrow funding and resolution transaction
// skeletons. Funding transactions lock coins at an escrow taproot address;
// resolution transactions spend one escrow outpoint along a chosen spend
// path. Witnesses are attached separately by the signer package.
package txbuilder

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"escrow/bitcoin"
	"escrow/internal/numbers"
)

const (
	// txVersion defines transaction version for this builder.
	txVersion int32 = 2
	// signHashType define signature hash type for input signing.
	signHashType = txscript.SigHashAll
)

var (
	// headerSizeVBytes defined rough tx header size in vBytes.
	headerSizeVBytes = big.NewInt(11)
	// inputSizeVBytes defined rough tx input size in vBytes.
	inputSizeVBytes = big.NewInt(90)
	// outputSizeVBytes defined rough tx output size in vBytes.
	outputSizeVBytes = big.NewInt(30)
)

// FundingParams describes data needed to build an escrow funding transaction.
type FundingParams struct {
	UTXOs            []bitcoin.UTXO // must be sorted by btc amount desc.
	EscrowAddress    string         // escrow taproot address.
	LockAmount       *big.Int       // satoshi to lock at the escrow address.
	SatoshiPerKVByte *big.Int       // fee rate in satoshi per kilo virtual byte.
	ChangeAddress    string         // funder change address.
}

// FundingPSBTParams describes data needed to convert an unsigned funding
// transaction to a partially signed bitcoin transaction (PSBT).
type FundingPSBTParams struct {
	Tx                  *wire.MsgTx
	UsedUTXOs           []*bitcoin.UTXO
	FunderTaprootPubKey string // x-only, hex-encoded.
}

// ResolutionParams describes data needed to build an escrow resolution
// transaction spending one escrow outpoint.
type ResolutionParams struct {
	EscrowTxHash     string
	EscrowIndex      uint32
	Amount           *big.Int // satoshi paid to the recipient; the rest of the escrow output is fee.
	RecipientAddress string
	TimelockBlocks   uint32 // input sequence for timeout leaf spends, 0 otherwise.
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *chaincfg.Params
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *chaincfg.Params) *TxBuilder {
	return &TxBuilder{
		networkParams: networkParams,
	}
}

// BuildFundingTx constructs an escrow funding transaction. Returns the
// transaction, used utxos, estimated fee in satoshi, and error if any.
//
//	outputs:
//	┌─────────┬───────────────┬────────────────────────────────────────┐
//	│  index  │     type      │             description                │
//	├=========┼===============┼========================================┤
//	│       0 │ escrow output │ locks LockAmount at the escrow address │
//	├─────────┼───────────────┼────────────────────────────────────────┤
//	│       1 │ change output │ optional, whatever is left after fee   │
//	└─────────┴───────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildFundingTx(params FundingParams) (*wire.MsgTx, []*bitcoin.UTXO, *big.Int, error) {
	if params.LockAmount == nil || !numbers.IsPositive(params.LockAmount) {
		return nil, nil, nil, fmt.Errorf("%w: lock amount must be positive", bitcoin.ErrInvalidUTXOAmount)
	}
	if params.SatoshiPerKVByte == nil || !numbers.IsPositive(params.SatoshiPerKVByte) {
		return nil, nil, nil, fmt.Errorf("%w: fee rate must be positive", bitcoin.ErrInvalidUTXOAmount)
	}

	usedUTXOs, totalAmount, fee, err := PrepareUTXOs(params.UTXOs, 0, 2, params.LockAmount, params.SatoshiPerKVByte)
	if err != nil {
		return nil, nil, nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	for _, utxo := range usedUTXOs {
		utxoHash, err := chainhash.NewHashFromStr(utxo.TxHash)
		if err != nil {
			return nil, nil, nil, err
		}

		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(utxoHash, utxo.Index), nil, nil))
	}

	// subtract fee.
	unallocated := new(big.Int).Sub(totalAmount, fee)

	// escrow output (#0).
	err = b.addOutput(tx, params.LockAmount, unallocated, params.EscrowAddress)
	if err != nil {
		return nil, nil, nil, err
	}

	// change output (#1).
	if numbers.IsPositive(unallocated) {
		err = b.addOutput(tx, unallocated, unallocated, params.ChangeAddress)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return tx, usedUTXOs, fee, nil
}

// BuildFundingPSBT returns a serialized PSBT of the unsigned funding
// transaction with the taproot signing data populated for every input.
func (b *TxBuilder) BuildFundingPSBT(params FundingPSBTParams) ([]byte, error) {
	p, err := psbt.NewFromUnsignedTx(params.Tx)
	if err != nil {
		return nil, err
	}

	internalKey, err := hex.DecodeString(params.FunderTaprootPubKey)
	if err != nil {
		return nil, err
	}

	for i := range p.Inputs {
		if i >= len(params.UsedUTXOs) {
			return nil, errors.New("used utxos do not cover all inputs")
		}

		p.Inputs[i].WitnessUtxo = wire.NewTxOut(params.UsedUTXOs[i].Amount.Int64(), params.UsedUTXOs[i].Script)
		p.Inputs[i].TaprootInternalKey = internalKey
		p.Inputs[i].SighashType = signHashType
	}

	w := bytes.NewBuffer(nil)
	err = p.Serialize(w)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// BuildResolutionTx constructs a transaction spending one escrow outpoint to
// the recipient. For timeout leaf spends the input sequence is set to the
// relative timelock block count so OP_CHECKSEQUENCEVERIFY can pass.
func (b *TxBuilder) BuildResolutionTx(params ResolutionParams) (*wire.MsgTx, error) {
	if params.Amount == nil || !numbers.IsPositive(params.Amount) {
		return nil, fmt.Errorf("%w: resolution amount must be positive", bitcoin.ErrInvalidUTXOAmount)
	}

	escrowHash, err := chainhash.NewHashFromStr(params.EscrowTxHash)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	txIn := wire.NewTxIn(wire.NewOutPoint(escrowHash, params.EscrowIndex), nil, nil)
	if params.TimelockBlocks > 0 {
		txIn.Sequence = params.TimelockBlocks
	}
	tx.AddTxIn(txIn)

	unallocated := new(big.Int).Set(params.Amount)
	err = b.addOutput(tx, params.Amount, unallocated, params.RecipientAddress)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// PrepareUTXOs selects utxos to cover rough estimated fee.
// Returns used utxos, total satoshi amount of utxos, rough estimation in satoshi and error if any.
func PrepareUTXOs(utxos []bitcoin.UTXO, inputs, outputs int, transferAmount, satoshiPerKVByte *big.Int) (usedUTXOs []*bitcoin.UTXO, totalAmount, roughEstimate *big.Int, err error) {
	satFn := func(u *bitcoin.UTXO) *big.Int { return u.Amount }

	for i := 1; i <= len(utxos); i++ {
		// vB * ( sat / kvB ) = 1000 sat.
		roughEstimate = new(big.Int).Mul(RoughTxSizeEstimate(i+inputs, outputs), satoshiPerKVByte)
		roughEstimate.Div(roughEstimate, big.NewInt(1000)) // sat.

		usedUTXOs, totalAmount, err = SelectUTXO(utxos, satFn, new(big.Int).Add(roughEstimate, transferAmount), i, bitcoin.ErrInsufficientNativeBalance)
		if err != nil {
			if errors.Is(err, bitcoin.ErrInsufficientNativeBalance) {
				continue
			}

			return nil, nil, nil, err
		}

		return usedUTXOs, totalAmount, roughEstimate, nil
	}

	return nil, nil, nil, bitcoin.ErrInsufficientNativeBalance
}

// RoughTxSizeEstimate returns Tx rough estimated size in vBytes.
func RoughTxSizeEstimate(inputs, outputs int) *big.Int {
	size := new(big.Int).Set(headerSizeVBytes)
	size.Add(size, new(big.Int).Mul(inputSizeVBytes, big.NewInt(int64(inputs))))
	size.Add(size, new(big.Int).Mul(outputSizeVBytes, big.NewInt(int64(outputs))))

	return size
}

// SelectUTXO is a partly greedy selection algorithm for UTXOs with 'requiredUTXOs' parameter.
// Returns list of selected by algorithm UTXOs with total amount, counted by passed amount function.
func SelectUTXO(utxos []bitcoin.UTXO, amountFn func(*bitcoin.UTXO) *big.Int, minAmount *big.Int, requiredUTXOs int,
	insufficientBalanceError error) (usedUTXOs []*bitcoin.UTXO, totalAmount *big.Int, _ error) {
	if len(utxos) < requiredUTXOs {
		return nil, nil, bitcoin.ErrInvalidUTXOAmount
	}

	usedUTXOs = make([]*bitcoin.UTXO, 0, requiredUTXOs)
	totalAmount = big.NewInt(0)
	var startIdx = 0
	var usedIdxs = make([]int, 0)

	// find the closest by amount UTXO that is grater then minAmount or take the biggest possible.
	for idx, utxo := range utxos {
		if numbers.IsGreater(minAmount, amountFn(&utxo)) {
			break
		}

		startIdx = idx
	}

	usedIdxs = append(usedIdxs, startIdx)
	totalAmount.Add(totalAmount, amountFn(&utxos[startIdx]))
	usedUTXOs = append(usedUTXOs, &utxos[startIdx])
	requiredUTXOs--

	// pick bigger amount if total amount do not cover minAmount, otherwise - the smallest to pass requiredUTXOs.
	for ; requiredUTXOs > 0; requiredUTXOs-- {
		idx := selectUnused(startIdx, len(utxos), usedIdxs, !numbers.IsGreater(minAmount, totalAmount))
		if idx == -1 {
			return nil, nil, bitcoin.ErrInvalidUTXOAmount
		}

		usedIdxs = append(usedIdxs, idx)
		totalAmount.Add(totalAmount, amountFn(&utxos[idx]))
		usedUTXOs = append(usedUTXOs, &utxos[idx])
	}

	if numbers.IsGreater(minAmount, totalAmount) {
		return nil, nil, insufficientBalanceError
	}

	return usedUTXOs, totalAmount, nil
}

// addOutput adds output to transaction, subtracts amount from unallocated amount.
func (b *TxBuilder) addOutput(tx *wire.MsgTx, amount, unallocatedAmount *big.Int, address string) error {
	if numbers.IsLess(unallocatedAmount, amount) {
		return errors.New("unallocated amount is less than the amount in provided inputs")
	}

	recipientAddress, err := btcutil.DecodeAddress(address, b.networkParams)
	if err != nil {
		return err
	}

	destinationAddrByte, err := txscript.PayToAddrScript(recipientAddress)
	if err != nil {
		return err
	}

	tx.AddTxOut(wire.NewTxOut(amount.Int64(), destinationAddrByte))
	unallocatedAmount.Sub(unallocatedAmount, amount)

	return nil
}

// selectUnused returns first unused idx depending on search direction.
func selectUnused(start, end int, usedIdxs []int, reversed bool) int {
	if reversed {
		for idx := end - 1; idx >= start; idx-- {
			if !isUsed(idx, usedIdxs) {
				return idx
			}
		}
	} else {
		for idx := start; idx < end; idx++ {
			if !isUsed(idx, usedIdxs) {
				return idx
			}
		}
	}

	return -1
}

// isUsed returns true id idx is in usedIdxs.
func isUsed(idx int, usedIdxs []int) bool {
	for _, used := range usedIdxs {
		if used == idx {
			return true
		}
	}

	return false
}
