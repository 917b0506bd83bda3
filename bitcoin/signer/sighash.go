// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"escrow/bitcoin"
)

// HashType defines the only supported signature hash policy: every input and
// output of the transaction is committed.
const HashType = txscript.SigHashAll

// KeyPathSighash computes the BIP341 key path signature hash of one
// transaction input. prevOuts must hold the spent output of every
// transaction input, index-aligned with tx.TxIn.
func KeyPathSighash(tx *wire.MsgTx, inputIndex int, prevOuts []*wire.TxOut) ([]byte, error) {
	fetcher, err := prevOutFetcher(tx, inputIndex, prevOuts)
	if err != nil {
		return nil, err
	}

	digest, err := txscript.CalcTaprootSignatureHash(txscript.NewTxSigHashes(tx, fetcher),
		HashType, tx, inputIndex, fetcher)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrSighashComputation, err)
	}

	return digest, nil
}

// ScriptPathSighash computes the BIP342 tapscript signature hash of one
// transaction input, committing to the given leaf script. prevOuts must hold
// the spent output of every transaction input, index-aligned with tx.TxIn.
func ScriptPathSighash(tx *wire.MsgTx, inputIndex int, prevOuts []*wire.TxOut, leafScript []byte) ([]byte, error) {
	fetcher, err := prevOutFetcher(tx, inputIndex, prevOuts)
	if err != nil {
		return nil, err
	}

	digest, err := txscript.CalcTapscriptSignaturehash(txscript.NewTxSigHashes(tx, fetcher),
		HashType, tx, inputIndex, fetcher, txscript.NewBaseTapLeaf(leafScript))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrSighashComputation, err)
	}

	return digest, nil
}

// prevOutFetcher validates sighash inputs and assembles a prevout fetcher
// covering all transaction inputs.
func prevOutFetcher(tx *wire.MsgTx, inputIndex int, prevOuts []*wire.TxOut) (txscript.PrevOutputFetcher, error) {
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return nil, fmt.Errorf("%w: input %d of %d", bitcoin.ErrInputIndexOutOfRange, inputIndex, len(tx.TxIn))
	}
	if len(prevOuts) != len(tx.TxIn) {
		return nil, fmt.Errorf("%w: %d prevouts for %d inputs", bitcoin.ErrSighashComputation, len(prevOuts), len(tx.TxIn))
	}

	prevOutMap := make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		if prevOuts[i] == nil {
			return nil, fmt.Errorf("%w: missing prevout for input %d", bitcoin.ErrSighashComputation, i)
		}

		prevOutMap[txIn.PreviousOutPoint] = prevOuts[i]
	}

	return txscript.NewMultiPrevOutFetcher(prevOutMap), nil
}
