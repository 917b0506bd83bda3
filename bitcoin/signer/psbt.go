// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"escrow/bitcoin"
)

// SignPSBTParams defines parameters for the Signer.SignPSBT method.
type SignPSBTParams struct {
	SerializedPSBT []byte
	Inputs         []int // inputs indexes.
	PrivateKey     *btcec.PrivateKey
}

// Signer signs taproot PSBT inputs of escrow funding and resolution
// transactions. Key path inputs need only the witness utxo and internal key;
// escrow script path inputs additionally carry the leaf script with its
// control block in the TaprootLeafScript field, as derived from the escrow
// spend info.
type Signer struct {
	networkParams *chaincfg.Params
}

// NewSigner is a constructor for Signer.
func NewSigner(networkParams *chaincfg.Params) *Signer {
	return &Signer{
		networkParams: networkParams,
	}
}

// SignPSBT signs taproot inputs by provided indexes, returns updated serialized PSBT.
func (signer *Signer) SignPSBT(params SignPSBTParams) ([]byte, error) {
	packet, err := psbt.NewFromRawBytes(bytes.NewBuffer(params.SerializedPSBT), false)
	if err != nil {
		return nil, err
	}

	var (
		tx         = packet.UnsignedTx
		prevOutMap = make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	)
	for idx, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			continue
		}

		prevOutMap[tx.TxIn[idx].PreviousOutPoint] = in.WitnessUtxo
	}

	fetcher := txscript.NewMultiPrevOutFetcher(prevOutMap)
	for _, input := range params.Inputs {
		if input < 0 || input >= len(packet.Inputs) {
			return nil, fmt.Errorf("%w: input %d of %d", bitcoin.ErrInputIndexOutOfRange, input, len(packet.Inputs))
		}

		err = signer.signTaprootInput(packet, input, fetcher, params.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	w := bytes.NewBuffer(nil)
	err = packet.Serialize(w)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// signTaprootInput signs one taproot input through the script path when the
// input carries a tapleaf script, through the key path otherwise.
func (signer *Signer) signTaprootInput(packet *psbt.Packet, inputIndex int,
	fetcher txscript.PrevOutputFetcher, privateKey *btcec.PrivateKey) error {
	input := &packet.Inputs[inputIndex]
	if input.WitnessUtxo == nil {
		return fmt.Errorf("%w: missing witness utxo for input %d", bitcoin.ErrSighashComputation, inputIndex)
	}

	var (
		sigHashes   = txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)
		value       = input.WitnessUtxo.Value
		pkScript    = input.WitnessUtxo.PkScript
		sigHashType = input.SighashType
	)

	if len(input.TaprootLeafScript) != 0 {
		var (
			leafScript = input.TaprootLeafScript[0]
			tapLeaf    = txscript.TapLeaf{LeafVersion: leafScript.LeafVersion, Script: leafScript.Script}
			leafHash   = tapLeaf.TapHash()
		)

		sig, err := txscript.RawTxInTapscriptSignature(
			packet.UnsignedTx, sigHashes, inputIndex,
			value, pkScript, tapLeaf, sigHashType, privateKey,
		)
		if err != nil {
			return err
		}

		if len(sig) > schnorr.SignatureSize {
			sig = sig[:schnorr.SignatureSize]
		}
		input.TaprootScriptSpendSig = append(input.TaprootScriptSpendSig, &psbt.TaprootScriptSpendSig{
			XOnlyPubKey: schnorr.SerializePubKey(privateKey.PubKey()),
			LeafHash:    leafHash.CloneBytes(),
			Signature:   sig,
			SigHash:     sigHashType,
		})

		return nil
	}

	witness, err := txscript.TaprootWitnessSignature(
		packet.UnsignedTx, sigHashes, inputIndex,
		value, pkScript, sigHashType, privateKey)
	if err != nil {
		return err
	}

	input.TaprootKeySpendSig = witness[0]

	return nil
}
