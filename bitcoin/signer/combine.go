// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"escrow/bitcoin"
)

// CombineKeyPathSignature returns a copy of tx with the single-element key
// path witness attached to the input.
func CombineKeyPathSignature(tx *wire.MsgTx, inputIndex int, sig *Signature) (*wire.MsgTx, error) {
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return nil, fmt.Errorf("%w: input %d of %d", bitcoin.ErrInputIndexOutOfRange, inputIndex, len(tx.TxIn))
	}

	signed := tx.Copy()
	signed.TxIn[inputIndex].Witness = wire.TxWitness{sig.Serialize()}

	return signed, nil
}

// CombineScriptPathSignatures returns a copy of tx with the tapscript witness
// attached to the input: each signature in caller-supplied order, then the
// leaf locking script, then its control block.
//
// The function is a pure structural composer. It performs no reordering and
// no validation of the signatures against the script: the caller must supply
// signatures in the script's stack-consumption order (reverse of key
// appearance in the leaf script, so the first checked key's signature comes
// last) and must pair the locking script with the control block derived for
// exactly that script. A nil signature produces an empty witness element,
// the slot of a participant who does not co-sign the leaf.
func CombineScriptPathSignatures(tx *wire.MsgTx, inputIndex int, sigs []*Signature,
	leafScript, controlBlock []byte) (*wire.MsgTx, error) {
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return nil, fmt.Errorf("%w: input %d of %d", bitcoin.ErrInputIndexOutOfRange, inputIndex, len(tx.TxIn))
	}

	witness := make(wire.TxWitness, 0, len(sigs)+2)
	for _, sig := range sigs {
		if sig == nil {
			witness = append(witness, []byte{})
			continue
		}

		witness = append(witness, sig.Serialize())
	}

	witness = append(witness, leafScript, controlBlock)

	signed := tx.Copy()
	signed.TxIn[inputIndex].Witness = witness

	log.Tracef("combined %d witness elements for input %d of tx %s", len(witness), inputIndex, signed.TxHash())

	return signed, nil
}
