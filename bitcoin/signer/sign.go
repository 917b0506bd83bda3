// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package signer computes taproot signature hashes, produces schnorr
// signatures over them and assembles signed escrow transactions.
//
// All operations are pure functions over immutable inputs: signing never
// mutates the supplied transaction, and signatures for independent signers
// can be produced concurrently. Nonces are derived deterministically, so
// identical inputs always yield bit-identical signatures.
package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"escrow/bitcoin"
	"escrow/bitcoin/escrow"
)

// SignKeyPath signs a BIP341 key path digest. The private key is tweaked with
// the empty script tree before signing, so the signature verifies against the
// tweaked output key embedded in the spent output, not the raw key.
func SignKeyPath(privKey *btcec.PrivateKey, digest []byte) (*Signature, error) {
	if len(digest) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: digest must be %d bytes", bitcoin.ErrSighashComputation, chainhash.HashSize)
	}

	tweaked := txscript.TweakTaprootPrivKey(*privKey, nil)
	sig, err := schnorr.Sign(tweaked, digest)
	if err != nil {
		return nil, err
	}

	return NewSignature(sig, HashType), nil
}

// SignScriptPath signs a BIP342 script path digest with the raw untweaked
// key, since tapscript spends verify against the leaf's literal key operand.
func SignScriptPath(privKey *btcec.PrivateKey, digest []byte) (*Signature, error) {
	if len(digest) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: digest must be %d bytes", bitcoin.ErrSighashComputation, chainhash.HashSize)
	}

	sig, err := schnorr.Sign(privKey, digest)
	if err != nil {
		return nil, err
	}

	return NewSignature(sig, HashType), nil
}

// SignResolution signs a single-input P2TR key path spend transaction and
// returns a new transaction with the witness attached. prevOut is the spent
// output of the only input.
func SignResolution(tx *wire.MsgTx, privKey *btcec.PrivateKey, prevOut *wire.TxOut) (*wire.MsgTx, error) {
	if len(tx.TxIn) != 1 {
		return nil, fmt.Errorf("%w: resolution tx must have exactly one input, got %d",
			bitcoin.ErrSighashComputation, len(tx.TxIn))
	}

	digest, err := KeyPathSighash(tx, 0, []*wire.TxOut{prevOut})
	if err != nil {
		return nil, err
	}

	sig, err := SignKeyPath(privKey, digest)
	if err != nil {
		return nil, err
	}

	log.Tracef("signed resolution tx %s", tx.TxHash())

	return CombineKeyPathSignature(tx, 0, sig)
}

// SignEscrowInput signs one escrow transaction input for the given tapleaf:
// it builds the leaf locking script, computes the BIP342 digest committing to
// that leaf and signs it with the raw key. prevOuts must hold the spent
// output of every transaction input, index-aligned with tx.TxIn.
func SignEscrowInput(esc *escrow.Escrow, leaf escrow.Leaf, tx *wire.MsgTx, inputIndex int,
	prevOuts []*wire.TxOut, privKey *btcec.PrivateKey) (*Signature, error) {
	leafScript, err := esc.LeafScript(leaf)
	if err != nil {
		return nil, err
	}

	digest, err := ScriptPathSighash(tx, inputIndex, prevOuts, leafScript)
	if err != nil {
		return nil, err
	}

	sig, err := SignScriptPath(privKey, digest)
	if err != nil {
		return nil, err
	}

	log.Tracef("signed escrow %s leaf for input %d of tx %s", leaf, inputIndex, tx.TxHash())

	return sig, nil
}
