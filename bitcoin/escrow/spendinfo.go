// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package escrow

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"escrow/bitcoin"
)

// numsPointBytes defines the BIP341 "nothing up my sleeve" point used as the
// internal key of every escrow output. It has no known discrete logarithm, so
// escrow outputs are spendable through their script paths only.
var numsPointBytes = []byte{
	0x50, 0x92, 0x9b, 0x74, 0xc1, 0xa0, 0x49, 0x54,
	0xb7, 0x8b, 0x4b, 0x60, 0x35, 0xe9, 0x7a, 0x5e,
	0x07, 0x8a, 0x5a, 0x0f, 0x28, 0xec, 0x96, 0xd5,
	0x47, 0xbf, 0xee, 0x9a, 0xce, 0x80, 0x3a, 0xc0,
}

// SpendInfo holds the taproot commitment of an escrow: the internal key, the
// assembled tapleaf merkle tree and the tweaked output key. It is a pure
// function of the escrow parameters, so any party holding the same public
// inputs derives an identical SpendInfo.
type SpendInfo struct {
	internalKey *btcec.PublicKey
	outputKey   *btcec.PublicKey
	tree        *txscript.IndexedTapScriptTree
}

// SpendInfo derives the taproot commitment of the escrow.
func (e *Escrow) SpendInfo() (*SpendInfo, error) {
	leafScripts, err := e.Leaves()
	if err != nil {
		return nil, err
	}

	return NewSpendInfo(leafScripts...)
}

// NewSpendInfo assembles a taproot tree over the provided leaf scripts with
// the unspendable NUMS internal key.
func NewSpendInfo(leafScripts ...[]byte) (*SpendInfo, error) {
	if len(leafScripts) == 0 {
		return nil, fmt.Errorf("%w: no leaf scripts provided", bitcoin.ErrLeafNotFound)
	}

	internalKey, err := schnorr.ParsePubKey(numsPointBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrInvalidKeyMaterial, err)
	}

	tapLeafs := make([]txscript.TapLeaf, len(leafScripts))
	for i, leafScript := range leafScripts {
		tapLeafs[i] = txscript.NewBaseTapLeaf(leafScript)
	}

	tree := txscript.AssembleTaprootScriptTree(tapLeafs...)
	rootHash := tree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(internalKey, rootHash[:])

	return &SpendInfo{
		internalKey: internalKey,
		outputKey:   outputKey,
		tree:        tree,
	}, nil
}

// InternalKey returns the unspendable internal key the tree is committed to.
func (si *SpendInfo) InternalKey() *btcec.PublicKey { return si.internalKey }

// OutputKey returns the tweaked taproot output key.
func (si *SpendInfo) OutputKey() *btcec.PublicKey { return si.outputKey }

// MerkleRoot returns the tap hash of the tree root.
func (si *SpendInfo) MerkleRoot() chainhash.Hash {
	return si.tree.RootNode.TapHash()
}

// Address renders the escrow output as a witness-v1 address for the network.
func (si *SpendInfo) Address(network bitcoin.Network) (*btcutil.AddressTaproot, error) {
	chainParams, err := network.ChainParams()
	if err != nil {
		return nil, err
	}

	address, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(si.outputKey), chainParams)
	if err != nil {
		return nil, err
	}

	log.Tracef("escrow address %s for network %s", address, network)

	return address, nil
}

// PkScript returns the escrow output locking script (segwit v1 program).
func (si *SpendInfo) PkScript() ([]byte, error) {
	return txscript.PayToTaprootScript(si.outputKey)
}

// ControlBlock returns the serialized merkle inclusion proof of the leaf
// script. The proof is valid only for the exact script bytes it was requested
// for; scripts outside the tree fail with bitcoin.ErrLeafNotFound.
func (si *SpendInfo) ControlBlock(leafScript []byte) ([]byte, error) {
	leafHash := txscript.NewBaseTapLeaf(leafScript).TapHash()
	proofIdx, ok := si.tree.LeafProofIndex[leafHash]
	if !ok {
		return nil, fmt.Errorf("%w: leaf hash %s", bitcoin.ErrLeafNotFound, leafHash)
	}

	controlBlock := si.tree.LeafMerkleProofs[proofIdx].ToControlBlock(si.internalKey)

	return controlBlock.ToBytes()
}

// LeafHash returns the BIP341 tap hash of a leaf script.
func LeafHash(leafScript []byte) chainhash.Hash {
	return txscript.NewBaseTapLeaf(leafScript).TapHash()
}
