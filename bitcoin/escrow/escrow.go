// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package escrow builds taproot escrow contracts between two counterparties
// identified by nostr keys.
//
// A collaborative escrow commits a single tapleaf requiring both participants
// to sign. A dispute escrow commits two tapleaves: an arbitration leaf that is
// spendable immediately by the arbitrator together with at least one
// participant, and a timeout leaf that lets both participants resolve without
// the arbitrator once a relative timelock has elapsed. The relative timelock
// never gates the arbitration leaf.
//
// Participant keys are ordered canonically by their x-only bytes before any
// script is built, so structurally equivalent escrows commit to identical
// scripts and addresses regardless of argument order.
package escrow

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"escrow/bitcoin"
)

// Leaf identifies one tapleaf of an escrow taproot tree.
type Leaf byte

const (
	// LeafCollaborative defines the 2-of-2 participants leaf. It is the only
	// leaf of a collaborative escrow.
	LeafCollaborative Leaf = iota
	// LeafArbitration defines the dispute leaf spendable by the arbitrator
	// with at least one participant, with no timelock.
	LeafArbitration
	// LeafTimeout defines the dispute leaf spendable by both participants
	// after the relative timelock has elapsed.
	LeafTimeout
)

// String returns a human-readable leaf name.
func (l Leaf) String() string {
	switch l {
	case LeafCollaborative:
		return "collaborative"
	case LeafArbitration:
		return "arbitration"
	case LeafTimeout:
		return "timeout"
	}

	return fmt.Sprintf("unknown(%d)", byte(l))
}

// Escrow describes one escrow contract between two participants, with an
// optional arbitrator and relative timelock for the dispute variant.
// Key values are owned by the Escrow and immutable once constructed.
type Escrow struct {
	participant1 *btcec.PublicKey // lesser x-only bytes.
	participant2 *btcec.PublicKey
	arbitrator   *btcec.PublicKey // nil for collaborative escrows.
	timelock     uint32           // relative timelock in blocks, dispute only.
}

// NewCollaborative is a constructor for a collaborative 2-of-2 Escrow without
// timelocks and arbitrator.
func NewCollaborative(participant1, participant2 *btcec.PublicKey) *Escrow {
	p1, p2 := sortKeys(participant1, participant2)

	return &Escrow{participant1: p1, participant2: p2}
}

// NewDispute is a constructor for a dispute Escrow with an arbitrator and a
// relative timelock in blocks. Both parameters are mandatory.
func NewDispute(participant1, participant2, arbitrator *btcec.PublicKey, timelockBlocks uint32) (*Escrow, error) {
	if arbitrator == nil {
		return nil, fmt.Errorf("%w: dispute escrow requires an arbitrator", bitcoin.ErrMissingVariantParameter)
	}
	if timelockBlocks == 0 {
		return nil, fmt.Errorf("%w: dispute escrow requires a timelock", bitcoin.ErrMissingVariantParameter)
	}

	p1, p2 := sortKeys(participant1, participant2)

	return &Escrow{
		participant1: p1,
		participant2: p2,
		arbitrator:   arbitrator,
		timelock:     timelockBlocks,
	}, nil
}

// IsDispute returns true for escrows with an arbitrator.
func (e *Escrow) IsDispute() bool {
	return e.arbitrator != nil
}

// Participant1 returns the participant key with the lesser x-only bytes.
func (e *Escrow) Participant1() *btcec.PublicKey { return e.participant1 }

// Participant2 returns the participant key with the greater x-only bytes.
func (e *Escrow) Participant2() *btcec.PublicKey { return e.participant2 }

// Arbitrator returns the arbitrator key, nil for collaborative escrows.
func (e *Escrow) Arbitrator() *btcec.PublicKey { return e.arbitrator }

// Timelock returns the relative timelock in blocks, 0 for collaborative escrows.
func (e *Escrow) Timelock() uint32 { return e.timelock }

// Leaves returns all tapleaf locking scripts of the escrow in tree order.
func (e *Escrow) Leaves() ([][]byte, error) {
	if !e.IsDispute() {
		collaborative, err := e.LeafScript(LeafCollaborative)
		if err != nil {
			return nil, err
		}

		return [][]byte{collaborative}, nil
	}

	arbitration, err := e.LeafScript(LeafArbitration)
	if err != nil {
		return nil, err
	}

	timeout, err := e.LeafScript(LeafTimeout)
	if err != nil {
		return nil, err
	}

	return [][]byte{arbitration, timeout}, nil
}

// LeafScript builds the locking script of one escrow tapleaf. Requesting a
// leaf the variant does not carry fails with bitcoin.ErrMissingVariantParameter.
//
// Witness convention for every leaf: signatures are consumed in reverse order
// of key appearance in the script, i.e. the first key checked by the script
// takes the last (top of stack) signature element.
func (e *Escrow) LeafScript(leaf Leaf) (script []byte, err error) {
	switch leaf {
	case LeafCollaborative:
		if e.IsDispute() {
			return nil, fmt.Errorf("%w: dispute escrow has no collaborative leaf", bitcoin.ErrMissingVariantParameter)
		}

		script, err = newParticipantsLeafScript(e.participant1, e.participant2)
	case LeafArbitration:
		if !e.IsDispute() {
			return nil, fmt.Errorf("%w: collaborative escrow has no arbitration leaf", bitcoin.ErrMissingVariantParameter)
		}

		script, err = newArbitrationLeafScript(e.arbitrator, e.participant1, e.participant2)
	case LeafTimeout:
		if !e.IsDispute() {
			return nil, fmt.Errorf("%w: collaborative escrow has no timeout leaf", bitcoin.ErrMissingVariantParameter)
		}

		script, err = newTimeoutLeafScript(e.timelock, e.participant1, e.participant2)
	default:
		return nil, fmt.Errorf("%w: unknown leaf %s", bitcoin.ErrMissingVariantParameter, leaf)
	}
	if err != nil {
		return nil, err
	}

	if asm, err := txscript.DisasmString(script); err == nil {
		log.Tracef("escrow %s leaf script: %s", leaf, asm)
	}

	return script, nil
}

// newParticipantsLeafScript builds 2-of-2 multi-sig locking script over both
// participants' keys:
// {<pk1> OP_CHECKSIG <pk2> OP_CHECKSIGADD 2 OP_EQUAL}.
func newParticipantsLeafScript(participant1, participant2 *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(participant1)).
		AddOp(txscript.OP_CHECKSIG).
		AddData(schnorr.SerializePubKey(participant2)).
		AddOp(txscript.OP_CHECKSIGADD).
		AddInt64(2).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// newArbitrationLeafScript builds the dispute resolution locking script that
// requires the arbitrator's signature plus a signature from at least one
// participant:
// {<arb> OP_CHECKSIGVERIFY <pk1> OP_CHECKSIG <pk2> OP_CHECKSIGADD 1 OP_GREATERTHANOREQUAL}.
// A non-signing participant's witness slot carries an empty element.
func newArbitrationLeafScript(arbitrator, participant1, participant2 *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(arbitrator)).
		AddOp(txscript.OP_CHECKSIGVERIFY).
		AddData(schnorr.SerializePubKey(participant1)).
		AddOp(txscript.OP_CHECKSIG).
		AddData(schnorr.SerializePubKey(participant2)).
		AddOp(txscript.OP_CHECKSIGADD).
		AddInt64(1).
		AddOp(txscript.OP_GREATERTHANOREQUAL).
		Script()
}

// newTimeoutLeafScript builds the arbitrator-free dispute resolution locking
// script, available to both participants only after the relative timelock:
// {<blocks> OP_CHECKSEQUENCEVERIFY OP_DROP <pk1> OP_CHECKSIG <pk2> OP_CHECKSIGADD 2 OP_EQUAL}.
// The spending input's sequence must encode at least the same block count.
func newTimeoutLeafScript(timelockBlocks uint32, participant1, participant2 *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddInt64(int64(timelockBlocks)).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(schnorr.SerializePubKey(participant1)).
		AddOp(txscript.OP_CHECKSIG).
		AddData(schnorr.SerializePubKey(participant2)).
		AddOp(txscript.OP_CHECKSIGADD).
		AddInt64(2).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// sortKeys orders two keys canonically by their x-only serialization.
func sortKeys(a, b *btcec.PublicKey) (*btcec.PublicKey, *btcec.PublicKey) {
	if string(schnorr.SerializePubKey(a)) > string(schnorr.SerializePubKey(b)) {
		return b, a
	}

	return a, b
}
