// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
)

// Signature pairs a schnorr signature with the sighash type it was computed
// under. Which participant produced it is caller bookkeeping: witness order
// depends on signer identity, not on signature content.
type Signature struct {
	sig      *schnorr.Signature
	hashType txscript.SigHashType
}

// NewSignature is a constructor for Signature.
func NewSignature(sig *schnorr.Signature, hashType txscript.SigHashType) *Signature {
	return &Signature{sig: sig, hashType: hashType}
}

// Schnorr returns the underlying schnorr signature.
func (s *Signature) Schnorr() *schnorr.Signature {
	return s.sig
}

// HashType returns the sighash type the signature commits to.
func (s *Signature) HashType() txscript.SigHashType {
	return s.hashType
}

// Serialize returns the witness form of the signature: 64 bytes, with the
// sighash type appended when it is not SigHashDefault.
func (s *Signature) Serialize() []byte {
	sig := s.sig.Serialize()
	if s.hashType == txscript.SigHashDefault {
		return sig
	}

	return append(sig, byte(s.hashType))
}
