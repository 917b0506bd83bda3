// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"errors"
)

var (
	// ErrInvalidEncoding defines that a bech32 string has a wrong prefix,
	// length or checksum.
	ErrInvalidEncoding = errors.New("invalid bech32 encoding")
	// ErrInvalidKeyMaterial defines that key bytes do not form a valid
	// secp256k1 point or scalar.
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	// ErrUnsupportedNetwork defines that a network tag is not recognized.
	ErrUnsupportedNetwork = errors.New("unsupported network")
	// ErrMissingVariantParameter defines that an escrow variant requires a
	// parameter (arbitrator, timelock) that was not supplied.
	ErrMissingVariantParameter = errors.New("missing escrow variant parameter")
	// ErrLeafNotFound defines that a leaf script is not part of the taproot tree.
	ErrLeafNotFound = errors.New("leaf script not found in taproot tree")
	// ErrSighashComputation defines that signature hash inputs are inconsistent,
	// e.g. prevouts do not cover all transaction inputs.
	ErrSighashComputation = errors.New("signature hash computation failed")
	// ErrInputIndexOutOfRange defines that an input index does not exist in
	// the transaction.
	ErrInputIndexOutOfRange = errors.New("input index out of range")

	// ErrInsufficientNativeBalance defines that there is not enough bitcoin
	// to cover transfer and fee.
	ErrInsufficientNativeBalance = errors.New("insufficient native balance")
	// ErrInvalidUTXOAmount defines that the requested utxo amount can not be
	// selected from the provided list.
	ErrInvalidUTXOAmount = errors.New("invalid utxo amount")
)
