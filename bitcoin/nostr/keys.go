// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package nostr converts between bech32-encoded nostr key strings and
// secp256k1 key material usable for taproot spends.
//
// Decoded public keys are normalized to even parity, matching the x-only
// key convention of BIP340: the 32 decoded bytes are interpreted as the
// x coordinate of a point with even y.
package nostr

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/nbd-wtf/go-nostr/nip19"

	"escrow/bitcoin"
)

const (
	// prefixPublicKey defines bech32 human-readable prefix for public keys.
	prefixPublicKey = "npub"
	// prefixSecretKey defines bech32 human-readable prefix for secret keys.
	prefixSecretKey = "nsec"

	// keyLen defines raw key length in bytes.
	keyLen = 32
)

// DecodePublicKey parses a bech32-encoded npub string into a public key
// with forced even parity.
func DecodePublicKey(npub string) (*btcec.PublicKey, error) {
	data, err := decode(npub, prefixPublicKey)
	if err != nil {
		return nil, err
	}

	pubKey, err := schnorr.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrInvalidKeyMaterial, err)
	}

	return pubKey, nil
}

// DecodeSecretKey parses a bech32-encoded nsec string into a private key.
// Payloads outside the valid scalar range [1, N) of the curve are rejected.
func DecodeSecretKey(nsec string) (*btcec.PrivateKey, error) {
	data, err := decode(nsec, prefixSecretKey)
	if err != nil {
		return nil, err
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(data); overflow {
		return nil, fmt.Errorf("%w: secret key exceeds curve order", bitcoin.ErrInvalidKeyMaterial)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: secret key is zero", bitcoin.ErrInvalidKeyMaterial)
	}

	privKey, _ := btcec.PrivKeyFromBytes(data)

	return privKey, nil
}

// EncodePublicKey returns the npub string for a public key.
// Encoding covers the x-only coordinate, so parity is dropped.
func EncodePublicKey(pubKey *btcec.PublicKey) (string, error) {
	npub, err := nip19.EncodePublicKey(hex.EncodeToString(schnorr.SerializePubKey(pubKey)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", bitcoin.ErrInvalidEncoding, err)
	}

	return npub, nil
}

// EncodeSecretKey returns the nsec string for a private key.
func EncodeSecretKey(privKey *btcec.PrivateKey) (string, error) {
	nsec, err := nip19.EncodePrivateKey(hex.EncodeToString(privKey.Serialize()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", bitcoin.ErrInvalidEncoding, err)
	}

	return nsec, nil
}

// NormalizedPublicKey derives the public key of privKey forced to even parity.
func NormalizedPublicKey(privKey *btcec.PrivateKey) (*btcec.PublicKey, error) {
	pubKey, err := schnorr.ParsePubKey(schnorr.SerializePubKey(privKey.PubKey()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrInvalidKeyMaterial, err)
	}

	return pubKey, nil
}

// GenerateKeyPair generates a fresh key pair, returning it in nsec/npub
// bech32 encoding.
func GenerateKeyPair() (nsec, npub string, err error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return "", "", err
	}

	nsec, err = EncodeSecretKey(privKey)
	if err != nil {
		return "", "", err
	}

	npub, err = EncodePublicKey(privKey.PubKey())
	if err != nil {
		return "", "", err
	}

	return nsec, npub, nil
}

// PublicKeyAddress renders the key-path-only P2TR address of a public key
// for the given network. The output key is the BIP341 tweak of pubKey with
// an empty script tree.
func PublicKeyAddress(pubKey *btcec.PublicKey, network bitcoin.Network) (*btcutil.AddressTaproot, error) {
	chainParams, err := network.ChainParams()
	if err != nil {
		return nil, err
	}

	outputKey := txscript.ComputeTaprootKeyNoScript(pubKey)

	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), chainParams)
}

// decode decodes a bech32 key string, enforcing prefix and payload length.
func decode(encoded, prefix string) ([]byte, error) {
	hrp, value, err := nip19.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrInvalidEncoding, err)
	}
	if hrp != prefix {
		return nil, fmt.Errorf("%w: expected %q prefix, got %q", bitcoin.ErrInvalidEncoding, prefix, hrp)
	}

	encodedHex, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected %q payload", bitcoin.ErrInvalidEncoding, hrp)
	}

	data, err := hex.DecodeString(encodedHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrInvalidEncoding, err)
	}
	if len(data) != keyLen {
		return nil, fmt.Errorf("%w: expected %d-byte payload, got %d", bitcoin.ErrInvalidEncoding, keyLen, len(data))
	}

	return data, nil
}
