// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package nostr_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"

	"escrow/bitcoin"
	"escrow/bitcoin/nostr"
)

func TestDecodeSecretKey(t *testing.T) {
	tests := []struct {
		nsec string
		hex  string
	}{
		{
			nsec: "nsec1ezmlpxvhhjnqt9wf60tmshkye7xlwsf37dl0qlmrjuxeq7p3zahs2tukgx",
			hex:  "c8b7f09997bca60595c9d3d7b85ec4cf8df74131f37ef07f63970d907831176f",
		},
		{
			nsec: "nsec1vl029mgpspedva04g90vltkh6fvh240zqtv9k0t9af8935ke9laqsnlfe5",
			hex:  "67dea2ed018072d675f5415ecfaed7d2597555e202d85b3d65ea4e58d2d92ffa",
		},
		{
			nsec: "nsec103m6x7a369k95rhtdn5w5mxsdpgyqprnysdtvhe6m0ef5xuz9d6s6emzda",
			hex:  "7c77a37bb1d16c5a0eeb6ce8ea6cd06850400473241ab65f3adbf29a1b822b75",
		},
	}

	for _, test := range tests {
		privKey, err := nostr.DecodeSecretKey(test.nsec)
		require.NoError(t, err)
		require.Equal(t, test.hex, hex.EncodeToString(privKey.Serialize()))

		// re-encoding reproduces the original string.
		nsec, err := nostr.EncodeSecretKey(privKey)
		require.NoError(t, err)
		require.Equal(t, test.nsec, nsec)
	}
}

func TestDecodePublicKey(t *testing.T) {
	const npub = "npub10elfcs4fr0l0r8af98jlmgdh9c8tcxjvz9qkw038js35mp4dma8qzvjptg"

	pubKey, err := nostr.DecodePublicKey(npub)
	require.NoError(t, err)

	// decoded key is normalized to even parity, 0x02-prefixed compressed form.
	require.Equal(t, "027e7e9c42a91bfef19fa929e5fda1b72e0ebc1a4c1141673e2794234d86addf4e",
		hex.EncodeToString(pubKey.SerializeCompressed()))

	reencoded, err := nostr.EncodePublicKey(pubKey)
	require.NoError(t, err)
	require.Equal(t, npub, reencoded)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("wrong prefix", func(t *testing.T) {
		_, err := nostr.DecodeSecretKey("npub10elfcs4fr0l0r8af98jlmgdh9c8tcxjvz9qkw038js35mp4dma8qzvjptg")
		require.ErrorIs(t, err, bitcoin.ErrInvalidEncoding)

		_, err = nostr.DecodePublicKey("nsec1ezmlpxvhhjnqt9wf60tmshkye7xlwsf37dl0qlmrjuxeq7p3zahs2tukgx")
		require.ErrorIs(t, err, bitcoin.ErrInvalidEncoding)
	})

	t.Run("corrupted checksum", func(t *testing.T) {
		corrupted := strings.Replace("npub10elfcs4fr0l0r8af98jlmgdh9c8tcxjvz9qkw038js35mp4dma8qzvjptg", "elf", "fle", 1)
		_, err := nostr.DecodePublicKey(corrupted)
		require.ErrorIs(t, err, bitcoin.ErrInvalidEncoding)
	})

	t.Run("not bech32", func(t *testing.T) {
		_, err := nostr.DecodePublicKey("7e7e9c42a91bfef19fa929e5fda1b72e0ebc1a4c1141673e2794234d86addf4e")
		require.ErrorIs(t, err, bitcoin.ErrInvalidEncoding)
	})

	t.Run("secret key out of scalar range", func(t *testing.T) {
		// well-formed bech32 payloads that are not valid scalars:
		// 0xff..ff and the curve order itself overflow, all-zero is not a key.
		for _, nsec := range []string{
			"nsec1lllllllllllllllllllllllllllllllllllllllllllllllllllsvg5z5m",
			"nsec1lllllllllllllllllllllllll6a2ah8x4ay2qwal6f0ge5pkg9qstu3zum",
			"nsec1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqwkhnav",
		} {
			_, err := nostr.DecodeSecretKey(nsec)
			require.ErrorIs(t, err, bitcoin.ErrInvalidKeyMaterial, nsec)
		}
	})
}

func TestNormalizedPublicKey(t *testing.T) {
	for i := 0; i < 16; i++ {
		privKey, err := btcec.NewPrivateKey()
		require.NoError(t, err)

		normalized, err := nostr.NormalizedPublicKey(privKey)
		require.NoError(t, err)
		require.EqualValues(t, 0x02, normalized.SerializeCompressed()[0])

		// normalization keeps the x coordinate and is idempotent.
		require.Equal(t, schnorr.SerializePubKey(privKey.PubKey()), schnorr.SerializePubKey(normalized))

		again, err := nostr.NormalizedPublicKey(privKey)
		require.NoError(t, err)
		require.Equal(t, normalized.SerializeCompressed(), again.SerializeCompressed())
	}
}

func TestGenerateKeyPair(t *testing.T) {
	nsec, npub, err := nostr.GenerateKeyPair()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(nsec, "nsec1"))
	require.True(t, strings.HasPrefix(npub, "npub1"))

	privKey, err := nostr.DecodeSecretKey(nsec)
	require.NoError(t, err)

	pubKey, err := nostr.DecodePublicKey(npub)
	require.NoError(t, err)
	require.Equal(t, schnorr.SerializePubKey(privKey.PubKey()), schnorr.SerializePubKey(pubKey))
}

func TestPublicKeyAddress(t *testing.T) {
	pubKey, err := nostr.DecodePublicKey("npub10elfcs4fr0l0r8af98jlmgdh9c8tcxjvz9qkw038js35mp4dma8qzvjptg")
	require.NoError(t, err)

	mainnet, err := nostr.PublicKeyAddress(pubKey, bitcoin.NetworkMainnet)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(mainnet.EncodeAddress(), "bc1p"))

	signet, err := nostr.PublicKeyAddress(pubKey, bitcoin.NetworkSignet)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signet.EncodeAddress(), "tb1p"))

	mutinynet, err := nostr.PublicKeyAddress(pubKey, bitcoin.NetworkMutinynet)
	require.NoError(t, err)
	require.Equal(t, signet.EncodeAddress(), mutinynet.EncodeAddress())

	_, err = nostr.PublicKeyAddress(pubKey, bitcoin.Network("Regtest"))
	require.ErrorIs(t, err, bitcoin.ErrUnsupportedNetwork)
}
