// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"escrow/bitcoin/blocks"
)

func TestBlocks(t *testing.T) {
	t.Run("FromDays", func(t *testing.T) {
		require.EqualValues(t, 0, blocks.FromDays(0))
		require.EqualValues(t, 144, blocks.FromDays(1))
		require.EqualValues(t, 288, blocks.FromDays(2))
		require.EqualValues(t, 432, blocks.FromDays(3))
	})

	t.Run("FromHours", func(t *testing.T) {
		require.EqualValues(t, 0, blocks.FromHours(0))
		require.EqualValues(t, 6, blocks.FromHours(1))
		require.EqualValues(t, 144, blocks.FromHours(24))
	})

	t.Run("FromDaysHours", func(t *testing.T) {
		require.EqualValues(t, 0, blocks.FromDaysHours(0, 0))
		require.EqualValues(t, 150, blocks.FromDaysHours(1, 1))
		require.EqualValues(t, 588, blocks.FromDaysHours(4, 2))
	})
}
