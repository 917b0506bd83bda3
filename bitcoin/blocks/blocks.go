// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package blocks converts wall-clock durations to block counts assuming
// blocks come in 10-minute intervals.
package blocks

const (
	// PerHour defines the expected number of blocks mined in one hour.
	PerHour = 6
	// PerDay defines the expected number of blocks mined in one day.
	PerDay = 24 * PerHour
)

// FromDays converts days to blocks.
func FromDays(days uint32) uint32 {
	return days * PerDay
}

// FromHours converts hours to blocks.
func FromHours(hours uint32) uint32 {
	return hours * PerHour
}

// FromDaysHours converts days and hours to blocks.
func FromDaysHours(days, hours uint32) uint32 {
	return FromDays(days) + FromHours(hours)
}
