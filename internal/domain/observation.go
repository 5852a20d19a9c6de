package domain

import "time"

// Observation is a single value of a source series on a given date.
// Corresponds to the observations table in PostgreSQL.
type Observation struct {
	SeriesID string    // series mnemonic, e.g. SOFR
	Date     time.Time // UTC midnight
	Value    *float64  // nil when the source reported no value
}

// SpikeIndicator is one row of the spike indicator output, keyed by date.
// Corresponds to the spike_indicators table in ClickHouse.
type SpikeIndicator struct {
	RunID              string    // pipeline run that produced the row
	Date               time.Time // UTC midnight
	SOFRAboveFedUpper  bool
	SOFR2StdAboveIORB  bool
	SOFRAboveIORB      bool
	TriPartyAboveUpper bool
}

// DateLayout is the canonical text encoding of index dates.
const DateLayout = "2006-01-02"
