package domain

// Source series mnemonics (FRED and OFR short-term funding monitor).
const (
	SeriesFedUpper      = "DFEDTARU"          // federal funds target range, upper limit
	SeriesFedLower      = "DFEDTARL"          // federal funds target range, lower limit
	SeriesEFFR          = "EFFR"              // effective federal funds rate
	SeriesSOFR          = "SOFR"              // secured overnight financing rate
	SeriesTriParty      = "REPO-TRI_AR_OO-P"  // tri-party overnight average rate
	SeriesDVP           = "REPO-DVP_AR_OO-P"  // DVP overnight average rate
	SeriesGCF           = "REPO-GCF_AR_OO-P"  // GCF overnight average rate
	SeriesIORB          = "Gen_IORB"          // interest on reserves (IOER spliced with IORB)
	SeriesONRRPAward    = "RRPONTSYAWARD"     // ON/RRP award rate
	SeriesBGCR          = "FNYR-BGCR-A"       // broad general collateral rate
	SeriesTGCR          = "FNYR-TGCR-A"       // tri-party general collateral rate
	SeriesTotalReserves = "TOTRESNS"          // total reserves of depository institutions
	SeriesCurrency      = "CURRCIR"           // currency in circulation
	SeriesRepoVolume    = "RPONTSYD"          // Fed overnight repo, Treasury collateral
	SeriesRRPVolume     = "RRPONTSYD"         // Fed overnight reverse repo, Treasury collateral
	SeriesBalanceSheet  = "WALCL"             // total assets of the Federal Reserve
	SeriesGDP           = "GDP"               // gross domestic product
)

// Derived column names.
const (
	ColTargetMidpoint       = "target_midpoint"
	ColSOFRLessIORB         = "SOFR-IORB"
	ColBalanceSheetToGDP    = "Fed Balance Sheet / GDP"
	ColTriPartyLessONRRP    = "Tri-Party - Fed ON/RRP Rate"
	ColTriPartyLessUpper    = "Tri-Party Rate Less Fed Funds Upper Limit"
	ColTriPartyLessMidpoint = "Tri-Party Rate Less Fed Funds Midpoint"
	ColNetFedRepo           = "net_fed_repo"
	ColReservesToCurrency   = "Total Reserves / Currency"
	ColReservesToGDP        = "Total Reserves / GDP"
	ColSOFRExtended         = "SOFR (extended with Tri-Party)"
)

// Spike indicator column names, in the order they are written to is_spike.csv.
const (
	ColSOFRAboveFedUpper  = "is_SOFR_above_fed_upper"
	ColSOFR2StdAboveIORB  = "is_SOFR_2std_above_IORB"
	ColSOFRAboveIORB      = "is_SOFR_above_IORB"
	ColTriPartyAboveUpper = "is_tri_above_fed_upper"
)

// SpikeIndicatorColumns lists indicator columns in output order.
var SpikeIndicatorColumns = []string{
	ColSOFRAboveFedUpper,
	ColSOFR2StdAboveIORB,
	ColSOFRAboveIORB,
	ColTriPartyAboveUpper,
}

// SeriesDescriptions maps mnemonics to human-readable labels.
var SeriesDescriptions = map[string]string{
	SeriesFedUpper:      "Federal Funds Target Range - Upper Limit",
	SeriesFedLower:      "Federal Funds Target Range - Lower Limit",
	SeriesEFFR:          "Effective Federal Funds Rate",
	SeriesSOFR:          "Secured Overnight Financing Rate",
	SeriesTriParty:      "Tri-Party Overnight Average Rate",
	SeriesDVP:           "DVP Overnight Average Rate",
	SeriesGCF:           "GCF Overnight Average Rate",
	SeriesIORB:          "Interest on Reserves",
	SeriesONRRPAward:    "ON-RRP facility rate",
	SeriesBGCR:          "Broad General Collateral Rate",
	SeriesTGCR:          "Tri-Party General Collateral Rate",
	SeriesTotalReserves: "Total Reserves of Depository Institutions",
	SeriesCurrency:      "Currency in Circulation",
	SeriesRepoVolume:    "Fed Repo Volume (Treasury collateral)",
	SeriesRRPVolume:     "Fed Reverse Repo Volume (Treasury collateral)",
	SeriesBalanceSheet:  "Fed Total Assets",
	SeriesGDP:           "Gross Domestic Product",

	ColSOFRAboveFedUpper:  "SOFR above Fed Funds upper limit",
	ColSOFR2StdAboveIORB:  "SOFR-IORB more than 2 std above zero",
	ColSOFRAboveIORB:      "SOFR above IORB",
	ColTriPartyAboveUpper: "Tri-Party rate above Fed Funds upper limit",
}

// Describe returns the human-readable label for a column, or the column name itself.
func Describe(column string) string {
	if d, ok := SeriesDescriptions[column]; ok {
		return d
	}
	return column
}
