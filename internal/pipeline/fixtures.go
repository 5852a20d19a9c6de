package pipeline

import (
	"context"
	"time"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

// fixtureDates are the business days around the September 2019 repo spike.
var fixtureDates = []string{
	"2019-09-09", "2019-09-10", "2019-09-11", "2019-09-12", "2019-09-13",
	"2019-09-16", "2019-09-17", "2019-09-18", "2019-09-19", "2019-09-20",
}

// fixtureValues holds one value per fixture date for each series.
var fixtureValues = map[string][]float64{
	domain.SeriesFedUpper:      {2.25, 2.25, 2.25, 2.25, 2.25, 2.25, 2.25, 2.25, 2.00, 2.00},
	domain.SeriesFedLower:      {2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 1.75, 1.75},
	domain.SeriesEFFR:          {2.13, 2.13, 2.13, 2.13, 2.14, 2.25, 2.30, 2.25, 1.90, 1.90},
	domain.SeriesSOFR:          {2.20, 2.20, 2.21, 2.22, 2.23, 2.43, 5.25, 2.55, 1.95, 1.86},
	domain.SeriesTriParty:      {2.15, 2.15, 2.16, 2.17, 2.18, 2.30, 3.60, 2.40, 1.90, 1.82},
	domain.SeriesDVP:           {2.21, 2.21, 2.22, 2.23, 2.24, 2.45, 5.30, 2.60, 1.96, 1.87},
	domain.SeriesGCF:           {2.25, 2.24, 2.26, 2.27, 2.28, 2.55, 6.00, 2.70, 2.00, 1.90},
	domain.SeriesIORB:          {2.10, 2.10, 2.10, 2.10, 2.10, 2.10, 2.10, 2.10, 1.80, 1.80},
	domain.SeriesONRRPAward:    {2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 2.00, 1.70, 1.70},
	domain.SeriesTotalReserves: {1390, 1390, 1390, 1390, 1390, 1310, 1310, 1310, 1310, 1310},
	domain.SeriesCurrency:      {1740, 1740, 1740, 1740, 1740, 1742, 1742, 1742, 1742, 1742},
	domain.SeriesRepoVolume:    {0, 0, 0, 0, 0, 0, 53150, 75000, 75000, 75000},
	domain.SeriesRRPVolume:     {2, 1, 2, 1, 3, 1, 0, 0, 1, 2},
	domain.SeriesBalanceSheet:  {3760, 3760, 3760, 3760, 3760, 3761, 3761, 3761, 3850, 3850},
	domain.SeriesGDP:           {21540, 21540, 21540, 21540, 21540, 21540, 21540, 21540, 21540, 21540},
}

// fixtureSeriesOrder fixes the order observations are produced in.
var fixtureSeriesOrder = []string{
	domain.SeriesFedUpper,
	domain.SeriesFedLower,
	domain.SeriesEFFR,
	domain.SeriesSOFR,
	domain.SeriesTriParty,
	domain.SeriesDVP,
	domain.SeriesGCF,
	domain.SeriesIORB,
	domain.SeriesONRRPAward,
	domain.SeriesTotalReserves,
	domain.SeriesCurrency,
	domain.SeriesRepoVolume,
	domain.SeriesRRPVolume,
	domain.SeriesBalanceSheet,
	domain.SeriesGDP,
}

// FixtureObservations returns a synthetic sample of the September 2019 repo
// spike. Only 2019-09-17 breaches the 2σ SOFR-IORB threshold.
func FixtureObservations() []*domain.Observation {
	obs := make([]*domain.Observation, 0, len(fixtureSeriesOrder)*len(fixtureDates))
	for _, series := range fixtureSeriesOrder {
		for i, ds := range fixtureDates {
			d, err := time.Parse(domain.DateLayout, ds)
			if err != nil {
				panic(err)
			}
			v := fixtureValues[series][i]
			obs = append(obs, &domain.Observation{SeriesID: series, Date: d, Value: &v})
		}
	}
	return obs
}

// LoadFixtures populates store with FixtureObservations for demonstration.
func LoadFixtures(ctx context.Context, store storage.ObservationStore) error {
	return store.InsertBulk(ctx, FixtureObservations())
}
