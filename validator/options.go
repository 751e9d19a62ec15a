package validator

import "meterdata-pipeline/models"

//Bounds is the plausible daily consumption band of one season
type Bounds struct {
	MinDailyKWh       float64
	MaxDailyKWh       float64
	ExpectedHourlyKWh float64
}

//Options holds every threshold the validator uses. It is copied on construction and never mutated.
type Options struct {
	ElectricityPrice        float64
	SeasonalBounds          map[models.Season]Bounds
	ExtremeHourlyKWh        float64
	ZeroCriticalPercent     float64
	ZeroValidPercent        float64
	StandardIntervalPercent float64
}

//DefaultOptions returns the thresholds for a household with electric heating
func DefaultOptions() Options {
	return Options{
		ElectricityPrice: 56.07,
		SeasonalBounds: map[models.Season]Bounds{
			models.SeasonWinter: {MinDailyKWh: 15.0, MaxDailyKWh: 80.0, ExpectedHourlyKWh: 1.5},
			models.SeasonSpring: {MinDailyKWh: 8.0, MaxDailyKWh: 40.0, ExpectedHourlyKWh: 0.8},
			models.SeasonSummer: {MinDailyKWh: 3.0, MaxDailyKWh: 25.0, ExpectedHourlyKWh: 0.4},
			models.SeasonAutumn: {MinDailyKWh: 10.0, MaxDailyKWh: 50.0, ExpectedHourlyKWh: 1.0},
		},
		ExtremeHourlyKWh:        50,
		ZeroCriticalPercent:     10,
		ZeroValidPercent:        5,
		StandardIntervalPercent: 95,
	}
}

//WithElectricityPrice returns a copy of o using the given unit price
func (o Options) WithElectricityPrice(price float64) Options {
	o.SeasonalBounds = o.boundsCopy()
	o.ElectricityPrice = price
	return o
}

func (o Options) boundsCopy() map[models.Season]Bounds {
	bounds := make(map[models.Season]Bounds, len(o.SeasonalBounds))
	for season, b := range o.SeasonalBounds {
		bounds[season] = b
	}
	return bounds
}
