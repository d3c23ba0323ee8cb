package dataset

import (
	"math"
	"math/rand"
	"time"
)

// DemoConfig controls synthetic demo dataset generation.
// The same configuration always yields the same dataset.
type DemoConfig struct {
	Days  int
	Seed  int64
	Start time.Time
}

// DefaultDemoConfig returns the standard demo dataset: 180 days of coffee
// shop activity starting 2024-01-01.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Days:  180,
		Seed:  42,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// labelSet is a categorical label set with class priors.
type labelSet struct {
	labels []string
	priors []float64
}

// pick draws a label according to the set's priors.
func (s labelSet) pick(rng *rand.Rand) string {
	r := rng.Float64()
	var cum float64
	for i, p := range s.priors {
		cum += p
		if r < cum {
			return s.labels[i]
		}
	}
	return s.labels[len(s.labels)-1]
}

var (
	demoProducts      = labelSet{[]string{"Coffee", "Pastry", "Merch"}, []float64{0.6, 0.3, 0.1}}
	demoChannels      = labelSet{[]string{"In-Store", "Online", "App"}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}}
	demoCustomerTypes = labelSet{[]string{"New", "Returning"}, []float64{0.3, 0.7}}
	demoCities        = labelSet{[]string{"Downtown", "Suburb"}, []float64{0.5, 0.5}}
)

// DemoTable generates the synthetic demo dataset: one record per day over a
// fixed date range, with sales following a random walk around a seasonal
// baseline and categorical values drawn from fixed label sets. It is a pure
// function of its configuration.
func DemoTable(cfg DemoConfig) *CanonicalTable {
	if cfg.Days <= 0 {
		cfg.Days = DefaultDemoConfig().Days
	}
	if cfg.Start.IsZero() {
		cfg.Start = DefaultDemoConfig().Start
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	records := make([]TransactionRecord, 0, cfg.Days)

	var walk float64
	for i := 0; i < cfg.Days; i++ {
		walk += rng.NormFloat64() * 80
		seasonal := math.Sin(float64(i)*2*math.Pi/365) * 300
		sales := math.Trunc(math.Abs(1200 + walk + seasonal))

		records = append(records, TransactionRecord{
			Date:         cfg.Start.AddDate(0, 0, i),
			Sales:        sales,
			Product:      demoProducts.pick(rng),
			Channel:      demoChannels.pick(rng),
			CustomerType: demoCustomerTypes.pick(rng),
			City:         demoCities.pick(rng),
		})
	}

	return &CanonicalTable{Records: records}
}
