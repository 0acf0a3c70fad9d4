package timedataset

import (
	"math"
	"slices"
	"time"
)

// Observation is one row of the raw dataset. A missing temperature is NaN.
type Observation struct {
	Country string    `json:"country"`
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
}

// Dataset is the immutable collection of observations for all countries
type Dataset struct {
	obs       []Observation
	byCountry map[string][]int
	countries []string
}

// NewDataset indexes observations by country, keeping their load order
func NewDataset(obs []Observation) *Dataset {
	d := &Dataset{
		obs:       make([]Observation, len(obs)),
		byCountry: make(map[string][]int),
	}
	copy(d.obs, obs)

	for i, o := range d.obs {
		d.obs[i].Date = MonthStart(o.Date)
		if _, exists := d.byCountry[o.Country]; !exists {
			d.countries = append(d.countries, o.Country)
		}
		d.byCountry[o.Country] = append(d.byCountry[o.Country], i)
	}
	slices.Sort(d.countries)
	return d
}

// Len returns the number of observations across all countries
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.obs)
}

// Countries returns the sorted unique country names
func (d *Dataset) Countries() []string {
	if d == nil {
		return []string{}
	}
	return slices.Clone(d.countries)
}

// Select returns the country's series with missing values dropped and dates sorted.
// When a date repeats the observation loaded last wins. An unknown country yields an
// empty series rather than an error.
func (d *Dataset) Select(country string) *TimeDataset {
	if d == nil {
		return Empty()
	}
	idx, exists := d.byCountry[country]
	if !exists {
		return Empty()
	}

	latest := make(map[time.Time]float64, len(idx))
	for _, i := range idx {
		o := d.obs[i]
		if math.IsNaN(o.Value) {
			continue
		}
		latest[o.Date] = o.Value
	}
	if len(latest) == 0 {
		return Empty()
	}

	t := make([]time.Time, 0, len(latest))
	for ts := range latest {
		t = append(t, ts)
	}
	slices.SortFunc(t, func(a, b time.Time) int { return a.Compare(b) })

	y := make([]float64, 0, len(t))
	for _, ts := range t {
		y = append(y, latest[ts])
	}
	return &TimeDataset{T: t, Y: y}
}
