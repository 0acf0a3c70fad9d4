package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateMonthlyT returns n month starts ending at the month before nowFunc
func GenerateMonthlyT(n int, nowFunc func() time.Time) []time.Time {
	end := MonthStart(nowFunc())
	return MonthRange(AddMonths(end, -n), n)
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetMissing marks values within [start, end) as NaN to mimic gaps in the raw data
func (s Series) SetMissing(t []time.Time, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if !t[i].Before(start) && t[i].Before(end) {
			s[i] = math.NaN()
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateSeasonalY builds an annual cycle peaking in peakMonth
func GenerateSeasonalY(t []time.Time, amp float64, peakMonth time.Month) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		phase := float64(int(t[i].Month())-int(peakMonth)) / 12.0
		y = append(y, amp*math.Cos(2.0*math.Pi*phase))
	}
	return Series(y)
}

// GenerateTrendY adds slopePerYear for every year elapsed since the first time
func GenerateTrendY(t []time.Time, slopePerYear float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	if n == 0 {
		return Series(y)
	}
	for i := 0; i < n; i++ {
		y = append(y, slopePerYear*float64(MonthsBetween(t[0], t[i]))/12.0)
	}
	return Series(y)
}

// GenerateNoise draws gaussian noise from a seeded source so simulations are repeatable
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateTemperatureObservations simulates a country's monthly mean temperatures
func GenerateTemperatureObservations(country string, t []time.Time, mean, amp float64, seed uint64) []Observation {
	y := GenerateConstY(len(t), mean).
		Add(GenerateSeasonalY(t, amp, time.July)).
		Add(GenerateTrendY(t, 0.02)).
		Add(GenerateNoise(len(t), 0.5, seed))

	obs := make([]Observation, 0, len(t))
	for i, ts := range t {
		obs = append(obs, Observation{Country: country, Date: ts, Value: y[i]})
	}
	return obs
}
