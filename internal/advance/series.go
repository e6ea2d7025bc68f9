package advance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Day truncates t to its calendar day. Measurements are day-granular.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Point is one dated value of a progress series.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Series is a date-ascending step function: the value at any date is the
// value of the latest point at or before it, or zero before the first point.
type Series []Point

// ValueAt returns the carried-forward value at date.
func (s Series) ValueAt(date time.Time) decimal.Decimal {
	day := Day(date)
	v := decimal.Zero
	for _, p := range s {
		if p.Date.After(day) {
			break
		}
		v = p.Value
	}
	return v
}

// Last returns the most recent point regardless of date.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// LatestFirst returns a copy of the series ordered by date descending.
func (s Series) LatestFirst() Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[len(s)-1-i] = p
	}
	return out
}

// Equal reports whether both series hold the same dates and values.
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Date.Equal(other[i].Date) || !s[i].Value.Equal(other[i].Value) {
			return false
		}
	}
	return true
}

// unionDates returns every distinct date of the inputs in ascending order.
func unionDates(inputs ...Series) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, s := range inputs {
		for _, p := range s {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// MergeSum combines independent series into one point per distinct input
// date whose value is the sum of every input's carried-forward value.
func MergeSum(inputs ...Series) Series {
	dates := unionDates(inputs...)
	out := make(Series, 0, len(dates))
	for _, d := range dates {
		total := decimal.Zero
		for _, s := range inputs {
			total = total.Add(s.ValueAt(d))
		}
		out = append(out, Point{Date: d, Value: total})
	}
	return out
}

// WeightedSeries is a merge input carrying the planned weight of the node
// it was measured on.
type WeightedSeries struct {
	Series Series
	Weight decimal.Decimal
}

// MergeWeighted averages percentage series by weight. Dates are walked in
// ascending order and every change of an input adds delta*weight/total,
// truncated toward zero to scale decimal places, to a running value.
// Nested groups feed their already truncated series into the parent, so
// results carry two stages of rounding. With no positive weight every input
// weighs the same.
func MergeWeighted(inputs []WeightedSeries, scale int32) Series {
	if len(inputs) == 0 {
		return nil
	}

	weights := make([]decimal.Decimal, len(inputs))
	total := decimal.Zero
	series := make([]Series, len(inputs))
	for i, in := range inputs {
		w := in.Weight
		if w.IsNegative() {
			w = decimal.Zero
		}
		weights[i] = w
		total = total.Add(w)
		series[i] = in.Series
	}
	if total.IsZero() {
		for i := range weights {
			weights[i] = one
		}
		total = decimal.NewFromInt(int64(len(inputs)))
	}

	prev := make([]decimal.Decimal, len(inputs))
	for i := range prev {
		prev[i] = decimal.Zero
	}

	running := decimal.Zero
	dates := unionDates(series...)
	out := make(Series, 0, len(dates))
	for _, d := range dates {
		for i, s := range series {
			v := s.ValueAt(d)
			delta := v.Sub(prev[i])
			if delta.IsZero() {
				continue
			}
			share, _ := delta.Mul(weights[i]).QuoRem(total, scale)
			running = running.Add(share)
			prev[i] = v
		}
		out = append(out, Point{Date: d, Value: running})
	}
	return out
}

// ValueScale returns the largest number of decimal places among the values
// of the given series.
func ValueScale(inputs ...Series) int32 {
	var scale int32
	for _, s := range inputs {
		for _, p := range s {
			if places := -p.Value.Exponent(); places > scale {
				scale = places
			}
		}
	}
	return scale
}

// Percentage returns value/max as a fraction in [0, 1], rounded half-up to
// precision decimal places. A non-positive max yields zero.
func Percentage(value, max decimal.Decimal, precision int32) decimal.Decimal {
	if !max.IsPositive() || !value.IsPositive() {
		return decimal.Zero
	}
	p := value.DivRound(max, precision)
	if p.GreaterThan(one) {
		return one
	}
	return p
}
