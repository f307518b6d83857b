package reconcile

import (
	"slices"
	"strconv"

	"garimpeiro/internal/fiscal"
)

// BucketKey identifies an audit bucket.
type BucketKey struct {
	Family fiscal.Family
	Series string
}

// Bucket accumulates the numbers and value seen for one family and series.
type Bucket struct {
	Key     BucketKey
	Numbers map[int]struct{}
	Value   fiscal.Amount
}

// Sorted returns the observed numbers in ascending order.
func (b *Bucket) Sorted() []int {
	out := make([]int, 0, len(b.Numbers))
	for n := range b.Numbers {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// MaxGapRows bounds how many missing numbers a reconciliation lists. Numbers
// past the bound are counted in Result.GapsOmitted instead.
const MaxGapRows = fiscal.MaxRangeLen

// Missing returns the numbers in [min, max] that were not observed, up to
// MaxGapRows of them.
func (b *Bucket) Missing() []int {
	missing, _ := b.missingUpTo(MaxGapRows)
	return missing
}

// missingUpTo lists at most limit missing numbers and counts the rest.
func (b *Bucket) missingUpTo(limit int) ([]int, int) {
	sorted := b.Sorted()
	var (
		missing []int
		omitted int
	)
	for i := 1; i < len(sorted); i++ {
		span := sorted[i] - sorted[i-1] - 1
		if span <= 0 {
			continue
		}
		if room := limit - len(missing); span > room {
			omitted += span - room
			span = room
		}
		for n := sorted[i-1] + 1; n <= sorted[i-1]+span; n++ {
			missing = append(missing, n)
		}
	}
	return missing, omitted
}

type bucketSet map[BucketKey]*Bucket

func newBucketSet() bucketSet {
	return make(bucketSet)
}

func (s bucketSet) add(doc fiscal.Document, final fiscal.Status, value fiscal.Amount) {
	key := BucketKey{Family: doc.Family, Series: doc.Series}
	b, ok := s[key]
	if !ok {
		b = &Bucket{Key: key, Numbers: make(map[int]struct{})}
		s[key] = b
	}
	for _, n := range doc.Numbers() {
		if n > 0 {
			b.Numbers[n] = struct{}{}
		}
	}
	if final == fiscal.StatusNormal {
		b.Value += value
	}
}

func (s bucketSet) ordered() []*Bucket {
	out := make([]*Bucket, 0, len(s))
	for _, b := range s {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Bucket) int {
		if d := a.Key.Family.Order() - b.Key.Family.Order(); d != 0 {
			return d
		}
		if d := seriesOrder(a.Key.Series) - seriesOrder(b.Key.Series); d != 0 {
			return d
		}
		switch {
		case a.Key.Series < b.Key.Series:
			return -1
		case a.Key.Series > b.Key.Series:
			return 1
		}
		return 0
	})
	return out
}

func (s bucketSet) tables() ([]SummaryRow, []GapRow, int) {
	var (
		summary []SummaryRow
		gaps    []GapRow
		omitted int
	)
	for _, b := range s.ordered() {
		sorted := b.Sorted()
		if len(sorted) == 0 {
			continue
		}
		summary = append(summary, SummaryRow{
			Family: b.Key.Family,
			Series: b.Key.Series,
			First:  sorted[0],
			Last:   sorted[len(sorted)-1],
			Count:  len(sorted),
			Value:  b.Value,
		})
		missing, left := b.missingUpTo(MaxGapRows - len(gaps))
		omitted += left
		for _, n := range missing {
			gaps = append(gaps, GapRow{Family: b.Key.Family, Series: b.Key.Series, Missing: n})
		}
	}
	return summary, gaps, omitted
}

func seriesOrder(series string) int {
	n, err := strconv.Atoi(series)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
