// Package lookup maps arbitrary time offsets onto the closest loaded sample.
package lookup

import (
	"github.com/okian/paceline/internal/domain/model"
	"github.com/okian/paceline/internal/domain/series"
)

// Match is a resolved sample and its position.
type Match struct {
	Index  int
	Sample model.Sample
}

// Lookup answers nearest-time queries against one series.
type Lookup struct {
	series *series.Series
}

// New creates a Lookup over s.
func New(s *series.Series) *Lookup {
	return &Lookup{series: s}
}

// Nearest returns the sample whose origin timestamp is closest to t, earliest
// on ties.
func (l *Lookup) Nearest(t float64) (Match, error) {
	idx, err := l.series.NearestByOriginTimestamp(t)
	if err != nil {
		return Match{}, err
	}
	s, err := l.series.At(idx)
	if err != nil {
		return Match{}, err
	}
	return Match{Index: idx, Sample: s}, nil
}
