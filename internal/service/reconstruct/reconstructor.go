// Package reconstruct turns the sparse, deduplicated telemetry stream into
// dense per-day, per-device series. The capture side stores a row only when
// an inverter's output changes, so a gap wider than the nominal reporting
// cadence means the value held; this package synthesizes those held
// readings back in.
package reconstruct

import (
	"math"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/ports"
)

// Reconstructor lazily pulls readings from a cursor and emits one DayBatch
// per calendar day. Memory is bounded by one day in flight, not by history
// length.
type Reconstructor struct {
	cadence int64
	cursor  ports.ReadingCursor
	log     *zap.Logger

	pending *domain.Reading
	done    bool
}

// New creates a Reconstructor. cadenceSecs is the nominal seconds between
// telemetry updates, used only as a gap-detection heuristic.
func New(cadenceSecs int64, cursor ports.ReadingCursor, log *zap.Logger) *Reconstructor {
	return &Reconstructor{
		cadence: cadenceSecs,
		cursor:  cursor,
		log:     log,
	}
}

// NextDay returns the next completed calendar day, or (nil, nil) when the
// stream is exhausted. A day is complete when the stream's date advances or
// the stream ends. Upstream I/O errors propagate unchanged.
func (r *Reconstructor) NextDay() (*domain.DayBatch, error) {
	if r.done {
		return nil, nil
	}

	var batch *domain.DayBatch
	for {
		reading, err := r.next()
		if err != nil {
			return nil, err
		}
		if reading == nil {
			r.done = true
			if batch != nil && len(batch.Series) > 0 {
				return batch, nil
			}
			return nil, nil
		}

		day := domain.Midnight(reading.ReportedAt)
		if batch == nil {
			batch = &domain.DayBatch{Date: day, Series: make(map[int64][]domain.Sample)}
		} else if !day.Equal(batch.Date) {
			// Date rolled over: hold the reading for the next call and
			// emit the finished day.
			r.pending = reading
			return batch, nil
		}
		r.append(batch, reading)
	}
}

func (r *Reconstructor) next() (*domain.Reading, error) {
	if r.pending != nil {
		reading := r.pending
		r.pending = nil
		return reading, nil
	}
	return r.cursor.Next()
}

// append adds a reading to its device's series, synthesizing held-value
// samples first when the gap since the previous sample exceeds 1.5x the
// nominal cadence.
func (r *Reconstructor) append(batch *domain.DayBatch, reading *domain.Reading) {
	offset := domain.Offset(reading.ReportedAt)
	series := batch.Series[reading.SerialNumber]

	if n := len(series); n > 0 {
		prev := series[n-1]
		gap := offset - prev.OffsetSecs
		if gap*2 > r.cadence*3 {
			intervals := int64(math.Round(float64(gap) / float64(r.cadence)))
			step := int64(math.Round(float64(gap) / float64(intervals)))
			for i := int64(1); i < intervals; i++ {
				series = append(series, domain.Sample{
					OffsetSecs: prev.OffsetSecs + step*i,
					Watts:      prev.Watts,
				})
			}
		}
	}

	batch.Series[reading.SerialNumber] = append(series, domain.Sample{
		OffsetSecs: offset,
		Watts:      reading.Watts,
	})
}
