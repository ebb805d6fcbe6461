package analyzer

import (
	"fmt"
	"io"
	"time"

	"github.com/solarops/inverter-insight/internal/domain"
)

// Summary aggregates a run's results: totals, and maxima with device and
// date attribution. Energies are watt-seconds.
type Summary struct {
	Days        int
	DeviceDays  int
	ErroredDays int

	TotalGenerated  int64
	MaxGenerated    int64
	MaxGeneratedSN  int64
	MaxGeneratedDay time.Time

	TotalExceedance  int64
	MaxExceedance    int64
	MaxExceedanceSN  int64
	MaxExceedanceDay time.Time

	TotalShaved  int64
	MaxShaved    int64
	MaxShavedSN  int64
	MaxShavedDay time.Time
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{}
}

// Add folds one device-day record into the aggregate.
func (s *Summary) Add(rec *domain.DayReport) {
	s.DeviceDays++

	s.TotalGenerated += rec.Result.Generated
	if rec.Result.Generated > s.MaxGenerated {
		s.MaxGenerated = rec.Result.Generated
		s.MaxGeneratedSN = rec.SerialNumber
		s.MaxGeneratedDay = rec.Date
	}
	if e := rec.Result.Exceedance; e != nil {
		s.TotalExceedance += *e
		if *e > s.MaxExceedance {
			s.MaxExceedance = *e
			s.MaxExceedanceSN = rec.SerialNumber
			s.MaxExceedanceDay = rec.Date
		}
	}
	if sh := rec.Result.Shaved; sh != nil {
		s.TotalShaved += *sh
		if *sh > s.MaxShaved {
			s.MaxShaved = *sh
			s.MaxShavedSN = rec.SerialNumber
			s.MaxShavedDay = rec.Date
		}
	}
}

const whr = 3600.0

// Print writes the human-readable run summary.
func (s *Summary) Print(w io.Writer) {
	if s.Days == 0 || s.DeviceDays == 0 {
		fmt.Fprintln(w, "No days of data processed.")
		return
	}
	fmt.Fprintf(w, "Processed %d days of data for %.1f inverters with a total output of %s.\n",
		s.Days, float64(s.DeviceDays)/float64(s.Days), fmtWhr(float64(s.TotalGenerated)))
	fmt.Fprintf(w, "Average generated power per day: %s (%s per inverter)\n",
		fmtWhr(float64(s.TotalGenerated)/float64(s.Days)),
		fmtWhr(float64(s.TotalGenerated)/float64(s.DeviceDays)))
	fmt.Fprintf(w, "Maximum inverter power: %s (by SN%d on %s)\n",
		fmtWhr(float64(s.MaxGenerated)), s.MaxGeneratedSN, s.MaxGeneratedDay.Format("2006-01-02"))
	fmt.Fprintf(w, "Total exceedance power: %s\n", fmtWhr(float64(s.TotalExceedance)))
	fmt.Fprintf(w, "Maximum exceedance power: %s (by SN%d on %s)\n",
		fmtWhr(float64(s.MaxExceedance)), s.MaxExceedanceSN, s.MaxExceedanceDay.Format("2006-01-02"))
	fmt.Fprintf(w, "Total shaved power: %s\n", fmtWhr(float64(s.TotalShaved)))
	fmt.Fprintf(w, "Maximum shaved power: %s (by SN%d on %s)\n",
		fmtWhr(float64(s.MaxShaved)), s.MaxShavedSN, s.MaxShavedDay.Format("2006-01-02"))
	if s.TotalGenerated > 0 {
		fmt.Fprintf(w, "Shave ratio: %.2f%% (total shaved power / total generated power)\n",
			100*float64(s.TotalShaved)/float64(s.TotalGenerated))
	}
}

func fmtWhr(wattSecs float64) string {
	return fmt.Sprintf("%.2fWhr", wattSecs/whr)
}
