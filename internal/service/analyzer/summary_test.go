package analyzer

import (
	"bytes"
	"testing"
	"time"

	"github.com/solarops/inverter-insight/internal/domain"
)

func i64(v int64) *int64 { return &v }

func TestSummary_Print(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	day2 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	s := NewSummary()
	s.Days = 2
	s.Add(&domain.DayReport{
		Date: day1, SerialNumber: 1,
		Result: domain.AnalysisResult{
			Generated:  3600 * 100,
			Exceedance: i64(3600 * 10),
			Shaved:     i64(3600 * 2),
		},
	})
	s.Add(&domain.DayReport{Date: day2, SerialNumber: 2,
		Result: domain.AnalysisResult{Generated: 3600 * 50}})
	s.Add(&domain.DayReport{Date: day2, SerialNumber: 3,
		Result: domain.AnalysisResult{Generated: 3600 * 30}})

	var buf bytes.Buffer
	s.Print(&buf)

	// Averages divide in float: 180 Whr over 2 days and 3 device-days.
	want := "Processed 2 days of data for 1.5 inverters with a total output of 180.00Whr.\n" +
		"Average generated power per day: 90.00Whr (60.00Whr per inverter)\n" +
		"Maximum inverter power: 100.00Whr (by SN1 on 2025-06-01)\n" +
		"Total exceedance power: 10.00Whr\n" +
		"Maximum exceedance power: 10.00Whr (by SN1 on 2025-06-01)\n" +
		"Total shaved power: 2.00Whr\n" +
		"Maximum shaved power: 2.00Whr (by SN1 on 2025-06-01)\n" +
		"Shave ratio: 1.11% (total shaved power / total generated power)\n"
	if got := buf.String(); got != want {
		t.Errorf("expected summary:\n%s\ngot:\n%s", want, got)
	}
}

func TestSummary_PrintEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewSummary().Print(&buf)

	if got, want := buf.String(), "No days of data processed.\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
