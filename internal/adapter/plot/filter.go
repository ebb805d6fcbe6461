package plot

import (
	"fmt"
	"strings"

	"github.com/solarops/inverter-insight/internal/domain"
)

// Filter selects which device-days get a chart. Selection is a
// visualization policy only; it never changes the computed energies.
type Filter int

const (
	// FilterAll renders every analyzed device-day.
	FilterAll Filter = iota
	// FilterGoodData renders only days that passed the quality gate.
	FilterGoodData
	// FilterNotCloudy additionally requires enough clear-sky fit points.
	FilterNotCloudy
	// FilterExceedance requires measured exceedance at or above the floor.
	FilterExceedance
	// FilterShaved requires estimated shaved energy at or above the floor.
	FilterShaved
	// FilterNone renders nothing.
	FilterNone
)

var filterNames = map[string]Filter{
	"all":        FilterAll,
	"good_data":  FilterGoodData,
	"not_cloudy": FilterNotCloudy,
	"exceedance": FilterExceedance,
	"shaved":     FilterShaved,
	"none":       FilterNone,
}

// ParseFilter converts a config string to a Filter.
func ParseFilter(s string) (Filter, error) {
	if f, ok := filterNames[strings.ToLower(s)]; ok {
		return f, nil
	}
	return FilterNone, fmt.Errorf("unknown plot filter %q", s)
}

// accepts decides whether a device-day's diagnostics pass the filter.
// floorWattHours applies to the exceedance and shaved filters.
func (f Filter) accepts(diag *domain.DayDiagnostics, floorWattHours float64) bool {
	switch f {
	case FilterAll:
		return true
	case FilterGoodData:
		return diag.GatePassed
	case FilterNotCloudy:
		return diag.GatePassed && !diag.TooCloudy
	case FilterExceedance:
		return diag.GatePassed && !diag.TooCloudy &&
			diag.Result.Exceedance != nil && float64(*diag.Result.Exceedance)/3600 >= floorWattHours
	case FilterShaved:
		return diag.GatePassed && !diag.TooCloudy &&
			diag.Result.Shaved != nil && float64(*diag.Result.Shaved)/3600 >= floorWattHours
	default:
		return false
	}
}
