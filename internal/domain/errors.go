package domain

import (
	"errors"
	"fmt"
)

// ErrFitUndefined is returned when a required quadratic fit has fewer than
// 3 points. It is fatal to the device-day, never to the run.
var ErrFitUndefined = errors.New("quadratic fit undefined: fewer than 3 points")

// QualityReason identifies why a device-day failed quality gating.
type QualityReason string

const (
	ReasonStartupPower     QualityReason = "startup_power_too_high"
	ReasonInsufficientData QualityReason = "insufficient_data"
	ReasonShutdownPower    QualityReason = "shutdown_power_too_high"
	ReasonTooCloudy        QualityReason = "too_cloudy"
)

// QualityFailure is a recoverable per-day data quality failure. Under
// gated mode the day yields a partial result (generated energy only);
// under forced mode it is logged and analysis continues.
type QualityFailure struct {
	Reason QualityReason
	Detail string
}

func (e *QualityFailure) Error() string {
	return fmt.Sprintf("data quality failure (%s): %s", e.Reason, e.Detail)
}

// AsQualityFailure unwraps err to a *QualityFailure if there is one.
func AsQualityFailure(err error) (*QualityFailure, bool) {
	var qf *QualityFailure
	if errors.As(err, &qf) {
		return qf, true
	}
	return nil, false
}
