package driver

import (
	"encoding/json"
	"fmt"
	"strings"

	"lisle/internal/diag"
	"lisle/internal/observ"
	"lisle/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings records the phase table of timer in bag as an ObsTimings
// info diagnostic. Its note carries the report as JSON so machine output
// keeps the numbers. A full bag is grown to make room.
func AppendTimings(bag *diag.Bag, kind, path string, timer *observ.Timer) {
	if bag == nil || timer == nil {
		return
	}
	if kind == "" {
		kind = "pipeline"
	}
	report := timer.Report()
	data, err := json.Marshal(timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases})
	if err != nil {
		return
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "timings (%s): total %.2f ms", kind, report.TotalMS)
	if path != "" {
		fmt.Fprintf(&msg, ", %s", path)
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, 0, source.Span{}, msg.String()).
		WithPath(path).
		WithNote(0, source.Span{}, string(data))
	if !bag.Add(d) {
		bag.Grow(1)
		bag.Add(d)
	}
}
