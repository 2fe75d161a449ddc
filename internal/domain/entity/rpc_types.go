package entity

import (
	"encoding/json"
	"time"
)

// ProbeOutcome is the raw response of one successful probe, before normalization.
type ProbeOutcome struct {
	Payload json.RawMessage
	Latency time.Duration
}

// ProbeResult holds the normalized result of probing a single endpoint.
type ProbeResult struct {
	Endpoint  Endpoint `json:"rpc"`
	Success   bool     `json:"success"`
	Height    *uint64  `json:"height,omitempty"`
	LatencyMs *int64   `json:"latencyMs,omitempty"`
}

// ProbeReport is the outcome of probing a list of endpoints.
// All keeps the input order; Working and NotWorking partition it by Success.
type ProbeReport struct {
	All        []ProbeResult `json:"allRpcs"`
	Working    []ProbeResult `json:"workingRpcs"`
	NotWorking []ProbeResult `json:"notWorkingRpcs"`
}

// NewProbeReport partitions results in a single left-to-right pass.
func NewProbeReport(results []ProbeResult) ProbeReport {
	report := ProbeReport{
		All:        results,
		Working:    make([]ProbeResult, 0, len(results)),
		NotWorking: make([]ProbeResult, 0),
	}
	if report.All == nil {
		report.All = make([]ProbeResult, 0)
	}
	for _, r := range results {
		if r.Success {
			report.Working = append(report.Working, r)
		} else {
			report.NotWorking = append(report.NotWorking, r)
		}
	}
	return report
}
