package application

import (
	"sort"

	"chainlist-rpcs/internal/domain/entity"

	"gonum.org/v1/gonum/stat"
)

// ReportStats summarises the latencies of the working endpoints in a report.
// Endpoints that answered without a readable height carry no latency and are not counted.
type ReportStats struct {
	Total     int     `json:"total"`
	Working   int     `json:"working"`
	Measured  int     `json:"measured"`
	MinMs     float64 `json:"minMs"`
	MedianMs  float64 `json:"medianMs"`
	P90Ms     float64 `json:"p90Ms"`
	MaxHeight uint64  `json:"maxHeight"`
}

// NewReportStats computes latency quantiles and the highest reported block.
func NewReportStats(report entity.ProbeReport) ReportStats {
	stats := ReportStats{
		Total:   len(report.All),
		Working: len(report.Working),
	}

	latencies := make([]float64, 0, len(report.Working))
	for _, r := range report.Working {
		if r.LatencyMs != nil {
			latencies = append(latencies, float64(*r.LatencyMs))
		}
		if r.Height != nil && *r.Height > stats.MaxHeight {
			stats.MaxHeight = *r.Height
		}
	}

	stats.Measured = len(latencies)
	if stats.Measured == 0 {
		return stats
	}

	// stat.Quantile requires sorted input
	sort.Float64s(latencies)
	stats.MinMs = latencies[0]
	stats.MedianMs = stat.Quantile(0.5, stat.Empirical, latencies, nil)
	stats.P90Ms = stat.Quantile(0.9, stat.Empirical, latencies, nil)
	return stats
}
