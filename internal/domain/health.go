package domain

import "time"

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// Health status values reported by readiness checks.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

var healthRank = map[string]int{HealthStatusOK: 0, HealthStatusDegraded: 1, HealthStatusError: 2}

// WorstHealthStatus folds check statuses into one; unknown values count as degraded and an
// empty list is ok.
func WorstHealthStatus(statuses ...string) string {
	worst := HealthStatusOK
	for _, status := range statuses {
		if status == "" {
			continue
		}
		rank, known := healthRank[status]
		if !known {
			status, rank = HealthStatusDegraded, healthRank[HealthStatusDegraded]
		}
		if rank > healthRank[worst] {
			worst = status
		}
	}
	return worst
}
