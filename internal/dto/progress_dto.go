package dto

// ReadinessResponse carries the derived readiness tier and its inputs.
type ReadinessResponse struct {
	ReadinessLevel string         `json:"readiness_level"`
	TotalScore     int            `json:"total_score"`
	Details        map[string]int `json:"details"`
}

// StreakResponse reports the consecutive-day activity streak.
type StreakResponse struct {
	Streak int `json:"streak"`
}
