package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateReportRequest struct {
	TargetType     string `json:"target_type"`
	TargetID       string `json:"target_id"`
	TargetAuthorID string `json:"target_author_id,omitempty"`
	Category       string `json:"category"`
	Reason         string `json:"reason"`
	Evidence       string `json:"evidence,omitempty"`
}

type UpdateStatusRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution,omitempty"`
}

type ReportBody struct {
	ReportID         string  `json:"report_id"`
	TargetType       string  `json:"target_type"`
	TargetID         string  `json:"target_id"`
	ReporterID       string  `json:"reporter_id"`
	ReporterLevel    string  `json:"reporter_level,omitempty"`
	Category         string  `json:"category"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	Reason           string  `json:"reason"`
	Evidence         string  `json:"evidence,omitempty"`
	ReputationWeight float64 `json:"reputation_weight"`
	ReportCount      int     `json:"report_count"`
	EscalatedCount   int     `json:"escalated_count"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	ReviewedAt       string  `json:"reviewed_at,omitempty"`
	ReviewedBy       string  `json:"reviewed_by,omitempty"`
	Resolution       string  `json:"resolution,omitempty"`
}

type ReportResponse struct {
	Status    string     `json:"status"`
	Data      ReportBody `json:"data"`
	Timestamp string     `json:"timestamp"`
}

type ReportListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []ReportBody `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type TargetStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		TargetID        string             `json:"target_id"`
		Total           int                `json:"total"`
		UniqueReporters int                `json:"unique_reporters"`
		ByCategory      map[string]int     `json:"by_category"`
		ByPriority      map[string]int     `json:"by_priority"`
		ByStatus        map[string]int     `json:"by_status"`
		EscalationRate  float64            `json:"escalation_rate"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
