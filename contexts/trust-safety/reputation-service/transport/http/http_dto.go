package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ReputationResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID           string   `json:"user_id"`
		Score            int      `json:"score"`
		Level            string   `json:"level"`
		WhisperCount     int      `json:"whisper_count"`
		ApprovedCount    int      `json:"approved_count"`
		FlaggedCount     int      `json:"flagged_count"`
		RejectedCount    int      `json:"rejected_count"`
		ViolationHistory []string `json:"violation_history"`
		Weight           float64  `json:"weight"`
		CreatedAt        string   `json:"created_at"`
		UpdatedAt        string   `json:"updated_at"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type ViolationBody struct {
	ViolationID   string `json:"violation_id"`
	UserID        string `json:"user_id"`
	WhisperID     string `json:"whisper_id,omitempty"`
	ViolationType string `json:"violation_type"`
	Reason        string `json:"reason"`
	Severity      string `json:"severity"`
	ReportCount   int    `json:"report_count"`
	ModeratorID   string `json:"moderator_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	Expired       bool   `json:"expired"`
}

type ViolationListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []ViolationBody `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type RecordViolationRequest struct {
	WhisperID     string `json:"whisper_id,omitempty"`
	ViolationType string `json:"violation_type"`
	Reason        string `json:"reason"`
	Severity      string `json:"severity"`
	ReportCount   int    `json:"report_count,omitempty"`
}

type ViolationResponse struct {
	Status    string        `json:"status"`
	Data      ViolationBody `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type SuspendRequest struct {
	Type    string `json:"type"`
	BanType string `json:"ban_type,omitempty"`
	Reason  string `json:"reason"`
	EndDate string `json:"end_date,omitempty"`
}

type SuspensionBody struct {
	SuspensionID string `json:"suspension_id"`
	UserID       string `json:"user_id"`
	Type         string `json:"type"`
	BanType      string `json:"ban_type,omitempty"`
	Reason       string `json:"reason"`
	ModeratorID  string `json:"moderator_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type SuspensionResponse struct {
	Status    string         `json:"status"`
	Data      SuspensionBody `json:"data"`
	Timestamp string         `json:"timestamp"`
}
