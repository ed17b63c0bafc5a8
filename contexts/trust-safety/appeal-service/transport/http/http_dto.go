package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitAppealRequest struct {
	WhisperID   string `json:"whisper_id"`
	ViolationID string `json:"violation_id"`
	Reason      string `json:"reason"`
	Evidence    string `json:"evidence,omitempty"`
}

type ResolveAppealRequest struct {
	Action               string `json:"action"`
	Reason               string `json:"reason,omitempty"`
	ReputationAdjustment int    `json:"reputation_adjustment"`
}

type ResolutionBody struct {
	Action               string `json:"action"`
	Reason               string `json:"reason,omitempty"`
	ModeratorID          string `json:"moderator_id"`
	ReputationAdjustment int    `json:"reputation_adjustment"`
}

type AppealBody struct {
	AppealID    string          `json:"appeal_id"`
	UserID      string          `json:"user_id"`
	WhisperID   string          `json:"whisper_id"`
	ViolationID string          `json:"violation_id"`
	Reason      string          `json:"reason"`
	Evidence    string          `json:"evidence,omitempty"`
	Status      string          `json:"status"`
	SubmittedAt string          `json:"submitted_at"`
	ReviewedAt  string          `json:"reviewed_at,omitempty"`
	ReviewedBy  string          `json:"reviewed_by,omitempty"`
	Resolution  *ResolutionBody `json:"resolution,omitempty"`
}

type AppealResponse struct {
	Status    string     `json:"status"`
	Data      AppealBody `json:"data"`
	Timestamp string     `json:"timestamp"`
}

type AppealListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []AppealBody `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
