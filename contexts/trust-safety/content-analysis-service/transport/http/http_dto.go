package http

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

type AnalyzeRequest struct {
	UserID    string `json:"user_id"`
	WhisperID string `json:"whisper_id"`
	Content   string `json:"content"`
}

type FlagBody struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
}

type AnalysisResponse struct {
	Status string `json:"status"`
	Data   struct {
		IsSpam          bool       `json:"is_spam"`
		IsScam          bool       `json:"is_scam"`
		SpamScore       float64    `json:"spam_score"`
		ScamScore       float64    `json:"scam_score"`
		SuggestedAction string     `json:"suggested_action"`
		Reason          string     `json:"reason"`
		ContentFlags    []FlagBody `json:"content_flags"`
		BehavioralFlags []FlagBody `json:"behavioral_flags"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type ClassifyRequest struct {
	UserID    string `json:"user_id"`
	WhisperID string `json:"whisper_id"`
	Content   string `json:"content"`
}

type ViolationBody struct {
	UserID          string  `json:"user_id"`
	WhisperID       string  `json:"whisper_id"`
	ViolationType   string  `json:"violation_type"`
	Reason          string  `json:"reason"`
	Severity        string  `json:"severity"`
	Confidence      float64 `json:"confidence"`
	SuggestedAction string  `json:"suggested_action"`
}

type ClassificationResponse struct {
	Status string `json:"status"`
	Data   struct {
		Rejected   bool            `json:"rejected"`
		Summary    string          `json:"summary"`
		Violations []ViolationBody `json:"violations"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
