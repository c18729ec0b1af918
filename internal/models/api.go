package models

type UploadResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Filename string `json:"filename"`
}

type RejectRequest struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason,omitempty"`
}

type RejectResponse struct {
	CandidateID    string `json:"candidate_id"`
	RejectionEvent string `json:"rejection_event"`
	Status         string `json:"status"`
}

type ArtifactResponse struct {
	ID            string             `json:"id"`
	CandidateID   string             `json:"candidate_id"`
	Stage         string             `json:"stage"`
	Body          string             `json:"body"`
	ConsentNotice string             `json:"consent_notice"`
	Validity      string             `json:"validity"`
	Grounding     []RetrievedPassage `json:"grounding,omitempty"`
	GeneratedAt   string             `json:"generated_at"`
}

type InboundEmailRequest struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type InboundEmailResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type OutcomeResponse struct {
	ID             string `json:"id"`
	Classification string `json:"classification,omitempty"`
	Outcome        string `json:"outcome,omitempty"`
	OutcomeRef     string `json:"outcome_ref,omitempty"`
}
