package usecase

import "time"

type CaptureCallLeadOutput struct {
	LeadID    string `json:"lead_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type ChatInput struct {
	Message string    `json:"message"`
	LeadID  string    `json:"leadId"`
	History []Message `json:"history"`
}

type ChatOutput struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
