package dto

import "github.com/google/uuid"

type CreateThreadRequest struct {
	Text     string     `json:"text"`
	Media    []string   `json:"media,omitempty"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type LikeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	LikeCount int    `json:"like_count"`
}

type RepostRequest struct {
	ThreadID uuid.UUID `json:"thread_id"`
}

type RepostResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Reposted    bool   `json:"reposted"`
	RepostCount int    `json:"repost_count"`
}

type SaveRequest struct {
	ThreadID uuid.UUID `json:"thread_id"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Saved   bool   `json:"saved"`
}

type ShareResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ShareCount int    `json:"share_count"`
}
