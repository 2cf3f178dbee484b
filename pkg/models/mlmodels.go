package models

import "time"

// ModelID identifies a registered ML model record.
type ModelID int64

// Model is a registry record for a trained detection model. Exactly one model
// may be active at a time; activation is exclusive.
type Model struct {
	ID          ModelID   `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version,omitempty"`
	FilePath    string    `json:"file_path"`
	Description string    `json:"description,omitempty"`
	ModelType   string    `json:"model_type,omitempty"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	IsActive    bool      `json:"is_active"`
	FileExists  bool      `json:"file_exists"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateModelRequest is the payload for registering a model. The artifact is
// expected to already exist under the configured model root.
type CreateModelRequest struct {
	Name        string   `json:"model_name"`
	Version     string   `json:"version,omitempty"`
	FilePath    string   `json:"file_path"`
	Description string   `json:"description,omitempty"`
	ModelType   string   `json:"model_type,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
}

// UpdateModelRequest carries partial updates to a model record. Nil fields are
// left untouched.
type UpdateModelRequest struct {
	Name        *string  `json:"model_name"`
	Version     *string  `json:"version"`
	FilePath    *string  `json:"file_path"`
	Description *string  `json:"description"`
	ModelType   *string  `json:"model_type"`
	Accuracy    *float64 `json:"accuracy"`
}

// ModelList pairs the full registry with the currently active record.
type ModelList struct {
	Models      []*Model `json:"models"`
	ActiveModel *Model   `json:"active_model"`
}
