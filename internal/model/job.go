package model

import (
	"time"

	"github.com/google/uuid"
)

// ExportJob is an export request sent through the job queue.
type ExportJob struct {
	ID        uuid.UUID      `json:"id"`
	Source    string         `json:"source"`
	Watermark *WatermarkSpec `json:"watermark,omitempty"`
	Export    ExportSpec     `json:"export"`
	CreatedAt time.Time      `json:"created_at"`
}

// Template is a named, persisted watermark preset.
type Template struct {
	Name      string        `json:"name"`
	Watermark WatermarkSpec `json:"watermark"`
	UpdatedAt time.Time     `json:"updated_at"`
}
