package models

import "time"

// Photo is one guest-submitted image bound to exactly one event
type Photo struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadPhotoRequest carries a data-URL encoded JPEG for an event
type UploadPhotoRequest struct {
	EventID   string `json:"event_id" validate:"required"`
	PhotoData string `json:"photo_data" validate:"required"`
}
