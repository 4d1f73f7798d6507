package models

import "time"

// Event scopes a shared photo album
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FrameURL  *string   `json:"frame_url"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEventRequest struct {
	Name     string  `json:"name" validate:"required"`
	FrameURL *string `json:"frame_url"`
}
