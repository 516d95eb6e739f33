package domain

import "time"

// MessageMapping binds one product to its platform display message.
// Params: target surface, message handle, and last reconcile time.
// Returns: durable record surviving restarts so displays are edited, not recreated.
type MessageMapping struct {
	SurfaceID string    `json:"surface_id"`
	MessageID string    `json:"message_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
