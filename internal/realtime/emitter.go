package realtime

import (
	"github.com/mbd888/pressgate/internal/access"
)

// AccessEmitter bridges access decisions onto the WebSocket hub.
type AccessEmitter struct {
	hub *Hub
}

// NewAccessEmitter creates an emitter backed by hub.
func NewAccessEmitter(hub *Hub) *AccessEmitter {
	return &AccessEmitter{hub: hub}
}

// AccessDecided implements access.Emitter. Broadcast never blocks.
func (e *AccessEmitter) AccessDecided(d *access.Decision) {
	e.hub.BroadcastAccessDecision(d.Granted, map[string]interface{}{
		"userId":       d.UserID,
		"contentId":    d.ContentID,
		"level":        string(d.Level),
		"denialReason": d.DenialReason,
	})
}

var _ access.Emitter = (*AccessEmitter)(nil)
