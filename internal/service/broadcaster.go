package service

import "demosim/internal/model"

// Broadcaster interface for WebSocket progress mirroring (avoids import cycle)
type Broadcaster interface {
	BroadcastToDemo(demoID string, event model.ProgressEvent)
	CloseDemo(demoID string)
}
