package sse

import "time"

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 100

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 50

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 10
)

// KeepaliveInterval is how often an idle stream is pinged
const KeepaliveInterval = 30 * time.Second

// Stream event types. Bus-derived events keep their bus type name.
const (
	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// Query parameters
const (
	QueryParamTypes = "types"
	QueryParamUser  = "user"
)

// Log messages
const (
	LogMsgClientConnected    = "Stream client connected"
	LogMsgClientDisconnected = "Stream client disconnected"
	LogMsgEventBroadcast     = "Broadcasting stream event"
	LogMsgEventDropped       = "Stream buffer full, event dropped"
	LogMsgWriteError         = "Failed to write stream event"
	LogMsgSubscribed         = "Stream subscriber registered"
	LogMsgPayloadDecode      = "Failed to decode event payload for stream"
	ErrMsgStreamUnsupported  = "Streaming not supported"
)
