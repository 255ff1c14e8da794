package protocol

import "deskfolio.dev/internal/desktop/content"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name,omitempty"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	SessionID       string       `json:"session_id"`
	ClueTotal       int          `json:"clue_total"`
	Content         []ContentRef `json:"content"`
}

type ContentRef struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// ACT ops.
const (
	OpNavigate     = "navigate"
	OpOpen         = "open"
	OpClose        = "close"
	OpFrameControl = "frame_control"
	OpModuleEvent  = "module_event"
)

// ACT (client -> server): one input event.
type ActMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ID              string         `json:"id"`
	Op              string         `json:"op"`
	Phase           string         `json:"phase,omitempty"`
	Key             string         `json:"key,omitempty"`
	Control         string         `json:"control,omitempty"`
	Event           *content.Event `json:"event,omitempty"`
}

type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// VIEW (server -> client): the re-rendered surface.
type ViewMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Seq             uint64      `json:"seq"`
	Phase           string      `json:"phase"`
	Active          *ContentRef `json:"active,omitempty"`
	Progress        ProgressRef `json:"progress"`
	Notice          string      `json:"notice,omitempty"`
	HTML            string      `json:"html"`
}

type ProgressRef struct {
	Collected int    `json:"collected"`
	Total     int    `json:"total"`
	Label     string `json:"label"`
}

func NewAck(actID string, accepted bool, code, msg string) AckMsg {
	return AckMsg{
		Type:            TypeAck,
		ProtocolVersion: Version,
		AckFor:          actID,
		Accepted:        accepted,
		Code:            code,
		Message:         msg,
	}
}
