package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session routing.
	ErrSessionBusy = "E_SESSION_BUSY"

	// Desktop layer.
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrUnknownContent = "E_UNKNOWN_CONTENT"
	ErrWrongPhase     = "E_WRONG_PHASE"
	ErrInternal       = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrSessionBusy:     {},
	ErrBadRequest:      {},
	ErrUnknownContent:  {},
	ErrWrongPhase:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
