package dto

type AuthResponse struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// ListResponse is the envelope for every cache-fallback read: data plus
// the offline flag telling the client whether it is looking at cached
// state.
type ListResponse struct {
	OK      bool `json:"ok"`
	Offline bool `json:"offline"`
	Data    any  `json:"data"`
}

type PurgeResponse struct {
	OK      bool `json:"ok"`
	Removed int  `json:"removed"`
}
