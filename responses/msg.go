package responses

const (
	TypeOK    = "ok"
	TypeError = "error"
)

type Message struct {
	Type    string `json:"type"` // "error", etc
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"` // application-level logic code
}
