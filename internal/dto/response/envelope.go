package response

import "encoding/json"

// Envelope is the uniform wrapper around every backend response.
// Data stays raw so each endpoint decodes it into its own shape.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// HasData reports whether data is present and not JSON null.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}
