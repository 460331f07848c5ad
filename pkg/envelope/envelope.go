// Package envelope defines the single response shape every operation
// returns. Handlers never leak raw errors; failures become a value-level
// envelope with success=false and a human-readable message.
package envelope

// Response is the uniform operation result.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// OKMessage wraps data in a successful envelope with a message.
func OKMessage(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Fail builds a failure envelope with a user-facing message.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// FailErr builds a failure envelope carrying both a user-facing message and
// the underlying error text.
func FailErr(message string, err error) Response {
	r := Response{Success: false, Message: message}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
