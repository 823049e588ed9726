package types

import "time"

// SuccessEnvelope is the uniform shape of every successful API response.
type SuccessEnvelope struct {
	Success   bool      `json:"success"`
	Status    int       `json:"status"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the uniform shape of every failed API response.
type ErrorEnvelope struct {
	Success   bool      `json:"success"`
	Status    int       `json:"status"`
	Error     APIError  `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
