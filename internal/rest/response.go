package rest

// ResponseError is the plain error body used across the handlers.
type ResponseError struct {
	Message string `json:"message"`
}
