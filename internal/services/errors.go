package services

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// UpstreamError reports a failed round trip to the local model server. The
// message embeds the underlying cause and is surfaced to the UI verbatim.
type UpstreamError struct{ Message string }

func (e *UpstreamError) Error() string { return e.Message }
