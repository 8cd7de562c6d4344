package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Context fields, propagated through the call chain.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"

	// FieldVisitorID is the anonymous visitor cookie value
	FieldVisitorID = "visitor_id"

	FieldJokeID = "joke_id"
	FieldTopic  = "topic"

	// FieldStemKey is the normalized topic key used for moderation grouping
	FieldStemKey = "stem_key"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldAttempt    = "attempt"

	// FieldOutcome is the result of a state transition (vote created/removed/changed, topic blocked)
	FieldOutcome = "outcome"
	FieldStatus  = "status"
)
