package models

// ConfigurationError reports malformed input detected before or at
// construction time: bad bounds, a solution vector of the wrong length,
// an undefined wake category and similar. It is fatal for a run.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return "configuration error: " + e.Field + ": " + e.Reason
}

// InvariantViolation indicates a logic defect, e.g. the separation model
// queried with a kind or category it does not declare.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}
