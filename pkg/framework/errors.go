package framework

import "strings"

// AggregatedError collects errors from parallel runners.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(e.Errors)+1)
	msgs[0] = "Multiple errors:"
	for n, err := range e.Errors {
		msgs[n+1] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Add collects errors, skipping nil values.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil, the single collected error, or the
// aggregation when more were collected.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}
