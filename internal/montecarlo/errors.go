package montecarlo

import "fmt"

// SampleFailureError reports a sample whose run failed or produced no usable
// result.
type SampleFailureError struct {
	Index int
	Cause error
}

func (e *SampleFailureError) Error() string {
	return fmt.Sprintf("monte carlo sample %d failed: %v", e.Index, e.Cause)
}

func (e *SampleFailureError) Unwrap() error { return e.Cause }

// InsufficientSamplesError is returned under the Exclude policy when too few
// samples survive to estimate a standard deviation.
type InsufficientSamplesError struct {
	Valid    int
	Required int
	Excluded int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("monte carlo ensemble has %d usable samples (%d excluded), need at least %d", e.Valid, e.Excluded, e.Required)
}
