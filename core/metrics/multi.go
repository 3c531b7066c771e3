package metrics

import "errors"

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards rec to every sink. A failing sink does not prevent the
// others from recording; all errors are joined.
func (m *MultiSink) RecordPlan(rec PlanRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPlan(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRequest forwards rec to the sinks implementing RequestRecorder.
func (m *MultiSink) RecordRequest(rec RequestRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RequestRecorder); ok {
			if err := r.RecordRequest(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases the sinks that hold resources.
func (m *MultiSink) Close() { closeSinks(m.Sinks) }
