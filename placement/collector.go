package placement

// Collector is the callback surface a caller implements to drive a
// decoded stream: the content handler notifies it when a record begins
// and ends against a particular placement, and gives it a chance to claim
// data sets whose set id has no registered wire template.
//
// StartPlacement/EndPlacement bracket each record transfer, so the
// collector can snapshot or discard a record's destinations.
// UnhandledDataSet is optional: embedding NopUnhandled satisfies it with
// a no-op that declines the data set without requesting a retry.
type Collector interface {
	// StartPlacement is called once per record, immediately before the
	// decode-plan executor begins writing into tmpl's destinations.
	StartPlacement(tmpl *PlacementTemplate)

	// EndPlacement is called once per record, immediately after the
	// decode-plan executor finishes writing into tmpl's destinations (also
	// when the executor stops on a decode error).
	EndPlacement(tmpl *PlacementTemplate)

	// UnhandledDataSet is offered a data set whose set id matches no wire
	// template registered for it, in registration order alongside every
	// other collector registered on the same handler, when no
	// handler-wide unhandled callback claims it first. again reports
	// whether the collector installed a template that should cause the
	// same bytes to be retried once; most collectors return false.
	UnhandledDataSet(observationDomain uint32, setID uint16, data []byte) (again bool, err error)
}

// NopUnhandled is embedded by collectors that have nothing to do for
// unregistered data sets: it declines every one without requesting a
// replay, leaving the set to the next collector or to the handler's
// warn-once skip.
type NopUnhandled struct{}

// UnhandledDataSet implements Collector's optional fallback as a no-op.
func (NopUnhandled) UnhandledDataSet(observationDomain uint32, setID uint16, data []byte) (bool, error) {
	return false, nil
}
