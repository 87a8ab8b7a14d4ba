package metrics

// Labels for inspection operations.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// InspectionCommitted records a committed create or update and the way its
// disposition was reached.
func InspectionCommitted(operation, status string, gatePassed, scoreRejected bool) {
	InspectionsProcessed.WithLabelValues(operation, status).Inc()
	if !gatePassed {
		GateFailures.Inc()
	}
	if scoreRejected {
		ScoreFailures.Inc()
	}
}

// VehicleSynced records the outcome of a vehicle fleet record sync.
func VehicleSynced(changedFields int) {
	if changedFields > 0 {
		VehicleSyncWrites.WithLabelValues("saved").Inc()
		return
	}
	VehicleSyncWrites.WithLabelValues("unchanged").Inc()
}
