package bus

import "time"

// Event represents a domain event published on the bus.
//
// Kinds used across imx:
//
//	export.run_started    Payload: export.RunSummary (run ID only)
//	export.contact_done   Payload: export.Result
//	export.run_done       Payload: export.RunSummary
//	run.status_changed    Payload: status.StatusChange
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
