package event_bus

const (
	// ScheduleChanged is published after a schedule is created, updated or
	// deleted. Subscribers typically trigger a reconciliation pass.
	ScheduleChanged EventType = "schedule.changed"

	// PendingConfirmed is published after a pending occurrence is confirmed
	// and its transaction has been posted.
	PendingConfirmed EventType = "pending.confirmed"
)

// ScheduleChangedEvent carries the mutated schedule's identity.
type ScheduleChangedEvent struct {
	ScheduleId int
	Action     string // "created", "updated" or "deleted"
}

// PendingConfirmedEvent carries the confirmed occurrence's identity.
type PendingConfirmedEvent struct {
	PendingId  int
	ScheduleId int
}
