package taskname

// Task types.
const (
	EventExpire = "event:expire"
)

// Queues and their asynq priorities.
const (
	QueueMaintenance = "maintenance"
	QueueDefault     = "default"
)

var Queues = map[string]int{
	QueueMaintenance: 5,
	QueueDefault:     3,
}
