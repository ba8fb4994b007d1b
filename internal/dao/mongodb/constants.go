package mongodb

const (
	CollectionOutbox           = "outbox"
	CollectionWorkerHeartbeats = "worker_heartbeats"
)
