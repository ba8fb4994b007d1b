package models

import "time"

// WorkerHeartbeat is the liveness record a background worker upserts after
// every poll cycle, keyed by worker name. External health checks flag a
// worker as stalled when LastCycleAt stops moving.
type WorkerHeartbeat struct {
	Worker      string    `bson:"worker" json:"worker"`
	LastCycleAt time.Time `bson:"last_cycle_at" json:"last_cycle_at"`
	QueueDepth  int64     `bson:"queue_depth" json:"queue_depth"`
	Claimed     int       `bson:"claimed" json:"claimed"`
	Failed      int       `bson:"failed" json:"failed"`
	LastError   string    `bson:"last_error,omitempty" json:"last_error,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
