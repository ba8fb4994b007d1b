package snowflake

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

// Generator hands out process-unique, time-ordered ids. The outbox publisher
// stamps one into every event envelope so clients can reconcile ordering.
type Generator struct {
	node *sonyflake.Sonyflake
}

// NewGenerator creates and returns a new Generator.
func NewGenerator(machineId uint16) (*Generator, error) {
	t, _ := time.Parse("2006-01-02", "2023-01-01")
	settings := sonyflake.Settings{
		StartTime: t,
		MachineID: func() (uint16, error) { // machineId is captured by the closure
			return machineId, nil
		},
	}
	sf := sonyflake.NewSonyflake(settings)
	if sf == nil {
		return nil, fmt.Errorf("sonyflake not created")
	}
	return &Generator{node: sf}, nil
}

// NextID generates a new unique id.
func (g *Generator) NextID() (uint64, error) {
	return g.node.NextID()
}
