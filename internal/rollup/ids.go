package rollup

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out scenario identifiers. Each call must return a value
// not returned before within the same run.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator issues Prefix-1, Prefix-2, ... and is meant for tests and
// reproducible output.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "scenario"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1))
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

// NewID implements IDGenerator.
func (f IDFunc) NewID() string { return f() }
