package game

import (
	"sync/atomic"

	"github.com/udisondev/idlecore/internal/fixed"
)

// Input is the player's steering, written by the input thread and read by
// the game loop once per tick.
type Input struct {
	dir atomic.Uint64
}

// SetDirection steers the player along (x, y). The vector is normalized;
// (0, 0) stops the player.
func (in *Input) SetDirection(x, y float64) {
	d := fixed.FromFloat(x, y).Normalize()
	in.dir.Store(uint64(uint32(d.X))<<32 | uint64(uint32(d.Y)))
}

// Stop clears the steering.
func (in *Input) Stop() {
	in.dir.Store(0)
}

// Direction returns the current unit direction (length fixed.Scale) or zero.
func (in *Input) Direction() fixed.Position {
	v := in.dir.Load()
	return fixed.New(int32(uint32(v>>32)), int32(uint32(v)))
}
