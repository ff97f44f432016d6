package game

import (
	"time"

	"github.com/udisondev/idlecore/internal/collision"
	"github.com/udisondev/idlecore/internal/fixed"
	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// Movement builds the per-tick move list. Not safe for concurrent use; the
// returned slice is reused by the next Plan call.
type Movement struct {
	moves []collision.Move
}

// Plan proposes one move per object that wants to move this tick:
// the player follows dir, enemies chase the player and attacks fly along
// their direction. Proposals are not collision-checked.
func (m *Movement) Plan(w *world.World, dir fixed.Position, dt time.Duration) []collision.Move {
	playerID := w.State().PlayerID
	m.moves = m.moves[:0]

	w.View(func(tx *world.Tx) {
		target, chase := tx.Position(playerID)

		for i, obj := range tx.Objects {
			if obj == nil {
				continue
			}
			pos := tx.Positions[i]

			var step fixed.Position
			switch obj.Kind {
			case model.KindPlayer:
				step = dir.Mul(travel(obj.Speed, dt))
			case model.KindEnemy:
				if chase {
					step = chaseStep(pos, target, travel(obj.Speed, dt))
				}
			case model.KindAttack:
				if obj.Attack != nil && obj.Attack.Speed > 0 {
					step = obj.Attack.Direction.Mul(travel(obj.Attack.Speed, dt))
				}
			}
			if step == fixed.Zero {
				continue
			}
			m.moves = append(m.moves, collision.Move{ID: obj.ID, Old: pos, New: pos.Add(step)})
		}
	})

	return m.moves
}

// travel returns the raw distance covered at speed (raw units per second) in dt.
func travel(speed int32, dt time.Duration) int32 {
	return int32(int64(speed) * int64(dt) / int64(time.Second))
}

// chaseStep moves from pos toward target by at most dist without overshooting.
func chaseStep(pos, target fixed.Position, dist int32) fixed.Position {
	delta := target.Sub(pos)
	if pos.Within(target, dist) {
		return delta
	}
	return delta.Normalize().Mul(dist)
}
