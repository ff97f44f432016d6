package game

import (
	"time"

	"github.com/udisondev/idlecore/internal/model"
	"github.com/udisondev/idlecore/internal/world"
)

// FrameTime is how long one animation frame is shown.
const FrameTime = 100 * time.Millisecond

// animate advances every animation cursor by dt and switches the player
// between idle and walk.
func animate(w *world.World, walking bool, dt time.Duration) {
	w.Update(func(tx *world.Tx) {
		for _, obj := range tx.Objects {
			if obj == nil || obj.Animation == nil {
				continue
			}
			if obj.Kind == model.KindPlayer {
				name := "idle"
				if walking {
					name = "walk"
				}
				if obj.Animation.Name != name {
					*obj.Animation = model.AnimationState{Name: name}
				}
			}
			a := obj.Animation
			a.Elapsed += dt
			for a.Elapsed >= FrameTime {
				a.Elapsed -= FrameTime
				a.Frame++
			}
		}
	})
}
