package world

import (
	"log/slog"

	"github.com/udisondev/idlecore/internal/fixed"
)

// EffectSink receives sounds and animations produced by the simulation.
// Audio and rendering live outside the core; the sink is their entry point.
// Implementations must not call back into the World.
type EffectSink interface {
	PlaySound(name string, at fixed.Position)
	PlayAnimation(name string, at fixed.Position)
}

// Effect is a sound and/or animation triggered at a position.
type Effect struct {
	Sound     string
	Animation string
	At        fixed.Position
}

// dispatch sends e to sink, skipping empty names.
func (e Effect) dispatch(sink EffectSink) {
	if e.Sound != "" {
		sink.PlaySound(e.Sound, e.At)
	}
	if e.Animation != "" {
		sink.PlayAnimation(e.Animation, e.At)
	}
}

// logSink is the default sink used when no audio/render layer is attached.
type logSink struct{}

func (logSink) PlaySound(name string, at fixed.Position) {
	slog.Debug("sound", "name", name, "at", at)
}

func (logSink) PlayAnimation(name string, at fixed.Position) {
	slog.Debug("animation", "name", name, "at", at)
}
