// Package engine provides the tick-based mission loop: the per-tick squad
// step, the Simulation lifecycle and the MissionRun it produces.
package engine

import (
	"fmt"
	"log/slog"
)

// ProgressEvery is how many ticks pass between mission progress reports.
const ProgressEvery = 10

// Engine drives a mission forward for a fixed number of ticks.
type Engine struct {
	Tick  int // Ticks completed so far
	Limit int // Ticks to run

	// Callbacks, populated during setup.
	OnTick     func(tick int) error // Every tick; tick counts from 0
	OnProgress func(done int)       // Every ProgressEvery ticks
}

// NewEngine creates an engine that runs limit ticks.
func NewEngine(limit int) *Engine {
	return &Engine{Limit: limit}
}

// Run steps until Limit ticks have completed. The first tick error stops the
// engine and is returned; no tick is retried.
func (e *Engine) Run() error {
	slog.Debug("mission engine started", "tick", e.Tick, "limit", e.Limit)
	for e.Tick < e.Limit {
		if err := e.step(); err != nil {
			slog.Error("mission engine aborted", "tick", e.Tick, "error", err)
			return err
		}
	}
	slog.Debug("mission engine stopped", "tick", e.Tick)
	return nil
}

// Remaining returns the number of ticks left to run.
func (e *Engine) Remaining() int {
	return e.Limit - e.Tick
}

// step advances the mission by one tick.
func (e *Engine) step() error {
	if e.OnTick != nil {
		if err := e.OnTick(e.Tick); err != nil {
			return fmt.Errorf("tick %d: %w", e.Tick, err)
		}
	}
	e.Tick++

	if e.Tick%ProgressEvery == 0 && e.OnProgress != nil {
		e.OnProgress(e.Tick)
	}
	return nil
}
