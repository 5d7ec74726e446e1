// Package task defines the immutable task model consumed by the scheduling engines.
//
// A Set is built once by a loader and is never mutated afterwards:
//   - Periodic tasks occupy task indices 0..len(Periodic)-1.
//   - Aperiodic tasks follow at len(Periodic)..Count()-1.
//
// The task index is the only key used to address per-task schedule state.
// Column() is the index shifted by one, so that 0 can mean "idle".
package task
