package buffer

import "exprc/internal/registry"

// Batch is the transient per-call object described in spec §3: a row
// count, a flat array of slot-indexed column arrays, scratch local
// bitmaps, and an execution context.
type Batch struct {
	NumRows int
	// Slots holds one *Array per slot allocated by the layout package,
	// indexed by slot number (spec §3 "flat array of raw buffer pointers
	// indexed by slot numbers").
	Slots []*Array
	// Locals holds one scratch Bitmap per NULL_INTERNAL function and per
	// if-branch that has its own nullability, indexed by the decomposer's
	// local-bitmap index (spec §4.4, §4.5).
	Locals []Bitmap
	Ctx    registry.ExecContext
}

// NewBatch allocates a batch with numSlots column slots and numLocals
// scratch bitmaps, each sized for numRows.
func NewBatch(numRows, numSlots, numLocals int) *Batch {
	locals := make([]Bitmap, numLocals)
	for i := range locals {
		locals[i] = NewBitmap(numRows)
	}
	return &Batch{NumRows: numRows, Slots: make([]*Array, numSlots), Locals: locals}
}

// BindSlot attaches array a to slot index i, as the caller supplying input
// buffer addresses would (spec §6.1).
func (b *Batch) BindSlot(i int, a *Array) {
	if i >= len(b.Slots) {
		grown := make([]*Array, i+1)
		copy(grown, b.Slots)
		b.Slots = grown
	}
	b.Slots[i] = a
}

// Reset clears the execution context's error between batches, per spec §3
// Lifecycle: "the execution context is reset (error cleared) between
// batches."
func (b *Batch) Reset() {
	b.Ctx.Reset()
}
