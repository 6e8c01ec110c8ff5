// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package centroid

import (
	"github.com/pbnjay/memory"
)

// maxCacheFraction bounds how much of physical memory the engine's
// internal caches may claim on their own, independent of everything
// else the host process holds. Grown from nightlight's own
// memory-budgeting in internal/batch.go, which sizes batches against
// memory.TotalMemory() the same way.
const maxCacheFraction = 0.25

// guardAllocation refuses a growth request that alone would exceed
// maxCacheFraction of physical memory. This is a heuristic stand-in for
// "allocation exhaustion": Go has no cheap way to probe whether a
// make() of a given size will succeed before attempting it, and
// attempting huge allocations to find out is itself the failure mode
// we want to avoid.
func guardAllocation(nBytes int64) error {
	total := int64(memory.TotalMemory())
	if total <= 0 {
		return nil // memory.TotalMemory() is unsupported on this platform; nothing to check against
	}
	if limit := int64(float64(total) * maxCacheFraction); nBytes > limit {
		return newError(AllocationFailure, "refusing to grow cache to %d bytes, exceeds %.0f%% of %d bytes physical memory", nBytes, maxCacheFraction*100, total)
	}
	return nil
}

// accumulatorBuffers are the transient per-bin scratch arrays that the
// asymmetry reductions hand to radProf as its output (RadProf called
// directly writes into caller-supplied buffers instead): sum and
// sum-of-squares of pixel values per bin, plus per-bin count. They grow on demand and never
// shrink until free() is called explicitly.
type accumulatorBuffers struct {
	sum   []float64
	sumSq []float64
	count []int32
}

// ensureCapacity grows all three buffers to at least n entries. On
// allocation failure all three are released together, per spec.
func (a *accumulatorBuffers) ensureCapacity(n int) error {
	if n <= len(a.sum) {
		return nil
	}
	// 8+8+4 bytes per bin across the three buffers
	if err := guardAllocation(int64(n) * 20); err != nil {
		a.free()
		return err
	}
	a.sum = growFloat64(a.sum, n)
	a.sumSq = growFloat64(a.sumSq, n)
	a.count = growInt32(a.count, n)
	return nil
}

func (a *accumulatorBuffers) free() {
	a.sum, a.sumSq, a.count = nil, nil, nil
}

func growFloat64(s []float64, n int) []float64 {
	if n <= len(s) {
		return s
	}
	grown := make([]float64, n)
	copy(grown, s)
	return grown
}

func growInt32(s []int32, n int) []int32 {
	if n <= len(s) {
		return s
	}
	grown := make([]int32, n)
	copy(grown, s)
	return grown
}
