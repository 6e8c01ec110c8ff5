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

import "math"

// radialIndexMap is the "Mirage" radial-index convention table: a
// lazily built, monotonically grown map from squared distance to a
// small-integer radial bin. The three central pixels (dSq 0,1,2) each
// get their own bin; thereafter each radial index n>=3 corresponds to
// squared-radius (n-1)^2.
type radialIndexMap struct {
	table []int32 // table[k] = radIndByRadSq(k), len(table) == current capacity
}

// radIndexAt implements the formula from spec section 3 for a single k.
func radIndexAt(k int) int32 {
	switch k {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default:
		return int32(math.Floor(math.Sqrt(float64(k)) + 1.5))
	}
}

// radSqAt implements the inverse mapping for a single radial index n.
func radSqAt(n int) int32 {
	switch n {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default:
		return int32((n - 1) * (n - 1))
	}
}

func minCapacityForRad(rad int) int {
	c := rad*rad + 1
	if c < 3 {
		c = 3
	}
	return c
}

// ensureCapacity grows the table so it covers at least n entries,
// filling any newly added entries per the formula. Pre-existing entries
// are never recomputed: the table only ever grows.
func (r *radialIndexMap) ensureCapacity(n int) {
	if n <= len(r.table) {
		return
	}
	grown := make([]int32, n)
	copy(grown, r.table)
	for k := len(r.table); k < n; k++ {
		grown[k] = radIndexAt(k)
	}
	r.table = grown
}

// radIndByRadSq returns a fresh nElt-length copy of the table, growing it
// first if necessary.
func (r *radialIndexMap) radIndByRadSq(nElt int) ([]int32, error) {
	if nElt < 0 {
		return nil, newError(InvalidArgument, "radIndByRadSq: nElt %d < 0", nElt)
	}
	r.ensureCapacity(nElt)
	out := make([]int32, nElt)
	copy(out, r.table[:nElt])
	return out, nil
}

// radSqByRadInd returns a fresh nElt-length inverse table, computed
// directly without touching the cached forward map.
func radSqByRadInd(nElt int) ([]int32, error) {
	if nElt < 0 {
		return nil, newError(InvalidArgument, "radSqByRadInd: nElt %d < 0", nElt)
	}
	out := make([]int32, nElt)
	for n := 0; n < nElt; n++ {
		out[n] = radSqAt(n)
	}
	return out, nil
}

func (r *radialIndexMap) free() {
	r.table = nil
}
