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

// Package centroid implements the radial statistics engine behind a
// star-centroiding library used for telescope guiding: per-bin mean,
// variance and count profiles of pixel intensity as a function of
// radius from a chosen integer center, and two forms of a radial
// asymmetry scalar derived from those profiles. The engine is
// single-threaded and synchronous, per spec; it performs no I/O and
// retains no reference to caller-supplied buffers past the call.
package centroid

// Engine owns the two process-wide caches spec.md describes: the radial
// index map and the accumulator buffers that both asymmetry reductions
// pass to radProf as its output. The design notes in spec.md
// section 9 call for an explicit handle instead of file-scope globals,
// so that concurrency, if ever needed, becomes the caller's explicit
// choice (one Engine per goroutine, or one Engine behind a mutex)
// rather than an implicit hazard. A single Engine must not be used
// concurrently from multiple goroutines without external locking.
type Engine struct {
	ridx  radialIndexMap
	accum accumulatorBuffers
}

// NewEngine returns a ready-to-use Engine with empty caches; caches grow
// lazily on first use.
func NewEngine() *Engine {
	return &Engine{}
}

// Close releases both caches, matching spec.md's required teardown
// operation ("freeCaches") for embedding hosts that care about
// deterministic release. The Engine remains usable afterwards; caches
// simply regrow on the next call.
func (e *Engine) Close() {
	e.ridx.free()
	e.accum.free()
}

// defaultEngine backs the package-level convenience functions below, so
// existing callers written against spec.md's six free functions (rather
// than against an explicit handle) keep working against a process-wide
// default, same as nightlight's own package-level LSEstimator state in
// internal/stats/stats.go.
var defaultEngine = NewEngine()

// RadIndByRadSq is the package-level convenience wrapper for
// Engine.RadIndByRadSq against the default engine.
func RadIndByRadSq(nElt int) ([]int32, error) { return defaultEngine.RadIndByRadSq(nElt) }

// RadSqByRadInd is the package-level convenience wrapper for
// Engine.RadSqByRadInd.
func RadSqByRadInd(nElt int) ([]int32, error) { return defaultEngine.RadSqByRadInd(nElt) }

// RadProf is the package-level convenience wrapper for Engine.RadProf.
func RadProf(img *Image, mask *Mask, iCtr, jCtr, rad int, mean, variance []float64, count []int32) (totCounts float64, totPts int, err error) {
	return defaultEngine.RadProf(img, mask, iCtr, jCtr, rad, mean, variance, count)
}

// RadSqProf is the package-level convenience wrapper for Engine.RadSqProf.
func RadSqProf(img *Image, mask *Mask, iCtr, jCtr, rad int, mean, variance []float64, count []int32) (totCounts float64, totPts int, err error) {
	return defaultEngine.RadSqProf(img, mask, iCtr, jCtr, rad, mean, variance, count)
}

// RadAsymm is the package-level convenience wrapper for Engine.RadAsymm.
func RadAsymm(img *Image, mask *Mask, iCtr, jCtr, rad int) (asymm, totCounts float64, totPts int, err error) {
	return defaultEngine.RadAsymm(img, mask, iCtr, jCtr, rad)
}

// RadAsymmWeighted is the package-level convenience wrapper for
// Engine.RadAsymmWeighted.
func RadAsymmWeighted(img *Image, mask *Mask, iCtr, jCtr, rad int, bias, readNoise, ccdGain float64) (asymm, totCounts float64, totPts int, err error) {
	return defaultEngine.RadAsymmWeighted(img, mask, iCtr, jCtr, rad, bias, readNoise, ccdGain)
}

// RadIndByRadSq returns a fresh nElt-length copy of the engine's radial
// index map, growing it first if necessary.
func (e *Engine) RadIndByRadSq(nElt int) ([]int32, error) {
	return e.ridx.radIndByRadSq(nElt)
}

// RadSqByRadInd returns a fresh nElt-length inverse radial index table,
// computed directly with no dependence on the cached forward map.
func (e *Engine) RadSqByRadInd(nElt int) ([]int32, error) {
	return radSqByRadInd(nElt)
}
