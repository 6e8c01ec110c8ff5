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
	"math"
	"testing"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// randomImage fills an h x w image with values in [lo,hi) using the
// package's own lazily self-seeding generator, the same zero-value
// fastrand.RNG{} construction used throughout the teacher's test suite
// (e.g. internal/qsort/qsort_test.go).
func randomImage(h, w int, lo, hi float32) *Image {
	rng := fastrand.RNG{}
	img := NewImage(h, w)
	span := hi - lo
	for i := range img.Data {
		img.Data[i] = lo + span*(float32(rng.Uint32())/float32(math.MaxUint32))
	}
	return img
}

// radialSymmetricImage builds an image whose value at (i,j) depends only
// on the radial-index bin of (i,j) relative to (iCtr,jCtr), via g. Every
// pixel sharing a bin therefore holds an identical value, so radProf's
// per-bin variance is exactly zero by construction.
func radialSymmetricImage(h, w, iCtr, jCtr, rad int, g func(bin int) float32) *Image {
	img := NewImage(h, w)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			di, dj := i-iCtr, j-jCtr
			dSq := di*di + dj*dj
			if dSq > rad*rad {
				dSq = rad * rad // fold anything outside the disc into the outermost bin
			}
			img.Set(i, j, g(int(radIndexAt(dSq))))
		}
	}
	return img
}

// S5: weighted asymmetry bias floor. A flat image at mean=100 with a
// bogus bias of 500 must not produce NaN/garbage: the reduction silently
// floors bias to the minimum observed bin mean before computing noise.
func TestRadAsymmWeighted_S5_BiasFloor(t *testing.T) {
	img := flatImage(9, 9, 100.0)
	e := NewEngine()
	asymm, _, totPts, err := e.RadAsymmWeighted(img, nil, 4, 4, 3, 500, 5.0, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totPts <= 0 {
		t.Fatalf("expected positive totPts, got %d", totPts)
	}
	if math.IsNaN(asymm) || math.IsInf(asymm, 0) {
		t.Fatalf("weighted asymmetry is not finite: %v", asymm)
	}
	if asymm < 0 {
		t.Fatalf("weighted asymmetry should be non-negative for a flat image, got %v", asymm)
	}
}

// Property 2: masking every pixel yields totPts=0, totCounts=0, all
// output bins zero, and asymmetry 0.
func TestAllMasked(t *testing.T) {
	img := flatImage(6, 6, 42.0)
	mask := NewMask(6, 6)
	for i := range mask.Data {
		mask.Data[i] = true
	}
	e := NewEngine()

	asymm, totCounts, totPts, err := e.RadAsymm(img, mask, 3, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asymm != 0 || totCounts != 0 || totPts != 0 {
		t.Errorf("got (%g,%g,%d) want (0,0,0)", asymm, totCounts, totPts)
	}

	mean := make([]float64, 4)
	variance := make([]float64, 4)
	count := make([]int32, 4)
	if _, totPts, err := e.RadProf(img, mask, 3, 3, 2, mean, variance, count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if totPts != 0 {
		t.Errorf("totPts=%d want 0", totPts)
	}
	for i := range mean {
		if mean[i] != 0 || variance[i] != 0 || count[i] != 0 {
			t.Errorf("bin %d not zero: mean=%g variance=%g count=%d", i, mean[i], variance[i], count[i])
		}
	}
}

// Property 3: shifting the whole image by a constant shifts every
// populated mean by that constant and leaves variance/count/asymmetry
// alone.
func TestTranslationInvariance(t *testing.T) {
	base := randomImage(15, 15, 10, 200)
	// Whole-number pixel values keep v+shift exact in float32, so the
	// comparisons below measure the engine rather than input rounding.
	for i, v := range base.Data {
		base.Data[i] = float32(math.Floor(float64(v)))
	}
	const shift = 37.5
	shifted := NewImage(15, 15)
	for i, v := range base.Data {
		shifted.Data[i] = v + shift
	}

	e1, e2 := NewEngine(), NewEngine()
	const rad = 6
	n := rad + 2
	m1, v1, c1 := make([]float64, n), make([]float64, n), make([]int32, n)
	m2, v2, c2 := make([]float64, n), make([]float64, n), make([]int32, n)

	if _, _, err := e1.RadProf(base, nil, 7, 7, rad, m1, v1, c1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := e2.RadProf(shifted, nil, 7, 7, rad, m2, v2, c2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for b := 0; b < n; b++ {
		if c1[b] != c2[b] {
			t.Errorf("bin %d count changed: %d -> %d", b, c1[b], c2[b])
		}
		if c1[b] == 0 {
			continue
		}
		if math.Abs(m2[b]-(m1[b]+shift)) > 1e-6 {
			t.Errorf("bin %d mean not shifted correctly: %g vs %g+%g", b, m2[b], m1[b], shift)
		}
		if math.Abs(v2[b]-v1[b]) > 1e-6*math.Max(1, v1[b]) {
			t.Errorf("bin %d variance changed under translation: %g -> %g", b, v1[b], v2[b])
		}
	}

	a1, _, _, err := e1.RadAsymm(base, nil, 7, 7, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, _, _, err := e2.RadAsymm(shifted, nil, 7, 7, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(a1-a2) > 1e-6*math.Max(1, math.Abs(a1)) {
		t.Errorf("unweighted asymmetry not translation-invariant: %g vs %g", a1, a2)
	}
}

// Property 4: scaling the image by k>0 scales mean by k, variance by k^2,
// leaves count unchanged, and scales unweighted asymmetry by k^2.
func TestScaleInvariance(t *testing.T) {
	base := randomImage(15, 15, 10, 200)
	const k = 2.25
	scaled := NewImage(15, 15)
	for i, v := range base.Data {
		scaled.Data[i] = v * k
	}

	e1, e2 := NewEngine(), NewEngine()
	const rad = 6
	n := rad + 2
	m1, v1, c1 := make([]float64, n), make([]float64, n), make([]int32, n)
	m2, v2, c2 := make([]float64, n), make([]float64, n), make([]int32, n)

	if _, _, err := e1.RadProf(base, nil, 7, 7, rad, m1, v1, c1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := e2.RadProf(scaled, nil, 7, 7, rad, m2, v2, c2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for b := 0; b < n; b++ {
		if c1[b] != c2[b] {
			t.Errorf("bin %d count changed under scaling: %d -> %d", b, c1[b], c2[b])
		}
		if c1[b] == 0 {
			continue
		}
		if math.Abs(m2[b]-m1[b]*k) > 1e-5*math.Max(1, math.Abs(m1[b]*k)) {
			t.Errorf("bin %d mean not scaled correctly: %g vs %g*%g", b, m2[b], m1[b], k)
		}
		if math.Abs(v2[b]-v1[b]*k*k) > 1e-4*math.Max(1, v1[b]*k*k) {
			t.Errorf("bin %d variance not scaled by k^2: %g vs %g", b, v2[b], v1[b]*k*k)
		}
	}

	a1, _, _, err := e1.RadAsymm(base, nil, 7, 7, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, _, _, err := e2.RadAsymm(scaled, nil, 7, 7, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(a2-a1*k*k) > 1e-3*math.Max(1, math.Abs(a1*k*k)) {
		t.Errorf("unweighted asymmetry not scaled by k^2: %g vs %g", a2, a1*k*k)
	}
}

// Property 5: a perfectly radially symmetric synthetic image yields
// variance[b]==0 for every bin, and asymmetry increases strictly when the
// center is shifted by one pixel.
func TestRadialSymmetry_ZeroVariance_AndCenterShiftIncreasesAsymmetry(t *testing.T) {
	const h, w, iCtr, jCtr, rad = 21, 21, 10, 10, 8
	g := func(bin int) float32 { return 100 - 3*float32(bin) }
	img := radialSymmetricImage(h, w, iCtr, jCtr, rad, g)

	e := NewEngine()
	n := rad + 2
	mean, variance, count := make([]float64, n), make([]float64, n), make([]int32, n)
	if _, _, err := e.RadProf(img, nil, iCtr, jCtr, rad, mean, variance, count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for b := 0; b < n; b++ {
		if variance[b] > 1e-6 {
			t.Errorf("bin %d variance=%g want ~0 for radially symmetric image", b, variance[b])
		}
	}

	centered, _, _, err := e.RadAsymm(img, nil, iCtr, jCtr, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if centered > 1e-6 {
		t.Errorf("centered asymmetry=%g want ~0", centered)
	}

	shifted, _, _, err := e.RadAsymm(img, nil, iCtr+1, jCtr, rad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(shifted > centered) {
		t.Errorf("shifting center did not increase asymmetry: centered=%g shifted=%g", centered, shifted)
	}
}

// Off-image center with any radius returns totPts=0 and never faults,
// including radii far larger than the image.
func TestOffImageCenter_NeverFaults(t *testing.T) {
	img := flatImage(4, 4, 1.0)
	e := NewEngine()
	for _, rad := range []int{0, 1, 5, 50} {
		n := rad + 2
		mean, variance, count := make([]float64, n), make([]float64, n), make([]int32, n)
		_, totPts, err := e.RadProf(img, nil, 1000, -1000, rad, mean, variance, count)
		if err != nil {
			t.Fatalf("rad=%d: unexpected error: %v", rad, err)
		}
		if totPts != 0 {
			t.Errorf("rad=%d: totPts=%d want 0", rad, totPts)
		}
	}
}

// Cross-validates the engine's one-pass variance against an independent
// two-pass computation built on gonum/stat.Mean, over randomly grouped
// bins of a noisy synthetic image.
func TestVarianceCrossCheckAgainstGonumStat(t *testing.T) {
	const h, w, iCtr, jCtr, rad = 31, 31, 15, 15, 10
	img := randomImage(h, w, 0, 1000)

	e := NewEngine()
	n := rad + 2
	mean, variance, count := make([]float64, n), make([]float64, n), make([]int32, n)
	if _, _, err := e.RadProf(img, nil, iCtr, jCtr, rad, mean, variance, count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bins := make(map[int][]float64)
	for i := 0; i < h; i++ {
		di := i - iCtr
		for j := 0; j < w; j++ {
			dj := j - jCtr
			dSq := di*di + dj*dj
			if dSq > rad*rad {
				continue
			}
			b := int(radIndexAt(dSq))
			bins[b] = append(bins[b], float64(img.At(i, j)))
		}
	}

	for b, vals := range bins {
		if len(vals) < 2 {
			continue
		}
		m := stat.Mean(vals, nil)
		sq := make([]float64, len(vals))
		for i, v := range vals {
			d := v - m
			sq[i] = d * d
		}
		popVar := stat.Mean(sq, nil)

		if math.Abs(mean[b]-m) > 1e-6*math.Max(1, math.Abs(m)) {
			t.Errorf("bin %d mean mismatch: engine=%g gonum=%g", b, mean[b], m)
		}
		if math.Abs(variance[b]-popVar) > 1e-6*math.Max(1, popVar) {
			t.Errorf("bin %d variance mismatch: engine=%g gonum=%g", b, variance[b], popVar)
		}
	}
}
