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

import "testing"

func flatImage(h, w int, v float32) *Image {
	img := NewImage(h, w)
	for i := range img.Data {
		img.Data[i] = v
	}
	return img
}

// S1: 3x3 image of all 1.0, no mask, center (1,1), radius 1.
func TestRadProf_S1(t *testing.T) {
	img := flatImage(3, 3, 1.0)
	e := NewEngine()
	mean := make([]float64, 3)
	variance := make([]float64, 3)
	count := make([]int32, 3)

	totCounts, totPts, err := e.RadProf(img, nil, 1, 1, 1, mean, variance, count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// radProf skips the four diagonal pixels: their dSq=2 exceeds rad²=1.
	if totPts != 5 {
		t.Errorf("totPts=%d want 5", totPts)
	}
	if totCounts != 5.0 {
		t.Errorf("totCounts=%g want 5.0", totCounts)
	}
	wantCount := []int32{1, 4, 0}
	for i, c := range wantCount {
		if count[i] != c {
			t.Errorf("count[%d]=%d want %d", i, count[i], c)
		}
		if c > 0 && mean[i] != 1.0 {
			t.Errorf("mean[%d]=%g want 1.0", i, mean[i])
		}
		if variance[i] != 0 {
			t.Errorf("variance[%d]=%g want 0", i, variance[i])
		}
	}

	asymm, asymmTotCounts, asymmTotPts, err := e.RadAsymm(img, nil, 1, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asymm != 0.0 {
		t.Errorf("radAsymm=%g want 0.0", asymm)
	}
	if asymmTotCounts != 5.0 || asymmTotPts != 5 {
		t.Errorf("asymm totals = (%g,%d) want (5.0,5)", asymmTotCounts, asymmTotPts)
	}
}

// S2: 3x3 image with data[1][1]=5, others 1, no mask, center (1,1), radius 1.
func TestRadSqProf_S2(t *testing.T) {
	img := flatImage(3, 3, 1.0)
	img.Set(1, 1, 5)
	e := NewEngine()

	mean2 := make([]float64, 2)
	variance2 := make([]float64, 2)
	count2 := make([]int32, 2)
	if _, totPts, err := e.RadSqProf(img, nil, 1, 1, 1, mean2, variance2, count2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if totPts != 5 {
		t.Errorf("totPts=%d want 5", totPts)
	}
	wantCount2 := []int32{1, 4}
	wantMean2 := []float64{5, 1}
	for i := range wantCount2 {
		if count2[i] != wantCount2[i] {
			t.Errorf("count2[%d]=%d want %d", i, count2[i], wantCount2[i])
		}
		if mean2[i] != wantMean2[i] {
			t.Errorf("mean2[%d]=%g want %g", i, mean2[i], wantMean2[i])
		}
	}

	mean3 := make([]float64, 3)
	variance3 := make([]float64, 3)
	count3 := make([]int32, 3)
	if _, totPts, err := e.RadSqProf(img, nil, 1, 1, 1, mean3, variance3, count3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if totPts != 9 {
		t.Errorf("totPts=%d want 9", totPts)
	}
	wantCount3 := []int32{1, 4, 4}
	wantMean3 := []float64{5, 1, 1}
	for i := range wantCount3 {
		if count3[i] != wantCount3[i] {
			t.Errorf("count3[%d]=%d want %d", i, count3[i], wantCount3[i])
		}
		if mean3[i] != wantMean3[i] {
			t.Errorf("mean3[%d]=%g want %g", i, mean3[i], wantMean3[i])
		}
	}
}

// S3: 5x5 image of all 10.0, mask true on the entire top row, center (2,2), radius 2.
func TestRadProf_S3_MaskedBoundary(t *testing.T) {
	img := flatImage(5, 5, 10.0)
	mask := NewMask(5, 5)
	for j := 0; j < 5; j++ {
		mask.Set(0, j, true)
	}
	e := NewEngine()
	mean := make([]float64, 4)
	variance := make([]float64, 4)
	count := make([]int32, 4)

	totCounts, totPts, err := e.RadProf(img, mask, 2, 2, 2, mean, variance, count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totPts != 12 {
		t.Errorf("totPts=%d want 12", totPts)
	}
	if totCounts != 120.0 {
		t.Errorf("totCounts=%g want 120.0", totCounts)
	}
	for b, c := range count {
		if c == 0 {
			continue
		}
		if mean[b] != 10.0 {
			t.Errorf("mean[%d]=%g want 10.0", b, mean[b])
		}
		if variance[b] != 0 {
			t.Errorf("variance[%d]=%g want 0", b, variance[b])
		}
	}
}

// S4: 4x4 image, center far off-image, radius 3: empty box, success, all zero.
func TestRadProf_S4_OffImageCenter(t *testing.T) {
	img := flatImage(4, 4, 7.0)
	e := NewEngine()
	mean := make([]float64, 5)
	variance := make([]float64, 5)
	count := make([]int32, 5)

	totCounts, totPts, err := e.RadProf(img, nil, -5, -5, 3, mean, variance, count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totPts != 0 || totCounts != 0 {
		t.Errorf("got totPts=%d totCounts=%g want 0,0", totPts, totCounts)
	}
	for i := range mean {
		if mean[i] != 0 || variance[i] != 0 || count[i] != 0 {
			t.Errorf("output not all-zero at %d: mean=%g variance=%g count=%d", i, mean[i], variance[i], count[i])
		}
	}
}

func TestRadProf_OutputTooSmall(t *testing.T) {
	img := flatImage(3, 3, 1.0)
	e := NewEngine()
	mean := make([]float64, 1)
	variance := make([]float64, 1)
	count := make([]int32, 1)
	_, _, err := e.RadProf(img, nil, 1, 1, 1, mean, variance, count)
	if err == nil {
		t.Fatal("expected error for undersized output")
	}
	ce, ok := err.(*Error)
	if !ok || ce.Kind != InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestRadSqProf_OutputTooSmall(t *testing.T) {
	img := flatImage(3, 3, 1.0)
	e := NewEngine()
	mean := make([]float64, 1)
	variance := make([]float64, 1)
	count := make([]int32, 1)
	_, _, err := e.RadSqProf(img, nil, 1, 1, 1, mean, variance, count)
	if err == nil {
		t.Fatal("expected error for undersized output")
	}
}

func TestRadProf_MaskShapeMismatch(t *testing.T) {
	img := flatImage(3, 3, 1.0)
	mask := NewMask(4, 4)
	e := NewEngine()
	mean := make([]float64, 3)
	variance := make([]float64, 3)
	count := make([]int32, 3)
	_, _, err := e.RadProf(img, mask, 1, 1, 1, mean, variance, count)
	if err == nil {
		t.Fatal("expected error for mismatched mask shape")
	}
}

// Radius 0 is valid: only the center pixel, if in-image and unmasked.
func TestRadProf_RadiusZero(t *testing.T) {
	img := flatImage(3, 3, 4.0)
	e := NewEngine()
	mean := make([]float64, 2)
	variance := make([]float64, 2)
	count := make([]int32, 2)
	totCounts, totPts, err := e.RadProf(img, nil, 1, 1, 0, mean, variance, count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totPts != 1 || totCounts != 4.0 {
		t.Errorf("got totPts=%d totCounts=%g want 1,4.0", totPts, totCounts)
	}
	if count[0] != 1 || mean[0] != 4.0 {
		t.Errorf("bin 0 = (%d,%g) want (1,4.0)", count[0], mean[0])
	}
}
