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
)

// Close (the spec's freeCaches teardown) releases both caches, and the
// engine remains usable afterwards: caches simply regrow.
func TestEngineClose_ReleasesAndRegrows(t *testing.T) {
	e := NewEngine()
	if _, err := e.RadIndByRadSq(50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.ridx.table) == 0 {
		t.Fatal("expected table to be populated before Close")
	}
	e.Close()
	if len(e.ridx.table) != 0 {
		t.Fatal("expected table to be released after Close")
	}
	if len(e.accum.sum) != 0 {
		t.Fatal("expected accumulator buffers to be released after Close")
	}

	img := flatImage(5, 5, 1.0)
	if _, _, _, err := e.RadAsymm(img, nil, 2, 2, 2); err != nil {
		t.Fatalf("engine unusable after Close: %v", err)
	}
}

// guardAllocation refuses to grow a cache past maxCacheFraction of
// physical memory. Real physical memory is always finite, so an
// absurdly large request must fail unless memory.TotalMemory() is
// unsupported on this platform (reported as 0).
func TestGuardAllocation_RefusesAbsurdSize(t *testing.T) {
	err := guardAllocation(math.MaxInt64 / 2)
	if err == nil {
		t.Skip("memory.TotalMemory() unsupported on this platform; guard is a no-op")
	}
	ce, ok := err.(*Error)
	if !ok || ce.Kind != AllocationFailure {
		t.Fatalf("expected AllocationFailure, got %v", err)
	}
}

func TestGuardAllocation_AllowsSmallSize(t *testing.T) {
	if err := guardAllocation(1024); err != nil {
		t.Fatalf("unexpected error for a tiny allocation: %v", err)
	}
}

// The package-level convenience functions operate against a shared
// default engine, independent of any explicit handle a caller created.
func TestPackageLevelConvenienceFunctions(t *testing.T) {
	img := flatImage(5, 5, 3.0)
	asymm, totCounts, totPts, err := RadAsymm(img, nil, 2, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asymm != 0 {
		t.Errorf("asymm=%g want 0 for a flat image", asymm)
	}
	if totPts <= 0 || totCounts <= 0 {
		t.Errorf("expected positive totals, got (%g,%d)", totCounts, totPts)
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[Kind]string{
		InvalidArgument:   "InvalidArgument",
		AllocationFailure: "AllocationFailure",
		InternalInvariant: "InternalInvariant",
		Kind(99):          "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String()=%q want %q", k, got, want)
		}
	}
}
