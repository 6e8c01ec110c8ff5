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

// RadSqProf bins visited pixels directly by squared distance dSq from
// (iCtr,jCtr): bin b==dSq, skipping any pixel whose dSq would index past
// the caller's output length. Output buffers must have length >= rad*rad+1.
func (e *Engine) RadSqProf(img *Image, mask *Mask, iCtr, jCtr, rad int, mean, variance []float64, count []int32) (totCounts float64, totPts int, err error) {
	if err := validateProfArgs(img, mask, mean, variance, count); err != nil {
		return 0, 0, err
	}
	if rad < 0 {
		return 0, 0, newError(InvalidArgument, "radSqProf: rad %d < 0", rad)
	}
	reqMin := rad*rad + 1
	if len(mean) < reqMin {
		return 0, 0, newError(InvalidArgument, "radSqProf: output length %d below required minimum %d", len(mean), reqMin)
	}

	// Unlike radProf, the populated range here tracks the caller's actual
	// buffer length rather than a fixed function of rad: a pixel is only
	// skipped once its squared distance would index past what the caller
	// gave us, not merely for exceeding rad*rad. A buffer longer than the
	// required minimum therefore picks up additional, larger-dSq pixels
	// from the (square, not circular) iteration box.
	outLen := len(mean)
	zeroOutputs(mean, variance, count, outLen)

	binFn := func(dSq int) (int, bool, error) {
		if dSq >= outLen {
			return 0, false, nil
		}
		return dSq, true, nil
	}
	totCounts, totPts, err = accumulate(img, mask, iCtr, jCtr, rad, mean, variance, count, binFn)
	if err != nil {
		return 0, 0, err
	}
	normalize(mean, variance, count, outLen)
	return totCounts, totPts, nil
}

// RadProf bins visited pixels by radial index via the engine's radial
// index map, triggering lazy (re)growth of that map if needed. Output
// buffers must have length >= rad+2.
func (e *Engine) RadProf(img *Image, mask *Mask, iCtr, jCtr, rad int, mean, variance []float64, count []int32) (totCounts float64, totPts int, err error) {
	if err := validateProfArgs(img, mask, mean, variance, count); err != nil {
		return 0, 0, err
	}
	if rad < 0 {
		return 0, 0, newError(InvalidArgument, "radProf: rad %d < 0", rad)
	}
	desOutLen := rad + 2
	if len(mean) < desOutLen {
		return 0, 0, newError(InvalidArgument, "radProf: output length %d below required minimum %d", len(mean), desOutLen)
	}

	e.ridx.ensureCapacity(minCapacityForRad(rad))

	zeroOutputs(mean, variance, count, len(mean))

	radSq := rad * rad
	table := e.ridx.table
	binFn := func(dSq int) (int, bool, error) {
		if dSq > radSq {
			return 0, false, nil
		}
		b := int(table[dSq])
		if b >= desOutLen {
			return 0, false, newError(InternalInvariant, "radIndByRadSq[%d]=%d exceeds populated region %d", dSq, b, desOutLen)
		}
		return b, true, nil
	}
	totCounts, totPts, err = accumulate(img, mask, iCtr, jCtr, rad, mean, variance, count, binFn)
	if err != nil {
		return 0, 0, err
	}
	normalize(mean, variance, count, desOutLen)
	return totCounts, totPts, nil
}

// radProfInto runs RadProf against the engine's own accumulator buffers
// instead of caller-supplied output, for use by the asymmetry reductions.
// Returns the buffer slices (sized rad+2) alongside the usual results.
func (e *Engine) radProfInto(img *Image, mask *Mask, iCtr, jCtr, rad int) (mean, variance []float64, count []int32, totCounts float64, totPts int, err error) {
	n := rad + 2
	if err := e.accum.ensureCapacity(n); err != nil {
		return nil, nil, nil, 0, 0, err
	}
	mean, variance, count = e.accum.sum[:n], e.accum.sumSq[:n], e.accum.count[:n]
	totCounts, totPts, err = e.RadProf(img, mask, iCtr, jCtr, rad, mean, variance, count)
	return mean, variance, count, totCounts, totPts, err
}

// accumulate implements the shared sweep skeleton: iterate the
// axial-aligned box clipped to the image, skip masked pixels, map each
// visited pixel's squared distance to a bin via binFn, and accumulate
// raw sum / sum-of-squares / count into mean / variance / count
// respectively (normalized into mean/variance in a later pass).
func accumulate(img *Image, mask *Mask, iCtr, jCtr, rad int, mean, variance []float64, count []int32, binFn func(dSq int) (int, bool, error)) (totCounts float64, totPts int, err error) {
	iLo, iHi := clampRange(iCtr-rad, iCtr+rad, img.Height-1)
	jLo, jHi := clampRange(jCtr-rad, jCtr+rad, img.Width-1)

	for ii := iLo; ii <= iHi; ii++ {
		di := ii - iCtr
		for jj := jLo; jj <= jHi; jj++ {
			if mask != nil && mask.At(ii, jj) {
				continue
			}
			dj := jj - jCtr
			dSq := di*di + dj*dj
			b, ok, ferr := binFn(dSq)
			if ferr != nil {
				return 0, 0, ferr
			}
			if !ok {
				continue
			}
			d := float64(img.At(ii, jj))
			mean[b] += d
			variance[b] += d * d
			count[b]++
			totCounts += d
			totPts++
		}
	}
	return totCounts, totPts, nil
}

// clampRange clips [lo,hi] to [0,maxIdx], possibly yielding an empty
// range (hi<lo) when the requested window misses the image entirely.
func clampRange(lo, hi, maxIdx int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > maxIdx {
		hi = maxIdx
	}
	return lo, hi
}

// normalize turns the raw sum / sum-of-squares accumulated in mean /
// variance into the finalized one-pass mean and population variance for
// every bin in [0,desOutLen) with a nonzero count. Bins with count==0
// are left at zero, matching the invariant in spec section 3. Negative
// variance from floating-point cancellation on near-constant bins is
// clamped to zero.
func normalize(mean, variance []float64, count []int32, desOutLen int) {
	for b := 0; b < desOutLen; b++ {
		if count[b] == 0 {
			continue
		}
		c := float64(count[b])
		m := mean[b] / c
		v := variance[b]/c - m*m
		if v < 0 {
			v = 0
		}
		mean[b] = m
		variance[b] = v
	}
}

func zeroOutputs(mean, variance []float64, count []int32, outLen int) {
	for i := 0; i < outLen; i++ {
		mean[i], variance[i], count[i] = 0, 0, 0
	}
}

func validateProfArgs(img *Image, mask *Mask, mean, variance []float64, count []int32) error {
	if img == nil {
		return newError(InvalidArgument, "image is nil")
	}
	if err := sameShape(img.Height, img.Width, mask); err != nil {
		return err
	}
	if len(mean) != len(variance) || len(mean) != len(count) {
		return newError(InvalidArgument, "output buffers have mismatched lengths mean=%d variance=%d count=%d", len(mean), len(variance), len(count))
	}
	return nil
}
