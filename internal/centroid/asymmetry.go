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

	"gonum.org/v1/gonum/floats"
)

// RadAsymm is the unweighted radial asymmetry: the total within-annulus
// squared scatter, summed over every bin including empty ones (which
// contribute zero). Minimised when the annuli around (iCtr,jCtr) are
// homogeneous, i.e. the center sits on a radially symmetric source.
func (e *Engine) RadAsymm(img *Image, mask *Mask, iCtr, jCtr, rad int) (asymm, totCounts float64, totPts int, err error) {
	_, variance, count, totCounts, totPts, err := e.radProfInto(img, mask, iCtr, jCtr, rad)
	if err != nil {
		return 0, 0, 0, err
	}
	if totPts <= 0 {
		return 0, totCounts, totPts, nil
	}

	n := rad + 2
	contrib := make([]float64, n)
	for b := 0; b < n; b++ {
		contrib[b] = variance[b] * float64(count[b])
	}
	return floats.Sum(contrib), totCounts, totPts, nil
}

// RadAsymmWeighted is the asymmetry reduction weighted by expected
// per-bin noise derived from CCD gain, read noise and bias. Bins whose
// observed scatter is consistent with photon-plus-read noise contribute
// little; bins that depart from that model (because the center is off
// the true light distribution) dominate the sum.
func (e *Engine) RadAsymmWeighted(img *Image, mask *Mask, iCtr, jCtr, rad int, bias, readNoise, ccdGain float64) (asymm, totCounts float64, totPts int, err error) {
	mean, variance, count, totCounts, totPts, err := e.radProfInto(img, mask, iCtr, jCtr, rad)
	if err != nil {
		return 0, 0, 0, err
	}
	if totPts <= 0 {
		return 0, totCounts, totPts, nil
	}

	n := rad + 2

	// Bias floor: never trust a caller-supplied bias above any observed
	// bin mean, or mean-bias would go negative and poison the noise model.
	// Empty bins carry mean=0 and are excluded, or any off-center or
	// partly-masked sample would force bias to zero regardless of the
	// populated bins' actual levels.
	for b := 0; b < n; b++ {
		if count[b] > 0 && mean[b] < bias {
			bias = mean[b]
		}
	}

	readNoiseOverGain := readNoise / ccdGain
	for b := 0; b < n; b++ {
		if count[b] <= 1 {
			continue // spec: skip but still counted toward totPts/totCounts above
		}
		pixNoiseSq := readNoiseOverGain*readNoiseOverGain + (mean[b]-bias)/ccdGain
		weight := pixNoiseSq * math.Sqrt(2*float64(count[b]-1)) / float64(count[b])
		asymm += variance[b] / weight
	}
	return asymm, totCounts, totPts, nil
}
