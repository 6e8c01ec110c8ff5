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

// Image is a 2-D array of CCD pixel intensities in row-major order,
// addressed data[i][j] with i the slow (row) axis and j the fast
// (column) axis. Height and Width are bound to Data and cannot change
// mid-call; a fresh Image must be constructed to change shape.
type Image struct {
	Height int
	Width  int
	Data   []float32 // row-major, length Height*Width
}

// NewImage allocates a zeroed image of the given shape.
func NewImage(height, width int) *Image {
	return &Image{Height: height, Width: width, Data: make([]float32, height*width)}
}

// At returns data[i][j]. Callers must keep i,j within bounds; the profile
// kernels only ever call this inside an already-clipped iteration box.
func (img *Image) At(i, j int) float32 {
	return img.Data[i*img.Width+j]
}

func (img *Image) Set(i, j int, v float32) {
	img.Data[i*img.Width+j] = v
}

// Mask is an optional 2-D boolean array, same shape as the Image it
// accompanies. True means "ignore this pixel". A nil *Mask is
// semantically distinct from an all-false mask but functionally
// equivalent: every pixel is visited.
type Mask struct {
	Height int
	Width  int
	Data   []bool // row-major, length Height*Width
}

// NewMask allocates an all-false (everything valid) mask of the given shape.
func NewMask(height, width int) *Mask {
	return &Mask{Height: height, Width: width, Data: make([]bool, height*width)}
}

func (m *Mask) At(i, j int) bool {
	return m.Data[i*m.Width+j]
}

func (m *Mask) Set(i, j int, ignore bool) {
	m.Data[i*m.Width+j] = ignore
}

func (m *Mask) shape() (int, int) { return m.Height, m.Width }

func sameShape(imgH, imgW int, m *Mask) error {
	if m == nil {
		return nil
	}
	if h, w := m.shape(); h != imgH || w != imgW {
		return newError(InvalidArgument, "mask shape %dx%d does not match image shape %dx%d", h, w, imgH, imgW)
	}
	return nil
}
