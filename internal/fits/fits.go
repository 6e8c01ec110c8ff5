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

// Package fits reads monochrome FITS frames for the guide camera
// pipeline: header parsing, pixel decode for the common BITPIX
// encodings, and a preview TIFF16 export of a processed region. It
// does not write FITS files.
package fits

import (
	"fmt"
	"strings"

	"github.com/mlnoga/radialguide/internal/centroid"
)

// A monochrome FITS image.
// Spec here:   https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf
// Primer here: https://fits.gsfc.nasa.gov/fits_primer.html
type Image struct {
	ID       int    // Sequential ID number, for log output.
	FileName string // Original file name, if any, for log output.

	Header Header // The header with all keys, values, comments, history entries etc.
	Bitpix int32  // Bits per pixel value from the header. Positive values are integral, negative floating.
	Bzero  float32
	Bscale float32
	Naxisn []int32 // Axis dimensions. Most quickly varying dimension first (i.e. X,Y)
	Pixels int32   // Number of pixels in the image. Product of Naxisn[]

	Data []float32 // The image data, row-major with Naxisn[0] as row stride

	Exposure float32 // Image exposure in seconds
}

// Creates a FITS image initialized with an empty header
func NewImage() *Image {
	return &Image{
		Header: NewHeader(),
		Bscale: 1,
	}
}

// Creates a FITS image from given naxisn. Data is not copied, allocated if nil. naxisn is deep copied
func NewImageFromNaxisn(naxisn []int32, data []float32) *Image {
	numPixels := int32(1)
	for _, naxis := range naxisn {
		numPixels *= naxis
	}
	if data == nil {
		data = make([]float32, numPixels)
	}
	return &Image{
		Header: NewHeader(),
		Bitpix: -32,
		Bzero:  0,
		Bscale: 1,
		Naxisn: append([]int32(nil), naxisn...), // clone slice
		Pixels: numPixels,
		Data:   data,
	}
}

// FITS header data
type Header struct {
	Bools    map[string]bool
	Ints     map[string]int32
	Floats   map[string]float32
	Strings  map[string]string
	Dates    map[string]string
	Comments []string
	History  []string
	End      bool
	Length   int32
}

// Creates a FITS header initialized with empty maps and arrays
func NewHeader() Header {
	return Header{
		Bools:    make(map[string]bool),
		Ints:     make(map[string]int32),
		Floats:   make(map[string]float32),
		Strings:  make(map[string]string),
		Dates:    make(map[string]string),
		Comments: make([]string, 0),
		History:  make([]string, 0),
		End:      false,
	}
}

const fitsBlockSize int = 2880 // Block size of FITS header and data units
const HeaderLineSize int = 80  // Line size of a FITS header

func (f *Image) DimensionsToString() string {
	b := strings.Builder{}
	for i, naxis := range f.Naxisn {
		if i > 0 {
			fmt.Fprintf(&b, "x%d", naxis)
		} else {
			fmt.Fprintf(&b, "%d", naxis)
		}
	}
	return b.String()
}

// ToCentroidImage adapts the decoded frame to the shape the centroid
// engine operates on. Only 2-D frames are supported; anything else is
// a caller error, since the engine has no notion of a third axis.
func (f *Image) ToCentroidImage() (*centroid.Image, error) {
	if len(f.Naxisn) != 2 {
		return nil, fmt.Errorf("fits: expected a 2-D frame, got %d axes (%s)", len(f.Naxisn), f.DimensionsToString())
	}
	width, height := int(f.Naxisn[0]), int(f.Naxisn[1])
	if len(f.Data) != width*height {
		return nil, fmt.Errorf("fits: data length %d does not match dimensions %s", len(f.Data), f.DimensionsToString())
	}
	img := centroid.NewImage(height, width)
	copy(img.Data, f.Data)
	return img, nil
}

// EqualInt32Slice tells whether a and b contain the same elements.
// A nil argument is equivalent to an empty slice.
func EqualInt32Slice(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
