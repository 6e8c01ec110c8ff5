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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/radialguide/internal/centroid"
	"github.com/mlnoga/radialguide/internal/fits"
	"github.com/mlnoga/radialguide/internal/obslog"
	"github.com/mlnoga/radialguide/internal/restapi"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var image = flag.String("image", "", "load guide frame from `file` (FITS, optionally .gz)")
var mask = flag.String("mask", "", "load bad pixel mask from `file` (FITS, nonzero=masked)")

var centerI = flag.Int64("centerI", 0, "row of the sampling center")
var centerJ = flag.Int64("centerJ", 0, "column of the sampling center")
var radius = flag.Int64("radius", 8, "sampling radius in pixels")

var weighted = flag.Bool("weighted", false, "compute the noise-weighted asymmetry reduction instead of the unweighted one")
var bias = flag.Float64("bias", 0, "CCD bias level in ADU, for the weighted asymmetry reduction")
var readNoise = flag.Float64("readNoise", 0, "CCD read noise in electrons, for the weighted asymmetry reduction")
var ccdGain = flag.Float64("ccdGain", 1, "CCD gain in electrons per ADU, for the weighted asymmetry reduction")

var serve = flag.Bool("serve", false, "serve the HTTP API instead of running a single measurement")
var port = flag.Int64("port", 8080, "port for serving the HTTP API")
var chroot = flag.String("chroot", "", "directory to chroot and chdir to when serving HTTP. must be run as root")
var setuid = flag.Int64("setuid", -1, "user id number to setuid to when serving HTTP. must be run as root")

var previewOut = flag.String("previewOut", "", "export a 16-bit TIFF preview of the sampled region to `file`")
var previewMin = flag.Float64("previewMin", 0, "black point for -previewOut, in ADU")
var previewMax = flag.Float64("previewMax", 65535, "white point for -previewOut, in ADU")
var previewGamma = flag.Float64("previewGamma", 1, "display gamma for -previewOut")

var log = flag.String("log", "", "tee log output to `file` in addition to stdout")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Radialguide Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (measure|info|serve|legal|version)

Commands:
  measure Load -image (and optional -mask), sample a radial profile and
          asymmetry reduction at (-centerI,-centerJ,-radius), and print
          the result. If -previewOut is set, also export a 16-bit TIFF
          of the sampled region.
  info    Load -image header only and print its dimensions, without
          decoding pixel data.
  serve   Serve the HTTP API on -port.
  legal   Show license and attribution information.
  version Show version information.

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log != "" {
		if err := obslog.EnableFile(*log); err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open log file %s: %s\n", *log, err)
			os.Exit(1)
		}
		defer obslog.Sync()
	}

	args := flag.Args()
	cmd := "measure"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "legal":
		fmt.Print(legal)
		return
	case "version":
		fmt.Printf("radialguide %s, %d MiB physical memory detected\n", version, totalMiBs)
		fmt.Printf("CPU %s %s, AVX2=%v\n", cpuid.CPU.VendorID, cpuid.CPU.BrandName, cpuid.CPU.AVX2())
		return
	case "help", "?":
		flag.Usage()
		return
	case "info":
		if err := printInfo(*image); err != nil {
			obslog.Fatalf("Error reading %s: %s\n", *image, err)
		}
		return
	}

	engine := centroid.NewEngine()
	defer engine.Close()

	if cmd == "serve" || *serve {
		restapi.MakeSandbox(*chroot, int(*setuid))
		addr := fmt.Sprintf(":%d", *port)
		obslog.Printf("Serving radialguide API on %s\n", addr)
		if err := restapi.Serve(engine, addr); err != nil {
			obslog.Fatalf("Error serving HTTP API: %s\n", err)
		}
		return
	}

	if cmd != "measure" {
		flag.Usage()
		os.Exit(1)
	}

	img, maskImg, err := loadFrame(*image, *mask)
	if err != nil {
		obslog.Fatalf("Error loading frame: %s\n", err)
	}

	runMeasurement(engine, img, maskImg)
}

// printInfo loads only the header of imagePath and prints its shape,
// without decoding pixel data.
func printInfo(imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("-image is required")
	}
	f, err := fits.NewImageHeaderFromFile(imagePath, 0, os.Stdout)
	if err != nil {
		return err
	}
	obslog.Printf("%s: %s, bitpix=%d, exposure=%gs\n", imagePath, f.DimensionsToString(), f.Bitpix, f.Exposure)
	return nil
}

func loadFrame(imagePath, maskPath string) (*centroid.Image, *centroid.Mask, error) {
	if imagePath == "" {
		return nil, nil, fmt.Errorf("-image is required")
	}

	var logWriter io.Writer = os.Stdout
	f, err := fits.NewImageFromFile(imagePath, 0, logWriter)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", imagePath, err)
	}
	img, err := f.ToCentroidImage()
	if err != nil {
		return nil, nil, err
	}

	if maskPath == "" {
		return img, nil, nil
	}
	mf, err := fits.NewImageFromFile(maskPath, 1, logWriter)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", maskPath, err)
	}
	maskImg, err := mf.ToCentroidImage()
	if err != nil {
		return nil, nil, err
	}
	mask := centroid.NewMask(maskImg.Height, maskImg.Width)
	for i, v := range maskImg.Data {
		mask.Data[i] = v != 0
	}
	return img, mask, nil
}

// exportPreview crops the (2*rad+1)-square region around (ci,cj) out of
// img, clipping to zero outside the image bounds, and writes it as a
// 16-bit grayscale TIFF for visual inspection of the sampled area.
func exportPreview(img *centroid.Image, ci, cj, rad int, path string, min, max, gamma float64) error {
	size := 2*rad + 1
	data := make([]float32, size*size)
	for di := 0; di < size; di++ {
		i := ci - rad + di
		if i < 0 || i >= img.Height {
			continue
		}
		for dj := 0; dj < size; dj++ {
			j := cj - rad + dj
			if j < 0 || j >= img.Width {
				continue
			}
			data[di*size+dj] = img.At(i, j)
		}
	}
	f := fits.NewImageFromNaxisn([]int32{int32(size), int32(size)}, data)
	return f.WriteTIFF16ToFile(path, float32(min), float32(max), float32(gamma))
}

func runMeasurement(engine *centroid.Engine, img *centroid.Image, mask *centroid.Mask) {
	ci, cj, rad := int(*centerI), int(*centerJ), int(*radius)

	if *previewOut != "" {
		if err := exportPreview(img, ci, cj, rad, *previewOut, *previewMin, *previewMax, *previewGamma); err != nil {
			obslog.Fatalf("Error exporting preview: %s\n", err)
		}
		obslog.Printf("Wrote preview to %s\n", *previewOut)
	}

	if *weighted {
		asymm, totCounts, totPts, err := engine.RadAsymmWeighted(img, mask, ci, cj, rad, *bias, *readNoise, *ccdGain)
		if err != nil {
			obslog.Fatalf("Error computing weighted asymmetry: %s\n", err)
		}
		obslog.Printf("radAsymmWeighted=%g  totCounts=%g  totPts=%d\n", asymm, totCounts, totPts)
		return
	}

	asymm, totCounts, totPts, err := engine.RadAsymm(img, mask, ci, cj, rad)
	if err != nil {
		obslog.Fatalf("Error computing asymmetry: %s\n", err)
	}
	obslog.Printf("radAsymm=%g  totCounts=%g  totPts=%d\n", asymm, totCounts, totPts)
}
