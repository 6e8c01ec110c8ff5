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

// Package restapi is a pure pass-through HTTP surface over
// internal/centroid: it holds no business logic of its own, only
// request decoding, engine dispatch and response encoding.
package restapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/radialguide/internal/centroid"
)

// Serve starts the API server on the given address.
// addr follows net/http conventions, e.g. ":8080"; empty uses gin's
// default of listening on 0.0.0.0:8080.
func Serve(engine *centroid.Engine, addr string) error {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/radprof", postRadProf(engine))
			v1.POST("/radsqprof", postRadSqProf(engine))
			v1.POST("/asymm", postAsymm(engine))
			v1.POST("/asymmweighted", postAsymmWeighted(engine))
		}
	}
	if addr == "" {
		return r.Run()
	}
	return r.Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// profileRequest is the wire shape shared by radprof and radsqprof:
// a flat row-major image, an optional flat row-major mask, the
// sampling center and radius, and the caller-requested output length.
type profileRequest struct {
	Height  int       `json:"height" binding:"required"`
	Width   int       `json:"width" binding:"required"`
	Data    []float32 `json:"data" binding:"required"`
	Mask    []bool    `json:"mask"`
	CenterI int       `json:"centerI"`
	CenterJ int       `json:"centerJ"`
	Radius  int       `json:"radius"`
	OutLen  int       `json:"outLen" binding:"required"`
}

type profileResponse struct {
	Mean      []float64 `json:"mean"`
	Variance  []float64 `json:"variance"`
	Count     []int32   `json:"count"`
	TotCounts float64   `json:"totCounts"`
	TotPts    int       `json:"totPts"`
}

func (r *profileRequest) toImageAndMask() (*centroid.Image, *centroid.Mask, error) {
	img := centroid.NewImage(r.Height, r.Width)
	if len(r.Data) != len(img.Data) {
		return nil, nil, fmt.Errorf("data length %d does not match height*width=%d", len(r.Data), len(img.Data))
	}
	copy(img.Data, r.Data)

	var mask *centroid.Mask
	if r.Mask != nil {
		mask = centroid.NewMask(r.Height, r.Width)
		if len(r.Mask) != len(mask.Data) {
			return nil, nil, fmt.Errorf("mask length %d does not match height*width=%d", len(r.Mask), len(mask.Data))
		}
		copy(mask.Data, r.Mask)
	}
	return img, mask, nil
}

func postRadProf(engine *centroid.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		img, mask, err := req.toImageAndMask()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mean := make([]float64, req.OutLen)
		variance := make([]float64, req.OutLen)
		count := make([]int32, req.OutLen)
		totCounts, totPts, err := engine.RadProf(img, mask, req.CenterI, req.CenterJ, req.Radius, mean, variance, count)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profileResponse{mean, variance, count, totCounts, totPts})
	}
}

func postRadSqProf(engine *centroid.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		img, mask, err := req.toImageAndMask()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mean := make([]float64, req.OutLen)
		variance := make([]float64, req.OutLen)
		count := make([]int32, req.OutLen)
		totCounts, totPts, err := engine.RadSqProf(img, mask, req.CenterI, req.CenterJ, req.Radius, mean, variance, count)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profileResponse{mean, variance, count, totCounts, totPts})
	}
}

type asymmRequest struct {
	Height  int       `json:"height" binding:"required"`
	Width   int       `json:"width" binding:"required"`
	Data    []float32 `json:"data" binding:"required"`
	Mask    []bool    `json:"mask"`
	CenterI int       `json:"centerI"`
	CenterJ int       `json:"centerJ"`
	Radius  int       `json:"radius"`
}

func (r *asymmRequest) toImageAndMask() (*centroid.Image, *centroid.Mask, error) {
	pr := profileRequest{Height: r.Height, Width: r.Width, Data: r.Data, Mask: r.Mask}
	return pr.toImageAndMask()
}

type asymmResponse struct {
	Asymm     float64 `json:"asymm"`
	TotCounts float64 `json:"totCounts"`
	TotPts    int     `json:"totPts"`
}

func postAsymm(engine *centroid.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req asymmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		img, mask, err := req.toImageAndMask()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asymm, totCounts, totPts, err := engine.RadAsymm(img, mask, req.CenterI, req.CenterJ, req.Radius)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, asymmResponse{asymm, totCounts, totPts})
	}
}

type asymmWeightedRequest struct {
	asymmRequest
	Bias      float64 `json:"bias"`
	ReadNoise float64 `json:"readNoise"`
	CcdGain   float64 `json:"ccdGain" binding:"required"`
}

func postAsymmWeighted(engine *centroid.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req asymmWeightedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		img, mask, err := req.toImageAndMask()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asymm, totCounts, totPts, err := engine.RadAsymmWeighted(img, mask, req.CenterI, req.CenterJ, req.Radius, req.Bias, req.ReadNoise, req.CcdGain)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, asymmResponse{asymm, totCounts, totPts})
	}
}
