package product

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Band is a raster layer of a product
type Band struct {
	Name        string
	Unit        string
	Description string
	NoData      float64
	NoDataUsed  bool // NoData is only a valid-pixel mask if NoDataUsed is set
	Virtual     bool // Virtual bands are derived from other bands

	data *mat.Dense // rows: height, cols: width
}

// NewBand creates a band of width x height pixels initialized to zero
func NewBand(name, unit string, width, height int) *Band {
	b := &Band{Name: name, Unit: unit}
	if width > 0 && height > 0 {
		b.data = mat.NewDense(height, width, nil)
	}
	return b
}

// NewBandFromData creates a band holding the given raster
func NewBandFromData(name, unit string, data *mat.Dense) *Band {
	return &Band{Name: name, Unit: unit, data: data}
}

// Data returns the raster of the band (nil if the band has no raster)
func (b *Band) Data() *mat.Dense {
	return b.data
}

// SetData replaces the raster of the band
func (b *Band) SetData(data *mat.Dense) {
	b.data = data
}

// Dims returns the width and the height of the raster
func (b *Band) Dims() (width, height int) {
	if b.data == nil {
		return 0, 0
	}
	height, width = b.data.Dims()
	return width, height
}

// Copy returns a deep copy of the band. The raster of the copy is independent.
func (b *Band) Copy() *Band {
	c := *b
	if b.data != nil {
		c.data = mat.DenseCopyOf(b.data)
	}
	return &c
}

// BandStats are basic statistics of the valid pixels of a band
type BandStats struct {
	Min, Max, Mean float64
	Count          int
}

// Stats computes the statistics of the band, ignoring NaN values and NoData values if NoDataUsed
func (b *Band) Stats() (BandStats, error) {
	if b.data == nil {
		return BandStats{}, fmt.Errorf("Stats[%s]: no raster data", b.Name)
	}
	rows, cols := b.data.Dims()
	valid := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for _, v := range b.data.RawRowView(r) {
			if math.IsNaN(v) || (b.NoDataUsed && v == b.NoData) {
				continue
			}
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return BandStats{}, nil
	}
	return BandStats{
		Min:   floats.Min(valid),
		Max:   floats.Max(valid),
		Mean:  floats.Sum(valid) / float64(len(valid)),
		Count: len(valid),
	}, nil
}
