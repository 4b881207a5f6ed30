package product

import (
	"errors"
	"fmt"

	"github.com/go-spatial/geom"
)

// ErrNoGeoPos is returned by a geocoding that cannot convert pixels to geographic coordinates
var ErrNoGeoPos = errors.New("geocoding cannot compute geographic positions")

// GeoCoding maps pixel coordinates to geographic coordinates
type GeoCoding interface {
	// CanGetGeoPos returns true if PixelToGeo is supported
	CanGetGeoPos() bool
	// PixelToGeo returns the geographic position (x=lon, y=lat) of the pixel (x=column, y=row)
	PixelToGeo(x, y float64) (geom.Point, error)
	// Clone returns an independent copy of the geocoding
	Clone() GeoCoding
}

// AffineGeoCoding is a geocoding defined by a GDAL-like geotransform:
//
//	lon = GT[0] + x*GT[1] + y*GT[2]
//	lat = GT[3] + x*GT[4] + y*GT[5]
type AffineGeoCoding struct {
	CRS          string
	GeoTransform [6]float64
}

// NewAffineGeoCoding creates an AffineGeoCoding
func NewAffineGeoCoding(crs string, gt [6]float64) *AffineGeoCoding {
	return &AffineGeoCoding{CRS: crs, GeoTransform: gt}
}

// CanGetGeoPos implements GeoCoding
func (g *AffineGeoCoding) CanGetGeoPos() bool {
	return g.GeoTransform[1] != 0 || g.GeoTransform[2] != 0
}

// PixelToGeo implements GeoCoding
func (g *AffineGeoCoding) PixelToGeo(x, y float64) (geom.Point, error) {
	if !g.CanGetGeoPos() {
		return geom.Point{}, ErrNoGeoPos
	}
	gt := g.GeoTransform
	return geom.Point{gt[0] + x*gt[1] + y*gt[2], gt[3] + x*gt[4] + y*gt[5]}, nil
}

// Clone implements GeoCoding
func (g *AffineGeoCoding) Clone() GeoCoding {
	c := *g
	return &c
}

// DeclaredGeoCoding is a geolocation system that is known (e.g. its CRS) but
// that does not support pixel to geographic conversion
type DeclaredGeoCoding struct {
	CRS string
}

// CanGetGeoPos implements GeoCoding
func (g *DeclaredGeoCoding) CanGetGeoPos() bool { return false }

// PixelToGeo implements GeoCoding
func (g *DeclaredGeoCoding) PixelToGeo(x, y float64) (geom.Point, error) {
	return geom.Point{}, ErrNoGeoPos
}

// Clone implements GeoCoding
func (g *DeclaredGeoCoding) Clone() GeoCoding {
	c := *g
	return &c
}

// HasGeoPos returns true if the product has a geocoding able to compute geographic positions
func HasGeoPos(p *Product) bool {
	return p != nil && p.GeoCoding != nil && p.GeoCoding.CanGetGeoPos()
}

// Footprint returns the polygon defined by the four corners of the scene
func (p *Product) Footprint() (geom.Polygon, error) {
	if !HasGeoPos(p) {
		return nil, fmt.Errorf("Footprint[%s]: %w", p.Name, ErrNoGeoPos)
	}
	w, h := float64(p.Width), float64(p.Height)
	corners := [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}
	ring := make([][2]float64, 0, len(corners))
	for _, c := range corners {
		pt, err := p.GeoCoding.PixelToGeo(c[0], c[1])
		if err != nil {
			return nil, fmt.Errorf("Footprint[%s].PixelToGeo: %w", p.Name, err)
		}
		ring = append(ring, [2]float64(pt))
	}
	return geom.Polygon{ring}, nil
}
