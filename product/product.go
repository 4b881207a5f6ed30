package product

import (
	"errors"
	"fmt"
)

// MetadataRootName is the name of the root element of the metadata tree
const MetadataRootName = "metadata"

// ErrBandExists is returned when a band name is already used in the product
var ErrBandExists = errors.New("band already exists")

// ErrBandNotFound is returned when a band does not exist in the product
var ErrBandNotFound = errors.New("band not found")

// Product is a raster product: a set of bands sharing the same pixel grid,
// an optional geocoding and a metadata tree
type Product struct {
	Name      string
	Type      string
	Width     int
	Height    int
	GeoCoding GeoCoding
	Metadata  *MetadataElement

	bands []*Band
}

// New creates an empty product with an empty metadata root
func New(name, productType string, width, height int) *Product {
	return &Product{
		Name:     name,
		Type:     productType,
		Width:    width,
		Height:   height,
		Metadata: NewMetadataElement(MetadataRootName),
	}
}

// AddBand appends a band to the product. Band names are unique.
func (p *Product) AddBand(b *Band) error {
	if p.ContainsBand(b.Name) {
		return fmt.Errorf("AddBand[%s]: %w", b.Name, ErrBandExists)
	}
	p.bands = append(p.bands, b)
	return nil
}

// Band returns the band with the given name, or nil
func (p *Product) Band(name string) *Band {
	for _, b := range p.bands {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// ContainsBand returns true if the product has a band with the given name
func (p *Product) ContainsBand(name string) bool {
	return p.Band(name) != nil
}

// Bands returns the bands of the product, in order
func (p *Product) Bands() []*Band {
	return append([]*Band(nil), p.bands...)
}

// BandNames returns the names of the bands, in order
func (p *Product) BandNames() []string {
	names := make([]string, len(p.bands))
	for i, b := range p.bands {
		names[i] = b.Name
	}
	return names
}

// RenameBand renames a band of the product, keeping names unique
func (p *Product) RenameBand(oldName, newName string) error {
	b := p.Band(oldName)
	if b == nil {
		return fmt.Errorf("RenameBand[%s]: %w", oldName, ErrBandNotFound)
	}
	if oldName == newName {
		return nil
	}
	if p.ContainsBand(newName) {
		return fmt.Errorf("RenameBand[%s->%s]: %w", oldName, newName, ErrBandExists)
	}
	b.Name = newName
	return nil
}

// Summary returns a human-readable description of the product
func (p *Product) Summary() string {
	s := fmt.Sprintf("%s (%s) %dx%d\n", p.Name, p.Type, p.Width, p.Height)
	if HasGeoPos(p) {
		s += "- geocoded\n"
	} else {
		s += "- not geocoded\n"
	}
	s += fmt.Sprintf("- %d bands\n", len(p.bands))
	for _, b := range p.bands {
		virtual := ""
		if b.Virtual {
			virtual = " (virtual)"
		}
		s += fmt.Sprintf("   * %-40s %s%s\n", b.Name, b.Unit, virtual)
	}
	return s
}
