// Package productio reads and writes products in a simple directory format:
//
//	<name>.json         manifest (dimensions, geocoding, bands, metadata tree)
//	<name>.data/*.img   one raw little-endian float32 raster per band
package productio

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/geocube-insar/product"
	"gonum.org/v1/gonum/mat"
)

// Extensions of the files
const (
	ManifestExtension = "json"
	DataExtension     = "data"
	rasterExtension   = "img"
)

const (
	geoCodingAffine   = "affine"
	geoCodingDeclared = "declared"
)

type manifest struct {
	Name      string                   `json:"name"`
	Type      string                   `json:"type"`
	Width     int                      `json:"width"`
	Height    int                      `json:"height"`
	GeoCoding *geoCodingJSON           `json:"geocoding,omitempty"`
	Bands     []bandJSON               `json:"bands"`
	Metadata  *product.MetadataElement `json:"metadata"`
}

type geoCodingJSON struct {
	Type         string      `json:"type"`
	CRS          string      `json:"crs,omitempty"`
	GeoTransform *[6]float64 `json:"geotransform,omitempty"`
}

type bandJSON struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
	NoData      float64 `json:"nodata"`
	NoDataUsed  bool    `json:"nodata_used,omitempty"`
	Virtual     bool    `json:"virtual,omitempty"`
	File        string  `json:"file"`
}

// DataDir returns the directory of the rasters of the product described by the manifest
func DataDir(manifestPath string) string {
	return strings.TrimSuffix(manifestPath, filepath.Ext(manifestPath)) + "." + DataExtension
}

// Find returns the path of the only manifest of the directory
func Find(dir string) (string, error) {
	if strings.HasSuffix(dir, "."+ManifestExtension) {
		return dir, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*."+ManifestExtension))
	if err != nil {
		return "", fmt.Errorf("Find[%s]: %w", dir, err)
	}
	if len(files) != 1 {
		return "", fmt.Errorf("Find[%s]: expecting exactly one product manifest, found %d", dir, len(files))
	}
	return files[0], nil
}

// Write writes the product: the manifest in manifestPath and the rasters in DataDir(manifestPath)
func Write(manifestPath string, p *product.Product) error {
	m := manifest{
		Name:     p.Name,
		Type:     p.Type,
		Width:    p.Width,
		Height:   p.Height,
		Metadata: p.Metadata,
	}
	switch gc := p.GeoCoding.(type) {
	case nil:
	case *product.AffineGeoCoding:
		gt := gc.GeoTransform
		m.GeoCoding = &geoCodingJSON{Type: geoCodingAffine, CRS: gc.CRS, GeoTransform: &gt}
	case *product.DeclaredGeoCoding:
		m.GeoCoding = &geoCodingJSON{Type: geoCodingDeclared, CRS: gc.CRS}
	default:
		return fmt.Errorf("Write[%s]: unsupported geocoding %T", p.Name, gc)
	}

	dataDir := DataDir(manifestPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("Write[%s].MkdirAll: %w", p.Name, err)
	}
	for i, b := range p.Bands() {
		file := fmt.Sprintf("%03d_%s.%s", i, sanitize(b.Name), rasterExtension)
		if err := writeRaster(filepath.Join(dataDir, file), b); err != nil {
			return fmt.Errorf("Write[%s].%w", p.Name, err)
		}
		m.Bands = append(m.Bands, bandJSON{
			Name:        b.Name,
			Unit:        b.Unit,
			Description: b.Description,
			NoData:      b.NoData,
			NoDataUsed:  b.NoDataUsed,
			Virtual:     b.Virtual,
			File:        file,
		})
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("Write[%s].Marshal: %w", p.Name, err)
	}
	if err := os.WriteFile(manifestPath, mb, 0644); err != nil {
		return fmt.Errorf("Write[%s].WriteFile: %w", p.Name, err)
	}
	return nil
}

// Read reads the product described by the manifest
func Read(manifestPath string) (*product.Product, error) {
	mb, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("Read[%s]: %w", manifestPath, err)
	}
	var m manifest
	if err := json.Unmarshal(mb, &m); err != nil {
		return nil, fmt.Errorf("Read[%s].Unmarshal: %w", manifestPath, err)
	}

	p := product.New(m.Name, m.Type, m.Width, m.Height)
	if m.Metadata != nil {
		p.Metadata = m.Metadata
	}
	if m.GeoCoding != nil {
		switch m.GeoCoding.Type {
		case geoCodingAffine:
			if m.GeoCoding.GeoTransform == nil {
				return nil, fmt.Errorf("Read[%s]: affine geocoding without geotransform", manifestPath)
			}
			p.GeoCoding = product.NewAffineGeoCoding(m.GeoCoding.CRS, *m.GeoCoding.GeoTransform)
		case geoCodingDeclared:
			p.GeoCoding = &product.DeclaredGeoCoding{CRS: m.GeoCoding.CRS}
		default:
			return nil, fmt.Errorf("Read[%s]: unknown geocoding type '%s'", manifestPath, m.GeoCoding.Type)
		}
	}

	dataDir := DataDir(manifestPath)
	for _, bj := range m.Bands {
		data, err := readRaster(filepath.Join(dataDir, filepath.Base(bj.File)), m.Width, m.Height)
		if err != nil {
			return nil, fmt.Errorf("Read[%s].band[%s].%w", manifestPath, bj.Name, err)
		}
		b := product.NewBandFromData(bj.Name, bj.Unit, data)
		b.Description = bj.Description
		b.NoData = bj.NoData
		b.NoDataUsed = bj.NoDataUsed
		b.Virtual = bj.Virtual
		if err := p.AddBand(b); err != nil {
			return nil, fmt.Errorf("Read[%s].%w", manifestPath, err)
		}
	}
	return p, nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func writeRaster(path string, b *product.Band) error {
	if b.Data() == nil {
		return fmt.Errorf("writeRaster[%s]: no raster data", b.Name)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeRaster: %w", err)
	}
	w := bufio.NewWriter(f)
	rows, cols := b.Data().Dims()
	buf := make([]byte, 4*cols)
	for r := 0; r < rows; r++ {
		for c, v := range b.Data().RawRowView(r) {
			binary.LittleEndian.PutUint32(buf[4*c:], math.Float32bits(float32(v)))
		}
		if _, err := w.Write(buf); err != nil {
			f.Close()
			return fmt.Errorf("writeRaster: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writeRaster.Flush: %w", err)
	}
	return f.Close()
}

func readRaster(path string, width, height int) (*mat.Dense, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("readRaster: invalid dimensions %dx%d", width, height)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("readRaster: %w", err)
	}
	defer f.Close()

	data := make([]float64, width*height)
	buf := make([]byte, 4*width)
	r := bufio.NewReader(f)
	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("readRaster[%s]: row %d: %w", path, row, err)
		}
		for c := 0; c < width; c++ {
			data[row*width+c] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*c:])))
		}
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("readRaster[%s]: file is larger than %dx%d float32", path, width, height)
	}
	return mat.NewDense(height, width, data), nil
}
