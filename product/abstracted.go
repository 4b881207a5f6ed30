package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Metadata elements and attributes used by the InSAR processing
const (
	AbstractMetadataRoot = "Abstracted_Metadata"
	SlaveMetadataRoot    = "Slave_Metadata"
	OrbitStateVectors    = "Orbit_State_Vectors"

	AttrProduct         = "PRODUCT"
	AttrProductType     = "PRODUCT_TYPE"
	AttrMission         = "MISSION"
	AttrAcquisitionMode = "ACQUISITION_MODE"
	AttrPass            = "PASS"
	AttrFirstLineTime   = "first_line_time"
	AttrLastLineTime    = "last_line_time"
)

// Date layouts
const (
	DefaultDateLayout = "2006-01-02"
	SNAPDateLayout    = "02Jan2006"
	snapUTCLayout     = "02-Jan-2006 15:04:05.000000"
)

// AbstractedMetadata returns the abstracted metadata element of the product, or nil
func AbstractedMetadata(p *Product) *MetadataElement {
	if p == nil {
		return nil
	}
	return p.Metadata.Element(AbstractMetadataRoot)
}

// AcquisitionDate returns the date of the first line of the acquisition described by the element,
// formatted with the layout (DefaultDateLayout if empty)
func AcquisitionDate(elem *MetadataElement, layout string) (string, error) {
	t, err := AcquisitionTime(elem)
	if err != nil {
		return "", err
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout), nil
}

// AcquisitionTime returns the time of the first line of the acquisition described by the element
func AcquisitionTime(elem *MetadataElement) (time.Time, error) {
	if elem == nil {
		return time.Time{}, fmt.Errorf("AcquisitionTime: metadata element not found")
	}
	a := elem.Attribute(AttrFirstLineTime)
	if a == nil || strings.TrimSpace(a.Value) == "" {
		return time.Time{}, fmt.Errorf("AcquisitionTime[%s]: attribute %s not found", elem.Name, AttrFirstLineTime)
	}
	return ParseUTC(a.Value)
}

// ParseUTC parses a date in SNAP UTC format (02-JAN-2006 15:04:05.000000) or in any common format
func ParseUTC(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(snapUTCLayout, titleMonth(value)); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseUTC[%s]: %w", value, err)
	}
	return t, nil
}

// titleMonth converts "02-JAN-2006 ..." to "02-Jan-2006 ..."
func titleMonth(value string) string {
	if len(value) < 7 || value[2] != '-' || value[6] != '-' {
		return value
	}
	return value[:4] + strings.ToLower(value[4:6]) + value[6:]
}
