package product

import (
	"fmt"
	"strings"
)

// MetadataAttribute is a named scalar value of a metadata element
type MetadataAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// MetadataElement is a node of the metadata tree of a product.
// Attributes and sub-elements keep their insertion order.
type MetadataElement struct {
	Name       string               `json:"name"`
	Attributes []*MetadataAttribute `json:"attributes,omitempty"`
	Elements   []*MetadataElement   `json:"elements,omitempty"`
}

// NewMetadataElement creates an empty element
func NewMetadataElement(name string) *MetadataElement {
	return &MetadataElement{Name: name}
}

// AddElement appends a sub-element and returns it
func (e *MetadataElement) AddElement(child *MetadataElement) *MetadataElement {
	e.Elements = append(e.Elements, child)
	return child
}

// Element returns the first sub-element with the given name, or nil
func (e *MetadataElement) Element(name string) *MetadataElement {
	if e == nil {
		return nil
	}
	for _, c := range e.Elements {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ElementAt returns the i-th sub-element, or nil
func (e *MetadataElement) ElementAt(i int) *MetadataElement {
	if e == nil || i < 0 || i >= len(e.Elements) {
		return nil
	}
	return e.Elements[i]
}

// Attribute returns the attribute with the given name, or nil
func (e *MetadataElement) Attribute(name string) *MetadataAttribute {
	if e == nil {
		return nil
	}
	for _, a := range e.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AttributeString returns the value of the attribute, or def if it does not exist
func (e *MetadataElement) AttributeString(name, def string) string {
	if a := e.Attribute(name); a != nil {
		return a.Value
	}
	return def
}

// SetAttribute updates the value of the attribute, creating it if needed
func (e *MetadataElement) SetAttribute(name, value string) *MetadataAttribute {
	if a := e.Attribute(name); a != nil {
		a.Value = value
		return a
	}
	a := &MetadataAttribute{Name: name, Value: value}
	e.Attributes = append(e.Attributes, a)
	return a
}

// Clone returns a deep copy of the element and all its descendants
func (e *MetadataElement) Clone() *MetadataElement {
	if e == nil {
		return nil
	}
	c := &MetadataElement{Name: e.Name}
	if e.Attributes != nil {
		c.Attributes = make([]*MetadataAttribute, len(e.Attributes))
		for i, a := range e.Attributes {
			attr := *a
			c.Attributes[i] = &attr
		}
	}
	if e.Elements != nil {
		c.Elements = make([]*MetadataElement, len(e.Elements))
		for i, sub := range e.Elements {
			c.Elements[i] = sub.Clone()
		}
	}
	return c
}

// Path returns the element found by following the names (separated by "/")
func (e *MetadataElement) Path(path string) *MetadataElement {
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		if e = e.Element(name); e == nil {
			return nil
		}
	}
	return e
}

func (e *MetadataElement) String() string {
	var sb strings.Builder
	e.write(&sb, 0)
	return sb.String()
}

func (e *MetadataElement) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, e.Name)
	for _, a := range e.Attributes {
		fmt.Fprintf(sb, "%s  * %s = %s\n", indent, a.Name, a.Value)
	}
	for _, c := range e.Elements {
		c.write(sb, depth+1)
	}
}
