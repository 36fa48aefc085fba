package descriptor

import (
	"encoding/xml"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// ParseXML decodes the XML export written by the mapping tool.
//
// All numeric attributes are decoded as strings and coerced afterward, so
// a vertex with x="abc" becomes 0 instead of failing the whole import.
// A document without a <Screen> container fails with MISSING_ROOT.
func ParseXML(data []byte) (*Composition, error) {
	var doc xmlComposition
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "decode descriptor XML")
	}

	if doc.Screen == nil {
		return nil, errors.New(errors.ErrCodeMissingRoot, "descriptor has no screen/region container")
	}

	comp := &Composition{
		Name: doc.Name,
		Version: Version{
			Name:  doc.Version.Name,
			Major: int(coerceFloat(doc.Version.Major)),
			Minor: int(coerceFloat(doc.Version.Minor)),
			Micro: int(coerceFloat(doc.Version.Micro)),
		},
		Regions: make([]Region, 0, len(doc.Screen.Slices)),
	}

	if doc.OutputSize != nil {
		size := geometry.Size{
			Width:  int(coerceFloat(doc.OutputSize.Width)),
			Height: int(coerceFloat(doc.OutputSize.Height)),
		}
		if !size.IsZero() {
			comp.DeclaredSize = &size
		}
	}

	for _, s := range doc.Screen.Slices {
		comp.Regions = append(comp.Regions, Region{
			ID:         s.UniqueID,
			Name:       s.displayName(),
			InputQuad:  s.InputRect.quad(),
			OutputQuad: s.OutputRect.quad(),
		})
	}
	assignIDs(comp.Regions)

	return comp, nil
}

// =============================================================================
// Raw XML Shapes
// =============================================================================

type xmlComposition struct {
	XMLName    xml.Name    `xml:"Composition"`
	Name       string      `xml:"name,attr"`
	Version    xmlVersion  `xml:"Version"`
	OutputSize *xmlSize    `xml:"OutputSize"`
	Screen     *xmlScreen  `xml:"Screen"`
}

type xmlVersion struct {
	Name  string `xml:"name,attr"`
	Major string `xml:"major,attr"`
	Minor string `xml:"minor,attr"`
	Micro string `xml:"micro,attr"`
}

type xmlSize struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

type xmlScreen struct {
	Slices []xmlSlice `xml:"Slice"`
}

type xmlSlice struct {
	UniqueID   string     `xml:"uniqueId,attr"`
	Params     []xmlParam `xml:"Params>Param"`
	InputRect  *xmlRect   `xml:"InputRect"`
	OutputRect *xmlRect   `xml:"OutputRect"`
}

func (s *xmlSlice) displayName() string {
	for _, p := range s.Params {
		if p.Name == nameParamKey {
			return p.Value
		}
	}
	return ""
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlRect struct {
	Vertices []xmlVertex `xml:"Vertex"`
}

// quad converts the rect's vertex list, coercing each attribute with a 0
// default. A nil rect (element absent) yields an empty quad.
func (r *xmlRect) quad() geometry.Quad {
	if r == nil {
		return nil
	}
	out := make(geometry.Quad, len(r.Vertices))
	for i, v := range r.Vertices {
		out[i] = geometry.Point{X: coerceFloat(v.X), Y: coerceFloat(v.Y)}
	}
	return out
}

type xmlVertex struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}
