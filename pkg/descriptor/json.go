package descriptor

import (
	"encoding/json"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// nameParamKey is the param that carries a region's display name.
const nameParamKey = "Name"

// ParseJSON decodes the JSON form of a descriptor.
//
// The screen/region container is required: a document without it fails
// with MISSING_ROOT. A present but empty region list is valid and yields a
// Composition with zero regions.
func ParseJSON(data []byte) (*Composition, error) {
	var doc jsonComposition
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "decode descriptor JSON")
	}

	if doc.Screen == nil || len(doc.Screen.Regions) == 0 || string(doc.Screen.Regions) == "null" {
		return nil, errors.New(errors.ErrCodeMissingRoot, "descriptor has no screen/region container")
	}

	rawRegions, err := objectOrList[jsonRegion](doc.Screen.Regions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "decode regions")
	}

	comp := &Composition{
		Name: doc.Name,
		Version: Version{
			Name:  doc.Version.Name,
			Major: int(doc.Version.Major),
			Minor: int(doc.Version.Minor),
			Micro: int(doc.Version.Micro),
		},
		Regions: make([]Region, 0, len(rawRegions)),
	}

	if doc.DeclaredOutputSize != nil {
		size := geometry.Size{
			Width:  int(doc.DeclaredOutputSize.Width),
			Height: int(doc.DeclaredOutputSize.Height),
		}
		if !size.IsZero() {
			comp.DeclaredSize = &size
		}
	}

	for _, raw := range rawRegions {
		comp.Regions = append(comp.Regions, Region{
			ID:         string(raw.UniqueID),
			Name:       raw.displayName(),
			InputQuad:  decodeQuad(raw.Input),
			OutputQuad: decodeQuad(raw.Output),
		})
	}
	assignIDs(comp.Regions)

	return comp, nil
}

// =============================================================================
// Raw JSON Shapes
// =============================================================================

type jsonComposition struct {
	Name               string      `json:"name"`
	Version            jsonVersion `json:"version"`
	DeclaredOutputSize *jsonSize   `json:"declaredOutputSize"`
	Screen             *jsonScreen `json:"screen"`
}

type jsonVersion struct {
	Name  string   `json:"name"`
	Major looseInt `json:"major"`
	Minor looseInt `json:"minor"`
	Micro looseInt `json:"micro"`
}

type jsonSize struct {
	Width  looseInt `json:"width"`
	Height looseInt `json:"height"`
}

// jsonScreen holds the region container. Regions stays raw so the
// single-object-vs-list encoding can be normalized, and so absence of the
// key (fatal) is distinguishable from an empty list (valid).
type jsonScreen struct {
	Regions json.RawMessage `json:"regions"`
}

type jsonRegion struct {
	UniqueID looseString     `json:"uniqueId"`
	Params   json.RawMessage `json:"params"`
	Input    json.RawMessage `json:"inputQuad"`
	Output   json.RawMessage `json:"outputQuad"`
}

// displayName extracts the "Name" param value. Params tolerate the same
// single-object-vs-list wart as vertices. Non-string values are ignored.
func (r *jsonRegion) displayName() string {
	params, err := objectOrList[jsonParam](r.Params)
	if err != nil {
		return ""
	}
	for _, p := range params {
		if p.Name != nameParamKey {
			continue
		}
		if s, ok := p.Value.(string); ok {
			return s
		}
	}
	return ""
}

type jsonParam struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type jsonQuad struct {
	Vertices json.RawMessage `json:"vertices"`
}

// decodeQuad normalizes a raw quad container to a geometry.Quad. An absent
// or unreadable container yields an empty quad; the extractor never invents
// vertices out of thin air.
func decodeQuad(data json.RawMessage) geometry.Quad {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var q jsonQuad
	if err := json.Unmarshal(data, &q); err != nil {
		return nil
	}
	verts, err := objectOrList[jsonVertex](q.Vertices)
	if err != nil {
		return nil
	}
	out := make(geometry.Quad, len(verts))
	for i, v := range verts {
		out[i] = geometry.Point{X: float64(v.X), Y: float64(v.Y)}
	}
	return out
}

type jsonVertex struct {
	X looseFloat `json:"x"`
	Y looseFloat `json:"y"`
}

// looseString tolerates ids encoded as numbers. Values that are neither a
// string nor a number decode to "", which triggers ID generation later.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	*s = ""
	return nil
}
