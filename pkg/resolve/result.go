package resolve

import (
	"encoding/json"
	"fmt"

	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// DropReason is a machine-readable reason code for a dropped region.
type DropReason string

// Drop reasons.
const (
	// DropTooFewVertices: the active-view quad has fewer than four points.
	DropTooFewVertices DropReason = "too_few_vertices"

	// DropDegenerateExtent: the active-view quad spans zero width or height.
	DropDegenerateExtent DropReason = "degenerate_extent"

	// DropCollapsed: the scaled box rounded down to zero pixels.
	DropCollapsed DropReason = "collapsed"

	// DropInvalidQuad: catch-all for quad validation failures that carry
	// no more specific reason.
	DropInvalidQuad DropReason = "invalid_quad"
)

// Drop records why one region was excluded from the resolved slice list.
type Drop struct {
	SliceID string     `json:"slice_id"`
	Name    string     `json:"name,omitempty"`
	Reason  DropReason `json:"reason"`
}

// String formats the drop for log lines and CLI diagnostics.
func (d Drop) String() string {
	return fmt.Sprintf("%s (%s): %s", d.Name, d.SliceID, d.Reason)
}

// Slice is one resolved region. Box is derived, not authoritative: it
// depends on the view mode and scale the Result was computed with.
type Slice struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Box  geometry.Box `json:"box"`

	// Quads are carried through for consumers that re-resolve or inspect
	// the raw geometry; they are not scaled.
	InputQuad  geometry.Quad `json:"input_quad,omitempty"`
	OutputQuad geometry.Quad `json:"output_quad,omitempty"`
}

// Result is the pipeline's final product: the resolved composition for one
// (composition, view, target) triple. It is regenerated, never mutated,
// when any parameter changes.
type Result struct {
	// Name is the composition's display name from the descriptor.
	Name string `json:"name,omitempty"`

	// View is the view mode the boxes were derived from.
	View ViewMode `json:"view"`

	// Size is the resolved composition size (the internal resolution
	// mapped through the scale factors).
	Size geometry.Size `json:"size"`

	// Internal is the inferred authoring resolution the scale was computed
	// against.
	Internal geometry.Size `json:"internal"`

	// ScaleX and ScaleY are the independent per-axis factors applied to
	// every slice box. Always finite.
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`

	// IdentityFallback is true when a non-identity scale was requested but
	// the internal resolution was degenerate, forcing the identity
	// transform.
	IdentityFallback bool `json:"identity_fallback,omitempty"`

	// Slices preserves the descriptor's region order.
	Slices []Slice `json:"slices"`

	// Dropped lists per-region diagnostics for everything excluded.
	Dropped []Drop `json:"dropped,omitempty"`

	// TotalRegions is the region count before drops, for "N of M" UX.
	TotalRegions int `json:"total_regions"`
}

// Loaded returns how many regions survived resolution.
func (r *Result) Loaded() int { return len(r.Slices) }

// Summary returns the "N of M regions loaded" line shown to users.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d regions loaded", r.Loaded(), r.TotalRegions)
}

// MarshalResult serializes a Result to indented JSON. The format is stable
// and round-trips through UnmarshalResult, so it doubles as the cache and
// API representation.
func MarshalResult(r *Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes a Result produced by MarshalResult.
func UnmarshalResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
