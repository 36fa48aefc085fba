// Package resolve implements the slice geometry resolution and scaling
// pipeline.
//
// Resolution is a pure function of (Composition, ViewMode, target Size):
// it validates every region's quad for the requested view, infers the
// internal authoring resolution from the output-quad extents, derives
// independent per-axis scale factors to the target resolution, and emits
// the final ordered slice list as integer pixel boxes. Re-running with
// different parameters always produces a fresh Result; nothing is mutated
// in place and identical inputs yield identical outputs.
//
// Failure handling follows partial-failure isolation: a malformed region
// is dropped with a diagnostic rather than aborting its siblings, and a
// degenerate internal resolution degrades to the identity transform rather
// than propagating NaN or Inf into consumer geometry.
package resolve

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/slicegrid/slicegrid/pkg/descriptor"
	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// ViewMode selects which quad of a region drives its resolved box.
type ViewMode string

// View modes.
const (
	// ViewInput reads geometry from the source-side quads.
	ViewInput ViewMode = "input"

	// ViewOutput reads geometry from the destination-side quads.
	ViewOutput ViewMode = "output"
)

// DefaultView is the view mode used when none is specified.
const DefaultView = ViewOutput

// ValidViews is the set of supported view modes.
var ValidViews = map[ViewMode]bool{
	ViewInput:  true,
	ViewOutput: true,
}

// Sentinel internal resolution used when no region yields a valid output
// quad. Scaling is forced to identity in that case, so the exact value
// only shows up as the reported composition size of an empty result.
const (
	FallbackInternalWidth  = 1920
	FallbackInternalHeight = 1080
)

// ValidateView checks that a view mode is valid.
func ValidateView(view ViewMode) error {
	if !ValidViews[view] {
		return errors.New(errors.ErrCodeInvalidView, "invalid view mode: %q (must be one of: input, output)", view)
	}
	return nil
}

// Resolve runs the full pipeline for one composition.
//
// The target size chooses the output resolution. A zero target falls back
// to the descriptor's declared output size when present, and otherwise to
// the inferred internal resolution (an identity transform).
//
// Regions whose active-view quad fails validation, or whose scaled box
// collapses to zero pixels, are dropped and recorded in Result.Dropped;
// they never surface as zero-size or full-canvas artifacts. Only
// structural problems (invalid view mode, invalid explicit target) return
// an error.
func Resolve(comp *descriptor.Composition, view ViewMode, target geometry.Size) (*Result, error) {
	if view == "" {
		view = DefaultView
	}
	if err := ValidateView(view); err != nil {
		return nil, err
	}
	if !target.IsZero() {
		if err := errors.ValidateResolution(target.Width, target.Height); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Name:         comp.Name,
		View:         view,
		TotalRegions: len(comp.Regions),
	}

	// Per-region resolution for the active view. Kept per-region results
	// carry the unrounded bounds forward so scaling happens before any
	// rounding loss.
	type resolved struct {
		region descriptor.Region
		name   string
		bounds geometry.Rect
	}
	kept := make([]resolved, 0, len(comp.Regions))
	for i, region := range comp.Regions {
		name := displayName(region, i)
		quad := region.OutputQuad
		if view == ViewInput {
			quad = region.InputQuad
		}
		if err := quad.Validate(); err != nil {
			result.Dropped = append(result.Dropped, Drop{
				SliceID: region.ID,
				Name:    name,
				Reason:  dropReason(err),
			})
			continue
		}
		kept = append(kept, resolved{region: region, name: name, bounds: quad.Bounds()})
	}

	// Internal resolution is always inferred from the output quads, for
	// both view modes: the output extents define the authoring canvas.
	internal, inferred := inferInternal(comp.Regions)
	result.Internal = internal

	scaleTarget := target
	if scaleTarget.IsZero() {
		if comp.DeclaredSize != nil {
			scaleTarget = *comp.DeclaredSize
		} else {
			scaleTarget = internal
		}
	}

	sx, sy, identity := scaleFactors(internal, scaleTarget)
	if !inferred {
		// No valid output quad anywhere: sentinel resolution, identity
		// transform regardless of target.
		sx, sy, identity = 1, 1, true
	}
	result.ScaleX = sx
	result.ScaleY = sy
	result.IdentityFallback = identity && !scaleTarget.IsZero() && scaleTarget != internal

	// Assembly: scale, round, and drop anything that collapses.
	for _, r := range kept {
		box := r.bounds.Scale(sx, sy).Round()
		if box.IsDegenerate() {
			result.Dropped = append(result.Dropped, Drop{
				SliceID: r.region.ID,
				Name:    r.name,
				Reason:  DropCollapsed,
			})
			continue
		}
		result.Slices = append(result.Slices, Slice{
			ID:         r.region.ID,
			Name:       r.name,
			InputQuad:  r.region.InputQuad,
			OutputQuad: r.region.OutputQuad,
			Box:        box,
		})
	}

	result.Size = geometry.Size{
		Width:  int(math.Round(float64(internal.Width) * sx)),
		Height: int(math.Round(float64(internal.Height) * sy)),
	}

	return result, nil
}

// inferInternal computes the internal authoring resolution as the maximum
// extent over all valid output-quad bounding boxes. The second return is
// false when no region has a valid output quad, in which case the sentinel
// resolution is returned.
func inferInternal(regions []descriptor.Region) (geometry.Size, bool) {
	var maxX, maxY float64
	found := false
	for _, region := range regions {
		if region.OutputQuad.Validate() != nil {
			continue
		}
		b := region.OutputQuad.Bounds()
		if b.MaxX() > maxX {
			maxX = b.MaxX()
		}
		if b.MaxY() > maxY {
			maxY = b.MaxY()
		}
		found = true
	}
	if !found {
		return geometry.Size{Width: FallbackInternalWidth, Height: FallbackInternalHeight}, false
	}
	return geometry.Size{
		Width:  int(math.Round(maxX)),
		Height: int(math.Round(maxY)),
	}, true
}

// scaleFactors derives independent per-axis factors mapping the internal
// resolution onto the target. A zero internal dimension is recoverable:
// the affected axis falls back to 1.0 so consumers never see NaN or Inf.
// The third return reports whether the result is the identity transform.
func scaleFactors(internal, target geometry.Size) (sx, sy float64, identity bool) {
	sx, sy = 1, 1
	if internal.Width > 0 {
		sx = float64(target.Width) / float64(internal.Width)
	}
	if internal.Height > 0 {
		sy = float64(target.Height) / float64(internal.Height)
	}
	return sx, sy, sx == 1 && sy == 1
}

// dropReason maps a quad validation error to its diagnostic reason code.
func dropReason(err error) DropReason {
	switch {
	case stderrors.Is(err, geometry.ErrTooFewVertices):
		return DropTooFewVertices
	case stderrors.Is(err, geometry.ErrDegenerateExtent):
		return DropDegenerateExtent
	default:
		return DropInvalidQuad
	}
}

// displayName returns the region's name, falling back to a positional
// placeholder for unnamed regions.
func displayName(region descriptor.Region, index int) string {
	if region.Name != "" {
		return region.Name
	}
	return fmt.Sprintf("Slice %d", index+1)
}
