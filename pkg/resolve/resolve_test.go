package resolve

import (
	"math"
	"reflect"
	"testing"

	"github.com/slicegrid/slicegrid/pkg/descriptor"
	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// rectQuad builds an axis-aligned quad in canonical winding.
func rectQuad(x, y, w, h float64) geometry.Quad {
	return geometry.Quad{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func region(id, name string, in, out geometry.Quad) descriptor.Region {
	return descriptor.Region{ID: id, Name: name, InputQuad: in, OutputQuad: out}
}

func TestResolveSingleFullFrame(t *testing.T) {
	comp := &descriptor.Composition{
		Name: "Single",
		Regions: []descriptor.Region{
			region("a", "Full", rectQuad(0, 0, 1920, 1080), rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Internal != (geometry.Size{Width: 1920, Height: 1080}) {
		t.Errorf("Internal = %+v, want 1920x1080", res.Internal)
	}
	if res.ScaleX != 1 || res.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want (1, 1)", res.ScaleX, res.ScaleY)
	}
	if len(res.Slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(res.Slices))
	}
	want := geometry.Box{X: 0, Y: 0, Width: 1920, Height: 1080}
	if res.Slices[0].Box != want {
		t.Errorf("box = %+v, want %+v", res.Slices[0].Box, want)
	}
	if res.Size != res.Internal {
		t.Errorf("Size = %+v, want %+v", res.Size, res.Internal)
	}
}

func TestResolveHalfTarget(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("a", "Full", nil, rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{Width: 960, Height: 540})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ScaleX != 0.5 || res.ScaleY != 0.5 {
		t.Errorf("scale = (%v, %v), want (0.5, 0.5)", res.ScaleX, res.ScaleY)
	}
	want := geometry.Box{X: 0, Y: 0, Width: 960, Height: 540}
	if len(res.Slices) != 1 || res.Slices[0].Box != want {
		t.Fatalf("slices = %+v, want one box %+v", res.Slices, want)
	}
	if res.Size != (geometry.Size{Width: 960, Height: 540}) {
		t.Errorf("Size = %+v, want 960x540", res.Size)
	}
}

func TestResolveDropsShortQuad(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("tri", "Triangle", nil, geometry.Quad{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}),
			region("ok", "Good", nil, rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Slices) != 1 || res.Slices[0].ID != "ok" {
		t.Fatalf("slices = %+v, want only %q", res.Slices, "ok")
	}
	if len(res.Dropped) != 1 {
		t.Fatalf("dropped = %+v, want 1 entry", res.Dropped)
	}
	d := res.Dropped[0]
	if d.SliceID != "tri" || d.Reason != DropTooFewVertices {
		t.Errorf("drop = %+v, want tri/%s", d, DropTooFewVertices)
	}
	if got := res.Summary(); got != "1 of 2 regions loaded" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestResolveInfersSpanningExtent(t *testing.T) {
	// Overlapping quads: inference takes the union extent, not the sum.
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("l", "Left", nil, rectQuad(0, 0, 2400, 1080)),
			region("r", "Right", nil, rectQuad(1440, 0, 2400, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Internal != (geometry.Size{Width: 3840, Height: 1080}) {
		t.Errorf("Internal = %+v, want 3840x1080", res.Internal)
	}
	if len(res.Slices) != 2 {
		t.Fatalf("got %d slices, want 2", len(res.Slices))
	}
	if res.Slices[1].Box != (geometry.Box{X: 1440, Y: 0, Width: 2400, Height: 1080}) {
		t.Errorf("right box = %+v", res.Slices[1].Box)
	}
}

func TestResolveAllInvalidUsesSentinel(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("a", "", nil, nil),
			region("b", "", nil, geometry.Quad{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{Width: 960, Height: 540})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Internal != (geometry.Size{Width: FallbackInternalWidth, Height: FallbackInternalHeight}) {
		t.Errorf("Internal = %+v, want sentinel", res.Internal)
	}
	// Degenerate internal forces identity even though a target was given.
	if res.ScaleX != 1 || res.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want identity", res.ScaleX, res.ScaleY)
	}
	if !res.IdentityFallback {
		t.Error("IdentityFallback should be set")
	}
	if math.IsNaN(res.ScaleX) || math.IsInf(res.ScaleX, 0) || math.IsNaN(res.ScaleY) || math.IsInf(res.ScaleY, 0) {
		t.Error("scale factors must stay finite")
	}
	if len(res.Slices) != 0 {
		t.Errorf("got %d slices, want 0", len(res.Slices))
	}
	if len(res.Dropped) != 2 {
		t.Errorf("dropped = %+v, want 2 entries", res.Dropped)
	}
}

func TestResolveDegenerateExtentDrop(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("flat", "Flat", nil, rectQuad(0, 0, 1920, 0)),
			region("ok", "", nil, rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Reason != DropDegenerateExtent {
		t.Errorf("dropped = %+v, want one %s", res.Dropped, DropDegenerateExtent)
	}
	// Unnamed region gets a positional placeholder.
	if res.Slices[0].Name != "Slice 2" {
		t.Errorf("placeholder name = %q, want %q", res.Slices[0].Name, "Slice 2")
	}
}

func TestResolveCollapsedDrop(t *testing.T) {
	// A 1px sliver at 1/4 scale rounds to zero height and is dropped.
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("sliver", "Sliver", nil, rectQuad(0, 0, 400, 1)),
			region("big", "Big", nil, rectQuad(0, 0, 4000, 2000)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{Width: 1000, Height: 500})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Slices) != 1 || res.Slices[0].ID != "big" {
		t.Fatalf("slices = %+v, want only %q", res.Slices, "big")
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Reason != DropCollapsed {
		t.Errorf("dropped = %+v, want one %s", res.Dropped, DropCollapsed)
	}
}

func TestResolveInputView(t *testing.T) {
	// Output quads drive inference even when resolving the input view.
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("a", "A", rectQuad(0, 0, 640, 360), rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewInput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.View != ViewInput {
		t.Errorf("View = %q, want %q", res.View, ViewInput)
	}
	if res.Internal != (geometry.Size{Width: 1920, Height: 1080}) {
		t.Errorf("Internal = %+v, want 1920x1080", res.Internal)
	}
	if res.Slices[0].Box != (geometry.Box{X: 0, Y: 0, Width: 640, Height: 360}) {
		t.Errorf("box = %+v, want input-quad bounds", res.Slices[0].Box)
	}
}

func TestResolveDefaultView(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("a", "A", nil, rectQuad(0, 0, 100, 100)),
		},
	}

	res, err := Resolve(comp, "", geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.View != ViewOutput {
		t.Errorf("View = %q, want default %q", res.View, ViewOutput)
	}
}

func TestResolveInvalidView(t *testing.T) {
	_, err := Resolve(&descriptor.Composition{}, "sideways", geometry.Size{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidView {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidView)
	}
}

func TestResolveInvalidTarget(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{region("a", "A", nil, rectQuad(0, 0, 100, 100))},
	}
	_, err := Resolve(comp, ViewOutput, geometry.Size{Width: -1, Height: 540})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidResolution {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidResolution)
	}
}

func TestResolveDeclaredSizePreferred(t *testing.T) {
	comp := &descriptor.Composition{
		DeclaredSize: &geometry.Size{Width: 3840, Height: 2160},
		Regions: []descriptor.Region{
			region("a", "A", nil, rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ScaleX != 2 || res.ScaleY != 2 {
		t.Errorf("scale = (%v, %v), want (2, 2)", res.ScaleX, res.ScaleY)
	}
	if res.Size != (geometry.Size{Width: 3840, Height: 2160}) {
		t.Errorf("Size = %+v, want 3840x2160", res.Size)
	}

	// An explicit target overrides the declared size.
	res, err = Resolve(comp, ViewOutput, geometry.Size{Width: 960, Height: 540})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ScaleX != 0.5 || res.ScaleY != 0.5 {
		t.Errorf("scale = (%v, %v), want (0.5, 0.5)", res.ScaleX, res.ScaleY)
	}
}

func TestResolveAnisotropicScale(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("a", "A", nil, rectQuad(0, 0, 1920, 1080)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{Width: 1920, Height: 540})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ScaleX != 1 || res.ScaleY != 0.5 {
		t.Errorf("scale = (%v, %v), want (1, 0.5)", res.ScaleX, res.ScaleY)
	}
	if res.Slices[0].Box != (geometry.Box{X: 0, Y: 0, Width: 1920, Height: 540}) {
		t.Errorf("box = %+v", res.Slices[0].Box)
	}
}

func TestResolveOrderPreserved(t *testing.T) {
	comp := &descriptor.Composition{
		Regions: []descriptor.Region{
			region("c", "Third", nil, rectQuad(200, 0, 100, 100)),
			region("a", "First", nil, rectQuad(0, 0, 100, 100)),
			region("b", "Second", nil, rectQuad(100, 0, 100, 100)),
		},
	}

	res, err := Resolve(comp, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var ids []string
	for _, s := range res.Slices {
		ids = append(ids, s.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("slice order = %v, want descriptor order", ids)
	}
}

func TestResolveDeterministic(t *testing.T) {
	comp := &descriptor.Composition{
		Name: "Repeat",
		Regions: []descriptor.Region{
			region("a", "A", rectQuad(0, 0, 640, 360), rectQuad(0, 0, 1920, 1080)),
			region("b", "", nil, geometry.Quad{{X: 0, Y: 0}}),
		},
	}

	first, err := Resolve(comp, ViewOutput, geometry.Size{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := Resolve(comp, ViewOutput, geometry.Size{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated resolution diverged:\n%+v\n%+v", first, second)
	}
}

func TestResolveEmptyComposition(t *testing.T) {
	res, err := Resolve(&descriptor.Composition{}, ViewOutput, geometry.Size{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Slices) != 0 || len(res.Dropped) != 0 {
		t.Errorf("empty composition: slices=%d dropped=%d", len(res.Slices), len(res.Dropped))
	}
	if res.Internal != (geometry.Size{Width: FallbackInternalWidth, Height: FallbackInternalHeight}) {
		t.Errorf("Internal = %+v, want sentinel", res.Internal)
	}
}

func TestValidateView(t *testing.T) {
	if err := ValidateView(ViewInput); err != nil {
		t.Errorf("ViewInput: %v", err)
	}
	if err := ValidateView(ViewOutput); err != nil {
		t.Errorf("ViewOutput: %v", err)
	}
	if err := ValidateView("diagonal"); err == nil {
		t.Error("invalid view accepted")
	}
}
