package geometry

import (
	"errors"
	"testing"
)

func rectQuad(x, y, w, h float64) Quad {
	return Quad{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func TestQuadBounds(t *testing.T) {
	tests := []struct {
		name string
		quad Quad
		want Rect
	}{
		{
			name: "canonical winding",
			quad: rectQuad(0, 0, 1920, 1080),
			want: Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
		{
			name: "reversed winding",
			quad: Quad{{X: 0, Y: 1080}, {X: 1920, Y: 1080}, {X: 1920, Y: 0}, {X: 0, Y: 0}},
			want: Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
		{
			name: "scrambled vertex order",
			quad: Quad{{X: 1920, Y: 1080}, {X: 0, Y: 0}, {X: 0, Y: 1080}, {X: 1920, Y: 0}},
			want: Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
		{
			name: "offset region",
			quad: rectQuad(100, 200, 300, 400),
			want: Rect{X: 100, Y: 200, Width: 300, Height: 400},
		},
		{
			name: "empty quad",
			quad: nil,
			want: Rect{},
		},
		{
			name: "single point",
			quad: Quad{{X: 5, Y: 7}},
			want: Rect{X: 5, Y: 7, Width: 0, Height: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quad.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQuadValidate(t *testing.T) {
	tests := []struct {
		name    string
		quad    Quad
		wantErr error
	}{
		{
			name:    "valid quad",
			quad:    rectQuad(0, 0, 100, 100),
			wantErr: nil,
		},
		{
			name:    "empty",
			quad:    nil,
			wantErr: ErrTooFewVertices,
		},
		{
			name:    "three vertices",
			quad:    Quad{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}},
			wantErr: ErrTooFewVertices,
		},
		{
			name:    "zero width",
			quad:    Quad{{X: 5, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 100}, {X: 5, Y: 100}},
			wantErr: ErrDegenerateExtent,
		},
		{
			name:    "zero height",
			quad:    Quad{{X: 0, Y: 9}, {X: 100, Y: 9}, {X: 100, Y: 9}, {X: 0, Y: 9}},
			wantErr: ErrDegenerateExtent,
		},
		{
			name:    "all points coincident",
			quad:    Quad{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}},
			wantErr: ErrDegenerateExtent,
		},
		{
			name:    "five vertices still valid",
			quad:    append(rectQuad(0, 0, 10, 10), Point{X: 5, Y: 5}),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quad.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
