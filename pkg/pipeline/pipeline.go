// Package pipeline provides the descriptor-to-composition pipeline for
// SliceGrid.
//
// This package wraps the pure resolution core (pkg/resolve) with the
// operational concerns shared by the CLI and the HTTP API: loading
// descriptor bytes, content hashing, memoization, and logging. By
// centralizing this logic, both entry points behave identically.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Parse: decode the descriptor (XML or JSON) into a Composition
//  2. Resolve: run the pure geometry pipeline for (view, target)
//
// Resolution is a pure function, so stage 2 is memoized under a key of
// (descriptor content hash, view, target size). Re-running with different
// parameters — a view toggle, a new target resolution — is a cache lookup
// first and a recompute second.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Path:   "composition.xml",
//	    View:   "output",
//	    Width:  1920,
//	    Height: 1080,
//	}
//	res, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Result.Summary())
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
	"github.com/slicegrid/slicegrid/pkg/resolve"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input: exactly one of Path or Data must be set.
	Path string `json:"path,omitempty"` // descriptor file path
	Data []byte `json:"-"`              // raw descriptor bytes (API uploads)

	// Resolution parameters
	View   string `json:"view,omitempty"`   // "input" or "output"; defaults to output
	Width  int    `json:"width,omitempty"`  // target width; 0 means declared/inferred
	Height int    `json:"height,omitempty"` // target height; 0 means declared/inferred

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Path == "" && len(o.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "descriptor path or data is required")
	}
	if o.Path != "" && len(o.Data) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "descriptor path and data are mutually exclusive")
	}

	if o.View == "" {
		o.View = string(resolve.DefaultView)
	}
	if err := resolve.ValidateView(resolve.ViewMode(o.View)); err != nil {
		return err
	}

	// Width and height come as a pair; a half-specified target is almost
	// always a flag mistake.
	if (o.Width == 0) != (o.Height == 0) {
		return errors.New(errors.ErrCodeInvalidResolution, "target width and height must be set together")
	}
	if o.Width != 0 {
		if err := errors.ValidateResolution(o.Width, o.Height); err != nil {
			return err
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Target returns the requested target size; zero when the descriptor's
// declared size (or the inferred internal resolution) should be used.
func (o *Options) Target() geometry.Size {
	return geometry.Size{Width: o.Width, Height: o.Height}
}

// ViewMode returns the view as its typed form.
func (o *Options) ViewMode() resolve.ViewMode {
	return resolve.ViewMode(o.View)
}
