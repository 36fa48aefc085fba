package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/pipeline"
	"github.com/slicegrid/slicegrid/pkg/resolve"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	view    string // view mode: "input" or "output"
	target  string // target resolution as "WIDTHxHEIGHT"
	output  string // output file path for the resolved JSON
	refresh bool   // bypass the result cache
	noCache bool   // disable caching entirely
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{
		view:   c.Config.View,
		target: formatTarget(c.Config.Width, c.Config.Height),
	}

	cmd := &cobra.Command{
		Use:   "resolve <descriptor>",
		Short: "Resolve a composition descriptor into a slice list",
		Long: `Resolve a composition descriptor into a pixel-accurate slice list.

The descriptor may be the XML export written by the mapping software or
its JSON equivalent; the format is auto-detected. Without --target, the
descriptor's declared output size is used, falling back to the internal
resolution inferred from the regions' output extents.

Results are cached by descriptor content and resolution parameters, so
repeat runs with identical inputs are instant.

Examples:
  slicegrid resolve composition.xml
  slicegrid resolve composition.xml --target 3840x1080
  slicegrid resolve composition.xml --view input -o slices.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.view, "view", opts.view, "view mode: input or output")
	cmd.Flags().StringVarP(&opts.target, "target", "t", opts.target, "target resolution as WIDTHxHEIGHT (empty: declared/inferred)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write resolved composition JSON to file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the result cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, path string, opts resolveOpts) error {
	width, height, err := parseTarget(opts.target)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s", path))
	spin.Start()
	res, err := runner.Execute(ctx, pipeline.Options{
		Path:    path,
		View:    opts.view,
		Width:   width,
		Height:  height,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	})
	if err != nil {
		spin.StopWithError(errors.UserMessage(err))
		return err
	}
	spin.Stop()

	printResolved(res)

	if opts.output != "" {
		if err := writeResult(res.Result, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}

	return nil
}

// printResolved renders the result summary, table, and diagnostics.
func printResolved(res *pipeline.Result) {
	r := res.Result

	title := r.Name
	if title == "" {
		title = "composition"
	}
	printSuccess("%s %s", StyleTitle.Render(title), r.Summary())
	printInfo("size %dx%d  internal %dx%d  scale %.3fx%.3f  view %s",
		r.Size.Width, r.Size.Height,
		r.Internal.Width, r.Internal.Height,
		r.ScaleX, r.ScaleY, r.View)
	if res.CacheHit {
		printInfo("%s", StyleDim.Render("from cache"))
	}
	if r.IdentityFallback {
		printWarning("degenerate internal resolution, identity scale applied")
	}

	if len(r.Slices) > 0 {
		fmt.Println(sliceTable(r))
	}
	printDrops(r)
}

// writeResult serializes the resolved composition to path.
func writeResult(r *resolve.Result, path string) error {
	data, err := resolve.MarshalResult(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// parseTarget parses a "WIDTHxHEIGHT" string. Empty means no explicit
// target (use declared/inferred size).
func parseTarget(s string) (width, height int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidResolution, "invalid target %q (expected WIDTHxHEIGHT, e.g. 1920x1080)", s)
	}
	width, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || herr != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidResolution, "invalid target %q (expected WIDTHxHEIGHT, e.g. 1920x1080)", s)
	}
	if err := errors.ValidateResolution(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// formatTarget renders config defaults back into flag form.
func formatTarget(width, height int) string {
	if width == 0 || height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", width, height)
}
