package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/slicegrid/slicegrid/pkg/descriptor"
	"github.com/slicegrid/slicegrid/pkg/geometry"
	"github.com/slicegrid/slicegrid/pkg/resolve"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for interactive browsing.
func (c *CLI) inspectCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "inspect <descriptor>",
		Short: "Browse resolved slices interactively",
		Long: `Browse resolved slices interactively.

The descriptor is parsed once; toggling the view mode ('v') re-runs the
resolution pipeline against the same descriptor, so the slice list always
reflects the current parameters.

Keys:
  up/down, j/k   move cursor
  v              toggle input/output view
  q, esc         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, height, err := parseTarget(target)
			if err != nil {
				return err
			}
			return c.runInspect(args[0], width, height)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", formatTarget(c.Config.Width, c.Config.Height), "target resolution as WIDTHxHEIGHT")

	return cmd
}

func (c *CLI) runInspect(path string, width, height int) error {
	comp, err := descriptor.ParseFile(path)
	if err != nil {
		return err
	}

	model, err := newInspectModel(comp, resolve.ViewMode(c.Config.View), geometry.Size{Width: width, Height: height})
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(model).Run()
	return err
}

// =============================================================================
// InspectModel - Interactive slice browser
// =============================================================================

// inspectModel is the bubbletea model for the slice browser. The parsed
// composition is immutable; every parameter change re-resolves from it.
type inspectModel struct {
	comp   *descriptor.Composition
	view   resolve.ViewMode
	target geometry.Size

	res    *resolve.Result
	cursor int
	offset int
	height int
}

func newInspectModel(comp *descriptor.Composition, view resolve.ViewMode, target geometry.Size) (*inspectModel, error) {
	m := &inspectModel{
		comp:   comp,
		view:   view,
		target: target,
		height: 15,
	}
	if m.view == "" {
		m.view = resolve.DefaultView
	}
	if err := m.rerun(); err != nil {
		return nil, err
	}
	return m, nil
}

// rerun executes the resolution pipeline with the model's current
// parameters.
func (m *inspectModel) rerun() error {
	res, err := resolve.Resolve(m.comp, m.view, m.target)
	if err != nil {
		return err
	}
	m.res = res
	if m.cursor >= len(res.Slices) {
		m.cursor = 0
		m.offset = 0
	}
	return nil
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.res.Slices)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "v":
			if m.view == resolve.ViewOutput {
				m.view = resolve.ViewInput
			} else {
				m.view = resolve.ViewOutput
			}
			// Resolution is pure; a failed rerun here can only mean the
			// parameters are broken, which validation already rejected.
			_ = m.rerun()
		}
	case tea.WindowSizeMsg:
		if msg.Height > 8 {
			m.height = msg.Height - 8
		}
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	r := m.res
	title := r.Name
	if title == "" {
		title = "composition"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%s · %s view · %dx%d",
		r.Summary(), r.View, r.Size.Width, r.Size.Height)))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(r.Slices) {
		end = len(r.Slices)
	}
	for i := m.offset; i < end; i++ {
		s := r.Slices[i]
		line := fmt.Sprintf("%-24s %5d %5d %5dx%-5d", truncate(s.Name, 24), s.Box.X, s.Box.Y, s.Box.Width, s.Box.Height)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("› " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if len(r.Slices) == 0 {
		b.WriteString(listDimStyle.Render("  no slices survived resolution"))
		b.WriteString("\n")
	}

	for _, d := range r.Dropped {
		b.WriteString(listDimStyle.Render("  ✗ " + d.String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("v: toggle view · j/k: move · q: quit"))
	b.WriteString("\n")

	return b.String()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
