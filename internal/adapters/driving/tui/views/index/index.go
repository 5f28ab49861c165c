// Package index provides the knowledge base view for the TUI.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// ErrNoEngine indicates that no engine was provided.
var ErrNoEngine = errors.New("knowledge base is not available")

// View describes the persisted index and rebuilds it on request.
type View struct {
	styles *styles.Styles
	engine driving.Engine
	ctx    context.Context

	info       *domain.IndexInfo
	report     *domain.BuildReport
	width      int
	height     int
	ready      bool
	loading    bool
	rebuilding bool
	err        error
}

// NewView creates a new index view.
func NewView(s *styles.Styles, engine driving.Engine) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		engine: engine,
		ctx:    context.Background(),
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that reads the index description.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil

	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		if engine == nil {
			return messages.IndexLoaded{Err: ErrNoEngine}
		}
		info, err := engine.Status(ctx)
		return messages.IndexLoaded{Info: info, Err: err}
	}
}

// rebuild returns a command that rebuilds the index from the source directory.
func (v *View) rebuild() tea.Cmd {
	v.rebuilding = true
	v.err = nil

	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		if engine == nil {
			return messages.IndexRebuilt{Err: ErrNoEngine}
		}
		if _, err := engine.Rebuild(ctx); err != nil {
			return messages.IndexRebuilt{Err: err}
		}
		return messages.IndexRebuilt{Report: engine.LastReport()}
	}
}

// Update handles messages for the index view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.IndexLoaded:
		v.loading = false
		v.info = msg.Info
		v.err = msg.Err
		return v, nil

	case messages.IndexRebuilt:
		v.rebuilding = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.report = msg.Report
		return v, v.Load()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "r":
		if v.rebuilding {
			return v, nil
		}
		return v, v.rebuild()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// View renders the index view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Knowledge base"))
	b.WriteString("\n\n")

	if v.engine != nil {
		b.WriteString(v.renderField("Source", v.engine.SourceDir()))
		b.WriteString(v.renderField("Index", v.engine.PersistDir()))
		b.WriteString("\n")
	}

	switch {
	case v.rebuilding:
		b.WriteString(v.styles.Warning.Render("Rebuilding index..."))
		b.WriteString("\n")
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case errors.Is(v.err, domain.ErrIndexNotFound):
		b.WriteString(v.styles.Muted.Render("No index yet. Press r to build it."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	case v.info != nil:
		b.WriteString(v.renderInfo())
	}

	if v.report != nil && !v.rebuilding {
		b.WriteString("\n")
		b.WriteString(v.renderReport())
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[r] rebuild  [esc] back"))
	return b.String()
}

func (v *View) renderInfo() string {
	var b strings.Builder
	b.WriteString(v.renderField("Generation", v.info.Generation))
	b.WriteString(v.renderField("Model", fmt.Sprintf("%s (%d dims)", v.info.ModelName, v.info.Dimensions)))
	b.WriteString(v.renderField("Documents", fmt.Sprintf("%d", v.info.Documents)))
	b.WriteString(v.renderField("Chunks", fmt.Sprintf("%d", v.info.Chunks)))
	if !v.info.CreatedAt.IsZero() {
		b.WriteString(v.renderField("Built", v.info.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

func (v *View) renderReport() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Last rebuild"))
	b.WriteString("\n")

	kinds := make([]string, 0, len(v.report.PerKind))
	for kind, n := range v.report.PerKind {
		kinds = append(kinds, fmt.Sprintf("%s: %d", kind, n))
	}
	sort.Strings(kinds)

	docs := fmt.Sprintf("%d", v.report.Documents)
	if len(kinds) > 0 {
		docs += " (" + strings.Join(kinds, ", ") + ")"
	}
	b.WriteString(v.renderField("Documents", docs))
	b.WriteString(v.renderField("Chunks", fmt.Sprintf("%d", v.report.Chunks)))
	b.WriteString(v.renderField("Took", v.report.Duration.Round(time.Millisecond).String()))

	for _, failure := range v.report.Failures {
		b.WriteString(v.styles.Warning.Render("  ! " + failure.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderField(label, value string) string {
	return v.styles.Muted.Render(fmt.Sprintf("%-12s", label+":")) + v.styles.Normal.Render(value) + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Info returns the loaded index description.
func (v *View) Info() *domain.IndexInfo {
	return v.info
}

// Report returns the report of the last rebuild started from this view.
func (v *View) Report() *domain.BuildReport {
	return v.report
}

// Rebuilding reports whether a rebuild is in flight.
func (v *View) Rebuilding() bool {
	return v.rebuilding
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
