// Package history provides the stored conversations view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// SessionLimit is the number of conversations listed.
const SessionLimit = 50

// ErrNoHistory indicates that no history service was provided.
var ErrNoHistory = errors.New("conversation history is not available")

// View lists stored conversations and shows the turns of a selected one.
type View struct {
	styles  *styles.Styles
	history driving.HistoryService
	ctx     context.Context

	sessions     []domain.SessionSummary
	turns        []domain.Turn
	openSession  string
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new history view. history may be nil.
func NewView(s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		history: history,
		ctx:     context.Background(),
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

// Load returns to the session list and reloads it.
func (v *View) Load() tea.Cmd {
	v.openSession = ""
	v.turns = nil
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	history := v.history
	ctx := v.ctx
	return func() tea.Msg {
		if history == nil {
			return messages.SessionsLoaded{Err: ErrNoHistory}
		}
		sessions, err := history.Sessions(ctx, SessionLimit)
		if errors.Is(err, domain.ErrNotFound) {
			return messages.SessionsLoaded{}
		}
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

// loadTurns returns a command that loads the turns of a session.
func (v *View) loadTurns(sessionID string) tea.Cmd {
	v.loading = true
	history := v.history
	ctx := v.ctx
	return func() tea.Msg {
		if history == nil {
			return messages.TurnsLoaded{SessionID: sessionID, Err: ErrNoHistory}
		}
		turns, err := history.Turns(ctx, sessionID)
		return messages.TurnsLoaded{SessionID: sessionID, Turns: turns, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionsLoaded:
		v.loading = false
		v.err = msg.Err
		v.sessions = msg.Sessions
		return v, nil

	case messages.TurnsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.openSession = msg.SessionID
		v.turns = msg.Turns
		v.scrollOffset = 0
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.openSession != "" {
		switch msg.String() {
		case "up", "k":
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case "down", "j":
			if v.scrollOffset < len(v.turns)-1 {
				v.scrollOffset++
			}
		case "esc":
			v.openSession = ""
			v.turns = nil
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.sessions)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if v.selected < len(v.sessions) {
			return v, v.loadTurns(v.sessions[v.selected].ID)
		}
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the history view.
func (v *View) View() string {
	if v.openSession != "" {
		return v.renderTurns()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Conversations (%d)", len(v.sessions))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading conversations..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.sessions) == 0:
		b.WriteString(v.styles.Muted.Render("No conversations yet."))
	default:
		visibleItems := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.sessions) && i < v.scrollOffset+visibleItems; i++ {
			b.WriteString(v.renderSession(i, &v.sessions[i]))
			b.WriteString("\n")
		}
		if len(v.sessions) > visibleItems {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1,
				min(v.scrollOffset+visibleItems, len(v.sessions)),
				len(v.sessions))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [esc] back"))
	return b.String()
}

// renderSession renders a single session line.
func (v *View) renderSession(index int, session *domain.SessionSummary) string {
	line := fmt.Sprintf("%s  %s  %d turns",
		session.ID, session.StartedAt.Local().Format("2006-01-02 15:04"), session.Turns)
	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// renderTurns renders the turns of the open session, starting at the scroll offset.
func (v *View) renderTurns() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Conversation " + v.openSession))
	b.WriteString("\n\n")

	if len(v.turns) == 0 {
		b.WriteString(v.styles.Muted.Render("No turns recorded."))
	}
	for i := v.scrollOffset; i < len(v.turns); i++ {
		turn := v.turns[i]
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%d] %s", i+1, turn.AskedAt.Local().Format("15:04:05"))))
		b.WriteString("\n")
		b.WriteString(v.styles.Question.Render("Q: ") + v.styles.Normal.Render(turn.Question))
		b.WriteString("\n")
		b.WriteString(v.styles.Answer.Render("A: " + turn.Answer))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back to list"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Sessions returns the loaded sessions.
func (v *View) Sessions() []domain.SessionSummary {
	return v.sessions
}

// Turns returns the turns of the open session.
func (v *View) Turns() []domain.Turn {
	return v.turns
}

// OpenSession returns the ID of the session being shown, or "".
func (v *View) OpenSession() string {
	return v.openSession
}

// SelectedIndex returns the currently selected session index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
