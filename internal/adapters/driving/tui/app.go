package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/views/index"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/vox/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView    *menu.View
	chatView    *chat.View
	historyView *history.View
	indexView   *index.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The whole session shares one conversation.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		menuView: menu.NewView(s),
		chatView: chat.NewView(s, km, ports.Engine.NewConversation(), ports.Voice, chat.Options{
			VoiceName: ports.VoiceName,
			RecordFor: ports.RecordFor,
		}),
		historyView: history.NewView(s, ports.History),
		indexView:   index.NewView(s, ports.Engine),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	a.indexView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("vox - Talk to your documents"),
		a.indexView.Load(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			a.chatView.Reset()
			return a, a.chatView.Init()
		case messages.ViewHistory:
			return a, a.historyView.Load()
		case messages.ViewIndex:
			return a, a.indexView.Load()
		case messages.ViewMenu, messages.ViewHelp:
			// No initialisation needed
		}
		return a, nil

	case messages.AnswerReceived, messages.ListenFinished, messages.SpeechFinished:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.SessionsLoaded, messages.TurnsLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.IndexLoaded:
		a.menuView.SetStatus(indexStatus(msg))
		a.indexView, cmd = a.indexView.Update(msg)
		return a, cmd

	case messages.IndexRebuilt:
		a.indexView, cmd = a.indexView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a.updateCurrent(msg)
}

// updateCurrent forwards a message to the active view.
func (a *App) updateCurrent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewIndex:
		a.indexView, cmd = a.indexView.Update(msg)
	case messages.ViewHelp:
		// Esc from help goes to menu
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewIndex:
		return a.indexView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// indexStatus summarises the persisted index for the menu.
func indexStatus(msg messages.IndexLoaded) string {
	switch {
	case errors.Is(msg.Err, domain.ErrIndexNotFound):
		return "Index: not built yet"
	case msg.Err != nil:
		return "Index: unavailable"
	case msg.Info == nil:
		return ""
	}
	return fmt.Sprintf("Index: %d chunks from %d documents (%s)",
		msg.Info.Chunks, msg.Info.Documents, msg.Info.ModelName)
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Chat:
  (type)      Enter a question
  enter       Ask
  ctrl+r      Record a spoken question

Answer:
  n           New question
  s           Speak the answer
  l           Record a spoken question
  ↑/↓         Navigate sources
  enter       Show the selected source

Knowledge base:
  r           Rebuild the index

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.indexView.SetDimensions(width, height)
}
