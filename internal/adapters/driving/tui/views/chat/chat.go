// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Options configures the voice features of the chat view.
type Options struct {
	// VoiceName is the voice answers are spoken with.
	VoiceName string

	// RecordFor is how long a spoken question is recorded.
	RecordFor time.Duration
}

// View is the conversation view: transcript, question input, the sources
// behind the last answer, and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar

	conversation driving.AssistantService
	voice        driving.VoiceService
	opts         Options
	ctx          context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = reading the answer
	busy       bool
	pending    string // question awaiting an answer
	autoSpeak  bool   // speak the pending answer when it arrives
	expanded   bool   // show the selected source in full
	lastAnswer *domain.Answer
}

// NewView creates a new chat view. voice may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	conversation driving.AssistantService,
	voice driving.VoiceService,
	opts Options,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if opts.RecordFor <= 0 {
		opts.RecordFor = domain.DefaultRecordSeconds * time.Second
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		sources:      list.NewSourceList(s),
		statusbar:    status.NewBar(s, km),
		conversation: conversation,
		voice:        voice,
		opts:         opts,
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		return v.handleAnswer(msg)

	case messages.ListenFinished:
		return v.handleListen(msg)

	case messages.SpeechFinished:
		v.busy = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.SetState(status.StateAnswered)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc always signals to go back to menu
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Ignore input while a question, recording or speech is in flight.
	if v.busy {
		return v, nil
	}

	if msg.String() == "ctrl+r" {
		return v, v.startListening()
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			return v, v.ask(question, false)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Answer mode
	switch msg.String() {
	case "up", "k":
		v.sources.MoveUp()
	case "down", "j":
		v.sources.MoveDown()
	case "enter":
		v.expanded = !v.expanded
	case "n":
		v.focusInput = true
		v.expanded = false
		v.input.SetValue("")
		return v, v.input.Focus()
	case "s":
		if v.lastAnswer != nil {
			return v, v.speak(v.lastAnswer.Text)
		}
	case "l":
		return v, v.startListening()
	}
	return v, nil
}

// ask sends a question to the conversation.
func (v *View) ask(question string, speakAnswer bool) tea.Cmd {
	v.busy = true
	v.pending = question
	v.autoSpeak = speakAnswer
	v.err = nil
	v.input.SetValue("")
	v.input.Blur()
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)

	conversation := v.conversation
	ctx := v.ctx
	return func() tea.Msg {
		if conversation == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAssistant}
		}
		answer, err := conversation.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// startListening records a spoken question.
func (v *View) startListening() tea.Cmd {
	if v.voice == nil {
		v.setError(ErrNoVoice)
		return nil
	}
	v.busy = true
	v.err = nil
	v.statusbar.SetState(status.StateListening)

	voice := v.voice
	ctx := v.ctx
	duration := v.opts.RecordFor
	return func() tea.Msg {
		text, err := voice.Listen(ctx, duration)
		return messages.ListenFinished{Text: text, Err: err}
	}
}

// speak reads text aloud and removes the audio file afterwards.
func (v *View) speak(text string) tea.Cmd {
	if v.voice == nil {
		v.setError(ErrNoVoice)
		return nil
	}
	v.busy = true
	v.statusbar.SetState(status.StateSpeaking)

	voice := v.voice
	ctx := v.ctx
	name := v.opts.VoiceName
	return func() tea.Msg {
		path, err := voice.Speak(ctx, text, name)
		if path != "" {
			_ = os.Remove(path)
		}
		return messages.SpeechFinished{Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) (*View, tea.Cmd) {
	v.busy = false
	v.pending = ""
	if msg.Err != nil {
		// The failed question goes back into the input to retry.
		v.focusInput = true
		v.input.SetValue(msg.Question)
		v.setError(msg.Err)
		return v, v.input.Focus()
	}

	v.err = nil
	v.lastAnswer = msg.Answer
	v.expanded = false
	v.focusInput = false
	v.sources.SetSources(msg.Answer.Sources)
	v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	v.statusbar.SetState(status.StateAnswered)

	if v.autoSpeak {
		v.autoSpeak = false
		return v, v.speak(msg.Answer.Text)
	}
	return v, nil
}

func (v *View) handleListen(msg messages.ListenFinished) (*View, tea.Cmd) {
	v.busy = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return v, nil
	}
	return v, v.ask(msg.Text, true)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("vox"), "")

	if transcript := v.renderTranscript(); transcript != "" {
		sections = append(sections, transcript, "")
	}

	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if !v.focusInput && v.lastAnswer != nil {
		sections = append(sections, v.sources.View())
		if v.expanded {
			if src := v.sources.SelectedSource(); src != nil {
				body := lipgloss.NewStyle().Width(v.contentWidth()).Render(src.Chunk.Content)
				sections = append(sections, "", v.styles.Border.Padding(0, 1).Render(body))
			}
		}
		sections = append(sections, "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders the most recent turns that fit on screen.
func (v *View) renderTranscript() string {
	var turns []domain.Turn
	if v.conversation != nil {
		turns = v.conversation.History()
	}
	if len(turns) == 0 && v.pending == "" {
		return ""
	}

	width := v.contentWidth()
	answerStyle := v.styles.Answer.Width(width)
	blocks := make([]string, 0, len(turns)*2+1)
	for _, turn := range turns {
		blocks = append(blocks,
			v.styles.Question.Render("You: ")+v.styles.Normal.Render(turn.Question),
			answerStyle.Render(turn.Answer),
		)
	}
	if v.pending != "" {
		blocks = append(blocks, v.styles.Question.Render("You: ")+v.styles.Normal.Render(v.pending))
	}

	// Keep the newest lines within the space left by the other sections.
	lines := strings.Split(strings.Join(blocks, "\n"), "\n")
	budget := v.height - 12
	if !v.focusInput {
		budget -= 8
	}
	if budget < 3 {
		budget = 3
	}
	if len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}
	return strings.Join(lines, "\n")
}

func (v *View) contentWidth() int {
	if v.width < 24 {
		return 20
	}
	return v.width - 4
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, 8)
	v.statusbar.SetWidth(width)
}

// SetConversation replaces the conversation.
func (v *View) SetConversation(conversation driving.AssistantService) {
	v.conversation = conversation
	v.Reset()
}

// Width returns the view width.
func (v *View) Width() int {
	return v.width
}

// Height returns the view height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether a question, recording or speech is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// LastAnswer returns the most recent answer, or nil.
func (v *View) LastAnswer() *domain.Answer {
	return v.lastAnswer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to input mode without clearing the conversation.
func (v *View) Reset() {
	v.focusInput = true
	v.expanded = false
	v.input.Focus()
	v.input.SetValue("")
	v.err = nil
	v.statusbar.Clear()
}
