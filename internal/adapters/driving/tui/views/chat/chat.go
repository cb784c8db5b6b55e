// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")

// View shows the transcript of one chat above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Field
	transcript viewport.Model
	statusbar  *status.Bar

	chat driving.ChatService
	ctx  context.Context

	chatID   string
	messages []domain.Message
	pending  string
	width    int
	height   int
}

// NewView creates a chat view. A non-empty chatID resumes that chat.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService, chatID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewField(s, "Ask:", "Who won the 1976 championship?"),
		transcript: viewport.New(80, 16),
		statusbar:  status.NewBar(s, km.ChatHelp()),
		chat:       chat,
		ctx:        context.Background(),
		chatID:     chatID,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the history of a resumed chat.
func (v *View) Init() tea.Cmd {
	if v.chatID == "" || v.chat == nil {
		return v.input.Init()
	}
	chatID := v.chatID
	return tea.Batch(v.input.Init(), func() tea.Msg {
		msgs, err := v.chat.History(v.ctx, chatID)
		return messages.HistoryLoaded{ChatID: chatID, Messages: msgs, Err: err}
	})
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.HistoryLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.messages = msg.Messages
		v.refresh()
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Submit):
		return v, v.submit()

	case keymap.Matches(key, v.keymap.NewChat):
		v.chatID = ""
		v.messages = nil
		v.pending = ""
		v.statusbar.Clear()
		v.refresh()
		return v, nil

	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Stop words end the session.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending != "" {
		return nil
	}
	if domain.IsStopMessage(question) {
		return func() tea.Msg { return messages.Quit{} }
	}
	if v.chat == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoChatService} }
	}

	v.input.Reset()
	v.pending = question
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	chatID := v.chatID
	return func() tea.Msg {
		answer, err := v.chat.Ask(v.ctx, chatID, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""
	if msg.Err != nil {
		v.setError(msg.Err)
		v.refresh()
		return
	}

	v.chatID = msg.Answer.ChatID
	v.messages = append(v.messages,
		domain.Message{ChatID: v.chatID, Role: domain.RoleUser, Content: msg.Question},
		*msg.Answer,
	)
	v.statusbar.Clear()
	v.statusbar.SetMessage("chat " + v.chatID)
	v.refresh()
}

func (v *View) setError(err error) {
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// refresh re-renders the transcript and scrolls to the newest message.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.messages) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about Formula 1 history. Type exit to leave.")
	}

	wrap := v.styles.Answer.Width(max(v.width-2, 20))
	var b strings.Builder
	for _, m := range v.messages {
		label := v.styles.Assistant.Render("Paddock")
		if m.Role == domain.RoleUser {
			label = v.styles.User.Render("You")
		}
		b.WriteString(label + "\n" + wrap.Render(m.Content) + "\n\n")
	}
	if v.pending != "" {
		b.WriteString(v.styles.User.Render("You") + "\n" + wrap.Render(v.pending) + "\n\n")
		b.WriteString(v.styles.Muted.Render("Thinking..."))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.transcript.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = width
	v.transcript.Height = max(height-8, 3) // input, status and spacing
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// ChatID returns the current chat, empty before the first answer.
func (v *View) ChatID() string {
	return v.chatID
}

// Messages returns the transcript.
func (v *View) Messages() []domain.Message {
	return v.messages
}

// Pending returns the question awaiting an answer.
func (v *View) Pending() string {
	return v.pending
}

// Focus gives the input focus.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}
