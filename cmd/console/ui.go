package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/session"
	"github.com/nvaneck/escape-engine/pkg/textfilter"
)

const (
	AvatarName      = "Avatar"
	PlaceHolderText = "Tell the avatar what to do..."
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	view         *session.ClientView
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Local transcript, including hint lines the server view does not carry
	transcript []chat.ChatMessage

	// Graph selection state
	showGraphModal bool
	graphs         []string
	selectedGraph  int
	loadingGraphs  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResponseMsg struct {
	result *chat.TurnResult
	err    error
}

type sessionMsg struct {
	view *session.ClientView
	err  error
}

type graphsLoadedMsg struct {
	graphs []string
	err    error
}

type sessionCreatedMsg struct {
	view *session.ClientView
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	avatarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showGraphModal: true,
		loadingGraphs:  true,
		selectedGraph:  0,
	}
}

func writeMetadata(v *session.ClientView) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ESCAPE ROOM") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(v.ID.String()[:8] + "...\n\n")

	content.WriteString("Room:\n")
	content.WriteString(textfilter.DisplayName(v.GraphName) + "\n\n")

	content.WriteString("Avatar location:\n")
	content.WriteString(textfilter.DisplayName(v.CurrentLocation) + "\n\n")

	content.WriteString("Clues solved:\n")
	content.WriteString(fmt.Sprintf("%d of %d\n\n", v.CluesCompleted, v.TotalClues))

	content.WriteString("Visited:\n")
	if len(v.VisitHistory) == 0 {
		content.WriteString("Nowhere yet\n")
	} else {
		for _, loc := range v.VisitHistory {
			content.WriteString("• " + textfilter.DisplayName(loc) + "\n")
		}
	}

	if v.GameOver {
		content.WriteString("\n")
		content.WriteString(titleStyle.Render("ESCAPED!") + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy log\n")
	content.WriteString("• Ctrl+N: New game\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

// writeChatContent rebuilds the chat pane from the transcript for the
// current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("ESCAPE ENGINE") + "\n\n")
	content.WriteString("You are on comms with someone trapped inside. Tell them what to do.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range m.transcript {
		switch msg.Role {
		case chat.ChatRoleAvatar:
			prefix := avatarStyle.Render(AvatarName + ": ")
			content.WriteString(prefix + wordwrap.String(msg.Content, max(chatWidth-len(AvatarName)-2, 10)) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, max(chatWidth-6, 10)) + "\n\n")
		case chat.ChatRoleSystem:
			// Hint lines ride on the system role locally
			content.WriteString(hintStyle.Render(wordwrap.String(msg.Content, max(chatWidth-2, 10))) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// transcriptText renders the transcript as plain text for the clipboard.
func (m *ConsoleUI) transcriptText() string {
	var b strings.Builder
	for _, msg := range m.transcript {
		switch msg.Role {
		case chat.ChatRoleAvatar:
			b.WriteString(AvatarName + ": " + msg.Content + "\n\n")
		case chat.ChatRoleUser:
			b.WriteString("You: " + msg.Content + "\n\n")
		case chat.ChatRoleSystem:
			b.WriteString("[" + msg.Content + "]\n\n")
		}
	}
	return b.String()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showGraphModal {
		return m.loadGraphs()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showGraphModal {
		return m.updateGraphModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// The viewport ignores events outside its bounds
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.ready = true
		m.writeChatContent()
		if m.view != nil {
			m.metaViewport.SetContent(writeMetadata(m.view))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			// Best effort; clipboard may be unavailable over SSH
			_ = clipboard.WriteAll(m.transcriptText())
			return m, nil
		case tea.KeyCtrlN:
			m.showGraphModal = true
			m.loadingGraphs = true
			m.err = nil
			return m, m.loadGraphs()
		case tea.KeyEnter:
			if m.loading || m.view == nil {
				return m, nil
			}
			if m.view.GameOver {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.transcript = append(m.transcript, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurnMessage(input), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.transcript = append(m.transcript, chat.ChatMessage{
				Role:    chat.ChatRoleAvatar,
				Content: msg.result.AvatarReply,
			})
			if msg.result.HiddenArea != nil {
				m.transcript = append(m.transcript, chat.ChatMessage{
					Role:    chat.ChatRoleSystem,
					Content: "Something was uncovered: " + *msg.result.HiddenArea,
				})
			}
			if msg.result.GameOver {
				m.transcript = append(m.transcript, chat.ChatMessage{
					Role:    chat.ChatRoleSystem,
					Content: "They made it out. Press Ctrl+N for a new game.",
				})
			}
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.view != nil {
			m.view = msg.view
			m.metaViewport.SetContent(writeMetadata(m.view))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resizePanels() {
	if m.width == 0 || m.height == 0 {
		return
	}
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) sendTurnMessage(message string) tea.Cmd {
	return func() tea.Msg {
		result, err := sendTurn(m.client, m.config.APIBaseURL, m.view.ID, message)
		return turnResponseMsg{result, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		view, err := getSession(m.client, m.config.APIBaseURL, m.view.ID)
		return sessionMsg{view, err}
	}
}

func (m ConsoleUI) loadGraphs() tea.Cmd {
	return func() tea.Msg {
		graphs, err := listGraphs(m.client, m.config.APIBaseURL)
		return graphsLoadedMsg{graphs, err}
	}
}

func (m ConsoleUI) createSessionFromGraph(graphName string) tea.Cmd {
	return func() tea.Msg {
		view, err := createSession(m.client, m.config.APIBaseURL, graphName)
		return sessionCreatedMsg{view, err}
	}
}

func (m ConsoleUI) updateGraphModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case graphsLoadedMsg:
		m.loadingGraphs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.graphs = msg.graphs
			m.selectedGraph = 0
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.view = msg.view
			m.transcript = nil
			m.showGraphModal = false
			m.resizePanels()
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.view))
			m.textarea.Reset()
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingGraphs || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedGraph > 0 {
				m.selectedGraph--
			}
		case tea.KeyDown:
			if m.selectedGraph < len(m.graphs)-1 {
				m.selectedGraph++
			}
		case tea.KeyEnter:
			if len(m.graphs) > 0 {
				m.loading = true
				return m, m.createSessionFromGraph(m.graphs[m.selectedGraph])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showGraphModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave them in there?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderGraphModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingGraphs {
		content.WriteString(modalTitleStyle.Render("Loading Rooms..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching available escape rooms..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load rooms: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Opening the comm channel..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Room"))
		content.WriteString("\n\n")

		for i, name := range m.graphs {
			display := textfilter.DisplayName(name)
			if i == m.selectedGraph {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", display)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", display)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showGraphModal {
		return m.renderGraphModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a turn is in flight.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
