// Package ui provides interactive terminal UI components for CommitCraft.
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/commitcraft/commitcraft/internal/pkg/message"
)

// Action represents a user action in the interactive UI.
type Action int

const (
	ActionAccept Action = iota
	ActionEdit
	ActionRegenerate
	ActionCancel
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionEdit:
		return "edit"
	case ActionRegenerate:
		return "regenerate"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// ProgressSpinner provides loading animation with progress tracking, used
// while generating multiple candidate messages.
type ProgressSpinner interface {
	Spinner
	SetTotal(total int)
	SetCurrent(current int)
}

// Manager defines the interface for UI operations.
type Manager interface {
	DisplayMessage(msg *message.CommitMessage) error
	PromptAction() (Action, error)
	PromptSelectCandidate(candidates []*message.CommitMessage) (int, error)
	EditMessage(msg *message.CommitMessage) (*message.CommitMessage, error)
	ShowSpinner(text string) Spinner
	ShowProgressSpinner(text string, total int) ProgressSpinner
	ShowError(err error)
	ShowSuccess(msg string)
	PromptConfirm(msg string) (bool, error)
}

// DefaultManager implements the Manager interface using charmbracelet libraries.
type DefaultManager struct {
	colorEnabled bool
	editor       string
	spinnerStyle string
	styles       *styles
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	body       lipgloss.Style
	breaking   lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	info       lipgloss.Style
}

// NewDefaultManager creates a new DefaultManager with the specified options.
// spinnerStyle is a configured spinner name ("dots", "line", ...); unknown
// names fall back to dots.
func NewDefaultManager(colorEnabled bool, editor, spinnerStyle string) *DefaultManager {
	m := &DefaultManager{
		colorEnabled: colorEnabled,
		editor:       editor,
		spinnerStyle: spinnerStyle,
	}
	m.styles = initStyles(colorEnabled)
	return m
}

// spinnerByName maps a configured spinner style name to a bubbles spinner.
func spinnerByName(name string) spinner.Spinner {
	switch name {
	case "line":
		return spinner.Line
	case "jump":
		return spinner.Jump
	case "pulse":
		return spinner.Pulse
	case "points":
		return spinner.Points
	case "minidot":
		return spinner.MiniDot
	case "meter":
		return spinner.Meter
	default:
		return spinner.Dot
	}
}

// initStyles initializes the lipgloss styles.
func initStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		return &styles{
			title:      lipgloss.NewStyle(),
			header:     lipgloss.NewStyle(),
			body:       lipgloss.NewStyle(),
			breaking:   lipgloss.NewStyle(),
			success:    lipgloss.NewStyle(),
			errorStyle: lipgloss.NewStyle(),
			info:       lipgloss.NewStyle(),
		}
	}

	return &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		body: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		breaking: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")),
		success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
	}
}

// DisplayMessage displays the generated commit message to the user.
func (m *DefaultManager) DisplayMessage(msg *message.CommitMessage) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	fmt.Println()
	fmt.Println(m.styles.title.Render("Generated Commit Message"))
	fmt.Println(strings.Repeat("-", 50))

	fmt.Println(m.styles.header.Render(msg.Header()))

	if msg.Body != "" {
		fmt.Println()
		fmt.Println(m.styles.body.Render(msg.Body))
	}

	if msg.BreakingChange {
		fmt.Println()
		fmt.Println(m.styles.breaking.Render("! breaking change"))
	}

	fmt.Println(strings.Repeat("-", 50))
	fmt.Println()

	return nil
}

// PromptAction prompts the user to select an action using Bubble Tea.
func (m *DefaultManager) PromptAction() (Action, error) {
	model := newActionSelectModel()
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return ActionCancel, err
	}

	result := finalModel.(actionSelectModel)
	return result.selected, nil
}

// actionSelectModel is the Bubble Tea model for action selection.
type actionSelectModel struct {
	choices  []actionChoice
	cursor   int
	selected Action
	done     bool
}

type actionChoice struct {
	action Action
	label  string
	icon   string
	desc   string
}

func newActionSelectModel() actionSelectModel {
	return actionSelectModel{
		choices: []actionChoice{
			{ActionAccept, "Accept", "›", "Commit with this message"},
			{ActionEdit, "Edit", "•", "Modify the message"},
			{ActionRegenerate, "Regenerate", "↻", "Generate a new message"},
			{ActionCancel, "Cancel", "×", "Abort without committing"},
		},
		cursor:   0,
		selected: ActionCancel,
	}
}

func (m actionSelectModel) Init() tea.Cmd {
	return nil
}

func (m actionSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.selected = ActionCancel
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.selected = m.choices[m.cursor].action
			m.done = true
			return m, tea.Quit
		case "1":
			m.selected = ActionAccept
			m.done = true
			return m, tea.Quit
		case "2":
			m.selected = ActionEdit
			m.done = true
			return m, tea.Quit
		case "3":
			m.selected = ActionRegenerate
			m.done = true
			return m, tea.Quit
		case "4":
			m.selected = ActionCancel
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m actionSelectModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212"))

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("What would you like to do?"))
	sb.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▸ "
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s %s", cursor, choice.icon, style.Render(choice.label))
		sb.WriteString(line)
		sb.WriteString(descStyle.Render(fmt.Sprintf(" - %s", choice.desc)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(descStyle.Render("↑/↓ or j/k to move • Enter to select • 1-4 quick select • q to cancel"))

	return sb.String()
}

// PromptSelectCandidate lets the user pick one of several generated
// candidates. Returns the index of the chosen message.
func (m *DefaultManager) PromptSelectCandidate(candidates []*message.CommitMessage) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidates to select from")
	}
	if len(candidates) == 1 {
		return 0, nil
	}

	options := make([]huh.Option[int], len(candidates))
	for i, c := range candidates {
		options[i] = huh.NewOption(fmt.Sprintf("%d. %s", i+1, c.Header()), i)
	}

	selected := 0
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Pick a commit message").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return 0, err
	}

	return selected, nil
}

// EditMessage opens an editor for the user to modify the commit message.
func (m *DefaultManager) EditMessage(msg *message.CommitMessage) (*message.CommitMessage, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	editContent := msg.Format()

	// Prefer an external editor, fall back to the inline text area.
	editor := m.getEditor()
	if editor != "" {
		edited, err := m.editWithExternalEditor(editor, editContent)
		if err == nil {
			return parseEditedMessage(edited), nil
		}
		fmt.Println(m.styles.info.Render("External editor not available, using inline editor..."))
	}

	edited, err := m.editWithInlineEditor(editContent)
	if err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}

	return parseEditedMessage(edited), nil
}

// getEditor returns the editor to use for editing messages.
func (m *DefaultManager) getEditor() string {
	if m.editor != "" {
		return m.editor
	}

	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}

	return ""
}

// editWithExternalEditor opens an external editor for editing.
func (m *DefaultManager) editWithExternalEditor(editor, content string) (string, error) {
	tmpFile, err := os.CreateTemp("", "commitcraft-commit-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	tmpFile.Close()

	cmd := exec.Command(editor, tmpPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}

	return string(edited), nil
}

// editWithInlineEditor uses a huh text area for inline editing.
func (m *DefaultManager) editWithInlineEditor(content string) (string, error) {
	edited := content

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Edit Commit Message").
				Description("Edit below. Press Ctrl+D or Tab then Enter to save. Ctrl+C or Esc to cancel.").
				Value(&edited).
				CharLimit(0),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	return edited, nil
}

// parseEditedMessage parses the edited text back into a CommitMessage.
// The user's text is kept verbatim even when it no longer follows the
// conventional format.
func parseEditedMessage(edited string) *message.CommitMessage {
	edited = strings.TrimSpace(edited)
	if edited == "" {
		return &message.CommitMessage{}
	}

	if parsed, err := message.Parse(edited); err == nil {
		return parsed
	}

	parts := strings.SplitN(edited, "\n\n", 2)
	msg := &message.CommitMessage{
		Description: strings.TrimSpace(strings.SplitN(parts[0], "\n", 2)[0]),
		Raw:         edited,
	}
	if len(parts) > 1 {
		msg.Body = strings.TrimSpace(parts[1])
	}
	return msg
}

// ShowSpinner creates and returns a spinner for loading states.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(text, spinnerByName(m.spinnerStyle))
}

// ShowProgressSpinner creates a spinner with progress tracking.
func (m *DefaultManager) ShowProgressSpinner(text string, total int) ProgressSpinner {
	return newBubbleProgressSpinner(text, total, spinnerByName(m.spinnerStyle))
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Println()
	fmt.Println(m.styles.errorStyle.Render("Error: " + err.Error()))
	fmt.Println()
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(msg string) {
	fmt.Println()
	fmt.Println(m.styles.success.Render("[OK] " + msg))
	fmt.Println()
}

// PromptConfirm prompts the user for a yes/no confirmation using Bubble Tea.
func (m *DefaultManager) PromptConfirm(msg string) (bool, error) {
	model := newConfirmModel(msg)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	result := finalModel.(confirmModel)
	return result.confirmed, nil
}

// confirmModel is the Bubble Tea model for yes/no confirmation.
type confirmModel struct {
	message   string
	cursor    int // 0 = Yes, 1 = No
	confirmed bool
	done      bool
}

func newConfirmModel(message string) confirmModel {
	return confirmModel{
		message: message,
		cursor:  0,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "n":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "left", "h":
			m.cursor = 0
		case "right", "l":
			m.cursor = 1
		case "enter", " ":
			m.confirmed = m.cursor == 0
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42"))

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.message))
	sb.WriteString(" ")

	yesStyle := normalStyle
	noStyle := normalStyle
	if m.cursor == 0 {
		yesStyle = selectedStyle
	} else {
		noStyle = selectedStyle
	}

	sb.WriteString(yesStyle.Render("[Y]es"))
	sb.WriteString(" / ")
	sb.WriteString(noStyle.Render("[N]o"))

	return sb.String()
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	text    string
	program *tea.Program
	model   *spinnerModel
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTickMsg is sent to update spinner text from outside.
type spinnerTickMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(text string, style spinner.Spinner) *bubbleSpinner {
	s := spinner.New()
	s.Spinner = style
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	model := &spinnerModel{
		spinner: s,
		text:    text,
	}

	return &bubbleSpinner{
		text:  text,
		model: model,
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.program = tea.NewProgram(s.model)
	go func() {
		_, _ = s.program.Run()
	}()
}

func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		s.program.Send(spinnerQuitMsg{})
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.program != nil {
		s.program.Send(spinnerTickMsg{text: text})
	}
}

// bubbleProgressSpinner implements ProgressSpinner using Bubble Tea.
type bubbleProgressSpinner struct {
	text    string
	total   int
	current int
	style   spinner.Spinner
	program *tea.Program
	mu      sync.Mutex
}

// progressModel is the Bubble Tea model for progress spinner.
type progressModel struct {
	spinner  spinner.Model
	progress progress.Model
	text     string
	total    int
	current  int
	quitting bool
}

// progressUpdateMsg updates progress state.
type progressUpdateMsg struct {
	current int
	total   int
	text    string
}

// progressQuitMsg signals quit.
type progressQuitMsg struct{}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdateMsg:
		m.current = msg.current
		m.total = msg.total
		if msg.text != "" {
			m.text = msg.text
		}
		return m, nil
	case progressQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(m.progress.ViewAs(percent))
	sb.WriteString(fmt.Sprintf(" %d/%d ", m.current, m.total))
	sb.WriteString(m.text)

	return sb.String()
}

func newBubbleProgressSpinner(text string, total int, style spinner.Spinner) *bubbleProgressSpinner {
	return &bubbleProgressSpinner{
		text:  text,
		total: total,
		style: style,
	}
}

func (s *bubbleProgressSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp := spinner.New()
	sp.Spinner = s.style
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(20),
		progress.WithoutPercentage(),
	)

	model := progressModel{
		spinner:  sp,
		progress: prog,
		text:     s.text,
		total:    s.total,
		current:  0,
	}

	s.program = tea.NewProgram(model)
	go func() {
		_, _ = s.program.Run()
	}()
}

func (s *bubbleProgressSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		s.program.Send(progressQuitMsg{})
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *bubbleProgressSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.program != nil {
		s.program.Send(progressUpdateMsg{current: s.current, total: s.total, text: text})
	}
}

func (s *bubbleProgressSpinner) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = total
	if s.program != nil {
		s.program.Send(progressUpdateMsg{current: s.current, total: total, text: s.text})
	}
}

func (s *bubbleProgressSpinner) SetCurrent(current int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = current
	if s.program != nil {
		s.program.Send(progressUpdateMsg{current: current, total: s.total, text: s.text})
	}
}

// NonInteractiveManager implements Manager for non-interactive mode (--yes flag).
type NonInteractiveManager struct {
	colorEnabled bool
	styles       *styles
}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager(colorEnabled bool) *NonInteractiveManager {
	return &NonInteractiveManager{
		colorEnabled: colorEnabled,
		styles:       initStyles(colorEnabled),
	}
}

// DisplayMessage displays the generated commit message.
func (m *NonInteractiveManager) DisplayMessage(msg *message.CommitMessage) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	fmt.Println(msg.Format())
	return nil
}

// PromptAction always returns ActionAccept in non-interactive mode.
func (m *NonInteractiveManager) PromptAction() (Action, error) {
	return ActionAccept, nil
}

// PromptSelectCandidate always picks the first candidate in non-interactive mode.
func (m *NonInteractiveManager) PromptSelectCandidate(candidates []*message.CommitMessage) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidates to select from")
	}
	return 0, nil
}

// EditMessage returns the original message unchanged in non-interactive mode.
func (m *NonInteractiveManager) EditMessage(msg *message.CommitMessage) (*message.CommitMessage, error) {
	return msg, nil
}

// ShowSpinner returns a no-op spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowSpinner(text string) Spinner {
	return &noopSpinner{}
}

// ShowProgressSpinner returns a no-op progress spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowProgressSpinner(text string, total int) ProgressSpinner {
	return &noopProgressSpinner{}
}

// ShowError displays an error message.
func (m *NonInteractiveManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
}

// ShowSuccess displays a success message.
func (m *NonInteractiveManager) ShowSuccess(msg string) {
	fmt.Println(msg)
}

// PromptConfirm always returns true in non-interactive mode.
func (m *NonInteractiveManager) PromptConfirm(msg string) (bool, error) {
	return true, nil
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (s *noopSpinner) Start()            {}
func (s *noopSpinner) Stop()             {}
func (s *noopSpinner) UpdateText(string) {}

// noopProgressSpinner is a no-op implementation of ProgressSpinner.
type noopProgressSpinner struct{}

func (s *noopProgressSpinner) Start()            {}
func (s *noopProgressSpinner) Stop()             {}
func (s *noopProgressSpinner) UpdateText(string) {}
func (s *noopProgressSpinner) SetTotal(int)      {}
func (s *noopProgressSpinner) SetCurrent(int)    {}
