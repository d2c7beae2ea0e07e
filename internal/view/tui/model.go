package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// Form is the part of the controller the terminal UI drives.
type Form interface {
	SelectImage(ctx context.Context, f controller.File) error
	SetText(text string)
	SetFontSize(v int) int
	SetOpacity(v int) int
	SetAngle(v int) int
	SetColor(color string) error
	Download(ctx context.Context, saver controller.ResultSaver) (string, error)
	State() controller.State
}

type focus int

const (
	focusImage focus = iota
	focusText
	focusFontSize
	focusOpacity
	focusAngle
	focusColor
	focusDownload
	focusCount
)

var (
	labelStyle    = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("245"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	panelStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(0, 1)
	alertStyle    = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2)
	loadingStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

type Model struct {
	ctx   context.Context
	form  Form
	saver controller.ResultSaver
	edits *editQueue

	focus      focus
	imageInput textinput.Model
	textInput  textinput.Model
	colorInput textinput.Model
	spinner    spinner.Model

	params       entity.Params
	preview      string
	downloadable bool
	loading      bool
	alert        string
	saved        string

	width  int
	height int
}

// NewModel starts the goroutine that applies edits to form; it stops with ctx.
func NewModel(ctx context.Context, form Form, saver controller.ResultSaver, imagePath string) Model {
	state := form.State()

	image := textinput.New()
	image.Placeholder = "path/to/image.png"
	image.SetValue(imagePath)
	image.Focus()

	text := textinput.New()
	text.Placeholder = "watermark text"
	text.SetValue(state.Params.Text)

	color := textinput.New()
	color.Placeholder = entity.DefaultColor
	color.CharLimit = 7
	color.SetValue(state.Params.Color)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		ctx:        ctx,
		form:       form,
		saver:      saver,
		edits:      newEditQueue(ctx),
		imageInput: image,
		textInput:  text,
		colorInput: color,
		spinner:    s,
		params:     state.Params,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.imageInput.Value() != "" {
		cmds = append(cmds, m.selectImage(m.imageInput.Value()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case previewMsg:
		m.preview = msg.src
		m.downloadable = msg.downloadable
		if !msg.downloadable {
			m.saved = ""
		}
		return m, nil

	case readoutMsg:
		switch msg.field {
		case controller.FieldFontSize:
			m.params.FontSize = msg.value
		case controller.FieldOpacity:
			m.params.Opacity = msg.value
		case controller.FieldAngle:
			m.params.Angle = msg.value
		}
		return m, nil

	case loadingMsg:
		m.loading = bool(msg)
		if m.loading {
			return m, m.spinner.Tick
		}
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case savedMsg:
		m.saved = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// Controller calls never run on the Update goroutine: the controller reports
// back through the Bridge, and Program.Send must not be called from Update.
// Edits go through the edit queue so they reach the form in keystroke order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// an alert blocks the form until it is dismissed
	if m.alert != "" {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.alert = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	switch m.focus {
	case focusImage:
		if msg.String() == "enter" {
			return m, m.selectImage(strings.TrimSpace(m.imageInput.Value()))
		}
		var cmd tea.Cmd
		m.imageInput, cmd = m.imageInput.Update(msg)
		return m, cmd

	case focusText:
		before := m.textInput.Value()
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		if text := m.textInput.Value(); text != before {
			m.params.Text = text
			m.edits.push(func() error {
				m.form.SetText(text)
				return nil
			})
		}
		return m, cmd

	case focusFontSize, focusOpacity, focusAngle:
		step := 0
		switch msg.String() {
		case "left", "h":
			step = -1
		case "right", "l":
			step = 1
		case "pgdown", "shift+left":
			step = -10
		case "pgup", "shift+right":
			step = 10
		}
		if step == 0 {
			return m, nil
		}
		return m.nudge(step)

	case focusColor:
		if msg.String() == "enter" {
			color := strings.TrimSpace(m.colorInput.Value())
			return m, tea.Cmd(func() tea.Msg {
				if err := m.form.SetColor(color); err != nil {
					return alertMsg(err.Error())
				}
				return nil
			})
		}
		var cmd tea.Cmd
		m.colorInput, cmd = m.colorInput.Update(msg)
		return m, cmd

	case focusDownload:
		if msg.String() == "enter" && m.downloadable {
			return m, tea.Cmd(func() tea.Msg {
				location, err := m.form.Download(m.ctx, m.saver)
				if err != nil {
					return alertMsg(err.Error())
				}
				return savedMsg(location)
			})
		}
	}
	return m, nil
}

func (m Model) nudge(step int) (tea.Model, tea.Cmd) {
	var set func(int) int
	var value *int
	switch m.focus {
	case focusFontSize:
		set, value = m.form.SetFontSize, &m.params.FontSize
		*value = entity.Clamp(*value+step, entity.MinFontSize, entity.MaxFontSize)
	case focusOpacity:
		set, value = m.form.SetOpacity, &m.params.Opacity
		*value = entity.Clamp(*value+step, entity.MinOpacity, entity.MaxOpacity)
	case focusAngle:
		set, value = m.form.SetAngle, &m.params.Angle
		*value = entity.Clamp(*value+step, entity.MinAngle, entity.MaxAngle)
	}
	v := *value
	m.edits.push(func() error {
		set(v)
		return nil
	})
	return m, nil
}

// awaitEdit turns a failed edit into an alert.
func (m Model) awaitEdit(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-done:
			if err != nil {
				return alertMsg(err.Error())
			}
		case <-m.ctx.Done():
		}
		return nil
	}
}

func (m Model) setFocus(f focus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.imageInput.Blur()
	m.textInput.Blur()
	m.colorInput.Blur()

	var cmd tea.Cmd
	switch f {
	case focusImage:
		cmd = m.imageInput.Focus()
	case focusText:
		cmd = m.textInput.Focus()
	case focusColor:
		cmd = m.colorInput.Focus()
	}
	return m, cmd
}

func (m Model) selectImage(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return tea.Cmd(func() tea.Msg {
		f, err := controller.OpenFile(path)
		if err != nil {
			return alertMsg(err.Error())
		}
		// rejection and read errors are alerted through the view
		m.form.SelectImage(m.ctx, f)
		return nil
	})
}

func (m Model) View() string {
	form := m.formView()
	preview := m.previewView()
	main := lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(form), panelStyle.Render(preview))

	var overlay string
	switch {
	case m.alert != "":
		overlay = alertStyle.Render(m.alert + "\n\n[ OK ]")
	case m.loading:
		overlay = loadingStyle.Render(m.spinner.View() + " Applying watermark...")
	}
	if overlay == "" {
		return main
	}
	if m.width == 0 || m.height == 0 {
		return main + "\n" + overlay
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

func (m Model) formView() string {
	var b strings.Builder
	row := func(f focus, label, value string) {
		l := labelStyle.Render(label)
		if m.focus == f {
			l = focusedStyle.Width(12).Render(label)
		}
		b.WriteString(l + " " + value + "\n")
	}

	row(focusImage, "Image", m.imageInput.View())
	row(focusText, "Text", m.textInput.View())
	row(focusFontSize, "Font size", slider(m.params.FontSize, entity.MinFontSize, entity.MaxFontSize))
	row(focusOpacity, "Opacity", slider(m.params.Opacity, entity.MinOpacity, entity.MaxOpacity))
	row(focusAngle, "Angle", slider(m.params.Angle, entity.MinAngle, entity.MaxAngle))
	row(focusColor, "Color", m.colorInput.View())

	button := disabledStyle.Render("[ Download ]")
	if m.downloadable {
		button = buttonStyle.Render("[ Download ]")
		if m.focus == focusDownload {
			button = buttonStyle.Background(lipgloss.Color("7")).Render("[ Download ]")
		}
	}
	b.WriteString("\n" + button + "\n")
	b.WriteString(disabledStyle.Render("tab: next field  ←/→: adjust  enter: apply  esc: quit"))
	return b.String()
}

func (m Model) previewView() string {
	if m.preview == "" {
		return disabledStyle.Render("No image selected")
	}
	var b strings.Builder
	if m.downloadable {
		b.WriteString(focusedStyle.Render("Watermarked") + "\n")
		b.WriteString(m.preview + "\n")
	} else {
		b.WriteString("Original\n")
		b.WriteString(abbreviate(m.preview) + "\n")
	}
	if m.saved != "" {
		b.WriteString("\nSaved to " + m.saved + "\n")
	}
	return b.String()
}

func slider(value, lo, hi int) string {
	const width = 20
	filled := 0
	if hi > lo {
		filled = (value - lo) * width / (hi - lo)
	}
	return fmt.Sprintf("[%s%s] %d", strings.Repeat("=", filled), strings.Repeat(" ", width-filled), value)
}

func abbreviate(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 40 {
		return src[:40] + fmt.Sprintf("... (%d bytes)", len(src))
	}
	return src
}
