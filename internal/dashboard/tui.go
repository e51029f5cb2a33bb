package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Fetcher looks up one address.
type Fetcher interface {
	FetchProperty(ctx context.Context, address string) (*types.PropertyData, error)
}

// resultMsg delivers a finished lookup tagged with the search that issued it.
type resultMsg struct {
	seq   int
	state State
}

// Model is the interactive search screen. Each submitted search supersedes the
// previous one: its request is cancelled and any late result is dropped.
type Model struct {
	fetcher  Fetcher
	renderer *Renderer
	timeout  time.Duration

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	state  State
	seq    int
	cancel context.CancelFunc

	width, height int
}

// NewModel creates the search screen. timeout bounds each lookup.
func NewModel(fetcher Fetcher, renderer *Renderer, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a street address, e.g. 5500 Grand Lake Dr, San Antonio, TX 78244"
	ti.Prompt = "❯ "
	ti.CharLimit = 256
	ti.Width = renderer.Width() - 4
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sectionTitleStyle

	vp := viewport.New(renderer.Width(), 20)

	return Model{
		fetcher:  fetcher,
		renderer: renderer,
		timeout:  timeout,
		input:    ti,
		spinner:  sp,
		viewport: vp,
		width:    renderer.Width(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if r, err := NewRenderer(msg.Width, m.renderer.style); err == nil {
			m.renderer = r
		}
		m.input.Width = msg.Width - 4
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-lipgloss.Height(m.headerView())-1, 3)
		m.refresh()
		return m, nil

	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.cancel = nil
		m.state = msg.state
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if _, loading := m.state.(Pending); !loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a lookup for the current input, superseding any in-flight one.
func (m Model) submit() (tea.Model, tea.Cmd) {
	address := strings.TrimSpace(m.input.Value())

	m.seq++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if address == "" {
		m.state = Failed{Kind: KindValidation, Message: MsgEnterAddress}
		m.refresh()
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	m.cancel = cancel
	m.state = Pending{Address: address}
	m.refresh()

	return m, tea.Batch(fetch(ctx, cancel, m.fetcher, m.seq, address), m.spinner.Tick)
}

func fetch(ctx context.Context, cancel context.CancelFunc, f Fetcher, seq int, address string) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		data, err := f.FetchProperty(ctx, address)
		return resultMsg{seq: seq, state: StateOf(data, err)}
	}
}

func (m *Model) refresh() {
	if m.state == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderer.Render(m.state))
	m.viewport.GotoTop()
}

// State returns the currently displayed state, nil before the first search.
func (m Model) State() State {
	return m.state
}

func (m Model) headerView() string {
	title := titleStyle.Render("ShelterSignal") + " " + subtitleStyle.Render("property insights")
	help := subtitleStyle.Render("enter: search · ↑/↓ pgup/pgdn: scroll · esc: quit")
	return title + "\n" + m.input.View() + "\n" + help
}

func (m Model) View() string {
	body := m.viewport.View()
	if p, loading := m.state.(Pending); loading {
		body = m.spinner.View() + " " + subtitleStyle.Render(MsgLoading+" "+p.Address)
	}
	return m.headerView() + "\n" + body
}

// Run starts the interactive search screen and blocks until it exits.
func Run(ctx context.Context, fetcher Fetcher, renderer *Renderer, timeout time.Duration) error {
	p := tea.NewProgram(NewModel(fetcher, renderer, timeout), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
