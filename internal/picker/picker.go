package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/onvifctl/internal/discovery"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/ui"
)

// ManualService is the Service of a camera typed in by the user
const ManualService = "manual"

// ScanFunc finds cameras; discovery.Scanner.Scan fits
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

type scanStartMsg struct{}

type scanDoneMsg struct {
	devices []*discovery.Device
	err     error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Rescan, k.Manual, k.Quit}}
}

type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Confirm, k.Cancel} }

// FullHelp returns keybindings for the expanded help view
func (k manualKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// cameraItem wraps a Device for bubbles/list
type cameraItem struct {
	device *discovery.Device
}

func (c cameraItem) FilterValue() string {
	return c.device.Instance + " " + c.device.IP + " " + c.device.Hostname
}

func (c cameraItem) Title() string {
	if c.device.Service == ManualService {
		return "Manual: " + c.device.IP
	}
	return c.device.Instance
}

func (c cameraItem) Description() string {
	return fmt.Sprintf("%s • %s", net.JoinHostPort(c.device.IP, strconv.Itoa(c.device.Port)), c.device.Service)
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(ui.MutedColor)
	warningStyle  = lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true)
)

// Model is the picker screen state
type Model struct {
	ctx     context.Context
	scan    ScanFunc
	timeout time.Duration

	scanning bool
	started  time.Time
	cameras  list.Model
	err      error
	chosen   *discovery.Device

	manual    bool
	hostInput textinput.Model

	width      int
	spinner    spinner.Model
	bar        progress.Model
	help       help.Model
	keys       keyMap
	manualKeys manualKeyMap
}

// New creates a picker that scans with scan. timeout only scales the
// progress bar; scan enforces its own.
func New(ctx context.Context, scan ScanFunc, timeout time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	input := textinput.New()
	input.Placeholder = "192.168.1.64 or camera.local:8080"
	input.CharLimit = 253
	input.Width = 40

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	cameras := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	cameras.Title = "Cameras"
	cameras.SetShowStatusBar(false)
	cameras.SetFilteringEnabled(true)
	cameras.SetShowHelp(false)
	cameras.Styles.Title = titleStyle

	return Model{
		ctx:       ctx,
		scan:      scan,
		timeout:   timeout,
		cameras:   cameras,
		hostInput: input,
		spinner:   s,
		bar:       bar,
		help:      help.New(),
		keys: keyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter address")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		manualKeys: manualKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
	}
}

// Init starts the first scan
func (m Model) Init() tea.Cmd {
	return m.startScan()
}

func (m Model) startScan() tea.Cmd {
	ctx, scan := m.ctx, m.scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			devices, err := scan(ctx)
			return scanDoneMsg{devices: devices, err: err}
		},
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.manual {
			return m.updateManual(msg)
		}
		if m.cameras.FilterState() == list.Filtering {
			m.cameras, cmd = m.cameras.Update(msg)
			return m, cmd
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.cameras.SetSize(msg.Width-4, msg.Height-6)

	case scanStartMsg:
		m.scanning = true
		m.started = time.Now()

	case scanDoneMsg:
		m.scanning = false
		m.err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = cameraItem{device: d}
		}
		return m, m.cameras.SetItems(items)

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.cameras.SelectedItem().(cameraItem); ok && !m.scanning {
			m.chosen = item.device
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		if m.scanning {
			return m, nil
		}
		m.err = nil
		return m, tea.Batch(m.cameras.SetItems(nil), m.startScan())

	case key.Matches(msg, m.keys.Manual):
		m.manual = true
		m.hostInput.SetValue("")
		return m, m.hostInput.Focus()
	}

	var cmd tea.Cmd
	if !m.scanning {
		m.cameras, cmd = m.cameras.Update(msg)
	}
	return m, cmd
}

func (m Model) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.manualKeys.Cancel):
		m.manual = false
		m.hostInput.Blur()
		return m, nil

	case key.Matches(msg, m.manualKeys.Confirm):
		d, err := manualDevice(m.hostInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.manual = false
		m.hostInput.Blur()
		cmd := m.cameras.InsertItem(0, cameraItem{device: d})
		m.cameras.Select(0)
		return m, cmd
	}

	var cmd tea.Cmd
	m.hostInput, cmd = m.hostInput.Update(msg)
	return m, cmd
}

// manualDevice turns "host" or "host:port" into a Device
func manualDevice(address string) (*discovery.Device, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("address is empty")
	}

	host, port := address, soap.DefaultPort
	if h, p, err := net.SplitHostPort(address); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}

	return &discovery.Device{
		Instance:     host,
		Service:      ManualService,
		Hostname:     host,
		IP:           host,
		Port:         port,
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the picker screen
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = ui.MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.manual:
		content = m.viewManual()
		helpText = m.help.View(m.manualKeys)
	case m.scanning:
		content = m.viewScanning(width)
		helpText = m.help.View(m.keys)
	default:
		content = m.viewResults()
		helpText = m.help.View(m.keys)
	}
	return content + "\n" + subtitleStyle.Render(helpText) + "\n"
}

func (m Model) viewScanning(width int) string {
	elapsed := time.Since(m.started)
	percent := 1.0
	if m.timeout > 0 {
		percent = min(1, elapsed.Seconds()/m.timeout.Seconds())
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		titleStyle.Render(m.spinner.View()+" SEARCHING FOR CAMERAS"),
		"",
		subtitleStyle.Render("Listening for mDNS announcements..."),
		"",
		m.bar.ViewAs(percent),
		"",
		subtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ui.ErrorMessageStyle.Render("  " + ui.FailureMarker + " " + m.err.Error()))
		b.WriteString("\n\n")
	}
	if len(m.cameras.Items()) == 0 {
		b.WriteString("  " + warningStyle.Render("⚠ No cameras found on your network"))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("  Press r to scan again or m to enter an address."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.cameras.View())
	return b.String()
}

func (m Model) viewManual() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Enter camera address"))
	b.WriteString("\n\n  Address: ")
	b.WriteString(m.hostInput.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString("\n" + ui.ErrorMessageStyle.Render("  "+m.err.Error()) + "\n")
	}
	return b.String()
}

// Chosen returns the camera the user selected, or nil
func (m Model) Chosen() *discovery.Device {
	return m.chosen
}

// Run shows the picker until the user selects a camera or quits. A nil
// device with a nil error means the user quit.
func Run(ctx context.Context, scan ScanFunc, timeout time.Duration, in io.Reader, out io.Writer) (*discovery.Device, error) {
	p := tea.NewProgram(New(ctx, scan, timeout),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("camera picker failed: %w", err)
	}
	m, _ := final.(Model)
	return m.Chosen(), nil
}
