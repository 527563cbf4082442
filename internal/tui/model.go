package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/tubesub-cli/internal/catalog"
	"github.com/glabrego/tubesub-cli/internal/feed"
	"github.com/glabrego/tubesub-cli/internal/platform"
	"github.com/glabrego/tubesub-cli/internal/render"
	tuitheme "github.com/glabrego/tubesub-cli/internal/tui/theme"
	tuiview "github.com/glabrego/tubesub-cli/internal/tui/view"
	"github.com/glabrego/tubesub-cli/internal/view"
)

type Service interface {
	Load(ctx context.Context, forceRefresh bool) (catalog.Catalog, error)
}

type Launcher interface {
	PlayCommands(id string) ([]*exec.Cmd, error)
	DownloadCommand(id string) *exec.Cmd
}

type mode int

const (
	modeBrowsing mode = iota
	modeInput
	modeInfo
	modeHelp
)

type inputKind int

const (
	inputSearch inputKind = iota
	inputFilter
	inputCommand
)

type refreshSuccessMsg struct {
	cat catalog.Catalog
}

type refreshErrorMsg struct {
	err error
}

type execDoneMsg struct {
	rest []*exec.Cmd
	err  error
}

type openURLDoneMsg struct {
	err error
}

// fallbackRows keeps pagination sane before the first WindowSizeMsg.
const fallbackRows = 20

// Model is the session state machine: single-threaded over key events,
// owning the in-memory catalog between reloads.
type Model struct {
	service  Service
	launcher Launcher

	openURLFn func(string) error

	videos     []feed.Video
	window     []feed.Video
	start      int
	filterText string
	cursor     int

	width  int
	height int

	mode      mode
	inputKind inputKind
	input     textinput.Model

	status  string
	notice  bool
	loading bool

	theme tuitheme.Theme
}

func NewModel(service Service, launcher Launcher, cat catalog.Catalog) Model {
	input := textinput.New()
	input.CharLimit = 200

	m := Model{
		service:   service,
		launcher:  launcher,
		openURLFn: platform.OpenURLInBrowser,
		videos:    cat.Videos,
		input:     input,
		theme:     tuitheme.Default(),
	}
	m.deriveWindow()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// pageSize is the number of list rows the terminal currently fits,
// keeping the last row for the status line. Recomputed from the live
// height on every page action, never cached across resizes.
func (m Model) pageSize() int {
	if m.height <= 1 {
		return fallbackRows
	}
	return m.height - 1
}

func (m *Model) deriveWindow() {
	m.window = view.Derive(m.videos, m.filterText, m.start, m.pageSize())
	if len(m.window) == 0 {
		m.cursor = 0
	} else if m.cursor >= len(m.window) {
		m.cursor = len(m.window) - 1
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.deriveWindow()
		return m, nil

	case refreshSuccessMsg:
		m.loading = false
		m.status = ""
		m.videos = msg.cat.Videos
		m.start = 0
		m.cursor = 0
		m.deriveWindow()
		return m, nil

	case refreshErrorMsg:
		m.loading = false
		m.setNotice(msg.err.Error())
		return m, nil

	case execDoneMsg:
		if msg.err != nil {
			m.setNotice(msg.err.Error())
			return m, nil
		}
		if len(msg.rest) > 0 {
			return m, execQueueCmd(msg.rest)
		}
		m.status = ""
		m.deriveWindow()
		return m, nil

	case openURLDoneMsg:
		if msg.err != nil {
			m.setNotice(msg.err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		// A force refresh blocks the whole session: no key is
		// processed until the aggregation batch joins.
		if m.loading {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeInfo, modeHelp:
			// Any key returns to browsing on the first page.
			m.mode = modeBrowsing
			m.softReload()
			return m, nil
		default:
			return m.updateBrowsing(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearStatus()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "l", "down":
		if n := len(m.window); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return m, nil
	case "k", "up":
		if n := len(m.window); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
		return m, nil
	case "g", "H":
		m.cursor = 0
		return m, nil
	case "M":
		if n := len(m.window); n > 0 {
			m.cursor = n / 2
		}
		return m, nil
	case "G", "L":
		if n := len(m.window); n > 0 {
			m.cursor = n - 1
		}
		return m, nil

	case "r", "$", "left":
		m.softReload()
		return m, nil
	case "P":
		m.pageForward()
		return m, nil
	case "N":
		m.pageBackward()
		return m, nil
	case "R":
		m.loading = true
		m.status = "updating video list..."
		m.notice = false
		return m, refreshCmd(m.service)

	case "h", "?":
		m.mode = modeHelp
		return m, nil
	case "i", "right":
		if m.cursor < len(m.window) {
			m.mode = modeInfo
		}
		return m, nil

	case "p", "enter":
		return m.playCurrent()
	case "d":
		return m.downloadCurrent()
	case "o":
		return m.openCurrent()

	case "/":
		return m.startInput(inputSearch, "/"), nil
	case "f":
		return m.startInput(inputFilter, "|"), nil
	case ":":
		return m.startInput(inputCommand, ":"), nil
	}

	m.setNotice("key not supported (press h for help)")
	return m, nil
}

func (m Model) startInput(kind inputKind, prompt string) Model {
	m.mode = modeInput
	m.inputKind = kind
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowsing
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		m.mode = modeBrowsing
		m.input.Blur()
		return m.submitInput(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput(value string) (tea.Model, tea.Cmd) {
	switch m.inputKind {
	case inputSearch:
		m.cursor = view.FindFirst(m.window, value)
		if len(m.window) == 0 {
			m.cursor = 0
		}
		return m, nil

	case inputFilter:
		m.filterText = value
		m.start = 0
		m.cursor = 0
		m.deriveWindow()
		return m, nil

	case inputCommand:
		fields := strings.Fields(value)
		if len(fields) == 2 && fields[0] == "o" {
			return m.playID(fields[1])
		}
		// Unknown commands are silent no-ops.
		return m, nil
	}
	return m, nil
}

// softReload re-derives the view from the in-memory catalog, back at
// the first page. No network.
func (m *Model) softReload() {
	m.start = 0
	m.cursor = 0
	m.deriveWindow()
}

// pageForward moves toward older entries, but only while another full
// page of the filtered sequence remains.
func (m *Model) pageForward() {
	n := m.pageSize()
	filtered := view.Filtered(m.videos, m.filterText)
	if m.start+2*n <= len(filtered) {
		m.start += n
	}
	m.cursor = 0
	m.deriveWindow()
}

// pageBackward moves toward newer entries, clamped at the first page.
func (m *Model) pageBackward() {
	n := m.pageSize()
	m.start -= n
	if m.start < 0 {
		m.start = 0
	}
	m.cursor = 0
	m.deriveWindow()
}

func (m Model) playCurrent() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.window) {
		return m, nil
	}
	return m.playID(m.window[m.cursor].ID())
}

func (m Model) playID(id string) (tea.Model, tea.Cmd) {
	commands, err := m.launcher.PlayCommands(id)
	if err != nil {
		m.setNotice(err.Error())
		return m, nil
	}
	m.status = "playing " + id + "..."
	return m, execQueueCmd(commands)
}

func (m Model) downloadCurrent() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.window) {
		return m, nil
	}
	id := m.window[m.cursor].ID()
	cmd := m.launcher.DownloadCommand(id)
	if cmd == nil {
		m.setNotice("already downloaded: " + id)
		return m, nil
	}
	m.status = "downloading " + id + "..."
	return m, execQueueCmd([]*exec.Cmd{cmd})
}

func (m Model) openCurrent() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.window) {
		return m, nil
	}
	rawURL := m.window[m.cursor].URL
	validURL, err := platform.ValidateURL(rawURL)
	if err != nil {
		m.setNotice(err.Error())
		return m, nil
	}
	m.status = "opening " + validURL
	return m, openURLCmd(validURL, m.openURLFn)
}

func (m *Model) setNotice(text string) {
	m.status = text
	m.notice = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.notice = false
}

// execQueueCmd hands the first command's terminal control to the
// subprocess and chains the remainder through execDoneMsg. Failures
// are rewritten into user-facing messages here, off the Update path.
func execQueueCmd(queue []*exec.Cmd) tea.Cmd {
	head := queue[0]
	rest := queue[1:]
	return tea.ExecProcess(head, func(err error) tea.Msg {
		return execDoneMsg{rest: rest, err: platform.DescribeError(head, err)}
	})
}

func refreshCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		cat, err := service.Load(context.Background(), true)
		if err != nil {
			return refreshErrorMsg{err: err}
		}
		return refreshSuccessMsg{cat: cat}
	}
}

func openURLCmd(url string, openFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn == nil {
			return openURLDoneMsg{}
		}
		if err := openFn(url); err != nil {
			return openURLDoneMsg{err: fmt.Errorf("could not open browser: %v", err)}
		}
		return openURLDoneMsg{}
	}
}

func (m Model) View() string {
	switch m.mode {
	case modeHelp:
		return m.helpView()
	case modeInfo:
		return m.infoView()
	}
	return m.listView()
}

func (m Model) listView() string {
	rows := make([]string, 0, m.pageSize()+1)
	channelWidth := tuiview.ChannelColumnWidth(m.window)
	for i, video := range m.window {
		rows = append(rows, tuiview.RenderVideoLine(tuiview.VideoLineParams{
			Video:        video,
			ChannelWidth: channelWidth,
			Active:       i == m.cursor,
			Width:        m.contentWidth(),
		}, m.theme))
	}
	for len(rows) < m.pageSize() {
		rows = append(rows, "")
	}
	rows = append(rows, m.statusLine())
	return strings.Join(rows, "\n")
}

func (m Model) statusLine() string {
	if m.mode == modeInput {
		return m.input.View()
	}
	if m.status == "" {
		return ""
	}
	if m.notice {
		return m.theme.Notice.Render(m.status)
	}
	return m.theme.Status.Render(m.status)
}

func (m Model) infoView() string {
	if m.cursor >= len(m.window) {
		return "No video selected.\n\npress any key to continue"
	}
	video := m.window[m.cursor]
	width := m.contentWidth()

	lines := make([]string, 0, 16)
	for _, l := range render.WrapText(video.Title, width) {
		lines = append(lines, m.theme.InfoTitle.Render(l))
	}
	lines = append(lines, "")
	lines = append(lines, m.theme.InfoMeta.Render("from "+video.Channel))
	lines = append(lines, m.theme.InfoMeta.Render("published "+video.Published))
	if video.URL != "" {
		lines = append(lines, m.theme.InfoMeta.Render(video.URL))
	}
	if description := render.HTMLToText(video.Description); description != "" {
		lines = append(lines, "")
		lines = append(lines, render.WrapText(description, width)...)
	}
	lines = append(lines, "")
	lines = append(lines, "press any key to continue")
	return strings.Join(lines, "\n")
}

func (m Model) helpView() string {
	return `
  tubesub: a tool to view your youtube subscriptions in a terminal

  q          quit
  j,l,down   move down
  k,up       move up
  g,H        go to top
  G,L        go to bottom
  M          go to middle
  r,$,left   soft refresh
  P          previous page
  N          next page
  R          full refresh (fetches video list)
  h,?        prints this help
  i,right    prints video information
  /          search
  f          filter
  p,enter    plays selected video
  d          downloads selected video
  o          open selected video in browser
  :          command (o <id> plays an explicit video id)

  press any key to continue
`
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}
