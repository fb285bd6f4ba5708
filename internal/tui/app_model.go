package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/internal/session"
	"github.com/MKhiriev/go-menu-mirror/models"
)

type appModel struct {
	session *session.Session
	busName string

	rows   []row
	idx    int
	empty  bool
	spin   spinner.Model
	status string
}

func newAppModel(sess *session.Session, busName string) appModel {
	return appModel{
		session: sess,
		busName: busName,
		empty:   true,
		spin:    spinner.New(),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.cmdLoadTree())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)
	case menuChangedMsg:
		return m, m.cmdLoadTree()
	case treeLoadedMsg:
		m.rows = msg.rows
		m.empty = msg.empty
		if m.idx >= len(m.rows) {
			m.idx = len(m.rows) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, nil
	case activationMsg:
		for i, r := range m.rows {
			if r.id == msg.id {
				m.idx = i
				break
			}
		}
		return m, nil
	case eventResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.event, msg.err)
			return m, cmdClearStatus()
		}
		if msg.event == models.EventClicked {
			m.status = "click delivered"
			return m, cmdClearStatus()
		}
		return m, nil
	case copiedMsg:
		m.status = "copied"
		return m, cmdClearStatus()
	case clearStatusMsg:
		m.status = ""
		return m, nil
	case spinner.TickMsg:
		if !m.empty {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		return m, nil
	}

	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit

	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
		return m.hoverCurrent()

	case key.Matches(msg, keys.down):
		if m.idx < len(m.rows)-1 {
			m.idx++
		}
		return m.hoverCurrent()

	case key.Matches(msg, keys.enter):
		r, ok := m.current()
		if !ok || r.separator || !r.enabled {
			return m, nil
		}
		m.session.SendEvent(r.id, models.EventClicked, models.Variant{}, nowStamp())
		m.status = "sending click"
		return m, nil

	case key.Matches(msg, keys.right):
		r, ok := m.current()
		if !ok || !r.submenu {
			return m, nil
		}
		m.session.SendAboutToShow(r.id, nil)
		m.session.SendEvent(r.id, models.EventOpened, models.Variant{}, nowStamp())
		return m, nil

	case key.Matches(msg, keys.left):
		r, ok := m.current()
		if !ok || !r.submenu {
			return m, nil
		}
		m.session.SendEvent(r.id, models.EventClosed, models.Variant{}, nowStamp())
		return m, nil

	case key.Matches(msg, keys.refresh):
		m.session.RequestRefresh()
		m.status = "refreshing"
		return m, cmdClearStatus()

	case key.Matches(msg, keys.copy):
		r, ok := m.current()
		if !ok || r.label == "" {
			return m, nil
		}
		return m, cmdCopyToClipboard(r.label)
	}

	return m, nil
}

func (m appModel) View() string {
	body := titleStyle.Render("menu mirror: "+m.busName) + "\n\n"

	switch {
	case m.empty:
		body += m.spin.View() + " waiting for the menu to appear\n"
	case len(m.rows) == 0:
		body += helpStyle.Render("the menu is empty") + "\n"
	default:
		for i, r := range m.rows {
			body += renderRow(r, i == m.idx) + "\n"
		}
	}

	if m.status != "" {
		body += "\n" + statusStyle.Render(m.status)
	}
	body += "\n\n" + helpStyle.Render("up/down move, enter click, right/left open/close, r refresh, c copy, q quit")

	return appStyle.Render(body)
}

func (m appModel) current() (row, bool) {
	if m.idx < 0 || m.idx >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.idx], true
}

// hoverCurrent mirrors what a real menu renderer does when the selection
// moves: the hovered item is announced to the server.
func (m appModel) hoverCurrent() (tea.Model, tea.Cmd) {
	if r, ok := m.current(); ok && r.enabled && !r.separator {
		m.session.SendEvent(r.id, models.EventHovered, models.Variant{}, nowStamp())
	}
	return m, nil
}

func (m appModel) cmdLoadTree() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		var rows []row
		empty := true
		err := sess.Inspect(func(tree *menu.Tree) {
			root := tree.Root()
			if root == nil {
				return
			}
			empty = false
			rows = flattenRows(root.Snapshot())
		})
		if err != nil {
			return tea.Quit()
		}
		return treeLoadedMsg{rows: rows, empty: empty}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return eventResultMsg{event: "copy", err: err}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func nowStamp() uint32 {
	return uint32(time.Now().Unix())
}
