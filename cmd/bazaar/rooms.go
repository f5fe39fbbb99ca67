package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/contact"
	"bazaar/internal/messagelog"
	"bazaar/internal/payload"
)

// roomsModel shows the contact rooms and, once one is opened, its message
// history. Reload signals for the open room arrive as roomMessagesMsg after
// the root model refetches.
type roomsModel struct {
	contacts []contact.Recipient
	cursor   int
	loading  bool
	errMsg   string

	open     bool
	room     messagelog.RoomID
	roomName string
	entries  []messagelog.Entry

	wantBack    bool
	pendingLoad messagelog.RoomID
}

func newRoomsModel() roomsModel {
	return roomsModel{loading: true}
}

func (m roomsModel) openRoom() messagelog.RoomID {
	if !m.open {
		return ""
	}
	return m.room
}

func (m roomsModel) Update(msg tea.Msg) (roomsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case roomsLoadedMsg:
		m.loading = false
		m.contacts = msg.contacts
		if m.cursor >= len(m.contacts) {
			m.cursor = clampMin(len(m.contacts)-1, 0)
		}
		return m, nil

	case roomMessagesMsg:
		if m.open && msg.room == m.room {
			m.entries = msg.entries
		}
		return m, nil

	case uiErrorMsg:
		m.loading = false
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		m.errMsg = ""
		switch msg.String() {
		case "esc":
			if m.open {
				m.open = false
				m.entries = nil
				return m, nil
			}
			m.wantBack = true
			return m, nil

		case "up", "k":
			if !m.open && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if !m.open && m.cursor < len(m.contacts)-1 {
				m.cursor++
			}
		case "enter":
			if m.open || len(m.contacts) == 0 {
				return m, nil
			}
			c := m.contacts[m.cursor]
			m.open = true
			m.room = messagelog.RoomID(c.PublicKey)
			m.roomName = c.Name
			m.entries = nil
			m.pendingLoad = m.room
		}
	}
	return m, nil
}

func (m roomsModel) View(width, height int) string {
	if m.open {
		return m.viewRoom(width)
	}
	return m.viewList(width)
}

func (m roomsModel) viewList(width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(appNameStyle.Render("*  bazaar"), width))
	b.WriteString("\n\n")
	b.WriteString(centerText(headerStyle.Render("[ Rooms ]"), width))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(centerText(labelStyle.Render("loading contacts..."), width))
		b.WriteString("\n")
	} else if len(m.contacts) == 0 {
		b.WriteString(centerText(labelStyle.Render("no contacts on this node"), width))
		b.WriteString("\n")
	}
	for i, c := range m.contacts {
		prefix := "  "
		style := labelStyle
		if i == m.cursor {
			prefix = "> "
			style = selectedStyle
		}
		name := c.Name
		if name == "" {
			name = trimLine(c.PublicKey, 16)
		}
		b.WriteString(centerText(style.Render(prefix+name), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(centerText(errorStyle.Render("  x "+m.errMsg), width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText(helpStyle.Render("up/down: select - enter: open - esc: back - ctrl+q: quit"), width))
	return b.String()
}

func (m roomsModel) viewRoom(width int) string {
	var b strings.Builder

	title := m.roomName
	if title == "" {
		title = trimLine(string(m.room), 16)
	}
	b.WriteString("\n")
	b.WriteString(centerText(headerStyle.Render(fmt.Sprintf("[ %s ]", title)), width))
	b.WriteString("\n")
	b.WriteString(separator(width))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(labelStyle.Render("  nothing shared in this room yet"))
		b.WriteString("\n")
	}
	for _, e := range m.entries {
		style := recvMsgStyle
		if e.RoomName != e.Sender {
			style = sentMsgStyle
		}
		stamp := e.SentAt.Local().Format("15:04")
		line := fmt.Sprintf("  %s %s: %s", stamp, e.Sender, entryText(e))
		b.WriteString(style.Render(trimLine(line, clampMin(width-2, 20))))
		b.WriteString("\n")
	}

	b.WriteString(separator(width))
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  x " + m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("  esc: back to rooms - ctrl+q: quit"))
	return b.String()
}

func entryText(e messagelog.Entry) string {
	switch e.Kind {
	case string(payload.KindListing):
		return "[listing] " + e.ListingRef
	case string(payload.KindFile):
		return "[file]"
	default:
		return e.Body
	}
}
