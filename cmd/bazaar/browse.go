package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/broadcast"
	"bazaar/internal/host"
	"bazaar/internal/listing"
)

// browseModel is the home screen: the local listings with share actions.
type browseModel struct {
	listings []listing.Listing
	cursor   int
	sharing  bool
	errMsg   string

	lastShare  *broadcast.Result
	lastShared listing.ID

	wantCreate bool
	wantRooms  bool
	shareID    listing.ID
}

func newBrowseModel() browseModel {
	return browseModel{}
}

func (m browseModel) Update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case listingsLoadedMsg:
		m.listings = msg.listings
		if m.cursor >= len(m.listings) {
			m.cursor = clampMin(len(m.listings)-1, 0)
		}
		return m, nil

	case shareResultMsg:
		m.sharing = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		result := msg.result
		m.lastShare = &result
		m.lastShared = msg.id
		return m, nil

	case uiErrorMsg:
		m.sharing = false
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		m.errMsg = ""
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.listings)-1 {
				m.cursor++
			}
		case "c":
			m.wantCreate = true
		case "r":
			m.wantRooms = true
		case "s", "enter":
			if m.sharing || len(m.listings) == 0 {
				return m, nil
			}
			m.shareID = m.listings[m.cursor].ID
		}
	}
	return m, nil
}

func (m browseModel) View(identity host.Identity, width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(appNameStyle.Render("*  bazaar"), width))
	b.WriteString("\n")
	b.WriteString(centerText(subtitleStyle.Render(fmt.Sprintf("selling as %s", identity.Name)), width))
	b.WriteString("\n\n")
	b.WriteString(centerText(headerStyle.Render("[ Listings ]"), width))
	b.WriteString("\n\n")

	if len(m.listings) == 0 {
		b.WriteString(centerText(labelStyle.Render("no listings yet - press c to create one"), width))
		b.WriteString("\n")
	}
	for i, l := range m.listings {
		prefix := "  "
		style := labelStyle
		if i == m.cursor {
			prefix = "> "
			style = selectedStyle
		}
		line := prefix + trimLine(l.Name, clampMin(width-20, 20)) + "  " + priceStyle.Render(l.Price)
		b.WriteString(centerText(style.Render(line), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.sharing {
		b.WriteString(centerText(labelStyle.Render("  broadcasting..."), width))
		b.WriteString("\n\n")
	}

	if m.lastShare != nil {
		b.WriteString(separator(width))
		b.WriteString("\n")
		b.WriteString(centerText(headerStyle.Render("last share"), width))
		b.WriteString("\n")
		delivered := 0
		for _, o := range m.lastShare.Outcomes {
			if o.Status == broadcast.StatusDelivered {
				delivered++
			}
		}
		summary := fmt.Sprintf("delivered to %d of %d contacts", delivered, len(m.lastShare.Outcomes))
		if m.lastShare.AllDelivered() {
			b.WriteString(centerText(deliveredStyle.Render(summary), width))
		} else {
			b.WriteString(centerText(failedStyle.Render(summary), width))
		}
		b.WriteString("\n")
		for _, o := range m.lastShare.Failed() {
			who := o.Recipient.Name
			if who == "" {
				who = trimLine(o.Recipient.PublicKey, 16)
			}
			line := fmt.Sprintf("  x %s: %s", who, o.Detail)
			b.WriteString(centerText(failedStyle.Render(trimLine(line, clampMin(width-4, 20))), width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(centerText(errorStyle.Render("  x "+m.errMsg), width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText(helpStyle.Render("up/down: select - s: share to contacts - c: create - r: rooms - ctrl+q: quit"), width))
	return b.String()
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
