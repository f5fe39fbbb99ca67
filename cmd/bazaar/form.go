package main

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/host"
	"bazaar/internal/listing"
)

const maxImageBytes = 1 << 20

// createModel is the new-listing form. Seller identity comes from the host
// node, the user supplies name, price, and an optional image file.
type createModel struct {
	identity   host.Identity
	nameInput  textinput.Model
	priceInput textinput.Model
	imageInput textinput.Model
	focusIdx   int
	errMsg     string
	submitting bool
	cancelled  bool
}

func newCreateModel(identity host.Identity) createModel {
	name := textinput.New()
	name.Placeholder = "what are you selling?"
	name.CharLimit = 120
	name.Width = 40
	name.Focus()

	price := textinput.New()
	price.Placeholder = "price"
	price.CharLimit = 32
	price.Width = 40

	image := textinput.New()
	image.Placeholder = "image file (optional)"
	image.CharLimit = 512
	image.Width = 40

	return createModel{
		identity:   identity,
		nameInput:  name,
		priceInput: price,
		imageInput: image,
	}
}

func (m createModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m createModel) name() string      { return m.nameInput.Value() }
func (m createModel) price() string     { return m.priceInput.Value() }
func (m createModel) imagePath() string { return m.imageInput.Value() }

func (m createModel) params() listing.CreateParams {
	image := ""
	if path := strings.TrimSpace(m.imagePath()); path != "" {
		// Validated before submit; a race with file removal surfaces as
		// a create error instead.
		image, _ = fileToDataURI(path)
	}
	return listing.CreateParams{
		Name:          m.name(),
		Price:         m.price(),
		SellerName:    m.identity.Name,
		SellerKey:     m.identity.PublicKey,
		WalletAddress: m.identity.WalletAddress,
		Image:         image,
	}
}

func (m createModel) Update(msg tea.Msg) (createModel, tea.Cmd) {
	switch msg := msg.(type) {
	case uiErrorMsg:
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		m.errMsg = ""
		switch msg.String() {
		case "esc":
			m.cancelled = true
			return m, nil

		case "tab", "shift+tab", "down", "up":
			dir := 1
			if msg.String() == "up" || msg.String() == "shift+tab" {
				dir = -1
			}
			m.moveFocus(dir)
			return m, nil

		case "enter":
			if errMsg := m.validateSubmit(); errMsg != "" {
				m.errMsg = errMsg
				return m, nil
			}
			m.submitting = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focusIdx {
	case 0:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case 1:
		m.priceInput, cmd = m.priceInput.Update(msg)
	default:
		m.imageInput, cmd = m.imageInput.Update(msg)
	}
	return m, cmd
}

func (m *createModel) moveFocus(dir int) {
	m.focusIdx = (m.focusIdx + dir + 3) % 3
	m.nameInput.Blur()
	m.priceInput.Blur()
	m.imageInput.Blur()
	switch m.focusIdx {
	case 0:
		m.nameInput.Focus()
	case 1:
		m.priceInput.Focus()
	default:
		m.imageInput.Focus()
	}
}

func (m createModel) validateSubmit() string {
	if strings.TrimSpace(m.name()) == "" {
		return "listing name is required"
	}
	if strings.TrimSpace(m.price()) == "" {
		return "price is required"
	}
	if path := strings.TrimSpace(m.imagePath()); path != "" {
		if _, err := fileToDataURI(path); err != nil {
			return err.Error()
		}
	}
	return ""
}

func (m createModel) View(width, height int) string {
	var b strings.Builder

	topPad := 0
	if height > 12 {
		topPad = (height - 12) / 3
	}
	b.WriteString(strings.Repeat("\n", topPad))

	b.WriteString(centerText(appNameStyle.Render("*  bazaar"), width))
	b.WriteString("\n\n")
	b.WriteString(centerText(headerStyle.Render("[ New Listing ]"), width))
	b.WriteString("\n\n")

	labels := []string{"Name", "Price", "Image"}
	inputs := []textinput.Model{m.nameInput, m.priceInput, m.imageInput}
	maxLabel := 0
	for _, label := range labels {
		if len(label) > maxLabel {
			maxLabel = len(label)
		}
	}
	for i, input := range inputs {
		line := labelStyle.Render(fmt.Sprintf("  %-*s: ", maxLabel, labels[i])) + input.View()
		b.WriteString(centerText(line, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(centerText(errorStyle.Render("  x "+m.errMsg), width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText(helpStyle.Render("up/down or tab: switch field - enter: save - esc: back - ctrl+q: quit"), width))
	return b.String()
}

// fileToDataURI loads a local image and packs it into a data: URI the way
// the listing payload carries images on the wire.
func fileToDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(data), maxImageBytes)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
