package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/broadcast"
	"bazaar/internal/contact"
	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
)

type appState int

const (
	stateBrowse appState = iota
	stateCreate
	stateRooms
)

type rootModel struct {
	svc    services
	state  appState
	browse browseModel
	create createModel
	rooms  roomsModel
	width  int
	height int

	reloads     <-chan messagelog.RoomID
	unsubscribe func()
}

type listingsLoadedMsg struct {
	listings []listing.Listing
}

type listingSavedMsg struct {
	id listing.ID
}

type shareResultMsg struct {
	id     listing.ID
	result broadcast.Result
	err    error
}

type roomsLoadedMsg struct {
	contacts []contact.Recipient
}

type roomMessagesMsg struct {
	room    messagelog.RoomID
	entries []messagelog.Entry
}

type roomStaleMsg struct {
	room messagelog.RoomID
}

type reloadsClosedMsg struct{}

type uiErrorMsg struct {
	err error
}

func newRootModel(svc services) rootModel {
	var reloads <-chan messagelog.RoomID
	unsubscribe := func() {}
	if svc.notifier != nil {
		reloads, unsubscribe = svc.notifier.Subscribe()
	}
	return rootModel{
		svc:         svc,
		state:       stateBrowse,
		browse:      newBrowseModel(),
		rooms:       newRoomsModel(),
		reloads:     reloads,
		unsubscribe: unsubscribe,
	}
}

func (m rootModel) Init() tea.Cmd {
	return tea.Batch(m.loadListings(), m.waitReload())
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+q" {
		m.unsubscribe()
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case roomStaleMsg:
		var cmd tea.Cmd
		if m.state == stateRooms && m.rooms.openRoom() == msg.room {
			cmd = m.loadRoom(msg.room)
		}
		return m, tea.Batch(cmd, m.waitReload())

	case reloadsClosedMsg:
		return m, nil

	case listingSavedMsg:
		m.state = stateBrowse
		return m, m.loadListings()
	}

	switch m.state {
	case stateBrowse:
		var cmd tea.Cmd
		m.browse, cmd = m.browse.Update(msg)
		switch {
		case m.browse.wantCreate:
			m.browse.wantCreate = false
			m.state = stateCreate
			m.create = newCreateModel(m.svc.identity)
			return m, m.create.Init()
		case m.browse.wantRooms:
			m.browse.wantRooms = false
			m.state = stateRooms
			return m, m.loadRooms()
		case m.browse.shareID != "":
			id := m.browse.shareID
			m.browse.shareID = ""
			m.browse.sharing = true
			return m, tea.Batch(cmd, m.shareListing(id))
		}
		return m, cmd

	case stateCreate:
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		switch {
		case m.create.cancelled:
			m.state = stateBrowse
			return m, nil
		case m.create.submitting:
			m.create.submitting = false
			return m, tea.Batch(cmd, m.saveListing(m.create.params()))
		}
		return m, cmd

	case stateRooms:
		var cmd tea.Cmd
		m.rooms, cmd = m.rooms.Update(msg)
		if m.rooms.wantBack {
			m.rooms.wantBack = false
			m.state = stateBrowse
			return m, nil
		}
		if room := m.rooms.pendingLoad; room != "" {
			m.rooms.pendingLoad = ""
			return m, tea.Batch(cmd, m.loadRoom(room))
		}
		return m, cmd
	}

	return m, nil
}

func (m rootModel) View() string {
	switch m.state {
	case stateBrowse:
		return m.browse.View(m.svc.identity, m.width, m.height)
	case stateCreate:
		return m.create.View(m.width, m.height)
	case stateRooms:
		return m.rooms.View(m.width, m.height)
	}
	return ""
}

func (m rootModel) loadListings() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		listings, err := svc.listings.List(ctx, 50)
		if err != nil {
			return uiErrorMsg{err: err}
		}
		return listingsLoadedMsg{listings: listings}
	}
}

func (m rootModel) saveListing(p listing.CreateParams) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := svc.listings.Create(ctx, p)
		if err != nil {
			return uiErrorMsg{err: err}
		}
		return listingSavedMsg{id: id}
	}
}

func (m rootModel) shareListing(id listing.ID) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result, err := svc.share.ShareListingToContacts(ctx, id)
		return shareResultMsg{id: id, result: result, err: err}
	}
}

func (m rootModel) loadRooms() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		contacts, err := svc.contacts.ListContacts(ctx)
		if err != nil {
			return uiErrorMsg{err: err}
		}
		return roomsLoadedMsg{contacts: contacts}
	}
}

func (m rootModel) loadRoom(room messagelog.RoomID) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := svc.log.ListRecent(ctx, room, 100)
		if err != nil {
			return uiErrorMsg{err: err}
		}
		return roomMessagesMsg{room: room, entries: entries}
	}
}

// waitReload blocks on the log's reload channel and turns each signal into
// a message. The returned command re-arms itself via Update.
func (m rootModel) waitReload() tea.Cmd {
	reloads := m.reloads
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		room, ok := <-reloads
		if !ok {
			return reloadsClosedMsg{}
		}
		return roomStaleMsg{room: room}
	}
}
