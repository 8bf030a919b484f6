package view

import (
	"strings"

	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/state"
)

// UserList shows the users store with a checkbox selection.
//
// Shift-selecting a row applies the new checked state to every row between
// it and the row clicked last.
type UserList struct {
	store    *state.UsersStore
	listener flux.ListenerID

	users    []models.User
	selected map[string]bool
	lastID   string

	// OnUpdate is called after any change that affects Render.
	OnUpdate func()
}

// NewUserList creates a list reading from store.
func NewUserList(store *state.UsersStore) *UserList {
	l := &UserList{
		store:    store,
		selected: map[string]bool{},
	}
	l.refresh()
	return l
}

// Mount subscribes the list to store changes.
func (l *UserList) Mount() {
	if l.listener != 0 {
		return
	}
	l.listener = l.store.AddChangeListener(func() {
		l.refresh()
		l.notify()
	})
	l.refresh()
}

// Unmount removes the store subscription.
func (l *UserList) Unmount() {
	if l.listener == 0 {
		return
	}
	l.store.RemoveChangeListener(l.listener)
	l.listener = 0
}

// Users returns the displayed users in store order.
func (l *UserList) Users() []models.User {
	return l.users
}

// Select toggles the user with the given id.
func (l *UserList) Select(id string, shift bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return
	}
	checked := !l.selected[id]

	last := l.indexOf(l.lastID)
	if shift && last >= 0 {
		lo, hi := min(idx, last), max(idx, last)
		for _, u := range l.users[lo : hi+1] {
			l.set(u.ID, checked)
		}
	} else {
		l.set(id, checked)
	}

	l.lastID = id
	l.notify()
}

// Selected returns the selected user ids in store order.
func (l *UserList) Selected() []string {
	var ids []string
	for _, u := range l.users {
		if l.selected[u.ID] {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// ClearSelection unselects every user.
func (l *UserList) ClearSelection() {
	clear(l.selected)
	l.lastID = ""
	l.notify()
}

// Rows returns a row per user wired back to Select.
func (l *UserList) Rows() []UserRow {
	rows := make([]UserRow, len(l.users))
	for i, u := range l.users {
		id := u.ID
		rows[i] = UserRow{
			User:     u,
			Selected: l.selected[id],
			OnSelect: func(shift bool) { l.Select(id, shift) },
		}
	}
	return rows
}

// Render returns the list with a header line.
func (l *UserList) Render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Users"))
	b.WriteString("\n")
	if len(l.users) == 0 {
		b.WriteString(disabledStyle.Render("No users"))
		b.WriteString("\n")
		return b.String()
	}
	for _, row := range l.Rows() {
		b.WriteString(row.Render())
		b.WriteString("\n")
	}
	return b.String()
}

func (l *UserList) refresh() {
	l.users = l.store.MutableCopy()

	present := make(map[string]bool, len(l.users))
	for _, u := range l.users {
		present[u.ID] = true
	}
	for id := range l.selected {
		if !present[id] {
			delete(l.selected, id)
		}
	}
	if !present[l.lastID] {
		l.lastID = ""
	}
}

func (l *UserList) set(id string, checked bool) {
	if checked {
		l.selected[id] = true
		return
	}
	delete(l.selected, id)
}

func (l *UserList) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, u := range l.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (l *UserList) notify() {
	if l.OnUpdate != nil {
		l.OnUpdate()
	}
}
