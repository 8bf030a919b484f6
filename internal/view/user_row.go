package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wolfeidau/cloudconsole/internal/models"
)

// UserRow renders one user in a list.
type UserRow struct {
	User     models.User
	Selected bool

	// OnSelect receives whether shift was held when the checkbox was toggled.
	OnSelect func(shift bool)
}

// Toggle reports a checkbox click to the parent list.
func (r UserRow) Toggle(shift bool) {
	if r.OnSelect != nil {
		r.OnSelect(shift)
	}
}

// Link returns the route of the user detail page.
func (r UserRow) Link() string {
	return "/user/" + r.User.ID
}

// Render returns the row as a single line.
func (r UserRow) Render() string {
	activity := orDefault(FormatShortTime(r.User.LastActive), "Inactive")

	tags := make([]string, 0, len(r.User.Roles)+1)
	if r.User.Administrator {
		tags = append(tags, adminTagStyle.Render("admin"))
	}
	for _, role := range r.User.Roles {
		tags = append(tags, roleTagStyle.Render(role))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		checkbox(r.Selected)+" ",
		lipgloss.NewStyle().Width(24).Render(r.User.Username),
		lipgloss.NewStyle().Width(10).Render(UserTypeLabel(r.User.Type)),
		lipgloss.NewStyle().Width(18).Render(activity),
		strings.Join(tags, " "),
	)

	if r.User.Disabled {
		return disabledStyle.Render(row)
	}
	return row
}
