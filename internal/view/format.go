package view

import (
	"time"

	"github.com/wolfeidau/cloudconsole/internal/models"
)

const shortTimeLayout = "2006-01-02 15:04"

// UserTypeLabel returns the display label for a user type. Unknown types are
// returned unchanged.
func UserTypeLabel(userType string) string {
	switch userType {
	case models.UserTypeLocal:
		return "Local"
	case models.UserTypeGoogle:
		return "Google"
	case models.UserTypeOneLogin:
		return "OneLogin"
	case models.UserTypeOkta:
		return "Okta"
	case models.UserTypeAzure:
		return "Azure"
	case models.UserTypeAPI:
		return "API"
	default:
		return userType
	}
}

// FormatShortTime formats t in local time, or returns "" for the zero time.
func FormatShortTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(shortTimeLayout)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
