package app

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"dtek-outage-monitor/internal/models"
)

const unknownPlaceholder = "Невідомо"

// Composer renders snapshots into Telegram HTML messages.
type Composer struct {
	timeFormat string
	location   *time.Location
}

func NewComposer(timeFormat string, location *time.Location) Composer {
	if location == nil {
		location = time.Local
	}
	return Composer{timeFormat: timeFormat, location: location}
}

// Compose returns the message text for an active outage. now is rendered as
// the local check time.
func (c Composer) Compose(snapshot models.StatusSnapshot, now time.Time) (string, error) {
	if !snapshot.IsOutageActive() {
		return "", models.ErrNotOutage
	}

	reason := orUnknown(capitalize(strings.TrimSpace(snapshot.SubType)))
	begin := orUnknown(strings.TrimSpace(snapshot.StartDate))
	end := orUnknown(strings.TrimSpace(snapshot.EndDate))
	updated := orUnknown(strings.TrimSpace(snapshot.UpdatedAt))

	return strings.Join([]string{
		"⚡️ <b>За даними сайту ДТЕК зафіксовано:</b>",
		"",
		fmt.Sprintf("⚠️ <i>%s</i>", html.EscapeString(reason)),
		fmt.Sprintf("🪫 <code>%s — %s</code>", html.EscapeString(begin), html.EscapeString(end)),
		"",
		"🤖 <i>Це повідомлення оновлюється автоматично</i>",
		"",
		fmt.Sprintf("🔄 <i>Оновлення на сайті: %s</i>", html.EscapeString(updated)),
		fmt.Sprintf("🕒 <i>Час перевірки: %s</i>", now.In(c.location).Format(c.timeFormat)),
	}, "\n"), nil
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func orUnknown(s string) string {
	if s == "" {
		return unknownPlaceholder
	}
	return s
}
