package matches

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// defaultLength is the DTEND offset for matches that have not ended.
const defaultLength = 2 * time.Hour

const icalStamp = "20060102T150405"

var icalEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

func clubName(names map[int64]string, id int64) string {
	if n := names[id]; n != "" {
		return n
	}
	return "Club " + strconv.FormatInt(id, 10)
}

// writeICal renders matches as an iCalendar feed with local times in loc.
func writeICal(w io.Writer, list []Match, names map[int64]string, loc *time.Location, now time.Time) {
	tz := loc.String()
	fmt.Fprint(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprint(w, "VERSION:2.0\r\n")
	fmt.Fprint(w, "PRODID:-//liga-voley//matches//ES\r\n")
	fmt.Fprint(w, "CALSCALE:GREGORIAN\r\n")
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\r\n", tz)

	stamp := now.UTC().Format(icalStamp) + "Z"
	for _, m := range list {
		start := m.ScheduledAt.In(loc)
		end := start.Add(defaultLength)
		if m.EndedAt != nil && m.EndedAt.After(m.ScheduledAt) {
			end = m.EndedAt.In(loc)
		}
		summary := clubName(names, m.HomeClubID) + " vs " + clubName(names, m.AwayClubID)

		fmt.Fprint(w, "BEGIN:VEVENT\r\n")
		fmt.Fprintf(w, "UID:match-%d@liga-voley\r\n", m.ID)
		fmt.Fprintf(w, "DTSTAMP:%s\r\n", stamp)
		fmt.Fprintf(w, "DTSTART;TZID=%s:%s\r\n", tz, start.Format(icalStamp))
		fmt.Fprintf(w, "DTEND;TZID=%s:%s\r\n", tz, end.Format(icalStamp))
		fmt.Fprintf(w, "SUMMARY:%s\r\n", icalEscaper.Replace(summary))
		if m.Location != "" {
			fmt.Fprintf(w, "LOCATION:%s\r\n", icalEscaper.Replace(m.Location))
		}
		switch m.State {
		case lifecycle.MatchCancelled:
			fmt.Fprint(w, "STATUS:CANCELLED\r\n")
			if m.CancelReason != nil {
				fmt.Fprintf(w, "DESCRIPTION:%s\r\n", icalEscaper.Replace(*m.CancelReason))
			}
		default:
			fmt.Fprint(w, "STATUS:CONFIRMED\r\n")
		}
		fmt.Fprint(w, "END:VEVENT\r\n")
	}
	fmt.Fprint(w, "END:VCALENDAR\r\n")
}

// writeCSV exports matches one per line with local times in loc.
func writeCSV(w io.Writer, list []Match, names map[int64]string, loc *time.Location) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "event_id", "date", "time", "location",
		"home_club", "away_club", "state", "cancel_reason",
	})
	for _, m := range list {
		at := m.ScheduledAt.In(loc)
		reason := ""
		if m.CancelReason != nil {
			reason = *m.CancelReason
		}
		_ = cw.Write([]string{
			strconv.FormatInt(m.ID, 10),
			strconv.FormatInt(m.EventID, 10),
			at.Format(time.DateOnly), at.Format("15:04"), m.Location,
			clubName(names, m.HomeClubID), clubName(names, m.AwayClubID),
			string(m.State), reason,
		})
	}
	cw.Flush()
	return cw.Error()
}
