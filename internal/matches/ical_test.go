package matches

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

func TestWriteICal(t *testing.T) {
	bogota := time.FixedZone("America/Bogota", -5*3600)
	reason := "lluvia, cancha inundada"
	list := []Match{
		{ID: 1, ScheduledAt: time.Date(2025, 6, 7, 20, 0, 0, 0, time.UTC), Location: "Coliseo; sala 2", HomeClubID: 1, AwayClubID: 2, State: lifecycle.MatchScheduled},
		{ID: 2, ScheduledAt: time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC), HomeClubID: 2, AwayClubID: 9, State: lifecycle.MatchCancelled, CancelReason: &reason},
	}
	var buf bytes.Buffer
	writeICal(&buf, list, map[int64]string{1: "Halcones", 2: "Cóndores"}, bogota, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:match-1@liga-voley\r\n",
		"DTSTART;TZID=America/Bogota:20250607T150000\r\n",
		"DTEND;TZID=America/Bogota:20250607T170000\r\n",
		"SUMMARY:Halcones vs Cóndores\r\n",
		`LOCATION:Coliseo\; sala 2` + "\r\n",
		"SUMMARY:Cóndores vs Club 9\r\n",
		"STATUS:CANCELLED\r\n",
		`DESCRIPTION:lluvia\, cancha inundada` + "\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in feed:\n%s", want, out)
		}
	}
	assertEq(t, strings.Count(out, "BEGIN:VEVENT"), 2)
}

func TestWriteCSV(t *testing.T) {
	list := []Match{{ID: 5, EventID: 2, ScheduledAt: time.Date(2025, 6, 7, 20, 0, 0, 0, time.UTC), HomeClubID: 1, AwayClubID: 2, State: lifecycle.MatchScheduled}}
	var buf bytes.Buffer
	if err := writeCSV(&buf, list, map[int64]string{1: "Halcones", 2: "Cóndores"}, time.UTC); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assertEq(t, len(lines), 2)
	assertEq(t, lines[1], "5,2,2025-06-07,20:00,,Halcones,Cóndores,scheduled,")
}
