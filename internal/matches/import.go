package matches

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/xaitan80/liga-voley/internal/domainerr"
)

// fixtureRow is one line of a fixture sheet, still as text.
type fixtureRow struct {
	Line      int
	Date      string
	Time      string
	DateTime  string
	Location  string
	Home      string
	Away      string
	Referee   string
	Assistant string
}

// ImportReport summarises a fixture import. Errors are per row, prefixed
// with the sheet line number.
type ImportReport struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// parseImport reads a CSV or XLSX fixture sheet from a multipart upload.
func parseImport(fh *multipart.FileHeader) ([]fixtureRow, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch ext {
	case ".csv":
		return parseCSV(file)
	case ".xlsx":
		// excelize wants a ReaderAt; fixtures are small, cap at 10MB
		b, err := io.ReadAll(io.LimitReader(file, 10<<20))
		if err != nil {
			return nil, err
		}
		return parseXLSX(b)
	default:
		return nil, domainerr.Invalid("file", "unsupported file type "+ext)
	}
}

func parseCSV(r io.Reader) ([]fixtureRow, error) {
	br := bufio.NewReader(r)
	// sniff the delimiter on the header line, then put it back
	line, _ := br.ReadString('\n')
	reader := csv.NewReader(io.MultiReader(strings.NewReader(line), br))
	reader.FieldsPerRecord = -1
	if strings.Count(line, ";") > strings.Count(line, ",") {
		reader.Comma = ';'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domainerr.Invalid("file", err.Error())
	}
	return toFixtures(rows)
}

func parseXLSX(b []byte) ([]fixtureRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, domainerr.Invalid("file", err.Error())
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, domainerr.Invalid("file", "no sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domainerr.Invalid("file", err.Error())
	}
	return toFixtures(rows)
}

func toFixtures(rows [][]string) ([]fixtureRow, error) {
	if len(rows) == 0 {
		return nil, domainerr.Invalid("file", "empty sheet")
	}
	headers := normHeaders(rows[0])
	var out []fixtureRow
	for i := 1; i < len(rows); i++ {
		if strings.TrimSpace(strings.Join(rows[i], "")) == "" {
			continue
		}
		fr := rowToFixture(headers, rows[i])
		fr.Line = i + 1
		out = append(out, fr)
	}
	return out, nil
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and strips accents: "Cóndores" -> "condores".
func fold(s string) string {
	out, _, err := transform.String(folder, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// normHeaders maps column index to a canonical key. Spanish and English
// headings are accepted; accents, case, spaces and punctuation are ignored.
func normHeaders(hdr []string) map[int]string {
	m := make(map[int]string, len(hdr))
	for i, h := range hdr {
		var b strings.Builder
		for _, r := range fold(h) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		k := b.String()
		switch k {
		case "fecha", "date", "dia":
			k = "date"
		case "hora", "horainicio", "time", "starttime":
			k = "time"
		case "fechahora", "datetime", "inicio", "start":
			k = "datetime"
		case "lugar", "sede", "cancha", "coliseo", "escenario", "location", "venue":
			k = "location"
		case "local", "equipolocal", "clublocal", "home", "hometeam", "homeclub":
			k = "home"
		case "visitante", "equipovisitante", "clubvisitante", "away", "awayteam", "awayclub":
			k = "away"
		case "arbitro", "arbitroprincipal", "juez", "referee":
			k = "referee"
		case "arbitroasistente", "asistente", "segundoarbitro", "assistant", "assistantreferee":
			k = "assistant"
		}
		m[i] = k
	}
	return m
}

func rowToFixture(h map[int]string, row []string) fixtureRow {
	get := func(key string) string {
		for i, k := range h {
			if k == key && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}
	return fixtureRow{
		Date:      get("date"),
		Time:      get("time"),
		DateTime:  get("datetime"),
		Location:  get("location"),
		Home:      get("home"),
		Away:      get("away"),
		Referee:   get("referee"),
		Assistant: get("assistant"),
	}
}

var dateLayouts = []string{time.DateOnly, "02/01/2006", "2/1/2006", "02-01-2006"}

// parseLocal builds an instant in loc from a sheet date and an optional
// HH:MM time. Day-first dates are the local convention.
func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	if clock == "" {
		clock = "00:00"
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout+" 15:04", date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unreadable date %q %q", date, clock)
}

func (fr fixtureRow) when(loc *time.Location) (time.Time, error) {
	if fr.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, fr.DateTime); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation("2006-01-02 15:04", fr.DateTime, loc); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("unreadable date %q", fr.DateTime)
	}
	if fr.Date == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	return parseLocal(fr.Date, fr.Time, loc)
}

func optionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("bad user id %q", raw)
	}
	return &id, nil
}

// toInput resolves club names through clubIDs, keyed by fold(name).
func (fr fixtureRow) toInput(eventID int64, clubIDs map[string]int64, loc *time.Location) (Input, error) {
	at, err := fr.when(loc)
	if err != nil {
		return Input{}, err
	}
	home, ok := clubIDs[fold(fr.Home)]
	if !ok {
		return Input{}, fmt.Errorf("unknown home club %q", fr.Home)
	}
	away, ok := clubIDs[fold(fr.Away)]
	if !ok {
		return Input{}, fmt.Errorf("unknown away club %q", fr.Away)
	}
	ref, err := optionalID(fr.Referee)
	if err != nil {
		return Input{}, err
	}
	asst, err := optionalID(fr.Assistant)
	if err != nil {
		return Input{}, err
	}
	return Input{
		EventID:            eventID,
		ScheduledAt:        at,
		Location:           fr.Location,
		HomeClubID:         home,
		AwayClubID:         away,
		RefereeID:          ref,
		AssistantRefereeID: asst,
	}, nil
}

// ImportFixtures schedules every row through Schedule. A failing row does
// not stop the others.
func (s *Service) ImportFixtures(ctx context.Context, eventID int64, rows []fixtureRow, clubIDs map[string]int64, loc *time.Location) ImportReport {
	rep := ImportReport{Errors: []string{}}
	for _, fr := range rows {
		in, err := fr.toInput(eventID, clubIDs, loc)
		if err == nil {
			_, err = s.Schedule(ctx, in)
		}
		if err != nil {
			log.Printf("fixture import event %d line %d: %v", eventID, fr.Line, err)
			rep.Failed++
			rep.Errors = append(rep.Errors, fmt.Sprintf("row %d: %v", fr.Line, err))
			continue
		}
		rep.Imported++
	}
	return rep
}
