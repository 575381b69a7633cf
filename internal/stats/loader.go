package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// Columns names the identity columns of one source table. Innings and Total are optional.
type Columns struct {
	Team    string
	Player  string
	Innings string
	Total   string
}

// Loader parses the batting and bowling CSV tables into a Table
type Loader struct {
	catalog       *models.Catalog
	batterColumns Columns
	bowlerColumns Columns
}

// NewLoader creates a loader validating rows against catalog
func NewLoader(catalog *models.Catalog, batterColumns, bowlerColumns Columns) *Loader {
	return &Loader{
		catalog:       catalog,
		batterColumns: batterColumns,
		bowlerColumns: bowlerColumns,
	}
}

// Load parses both tables. Any malformed row fails the whole load with a *models.DataIntegrityError.
func (l *Loader) Load(batters, bowlers io.Reader) (*Table, error) {
	batterRecords, err := l.parse("batters", models.RoleBatter, l.batterColumns, batters)
	if err != nil {
		return nil, err
	}
	bowlerRecords, err := l.parse("bowlers", models.RoleBowler, l.bowlerColumns, bowlers)
	if err != nil {
		return nil, err
	}

	table := &Table{
		catalog: l.catalog,
		records: make([]models.PlayerStatRecord, 0, len(batterRecords)+len(bowlerRecords)),
		byTeam:  make(map[string][]int),
		index:   make(map[recordKey]int),
	}

	for _, row := range append(batterRecords, bowlerRecords...) {
		if derr := table.add(row.record); derr != nil {
			derr.Table = row.table
			derr.Line = row.line
			return nil, derr
		}
	}

	return table, nil
}

type parsedRow struct {
	table  string
	line   int
	record models.PlayerStatRecord
}

type marketColumn struct {
	key string
	pos int
}

type header struct {
	team, player, innings, total int
	markets                      []marketColumn
}

func (l *Loader) parse(table string, role models.Role, cols Columns, r io.Reader) ([]parsedRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	names, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &models.DataIntegrityError{Table: table, Line: 1, Reason: "missing header row"}
		}
		return nil, &models.DataIntegrityError{Table: table, Line: 1, Reason: err.Error()}
	}

	h, err := l.resolveHeader(table, role, cols, names)
	if err != nil {
		return nil, err
	}

	var rows []parsedRow
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &models.DataIntegrityError{Table: table, Line: perr.Line, Reason: perr.Err.Error()}
			}
			return nil, &models.DataIntegrityError{Table: table, Reason: err.Error()}
		}
		line, _ := reader.FieldPos(0)
		if isBlank(fields) {
			continue
		}

		rec, derr := parseRow(role, cols, h, fields)
		if derr != nil {
			derr.Table = table
			derr.Line = line
			return nil, derr
		}
		rows = append(rows, parsedRow{table: table, line: line, record: rec})
	}

	return rows, nil
}

func (l *Loader) resolveHeader(table string, role models.Role, cols Columns, names []string) (header, error) {
	positions := make(map[string]int, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	column := func(name string, required bool) (int, error) {
		if name == "" {
			return -1, nil
		}
		pos, ok := positions[name]
		if !ok {
			if required {
				return -1, &models.DataIntegrityError{Table: table, Line: 1, Column: name, Reason: "missing required column"}
			}
			return -1, nil
		}
		return pos, nil
	}

	var (
		h   header
		err error
	)
	if h.team, err = column(cols.Team, true); err != nil {
		return h, err
	}
	if h.player, err = column(cols.Player, true); err != nil {
		return h, err
	}
	if h.team < 0 || h.player < 0 {
		return h, &models.DataIntegrityError{Table: table, Line: 1, Reason: "team and player columns must be configured"}
	}
	h.innings, _ = column(cols.Innings, false)
	h.total, _ = column(cols.Total, false)

	for _, m := range l.catalog.MarketsForRole(role) {
		pos, err := column(m.CSVColumn, true)
		if err != nil {
			return h, err
		}
		h.markets = append(h.markets, marketColumn{key: m.Key, pos: pos})
	}

	return h, nil
}

func parseRow(role models.Role, cols Columns, h header, fields []string) (models.PlayerStatRecord, *models.DataIntegrityError) {
	rec := models.PlayerStatRecord{
		PlayerName:        cell(fields, h.player),
		Team:              cell(fields, h.team),
		Role:              role,
		MarketPercentages: make(map[string]float64, len(h.markets)),
	}

	var derr *models.DataIntegrityError
	if rec.Innings, derr = parseCount(cols.Innings, cell(fields, h.innings)); derr != nil {
		return rec, derr
	}
	if rec.Total, derr = parseCount(cols.Total, cell(fields, h.total)); derr != nil {
		return rec, derr
	}

	for _, mc := range h.markets {
		raw := cell(fields, mc.pos)
		pct, ok, err := ParsePercentage(raw)
		if err != nil {
			return rec, &models.DataIntegrityError{Column: mc.key, Value: raw, Reason: err.Error()}
		}
		if ok {
			rec.MarketPercentages[mc.key] = pct
		}
	}

	return rec, nil
}

// ParsePercentage parses cells such as "80", "80.0" and "80.0%". Blank, NA and NaN
// cells are absent (ok == false) rather than an error.
func ParsePercentage(raw string) (pct float64, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return 0, false, nil
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	pct, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a percentage")
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 || pct > 100 {
		return 0, false, fmt.Errorf("percentage out of range [0,100]")
	}
	return pct, true, nil
}

func parseCount(column, raw string) (int, *models.DataIntegrityError) {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) {
		return 0, &models.DataIntegrityError{Column: column, Value: raw, Reason: "not a non-negative whole number"}
	}
	return int(f), nil
}

func isAbsent(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "n/a", "null", "-":
		return true
	}
	return false
}

func cell(fields []string, pos int) string {
	if pos < 0 || pos >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[pos])
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
