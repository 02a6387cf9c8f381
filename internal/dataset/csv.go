package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"sqlchat/internal/database"
	"sqlchat/internal/errs"
)

// CSVOptions controls how a CSV stream is parsed.
type CSVOptions struct {
	// Delimiter is the field separator. Zero means comma.
	Delimiter rune

	// NoHeader treats the first record as data; columns are then named
	// column_0, column_1, …
	NoHeader bool
}

// CSVFile is a fully parsed CSV: cleaned column names, detected SQL types,
// and the raw string records.
type CSVFile struct {
	Columns []string
	Types   []string
	Records [][]string
}

// CSVPreview is the first few rows of a CSV, shaped for JSON.
type CSVPreview struct {
	Columns     []string          `json:"columns"`
	Types       map[string]string `json:"detected_types"`
	Rows        []map[string]any  `json:"preview_data"`
	TotalRows   int               `json:"total_rows"`
	PreviewRows int               `json:"preview_rows"`
}

// ReadCSV parses a CSV stream, cleans the header into SQL-safe column names
// and detects a SQL type per column (INTEGER, REAL or TEXT).
func ReadCSV(r io.Reader, opts CSVOptions) (*CSVFile, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "CSV file is empty")
	}

	var columns []string
	var data [][]string
	if opts.NoHeader {
		columns = make([]string, len(records[0]))
		for i := range columns {
			columns[i] = fmt.Sprintf("column_%d", i)
		}
		data = records
	} else {
		columns = cleanColumnNames(records[0])
		data = records[1:]
	}

	for i, rec := range data {
		if len(rec) != len(columns) {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "row %d has %d fields, expected %d", i+1, len(rec), len(columns))
		}
	}

	return &CSVFile{
		Columns: columns,
		Types:   detectColumnTypes(columns, data),
		Records: data,
	}, nil
}

// Preview returns up to n parsed rows with values converted per the
// detected column types.
func (f *CSVFile) Preview(n int) CSVPreview {
	if n <= 0 {
		n = 5
	}
	if n > len(f.Records) {
		n = len(f.Records)
	}

	types := make(map[string]string, len(f.Columns))
	for i, c := range f.Columns {
		types[c] = f.Types[i]
	}

	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(f.Columns))
		for j, c := range f.Columns {
			row[c] = convertValue(f.Records[i][j], f.Types[j])
		}
		rows[i] = row
	}

	return CSVPreview{
		Columns:     f.Columns,
		Types:       types,
		Rows:        rows,
		TotalRows:   len(f.Records),
		PreviewRows: n,
	}
}

// ImportCSV loads a parsed CSV into a table on the active connection,
// creating the table from the detected types if it does not exist.
func (im *Importer) ImportCSV(ctx context.Context, f *CSVFile, table string, policy Policy) (TableResult, error) {
	if table == "" {
		return TableResult{}, errs.New(errs.ErrKindInvalidInput, "table name is required")
	}

	db, err := im.reg.Active(ctx)
	if err != nil {
		return TableResult{}, err
	}

	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = fmt.Sprintf("    %s %s", database.QuoteIdent(c), f.Types[i])
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", database.QuoteIdent(table), strings.Join(cols, ",\n"))
	if _, err := db.Exec(ctx, ddl); err != nil {
		return TableResult{}, err
	}

	switch policy {
	case PolicyFail:
		n, err := countRows(ctx, db, table)
		if err != nil {
			return TableResult{}, err
		}
		if n > 0 {
			return TableResult{}, errs.Newf(errs.ErrKindAlreadyPopulated, "table %q already contains %d rows", table, n)
		}
	case PolicyReplace:
		if _, err := db.Exec(ctx, "DELETE FROM "+database.QuoteIdent(table)); err != nil {
			return TableResult{}, err
		}
	}

	quoted := make([]string, len(f.Columns))
	holes := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		quoted[i] = database.QuoteIdent(c)
		holes[i] = database.Placeholder(db.Dialect(), i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		database.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(holes, ", "))

	for _, rec := range f.Records {
		args := make([]any, len(rec))
		for i, v := range rec {
			args[i] = convertValue(v, f.Types[i])
		}
		if _, err := db.Exec(ctx, stmt, args...); err != nil {
			return TableResult{}, err
		}
	}

	im.log.With().Str("table", table).Int("rows", len(f.Records)).Logger().Info("CSV imported")
	return TableResult{Table: table, RowCount: len(f.Records), ColumnCount: len(f.Columns)}, nil
}

// cleanColumnNames rewrites raw CSV headers into SQL-safe identifiers:
// lowercase, non-alphanumerics become underscores, and names that start
// with a digit get a col_ prefix. Empty headers become column_N.
func cleanColumnNames(header []string) []string {
	out := make([]string, len(header))
	for i, raw := range header {
		cleaned := strings.ToLower(strings.TrimSpace(raw))
		var sb strings.Builder
		for _, r := range cleaned {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				sb.WriteRune(r)
			} else {
				sb.WriteByte('_')
			}
		}
		name := sb.String()
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		} else if unicode.IsDigit(rune(name[0])) {
			name = "col_" + name
		}
		out[i] = name
	}
	return out
}

// detectColumnTypes infers a SQL type per column from the data. A column
// where every non-empty value parses as an integer is INTEGER; every value
// numeric at all is REAL; anything else is TEXT. All-empty columns default
// to TEXT.
func detectColumnTypes(columns []string, records [][]string) []string {
	types := make([]string, len(columns))
	for i := range columns {
		allInt, allNum, seen := true, true, false
		for _, rec := range records {
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allNum = false
				break
			}
		}
		switch {
		case !seen:
			types[i] = "TEXT"
		case allInt:
			types[i] = "INTEGER"
		case allNum:
			types[i] = "REAL"
		default:
			types[i] = "TEXT"
		}
	}
	return types
}

// convertValue coerces a raw CSV field to the detected type. Empty fields
// become NULL. A value that fails to parse falls back to its string form.
func convertValue(v, sqlType string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	switch sqlType {
	case "INTEGER":
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case "REAL":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}
