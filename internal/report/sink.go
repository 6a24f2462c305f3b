package report

import (
	"bufio"
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"
)

// Output formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatCSV, FormatJSON, FormatSQLite}

// Line endings.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// ErrUnknownFormat is returned for an output format outside Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Sink receives report rows.
type Sink interface {
	Write(row Row) error
	// Close flushes buffered rows. It does not close the underlying writer.
	Close() error
}

// SinkOptions control how rows are rendered.
type SinkOptions struct {
	// Header writes the column names before the first CSV row.
	Header bool
	// LineEnding terminates each line; LF when empty.
	LineEnding string
}

// CSVSink writes every field double-quoted, with embedded quotes doubled.
type CSVSink struct {
	w       *bufio.Writer
	opts    SinkOptions
	started bool
}

// NewCSVSink returns a CSV sink writing to w.
func NewCSVSink(w io.Writer, opts SinkOptions) *CSVSink {
	if opts.LineEnding == "" {
		opts.LineEnding = LF
	}
	return &CSVSink{w: bufio.NewWriter(w), opts: opts}
}

// Write implements Sink.
func (s *CSVSink) Write(row Row) error {
	if !s.started {
		s.started = true
		if s.opts.Header {
			if err := s.line(row.Columns()); err != nil {
				return err
			}
		}
	}
	return s.line(row.Values())
}

func (s *CSVSink) line(fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = QuoteField(f)
	}
	if _, err := s.w.WriteString(strings.Join(quoted, ",") + s.opts.LineEnding); err != nil {
		return fmt.Errorf("writing csv line: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	return s.w.Flush()
}

// QuoteField renders one CSV field.
func QuoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	w    *bufio.Writer
	opts SinkOptions
}

// NewJSONSink returns a JSON-lines sink writing to w.
func NewJSONSink(w io.Writer, opts SinkOptions) *JSONSink {
	if opts.LineEnding == "" {
		opts.LineEnding = LF
	}
	return &JSONSink{w: bufio.NewWriter(w), opts: opts}
}

// Write implements Sink.
func (s *JSONSink) Write(row Row) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(row); err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	line := bytes.TrimRight(buf.Bytes(), "\n")
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("writing json line: %w", err)
	}
	if _, err := s.w.WriteString(s.opts.LineEnding); err != nil {
		return fmt.Errorf("writing json line: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *JSONSink) Close() error {
	return s.w.Flush()
}

// SQLiteSink stores rows in a single table of a SQLite database. The table
// is recreated from the first row's columns and every row is inserted in
// one transaction, committed on Close.
type SQLiteSink struct {
	db    *sql.DB
	tx    *sql.Tx
	stmt  *sql.Stmt
	table string
}

// OpenSQLiteSink opens or creates the database at path.
func OpenSQLiteSink(path, table string) (*SQLiteSink, error) {
	if path == "" {
		return nil, errors.New("sqlite output requires an output file")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &SQLiteSink{db: db, tx: tx, table: table}, nil
}

// Write implements Sink.
func (s *SQLiteSink) Write(row Row) error {
	if s.stmt == nil {
		if err := s.createTable(row.Columns()); err != nil {
			return err
		}
	}
	values := row.Values()
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := s.stmt.Exec(args...); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	return nil
}

func (s *SQLiteSink) createTable(columns []string) error {
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteIdent(c)
		defs[i] = names[i] + " TEXT"
		marks[i] = "?"
	}
	table := quoteIdent(s.table)

	if _, err := s.tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return fmt.Errorf("dropping table %s: %w", s.table, err)
	}
	if _, err := s.tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	stmt, err := s.tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	s.stmt = stmt
	return nil
}

// Close implements Sink. It commits the rows written so far and closes the
// database.
func (s *SQLiteSink) Close() error {
	if s.stmt != nil {
		s.stmt.Close()
	}
	if err := s.tx.Commit(); err != nil {
		s.db.Close()
		return fmt.Errorf("committing rows: %w", err)
	}
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// NewSink returns the sink for format. path names the output file, empty
// for stdout; w is where text formats write. File output uses CRLF line
// endings.
func NewSink(format string, w io.Writer, path, table string, header bool) (Sink, error) {
	opts := SinkOptions{Header: header, LineEnding: LF}
	if path != "" {
		opts.LineEnding = CRLF
	}
	switch format {
	case FormatCSV:
		return NewCSVSink(w, opts), nil
	case FormatJSON:
		return NewJSONSink(w, opts), nil
	case FormatSQLite:
		s, err := OpenSQLiteSink(path, table)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
