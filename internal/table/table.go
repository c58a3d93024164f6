// Package table persists flat records as deduplicated Parquet files using an in-process
// DuckDB.
package table

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"congressdata/internal/components/assert"
	"congressdata/internal/components/telemetry"
	"congressdata/internal/flatten"
	"congressdata/internal/upstream"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const (
	report_store_write   = "store.write"
	report_store_cleanup = "store.cleanup"
	ordinalColumn        = "__ord"
	parquetExtension     = ".parquet"
	stagingFilePattern   = ".staging-*.ndjson"
	temporaryFileSuffix  = ".tmp"
)

var ErrTableNotFound = errors.New("table not found")

// WriteError is a failure to persist a table, it classifies as a persistence error.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %s", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (e *WriteError) ErrorClass() upstream.ErrorClass {
	return upstream.ClassPersistence
}

// Store owns the output directory, every table is one <name>.parquet file in it.
type Store struct {
	dir string
	db  *sql.DB
	tel telemetry.API
}

func Open(dir string, tel telemetry.API) (*Store, error) {
	assert.NotEmptyStr(dir)
	assert.NotNil(tel)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &Store{
		dir: dir,
		db:  db,
		tel: telemetry.NewScopedAPI("table", tel),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+parquetExtension)
}

func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// columnsOf returns the schema's columns followed by any extra column found in the records
// (bulk archives can grow columns between years), in a stable order. DuckDB identifiers are
// case insensitive and cannot be empty, so an extra column that is blank or collides with
// an earlier one is given a free name; renames maps record keys to those names.
func columnsOf(schema flatten.Schema, records []flatten.Record) (columns []string, renames map[string]string) {
	declared := make(map[string]bool, len(schema.Columns))
	taken := map[string]bool{ordinalColumn: true}
	columns = make([]string, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		declared[c] = true
		taken[strings.ToLower(c)] = true
		columns = append(columns, c)
	}

	extra := map[string]bool{}
	for _, r := range records {
		for c := range r {
			if !declared[c] {
				extra[c] = true
			}
		}
	}
	extras := make([]string, 0, len(extra))
	for c := range extra {
		extras = append(extras, c)
	}
	sort.Strings(extras)

	renames = map[string]string{}
	for _, c := range extras {
		name := strings.TrimSpace(c)
		if name == "" {
			name = "column"
		}
		base := name
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		if name != c {
			renames[c] = name
		}
		columns = append(columns, name)
	}
	return columns, renames
}

// renameKeys returns records with their keys renamed, records without a renamed key are
// shared, not copied.
func renameKeys(records []flatten.Record, renames map[string]string) []flatten.Record {
	if len(renames) == 0 {
		return records
	}
	out := make([]flatten.Record, len(records))
	for i, r := range records {
		out[i] = r
		for from := range renames {
			if _, ok := r[from]; ok {
				out[i] = make(flatten.Record, len(r))
				for k, v := range r {
					if to, ok := renames[k]; ok {
						k = to
					}
					out[i][k] = v
				}
				break
			}
		}
	}
	return out
}

// Write replaces the table with the deduplicated records and returns the number of rows
// written. An empty collection leaves any existing file alone, a transient empty response
// must not truncate a table. When two records share a natural key the one appended last
// wins.
func (s *Store) Write(ctx context.Context, schema flatten.Schema, records []flatten.Record) (int, error) {
	assert.NotEmptyStr(schema.Name)

	if len(records) == 0 {
		s.tel.ReportWarning(report_store_write, "no records, keeping previous file", schema.Name)
		return 0, nil
	}

	columns, renames := columnsOf(schema, records)
	if len(renames) > 0 {
		s.tel.ReportWarning(report_store_write, schema.Name, "renamed columns", renames)
		records = renameKeys(records, renames)
	}
	types := InferTypes(columns, records)

	staging, err := s.stage(columns, types, records)
	if err != nil {
		return 0, &WriteError{Table: schema.Name, Err: err}
	}
	defer func() {
		err := os.Remove(staging)
		if err != nil && !os.IsNotExist(err) {
			s.tel.ReportWarning(report_store_cleanup, staging, err)
		}
	}()

	final := s.Path(schema.Name)
	err = os.MkdirAll(filepath.Dir(final), 0755)
	if err != nil {
		return 0, &WriteError{Table: schema.Name, Err: err}
	}
	tmp := final + temporaryFileSuffix

	_, err = s.db.ExecContext(ctx, copyStatement(schema, columns, types, staging, tmp))
	if err != nil {
		os.Remove(tmp)
		return 0, &WriteError{Table: schema.Name, Err: fmt.Errorf("copy: %w", err)}
	}

	var count int
	err = s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT count(*) FROM read_parquet(%s)", quoteLiteral(tmp)),
	).Scan(&count)
	if err != nil {
		os.Remove(tmp)
		return 0, &WriteError{Table: schema.Name, Err: fmt.Errorf("count: %w", err)}
	}

	err = os.Rename(tmp, final)
	if err != nil {
		os.Remove(tmp)
		return 0, &WriteError{Table: schema.Name, Err: err}
	}

	s.tel.ReportDebug("wrote table", schema.Name, len(records), count)
	s.tel.ReportCount(schema.Name, int64(count))
	return count, nil
}

// stage writes the records as newline delimited json with an ordinal column.
func (s *Store) stage(columns []string, types map[string]string, records []flatten.Record) (string, error) {
	f, err := os.CreateTemp(s.dir, stagingFilePattern)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	for i, r := range records {
		row := make(map[string]any, len(columns)+1)
		for _, c := range columns {
			row[c] = coerce(r[c], types[c])
		}
		row[ordinalColumn] = i
		err = encoder.Encode(row)
		if err != nil {
			return f.Name(), fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	err = w.Flush()
	if err != nil {
		return f.Name(), err
	}
	return f.Name(), nil
}

func copyStatement(schema flatten.Schema, columns []string, types map[string]string, staging, target string) string {
	structFields := make([]string, 0, len(columns)+1)
	selected := make([]string, 0, len(columns))
	for _, c := range columns {
		structFields = append(structFields, fmt.Sprintf("%s: %s", quoteLiteral(c), quoteLiteral(types[c])))
		selected = append(selected, quoteIdent(c))
	}
	structFields = append(structFields, fmt.Sprintf("%s: 'BIGINT'", quoteLiteral(ordinalColumn)))

	var query strings.Builder
	fmt.Fprintf(
		&query,
		"SELECT %s FROM read_json(%s, format = 'newline_delimited', auto_detect = false, columns = {%s})",
		strings.Join(selected, ", "),
		quoteLiteral(staging),
		strings.Join(structFields, ", "),
	)

	if len(schema.Key) > 0 {
		key := make([]string, len(schema.Key))
		for i, k := range schema.Key {
			key[i] = quoteIdent(k)
		}
		fmt.Fprintf(
			&query,
			" QUALIFY row_number() OVER (PARTITION BY %s ORDER BY %s DESC) = 1",
			strings.Join(key, ", "),
			quoteIdent(ordinalColumn),
		)
	}

	order := make([]string, 0, len(schema.Sort)+1)
	for _, c := range schema.Sort {
		order = append(order, quoteIdent(c))
	}
	order = append(order, quoteIdent(ordinalColumn))
	fmt.Fprintf(&query, " ORDER BY %s", strings.Join(order, ", "))

	return fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET)", query.String(), quoteLiteral(target))
}

// DistinctStrings reads the distinct non-null values of one column of an existing table,
// cast to text, in ascending order.
func (s *Store) DistinctStrings(ctx context.Context, name, column string) ([]string, error) {
	if !s.Exists(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT DISTINCT CAST(%[1]s AS VARCHAR) AS v FROM read_parquet(%[2]s) WHERE %[1]s IS NOT NULL ORDER BY v",
		quoteIdent(column),
		quoteLiteral(s.Path(name)),
	))
	if err != nil {
		return nil, &WriteError{Table: name, Err: fmt.Errorf("read %s: %w", column, err)}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		err = rows.Scan(&v)
		if err != nil {
			return nil, err
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}

// Count returns the number of rows in an existing table.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	if !s.Exists(name) {
		return 0, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	var count int
	err := s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT count(*) FROM read_parquet(%s)", quoteLiteral(s.Path(name))),
	).Scan(&count)
	return count, err
}
