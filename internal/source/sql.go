package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/model"
)

// Dialect selects the SQL flavor of a table source.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// noLimit is the LIMIT clause for an unbounded page.
func (d Dialect) noLimit() string {
	if d == DialectPostgres {
		return "ALL"
	}
	return "-1"
}

var sqlIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

// SQLSource reads Rows from one table, a page at a time.
type SQLSource struct {
	db      *sql.DB
	dialect Dialect
	table   string
	key     string
	owned   bool
}

var (
	_ model.PagedFinder[Row] = (*SQLSource)(nil)
	_ model.IDFinder[Row]    = (*SQLSource)(nil)
)

// SQLOptions configures OpenSQL.
type SQLOptions struct {
	Dialect Dialect
	// DSN is a file path or ":memory:" for SQLite, a connection string
	// for PostgreSQL.
	DSN   string
	Table string
	// KeyColumn holds the primary key, "id" by default.
	KeyColumn string
}

// OpenSQL connects to the database and returns a source that owns the
// connection.
func OpenSQL(ctx context.Context, opts SQLOptions) (*SQLSource, error) {
	var db *sql.DB
	switch opts.Dialect {
	case DialectSQLite, "":
		opts.Dialect = DialectSQLite
		conn, err := sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, err
		}
		conn.SetMaxOpenConns(1)
		db = conn
	case DialectPostgres:
		cfg, err := pgx.ParseConfig(opts.DSN)
		if err != nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "invalid postgres dsn", err)
		}
		db = stdlib.OpenDB(*cfg)
	default:
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "unknown sql dialect: %s", opts.Dialect).
			WithSuggestion("valid dialects: sqlite, postgres")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := NewSQLSource(db, opts.Dialect, opts.Table, opts.KeyColumn)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLSource reads table through db. Close leaves db open.
func NewSQLSource(db *sql.DB, dialect Dialect, table, keyColumn string) (*SQLSource, error) {
	if keyColumn == "" {
		keyColumn = "id"
	}
	for _, ident := range []string{table, keyColumn} {
		if !sqlIdentRe.MatchString(ident) {
			return nil, errors.Newf(errors.ErrCodeConfigInvalid, "invalid sql identifier %q", ident)
		}
	}
	if dialect == "" {
		dialect = DialectSQLite
	}
	return &SQLSource{db: db, dialect: dialect, table: table, key: keyColumn}, nil
}

// DB returns the underlying connection.
func (s *SQLSource) DB() *sql.DB { return s.db }

func (s *SQLSource) orderBy(order []string) (string, error) {
	if len(order) == 0 {
		return quoteIdent(s.key), nil
	}
	keys := make([]string, 0, len(order))
	for _, o := range order {
		col, desc := strings.CutPrefix(o, "-")
		if !sqlIdentRe.MatchString(col) {
			return "", errors.Newf(errors.ErrCodeInvalidFindOption, "cannot order by %q", o)
		}
		k := quoteIdent(col)
		if desc {
			k += " DESC"
		}
		keys = append(keys, k)
	}
	return strings.Join(keys, ", "), nil
}

// FindPage reads one page ordered by page.Order, the key column by default.
func (s *SQLSource) FindPage(ctx context.Context, page model.Page) ([]Row, error) {
	order, err := s.orderBy(page.Order)
	if err != nil {
		return nil, err
	}
	limit := s.dialect.noLimit()
	if page.Limit > 0 {
		limit = strconv.Itoa(page.Limit)
	}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s LIMIT %s OFFSET %d",
		quoteIdent(s.table), order, limit, page.Skip())

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanRows(rows, page.Fields)
}

// FindByIDs loads rows by key, skipping missing ones.
func (s *SQLSource) FindByIDs(ctx context.Context, ids []string) ([]Row, error) {
	if len(ids) == 0 {
		return []Row{}, nil
	}
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = s.dialect.placeholder(i + 1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)",
		quoteIdent(s.table), quoteIdent(s.key), strings.Join(marks, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanRows(rows, nil)
}

func (s *SQLSource) scanRows(rows *sql.Rows, fields []string) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := Row{Values: make(map[string]any, len(cols))}
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if c == s.key {
				row.ID = fmt.Sprint(v)
			}
			row.Values[c] = v
		}
		out = append(out, row.project(fields))
	}
	return out, rows.Err()
}

// Close closes the connection if OpenSQL opened it.
func (s *SQLSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
