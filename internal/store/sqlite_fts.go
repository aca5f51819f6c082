package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

const (
	sqliteAdapterName = "sqlite"
	sqliteTablePrefix = "bi_"
)

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteAdapter keeps one FTS5 virtual table per model. Columns follow the
// model's fields and included associations; the primary key column is
// stored but not searchable.
type SQLiteAdapter struct {
	adapter.Unsupported

	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
	tables map[string][]string // type -> searchable columns
	// checkpoints counts WAL checkpoints run after committed writes.
	checkpoints int
}

var _ adapter.Adapter = (*SQLiteAdapter)(nil)

// SQLRequest is the request type accepted by SQLiteAdapter.Execute.
type SQLRequest struct {
	Query string
	Args  []any
}

// validateSQLiteIntegrity runs PRAGMA integrity_check on an existing file.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// NewSQLiteAdapter opens or creates an FTS5 index database at path. An
// empty path creates an in-memory database.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}

		if validErr := validateSQLiteIntegrity(path); validErr != nil {
			slog.Warn("sqlite_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, fmt.Errorf("sqlite index corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
			}
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")
			slog.Info("sqlite_index_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, rebuild required"))
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Backend("open", err)
	}

	// Single connection: writes serialize, and an in-memory database
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Backend("open", fmt.Errorf("%s: %w", pragma, err))
		}
	}

	return &SQLiteAdapter{
		Unsupported: adapter.Unsupported{AdapterName: sqliteAdapterName},
		db:          db,
		path:        path,
		tables:      make(map[string][]string),
	}, nil
}

func (s *SQLiteAdapter) Name() string { return sqliteAdapterName }

func (s *SQLiteAdapter) DefaultTypeField() string { return defaultTypeField }

func (s *SQLiteAdapter) DefaultPrimaryKeyField() string { return defaultPrimaryKeyField }

// FieldType maps logical types onto SQLite column affinities. FTS5 stores
// every column as text; the affinity documents intent.
func (s *SQLiteAdapter) FieldType(t schema.FieldType) string {
	switch t {
	case schema.FieldInteger, schema.FieldBoolean:
		return "INTEGER"
	case schema.FieldFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func tableName(m adapter.Model) string {
	return sqliteTablePrefix + strings.ToLower(m.IndexType())
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ensureTable creates m's FTS5 table on first use and returns its
// searchable columns.
func (s *SQLiteAdapter) ensureTable(ctx context.Context, m adapter.Model) ([]string, error) {
	typ := m.IndexType()
	if cols, ok := s.tables[typ]; ok {
		return cols, nil
	}

	cfg := m.Configuration()
	if !identRegex.MatchString(typ) {
		return nil, errors.Newf(errors.ErrCodeInvalidFieldSpec, "index type %q is not a valid table name", typ)
	}
	var cols []string
	for _, f := range cfg.Fields() {
		name := f.Name()
		if cfg.Excluded(name) || name == cfg.PrimaryKeyField || name == cfg.TypeField {
			continue
		}
		if !identRegex.MatchString(name) {
			return nil, errors.Newf(errors.ErrCodeInvalidFieldSpec, "field %q is not a valid column name", name).
				WithSuggestion("sqlite field names must be identifiers")
		}
		cols = append(cols, name)
	}
	for _, name := range cfg.Associations() {
		if !identRegex.MatchString(name) {
			return nil, errors.Newf(errors.ErrCodeInvalidFieldSpec, "association %q is not a valid column name", name)
		}
		cols = append(cols, name)
	}

	defs := []string{quoteIdent(cfg.PrimaryKeyField) + " UNINDEXED"}
	for _, c := range cols {
		defs = append(defs, quoteIdent(c))
	}
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(%s, tokenize='unicode61')",
		quoteIdent(tableName(m)), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return nil, backendErr("create_table", err)
	}
	s.tables[typ] = cols
	return cols, nil
}

// checkpoint copies committed WAL pages into the database file. In-memory
// databases have no WAL.
func (s *SQLiteAdapter) checkpoint(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
		return err
	}
	s.checkpoints++
	return nil
}

func (s *SQLiteAdapter) checkOpen() error {
	if s.closed {
		return errors.Newf(errors.ErrCodeIndexBackend, "sqlite index is closed")
	}
	return nil
}

func (s *SQLiteAdapter) writeRecords(ctx context.Context, tx *sql.Tx, m adapter.Model, cols []string, items []adapter.Record) error {
	table := quoteIdent(tableName(m))
	pk := quoteIdent(m.Configuration().PrimaryKeyField)

	// FTS5 virtual tables don't support REPLACE, so delete first.
	deleteStmt, err := tx.PrepareContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, pk))
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer deleteStmt.Close()

	names := []string{pk}
	marks := []string{"?"}
	for _, c := range cols {
		names = append(names, quoteIdent(c))
		marks = append(marks, "?")
	}
	insertStmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s(%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer insertStmt.Close()

	for _, r := range items {
		doc, err := m.Document(r)
		if err != nil {
			return err
		}
		args := make([]any, 0, len(cols)+1)
		args = append(args, r.RecordID())
		for _, c := range cols {
			args = append(args, flatten(doc[c]))
		}
		if _, err := deleteStmt.ExecContext(ctx, r.RecordID()); err != nil {
			return fmt.Errorf("failed to delete existing document %s: %w", m.IndexID(r), err)
		}
		if _, err := insertStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to index document %s: %w", m.IndexID(r), err)
		}
	}
	return nil
}

// ProcessIndexBatch writes items in one transaction. With Commit the WAL is
// checkpointed after the transaction.
func (s *SQLiteAdapter) ProcessIndexBatch(ctx context.Context, m adapter.Model, items []adapter.Record, batch int, opts adapter.BatchOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	cols, err := s.ensureTable(ctx, m)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr("process_index_batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.writeRecords(ctx, tx, m, cols, items); err != nil {
		return backendErr("process_index_batch", err)
	}
	if err := tx.Commit(); err != nil {
		return backendErr("process_index_batch", err)
	}
	if opts.Commit {
		if err := s.checkpoint(ctx); err != nil {
			return backendErr("process_index_batch", err)
		}
	}

	if !opts.Silent {
		slog.Debug("sqlite_batch_indexed",
			slog.String("type", m.IndexType()),
			slog.Int("batch", batch),
			slog.Int("size", len(items)))
	}
	return nil
}

// DropIndex drops m's table. The next write recreates it with the current
// field set.
func (s *SQLiteAdapter) DropIndex(ctx context.Context, m adapter.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(tableName(m))); err != nil {
		return backendErr("drop_index", err)
	}
	delete(s.tables, m.IndexType())
	slog.Debug("sqlite_index_dropped", slog.String("type", m.IndexType()))
	return nil
}

// Execute runs an SQLRequest and returns its rows as column maps.
func (s *SQLiteAdapter) Execute(ctx context.Context, request any) (any, error) {
	var req SQLRequest
	switch r := request.(type) {
	case SQLRequest:
		req = r
	case *SQLRequest:
		req = *r
	case string:
		req = SQLRequest{Query: r}
	default:
		return nil, errors.Newf(errors.ErrCodeIndexBackend, "sqlite adapter cannot execute %T", request).
			WithSuggestion("pass a store.SQLRequest")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, req.Query, req.Args...)
	if err != nil {
		return nil, backendErr("execute", err)
	}
	defer rows.Close()

	out, err := scanMaps(rows)
	if err != nil {
		return nil, backendErr("execute", err)
	}
	return out, nil
}

func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IndexSave writes one record. The WAL is checkpointed when the model's
// configuration has AutoCommit set.
func (s *SQLiteAdapter) IndexSave(ctx context.Context, m adapter.Model, r adapter.Record) error {
	return s.ProcessIndexBatch(ctx, m, []adapter.Record{r}, 1, adapter.BatchOptions{Commit: m.Configuration().AutoCommit, Silent: true})
}

func (s *SQLiteAdapter) IndexDestroy(ctx context.Context, m adapter.Model, r adapter.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.ensureTable(ctx, m); err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(tableName(m)), quoteIdent(m.Configuration().PrimaryKeyField))
	if _, err := s.db.ExecContext(ctx, stmt, r.RecordID()); err != nil {
		return backendErr("index_destroy", err)
	}
	if m.Configuration().AutoCommit {
		if err := s.checkpoint(ctx); err != nil {
			return backendErr("index_destroy", err)
		}
	}
	return nil
}

// matchExpression translates a query string to FTS5 syntax. Every value is
// quoted so user input never reaches FTS5 operators. Terms on fields that
// are not columns search all columns.
func matchExpression(qs string, op adapter.Operator, cols []string) string {
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}

	var parts []string
	for _, t := range parseTerms(qs) {
		if t.Value == "" {
			continue
		}
		phrase := `"` + strings.ReplaceAll(t.Value, `"`, `""`) + `"`
		if t.Field != "" && known[t.Field] {
			phrase = t.Field + " : " + phrase
		}
		parts = append(parts, phrase)
	}

	joiner := " OR "
	if op == adapter.OperatorAnd {
		joiner = " AND "
	}
	return strings.Join(parts, joiner)
}

// rankExpression is the bm25 score of a match with every column weighted
// by its field boost. Lower is better; the primary key column never
// matches.
func rankExpression(m adapter.Model, cols []string) string {
	cfg := m.Configuration()
	weights := make([]string, 0, len(cols)+1)
	weights = append(weights, "0")
	for _, c := range cols {
		w := cfg.DefaultBoost
		if f, ok := cfg.Field(c); ok {
			w = cfg.Boost(f)
		}
		weights = append(weights, strconv.FormatFloat(w, 'g', -1, 64))
	}
	return fmt.Sprintf("bm25(%s, %s)", quoteIdent(tableName(m)), strings.Join(weights, ", "))
}

// orderClause renders q.Order. Sorting is only allowed on columns; the
// default is the weighted rank for matches and insertion order otherwise.
func orderClause(q adapter.Query, pk string, cols []string, rank string) (string, error) {
	matched := rank != ""
	if len(q.Order) == 0 {
		if matched {
			return "ORDER BY " + rank, nil
		}
		return "ORDER BY rowid", nil
	}
	allowed := map[string]bool{pk: true}
	for _, c := range cols {
		allowed[c] = true
	}
	keys := make([]string, 0, len(q.Order))
	for _, key := range q.Order {
		field, desc := parseOrder(key)
		if field == "_score" && matched {
			keys = append(keys, rank)
			continue
		}
		if !allowed[field] {
			return "", errors.Newf(errors.ErrCodeInvalidFindOption, "cannot order by %q", field)
		}
		k := quoteIdent(field)
		if desc {
			k += " DESC"
		}
		keys = append(keys, k)
	}
	return "ORDER BY " + strings.Join(keys, ", "), nil
}

// whereClause renders the MATCH condition for q, or "" when q matches
// every row.
func whereClause(m adapter.Model, q adapter.Query, cols []string) (string, []any) {
	qs := strings.TrimSpace(q.QueryString)
	if qs == "" {
		return "", nil
	}
	expr := matchExpression(qs, operatorOf(q), cols)
	if expr == "" {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s MATCH ?", quoteIdent(tableName(m))), []any{expr}
}

// selectStatement builds the SELECT and COUNT statements for q.
func (s *SQLiteAdapter) selectStatement(m adapter.Model, q adapter.Query, cols, selected []string) (sel, count string, args []any, err error) {
	table := quoteIdent(tableName(m))
	pk := m.Configuration().PrimaryKeyField

	where, args := whereClause(m, q, cols)
	matched := where != ""
	rank := ""
	if matched {
		rank = rankExpression(m, cols)
	}
	order, err := orderClause(q, pk, cols, rank)
	if err != nil {
		return "", "", nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	score := "0.0"
	if matched {
		score = "-" + rank
	}
	fields := []string{quoteIdent(pk), score}
	for _, c := range selected {
		fields = append(fields, quoteIdent(c))
	}

	sel = fmt.Sprintf("SELECT %s FROM %s%s %s LIMIT %d OFFSET %d",
		strings.Join(fields, ", "), table, where, order, limit, q.Offset)
	count = fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where)
	return sel, count, args, nil
}

// sqliteResult is what one query produced.
type sqliteResult struct {
	hits   []adapter.Hit
	total  int
	facets map[string][]adapter.FacetTerm
}

// query runs q and returns hits with the selected columns, plus value
// counts for the facet fields when withFacets is set.
func (s *SQLiteAdapter) query(ctx context.Context, op string, m adapter.Model, q adapter.Query, withValues, withFacets bool) (*sqliteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	cols, err := s.ensureTable(ctx, m)
	if err != nil {
		return nil, err
	}

	var selected []string
	if withValues {
		selected = cols
		if len(q.Fields) > 0 {
			selected = nil
			want := make(map[string]bool, len(q.Fields))
			for _, f := range q.Fields {
				want[f] = true
			}
			for _, c := range cols {
				if want[c] {
					selected = append(selected, c)
				}
			}
		}
	}

	sel, count, args, err := s.selectStatement(m, q, cols, selected)
	if err != nil {
		return nil, err
	}

	out := &sqliteResult{}
	if err := s.db.QueryRowContext(ctx, count, args...).Scan(&out.total); err != nil {
		return nil, backendErr(op, err)
	}
	if withFacets {
		if out.facets, err = s.facetCounts(ctx, m, q, cols); err != nil {
			return nil, backendErr(op, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, backendErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			score float64
		)
		vals := make([]sql.NullString, len(selected))
		dest := []any{&id, &score}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, backendErr(op, err)
		}
		hit := adapter.Hit{ID: id, Score: score}
		if withValues {
			hit.Fields = make(map[string]any, len(selected))
			for i, c := range selected {
				hit.Fields[c] = vals[i].String
			}
		}
		out.hits = append(out.hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(op, err)
	}
	return out, nil
}

// facetCounts groups the rows matching q by each facet column. Values are
// the stored column text, so array fields count their joined values.
func (s *SQLiteAdapter) facetCounts(ctx context.Context, m adapter.Model, q adapter.Query, cols []string) (map[string][]adapter.FacetTerm, error) {
	names := facetFields(m.Configuration())
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}
	where, args := whereClause(m, q, cols)

	out := make(map[string][]adapter.FacetTerm, len(names))
	for _, name := range names {
		if !known[name] {
			continue
		}
		col := quoteIdent(name)
		stmt := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s%s GROUP BY %s ORDER BY COUNT(*) DESC, %s LIMIT %d",
			col, quoteIdent(tableName(m)), where, col, col, defaultFacetSize)
		terms, err := s.scanFacet(ctx, stmt, args)
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", name, err)
		}
		out[name] = terms
	}
	return out, nil
}

func (s *SQLiteAdapter) scanFacet(ctx context.Context, stmt string, args []any) ([]adapter.FacetTerm, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := []adapter.FacetTerm{}
	for rows.Next() {
		var t adapter.FacetTerm
		var term sql.NullString
		if err := rows.Scan(&term, &t.Count); err != nil {
			return nil, err
		}
		if term.String == "" {
			continue
		}
		t.Term = term.String
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func hitIDs(hits []adapter.Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func (s *SQLiteAdapter) FindByIndex(ctx context.Context, m adapter.Model, q adapter.Query) (*adapter.Result, error) {
	res, err := s.query(ctx, "find_by_index", m, q, q.RawResult, true)
	if err != nil {
		return nil, err
	}
	out := &adapter.Result{Total: res.total, IDs: hitIDs(res.hits), Facets: res.facets}
	if q.RawResult {
		out.Raw = res.hits
		return out, nil
	}
	if out.Records, err = m.Hydrate(ctx, out.IDs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteAdapter) FindIDsByIndex(ctx context.Context, m adapter.Model, q adapter.Query) ([]string, error) {
	res, err := s.query(ctx, "find_ids_by_index", m, q, false, false)
	if err != nil {
		return nil, err
	}
	return hitIDs(res.hits), nil
}

func (s *SQLiteAdapter) FindValuesByIndex(ctx context.Context, m adapter.Model, q adapter.Query) ([]adapter.Hit, error) {
	res, err := s.query(ctx, "find_values_by_index", m, q, true, false)
	if err != nil {
		return nil, err
	}
	return res.hits, nil
}

// OptimizeIndex merges the b-trees of every index table.
func (s *SQLiteAdapter) OptimizeIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tables, err := s.indexTables(ctx)
	if err != nil {
		return backendErr("optimize_index", err)
	}
	for _, t := range tables {
		stmt := fmt.Sprintf("INSERT INTO %s(%s) VALUES('optimize')", quoteIdent(t), quoteIdent(t))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return backendErr("optimize_index", fmt.Errorf("%s: %w", t, err))
		}
	}
	if s.path != "" {
		if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return backendErr("optimize_index", err)
		}
	}
	slog.Debug("sqlite_index_optimized", slog.Int("tables", len(tables)))
	return nil
}

func (s *SQLiteAdapter) indexTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ? AND sql LIKE 'CREATE VIRTUAL TABLE%'`,
		sqliteTablePrefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteAdapter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.path != "" {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}
