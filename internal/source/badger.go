package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Aman-CERP/bigindex/internal/model"
)

// BadgerSource stores msgpack-encoded Rows under "{prefix}{id}" keys and
// streams them in key order.
type BadgerSource struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

var (
	_ model.Scanner[Row]  = (*BadgerSource)(nil)
	_ model.IDFinder[Row] = (*BadgerSource)(nil)
)

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Dir is the data directory. Required unless InMemory.
	Dir string
	// InMemory runs Badger without disk persistence.
	InMemory bool
	// Prefix namespaces the rows, e.g. "book:".
	Prefix string
}

// OpenBadger opens a Badger database owned by the returned source.
func OpenBadger(opts BadgerOptions) (*BadgerSource, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("source: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(slogLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	s := NewBadgerSource(db, opts.Prefix)
	s.owned = true
	return s, nil
}

// NewBadgerSource reads rows under prefix from an open database. Close
// leaves db open.
func NewBadgerSource(db *badger.DB, prefix string) *BadgerSource {
	return &BadgerSource{db: db, prefix: []byte(prefix)}
}

func (s *BadgerSource) key(id string) []byte {
	k := make([]byte, 0, len(s.prefix)+len(id))
	k = append(k, s.prefix...)
	return append(k, id...)
}

// Put writes rows in one batch.
func (s *BadgerSource) Put(_ context.Context, rows ...Row) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, r := range rows {
		data, err := msgpack.Marshal(r)
		if err != nil {
			return err
		}
		if err := wb.Set(s.key(r.ID), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Delete removes rows by id. Missing ids are ignored.
func (s *BadgerSource) Delete(_ context.Context, ids ...string) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range ids {
		if err := wb.Delete(s.key(id)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Get loads one row.
func (s *BadgerSource) Get(_ context.Context, id string) (Row, bool, error) {
	var row Row
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &row)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, err
	}
	return row, true, nil
}

// Scan streams rows in key order from StartKey (inclusive) to StopKey
// (exclusive). fn's error stops the scan and is returned unchanged.
func (s *BadgerSource) Scan(ctx context.Context, opts model.ScanOptions, fn func(Row) error) error {
	start := s.key(opts.StartKey)
	var stop []byte
	if opts.StopKey != "" {
		stop = s.key(opts.StopKey)
	}

	return s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = s.prefix
		if opts.BatchSize > 0 {
			iterOpts.PrefetchSize = opts.BatchSize
		}
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(start); it.ValidForPrefix(s.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if stop != nil && bytes.Compare(item.Key(), stop) >= 0 {
				return nil
			}
			var row Row
			if err := item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &row)
			}); err != nil {
				return err
			}
			if err := fn(row.project(opts.Fields)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByIDs loads rows by id, skipping missing ones.
func (s *BadgerSource) FindByIDs(ctx context.Context, ids []string) ([]Row, error) {
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		row, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// Close closes the database if OpenBadger opened it.
func (s *BadgerSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// slogLogger routes badger's warnings and errors to slog and drops the
// rest.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...interface{}) {
	slog.Error("badger_error", slog.String("message", strings.TrimSpace(fmt.Sprintf(f, v...))))
}

func (slogLogger) Warningf(f string, v ...interface{}) {
	slog.Warn("badger_warning", slog.String("message", strings.TrimSpace(fmt.Sprintf(f, v...))))
}

func (slogLogger) Infof(string, ...interface{})  {}
func (slogLogger) Debugf(string, ...interface{}) {}
