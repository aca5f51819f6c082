package model

import "context"

// Scanner streams every record of the primary store. fn's error stops the
// scan and must be returned unchanged.
type Scanner[T any] interface {
	Scan(ctx context.Context, opts ScanOptions, fn func(T) error) error
}

// ScanOptions narrow a scan.
type ScanOptions struct {
	// BatchSize is a read-ahead hint.
	BatchSize int
	// Fields are the attributes the caller will read. Empty means all.
	Fields []string
	// StartKey and StopKey bound key-ordered stores. Empty means unbounded.
	StartKey string
	StopKey  string
}

// PagedFinder fetches records a page at a time.
type PagedFinder[T any] interface {
	FindPage(ctx context.Context, page Page) ([]T, error)
}

// Page selects a window of records.
type Page struct {
	// Offset is the 1-based position of the first record. Zero also means
	// the first record.
	Offset int
	// Limit is the page size. Zero means no limit.
	Limit  int
	Fields []string
	Order  []string
}

// Skip returns the number of records before the page.
func (p Page) Skip() int {
	if p.Offset <= 1 {
		return 0
	}
	return p.Offset - 1
}

// pageOffset turns a count of records to skip into a Page offset.
func pageOffset(skip int) int {
	if skip <= 0 {
		return 0
	}
	return skip + 1
}

// IDFinder loads records by primary key. Missing keys are skipped.
type IDFinder[T any] interface {
	FindByIDs(ctx context.Context, ids []string) ([]T, error)
}
