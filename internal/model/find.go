package model

import (
	"context"
	stderrors "errors"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
)

// Format selects what a find returns.
type Format string

const (
	// FormatRecords hydrates matches into records (default).
	FormatRecords Format = ""
	// FormatIDs returns record keys only.
	FormatIDs Format = "ids"
)

type selectorKind int

const (
	selectAll selectorKind = iota
	selectFirst
	selectIDs
)

// Selector picks what Find returns: the first match, all matches, or
// records by primary key.
type Selector struct {
	kind selectorKind
	ids  []string
}

var (
	First = Selector{kind: selectFirst}
	All   = Selector{kind: selectAll}
)

// IDs selects records by primary key from the primary store.
func IDs(ids ...string) Selector {
	return Selector{kind: selectIDs, ids: ids}
}

// FindOptions control a find.
type FindOptions struct {
	// Conditions is a query string, a Where template or a key/value map.
	Conditions any
	Offset     int
	Limit      int
	Order      []string
	// Fields overrides the view's field list.
	Fields []string
	// View names the field subset to search, "default" when empty.
	View      string
	Format    Format
	Operator  adapter.Operator
	RawResult bool
	// BypassIndex sends the find straight to the primary store.
	BypassIndex bool
}

// validate rejects values no find accepts, and index-only options on a
// bypassing find.
func (o FindOptions) validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Newf(errors.ErrCodeInvalidFindOption, format, args...)
	}
	switch {
	case o.Offset < 0:
		return invalid("offset must not be negative: %d", o.Offset)
	case o.Limit < 0:
		return invalid("limit must not be negative: %d", o.Limit)
	case o.Format != FormatRecords && o.Format != FormatIDs:
		return invalid("unknown format: %s", o.Format)
	case o.Operator != "" && o.Operator != adapter.OperatorAnd && o.Operator != adapter.OperatorOr:
		return invalid("unknown operator: %s", o.Operator)
	}
	if o.BypassIndex {
		switch {
		case o.Conditions != nil:
			return invalid("conditions are not supported when bypassing the index")
		case o.RawResult:
			return invalid("raw_result is not supported when bypassing the index")
		case o.Operator != "":
			return invalid("operator is not supported when bypassing the index")
		}
	}
	return nil
}

// Found is the outcome of a find.
type Found[T any] struct {
	Records []T
	IDs     []string
	// Total counts every match, beyond any limit.
	Total int
	// Raw is the backend response when RawResult was set.
	Raw any
	// Facets holds value counts for fields declared with schema.WithFacet.
	Facets map[string][]adapter.FacetTerm
}

// First returns the first record.
func (f *Found[T]) First() (T, bool) {
	var zero T
	if f == nil || len(f.Records) == 0 {
		return zero, false
	}
	return f.Records[0], true
}

// Find dispatches on sel. First and All query the index unless
// BypassIndex is set; IDs always load from the primary store.
func (m *Model[T]) Find(ctx context.Context, sel Selector, opts FindOptions) (*Found[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if sel.kind == selectIDs {
		records, err := m.findByIDs(ctx, sel.ids)
		if err != nil {
			return nil, err
		}
		return m.foundRecords(records, opts.Format), nil
	}
	if opts.BypassIndex {
		return m.findWithoutIndex(ctx, sel, opts)
	}
	if sel.kind == selectFirst {
		opts.Limit = 1
	}
	return m.FindEvery(ctx, opts)
}

// FindEvery queries the index with opts' conditions.
func (m *Model[T]) FindEvery(ctx context.Context, opts FindOptions) (*Found[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	query, err := renderConditions(opts.Conditions)
	if err != nil {
		return nil, err
	}
	return m.search(ctx, query, opts)
}

// search runs query against the index.
func (m *Model[T]) search(ctx context.Context, query string, opts FindOptions) (*Found[T], error) {
	fields := opts.Fields
	if fields == nil {
		names, err := m.cfg.ViewFieldNames(opts.View)
		if err != nil {
			return nil, err
		}
		fields = names
	}
	operator := opts.Operator
	if operator == "" {
		operator = adapter.OperatorOr
	}
	q := adapter.Query{
		QueryString: query,
		Offset:      opts.Offset,
		Order:       opts.Order,
		Limit:       opts.Limit,
		Fields:      fields,
		Operator:    operator,
		RawResult:   opts.RawResult,
	}

	a, err := m.Adapter(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Format == FormatIDs {
		ids, err := a.FindIDsByIndex(ctx, m, q)
		if err != nil {
			return nil, err
		}
		return &Found[T]{IDs: ids, Total: len(ids)}, nil
	}

	res, err := a.FindByIndex(ctx, m, q)
	if err != nil {
		return nil, err
	}
	found := &Found[T]{IDs: res.IDs, Total: res.Total, Raw: res.Raw, Facets: res.Facets}
	for _, r := range res.Records {
		rec, ok := r.(T)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeIndexBackend, "%s adapter returned %T for model %s", a.Name(), r, m.name)
		}
		found.Records = append(found.Records, rec)
	}
	return found, nil
}

func (m *Model[T]) foundRecords(records []T, format Format) *Found[T] {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.RecordID()
	}
	found := &Found[T]{IDs: ids, Total: len(records)}
	if format != FormatIDs {
		found.Records = records
	}
	return found
}

var errStopScan = stderrors.New("stop scan")

// findWithoutIndex reads from the primary store.
func (m *Model[T]) findWithoutIndex(ctx context.Context, sel Selector, opts FindOptions) (*Found[T], error) {
	limit := opts.Limit
	if sel.kind == selectFirst {
		limit = 1
	}
	fields := opts.Fields
	if fields == nil && opts.View != "" {
		names, err := m.cfg.ViewFieldNames(opts.View)
		if err != nil {
			return nil, err
		}
		fields = names
	}

	var records []T
	switch src := m.source.(type) {
	case PagedFinder[T]:
		page := Page{Offset: pageOffset(opts.Offset), Limit: limit, Fields: fields, Order: opts.Order}
		found, err := src.FindPage(ctx, page)
		if err != nil {
			return nil, err
		}
		records = found
	case Scanner[T]:
		skipped := 0
		err := src.Scan(ctx, ScanOptions{Fields: fields}, func(r T) error {
			if skipped < opts.Offset {
				skipped++
				return nil
			}
			records = append(records, r)
			if limit > 0 && len(records) >= limit {
				return errStopScan
			}
			return nil
		})
		if err != nil && !stderrors.Is(err, errStopScan) {
			return nil, err
		}
	default:
		return nil, m.noIteration()
	}
	return m.foundRecords(records, opts.Format), nil
}

func (m *Model[T]) noIteration() error {
	return errors.Newf(errors.ErrCodeNoIterationCapability, "%s source supports neither scan nor paged find", m.name).
		WithDetail("model", m.name).
		WithSuggestion("implement model.Scanner or model.PagedFinder on the source")
}
