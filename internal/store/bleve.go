package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

const bleveAdapterName = "bleve"

// BleveAdapter stores every model in one Bleve index. Each model gets its
// own document mapping, selected by the type field.
type BleveAdapter struct {
	adapter.Unsupported

	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
	mapped map[string]bool
}

var _ adapter.Adapter = (*BleveAdapter)(nil)

// validateBleveIntegrity checks that an on-disk index has readable metadata.
// A missing directory is valid: the index will be created.
func validateBleveIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

func isBleveCorruption(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unexpected end of JSON") ||
		strings.Contains(msg, "error parsing mapping JSON") ||
		strings.Contains(msg, "failed to load segment") ||
		strings.Contains(msg, "error opening bolt") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// NewBleveAdapter opens or creates a Bleve index at path. An empty path
// creates an in-memory index. A corrupted on-disk index is cleared and
// recreated; the caller is expected to rebuild.
func NewBleveAdapter(path string) (*BleveAdapter, error) {
	im := bleve.NewIndexMapping()
	im.TypeField = defaultTypeField
	im.DefaultAnalyzer = standard.Name

	var (
		idx bleve.Index
		err error
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(im)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}

		if validErr := validateBleveIntegrity(path); validErr != nil {
			slog.Warn("bleve_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, fmt.Errorf("bleve index corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
			}
			slog.Info("bleve_index_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, rebuild required"))
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, im)
		} else if err != nil && isBleveCorruption(err) {
			slog.Warn("bleve_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, fmt.Errorf("bleve index corrupted, cannot clear: %w (original: %v)", removeErr, err)
			}
			idx, err = bleve.New(path, im)
		}
	}
	if err != nil {
		return nil, errors.Backend("open", err)
	}

	return &BleveAdapter{
		Unsupported: adapter.Unsupported{AdapterName: bleveAdapterName},
		index:       idx,
		path:        path,
		mapped:      make(map[string]bool),
	}, nil
}

func (b *BleveAdapter) Name() string { return bleveAdapterName }

func (b *BleveAdapter) DefaultTypeField() string { return defaultTypeField }

func (b *BleveAdapter) DefaultPrimaryKeyField() string { return defaultPrimaryKeyField }

// FieldType maps logical types onto Bleve field mapping kinds.
func (b *BleveAdapter) FieldType(t schema.FieldType) string {
	switch t {
	case schema.FieldText, schema.FieldTextArray:
		return "text"
	case schema.FieldString, schema.FieldStringArray:
		return "keyword"
	case schema.FieldInteger, schema.FieldFloat:
		return "number"
	case schema.FieldBoolean:
		return "boolean"
	case schema.FieldDate:
		return "datetime"
	default:
		return string(t)
	}
}

func keywordField() *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	fm.Store = true
	return fm
}

func (b *BleveAdapter) fieldMapping(f *schema.Field) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch b.FieldType(f.Type()) {
	case "keyword":
		return keywordField()
	case "number":
		fm = bleve.NewNumericFieldMapping()
	case "boolean":
		fm = bleve.NewBooleanFieldMapping()
	case "datetime":
		fm = bleve.NewDateTimeFieldMapping()
	default:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.IncludeTermVectors = true
	}
	fm.Store = true
	return fm
}

// ensureMapping installs m's document mapping on first use. Mappings are
// held in memory, so a reopened index rebuilds them as models are used.
func (b *BleveAdapter) ensureMapping(m adapter.Model) error {
	typ := m.IndexType()
	b.mu.RLock()
	done := b.mapped[typ]
	b.mu.RUnlock()
	if done {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapped[typ] {
		return nil
	}
	im, ok := b.index.Mapping().(*mapping.IndexMappingImpl)
	if !ok {
		return errors.Newf(errors.ErrCodeIndexBackend, "unexpected bleve mapping type %T", b.index.Mapping())
	}

	cfg := m.Configuration()
	dm := bleve.NewDocumentMapping()
	dm.AddFieldMappingsAt(cfg.TypeField, keywordField())
	dm.AddFieldMappingsAt(cfg.PrimaryKeyField, keywordField())
	for _, f := range cfg.Fields() {
		if cfg.Excluded(f.Name()) || f.Name() == cfg.TypeField || f.Name() == cfg.PrimaryKeyField {
			continue
		}
		dm.AddFieldMappingsAt(f.Name(), b.fieldMapping(f))
	}
	for _, name := range cfg.Associations() {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		dm.AddFieldMappingsAt(name, fm)
	}
	im.AddDocumentMapping(typ, dm)
	b.mapped[typ] = true
	return nil
}

func (b *BleveAdapter) checkOpen() error {
	if b.closed {
		return errors.Newf(errors.ErrCodeIndexBackend, "bleve index is closed")
	}
	return nil
}

// ProcessIndexBatch indexes items in one Bleve batch. Bleve batches are
// durable on return, so Commit needs no extra work.
func (b *BleveAdapter) ProcessIndexBatch(ctx context.Context, m adapter.Model, items []adapter.Record, batch int, opts adapter.BatchOptions) error {
	if err := b.ensureMapping(m); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	bb := b.index.NewBatch()
	for _, r := range items {
		doc, err := buildDocument(m, r)
		if err != nil {
			return err
		}
		if err := bb.Index(m.IndexID(r), doc); err != nil {
			return backendErr("process_index_batch", fmt.Errorf("document %s: %w", m.IndexID(r), err))
		}
	}
	if err := b.index.Batch(bb); err != nil {
		return backendErr("process_index_batch", err)
	}

	if !opts.Silent {
		slog.Debug("bleve_batch_indexed",
			slog.String("type", m.IndexType()),
			slog.Int("batch", batch),
			slog.Int("size", len(items)))
	}
	return nil
}

func (b *BleveAdapter) typeQuery(m adapter.Model) query.Query {
	tq := bleve.NewTermQuery(m.IndexType())
	tq.SetField(m.Configuration().TypeField)
	return tq
}

// DropIndex deletes every document of m's type, page by page.
func (b *BleveAdapter) DropIndex(ctx context.Context, m adapter.Model) error {
	if err := b.ensureMapping(m); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	dropped := 0
	for {
		req := bleve.NewSearchRequestOptions(b.typeQuery(m), defaultSearchLimit, 0, false)
		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return backendErr("drop_index", err)
		}
		if len(res.Hits) == 0 {
			break
		}
		bb := b.index.NewBatch()
		for _, hit := range res.Hits {
			bb.Delete(hit.ID)
		}
		if err := b.index.Batch(bb); err != nil {
			return backendErr("drop_index", err)
		}
		dropped += len(res.Hits)
	}

	slog.Debug("bleve_index_dropped",
		slog.String("type", m.IndexType()),
		slog.Int("documents", dropped))
	return nil
}

// Execute runs a *bleve.SearchRequest and returns the *bleve.SearchResult.
func (b *BleveAdapter) Execute(ctx context.Context, request any) (any, error) {
	req, ok := request.(*bleve.SearchRequest)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndexBackend, "bleve adapter cannot execute %T", request).
			WithSuggestion("pass a *bleve.SearchRequest")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, backendErr("execute", err)
	}
	return res, nil
}

func (b *BleveAdapter) IndexSave(ctx context.Context, m adapter.Model, r adapter.Record) error {
	if err := b.ensureMapping(m); err != nil {
		return err
	}
	doc, err := buildDocument(m, r)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.index.Index(m.IndexID(r), doc); err != nil {
		return backendErr("index_save", err)
	}
	return nil
}

func (b *BleveAdapter) IndexDestroy(ctx context.Context, m adapter.Model, r adapter.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.index.Delete(m.IndexID(r)); err != nil {
		return backendErr("index_destroy", err)
	}
	return nil
}

// searchRequest restricts q to m's type. An empty query string matches
// every document of the type. Clauses on a field are scaled by the field's
// boost; unfielded terms search the composite field and keep their own.
func (b *BleveAdapter) searchRequest(m adapter.Model, q adapter.Query) (*bleve.SearchRequest, error) {
	var match query.Query = bleve.NewMatchAllQuery()
	if qs := strings.TrimSpace(q.QueryString); qs != "" {
		if operatorOf(q) == adapter.OperatorAnd {
			qs = requireAll(qs)
		}
		parsed, err := bleve.NewQueryStringQuery(qs).Parse()
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidFindOption, "cannot parse query %q: %v", qs, err)
		}
		boostFields(parsed, m.Configuration())
		match = parsed
	}

	size := q.Limit
	if size <= 0 {
		size = defaultSearchLimit
	}
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(b.typeQuery(m), match), size, q.Offset, false)
	if len(q.Order) > 0 {
		req.SortBy(q.Order)
	}
	return req, nil
}

type boostableField interface {
	query.FieldableQuery
	query.BoostableQuery
}

// boostFields multiplies the boost of every clause aimed at a field of cfg
// by that field's effective boost. Negated clauses are left alone.
func boostFields(q query.Query, cfg *schema.Configuration) {
	switch q := q.(type) {
	case *query.BooleanQuery:
		if q.Must != nil {
			boostFields(q.Must, cfg)
		}
		if q.Should != nil {
			boostFields(q.Should, cfg)
		}
	case *query.ConjunctionQuery:
		for _, c := range q.Conjuncts {
			boostFields(c, cfg)
		}
	case *query.DisjunctionQuery:
		for _, c := range q.Disjuncts {
			boostFields(c, cfg)
		}
	case boostableField:
		f, ok := cfg.Field(q.Field())
		if !ok {
			return
		}
		if w := cfg.Boost(f); w != 1 {
			q.SetBoost(q.Boost() * w)
		}
	}
}

// addFacets requests term counts for m's facet fields.
func addFacets(req *bleve.SearchRequest, m adapter.Model) {
	for _, name := range facetFields(m.Configuration()) {
		req.AddFacet(name, bleve.NewFacetRequest(name, defaultFacetSize))
	}
}

func facetTerms(res *bleve.SearchResult) map[string][]adapter.FacetTerm {
	if len(res.Facets) == 0 {
		return nil
	}
	out := make(map[string][]adapter.FacetTerm, len(res.Facets))
	for name, fr := range res.Facets {
		terms := fr.Terms.Terms()
		list := make([]adapter.FacetTerm, len(terms))
		for i, t := range terms {
			list[i] = adapter.FacetTerm{Term: t.Term, Count: t.Count}
		}
		out[name] = list
	}
	return out
}

func (b *BleveAdapter) search(ctx context.Context, op string, m adapter.Model, req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	if err := b.ensureMapping(m); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, backendErr(op, err)
	}
	return res, nil
}

func (b *BleveAdapter) FindByIndex(ctx context.Context, m adapter.Model, q adapter.Query) (*adapter.Result, error) {
	req, err := b.searchRequest(m, q)
	if err != nil {
		return nil, err
	}
	req.Fields = q.Fields
	addFacets(req, m)
	res, err := b.search(ctx, "find_by_index", m, req)
	if err != nil {
		return nil, err
	}

	out := &adapter.Result{Total: int(res.Total), IDs: make([]string, len(res.Hits)), Facets: facetTerms(res)}
	for i, hit := range res.Hits {
		out.IDs[i] = recordID(m, hit.ID)
	}
	if q.RawResult {
		out.Raw = res
		return out, nil
	}
	if out.Records, err = m.Hydrate(ctx, out.IDs); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BleveAdapter) FindIDsByIndex(ctx context.Context, m adapter.Model, q adapter.Query) ([]string, error) {
	req, err := b.searchRequest(m, q)
	if err != nil {
		return nil, err
	}
	res, err := b.search(ctx, "find_ids_by_index", m, req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = recordID(m, hit.ID)
	}
	return ids, nil
}

func (b *BleveAdapter) FindValuesByIndex(ctx context.Context, m adapter.Model, q adapter.Query) ([]adapter.Hit, error) {
	req, err := b.searchRequest(m, q)
	if err != nil {
		return nil, err
	}
	req.Fields = q.Fields
	if len(req.Fields) == 0 {
		req.Fields = []string{"*"}
	}
	res, err := b.search(ctx, "find_values_by_index", m, req)
	if err != nil {
		return nil, err
	}

	hits := make([]adapter.Hit, len(res.Hits))
	for i, hit := range res.Hits {
		hits[i] = adapter.Hit{ID: recordID(m, hit.ID), Score: hit.Score, Fields: hit.Fields}
	}
	return hits, nil
}

// OptimizeIndex is a no-op: Bleve merges segments in the background.
func (b *BleveAdapter) OptimizeIndex(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkOpen()
}

// DocCount reports the number of documents across all types.
func (b *BleveAdapter) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return b.index.DocCount()
}

func (b *BleveAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}
