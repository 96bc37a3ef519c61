package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
)

var tracer = otel.Tracer("folio.vectorstore")

// Store is a chromem-go database holding one collection per content kind.
type Store struct {
	db       *chromem.DB
	embedder Embedder
	logger   *zap.Logger
	path     string
}

// New opens the vector store. With InMemory set nothing is written to disk;
// otherwise collections persist under Path.
func New(cfg config.VectorStoreConfig, embedder Embedder, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{embedder: embedder, logger: logger}
	if cfg.InMemory {
		s.db = chromem.NewDB()
		logger.Info("vector store initialized", zap.Bool("in_memory", true))
		return s, nil
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path is required unless in_memory is set", ErrInvalidConfig)
	}
	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", path, err)
	}
	db, err := chromem.NewPersistentDB(path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening chromem DB: %w", err)
	}
	s.db = db
	s.path = path

	for name, col := range db.ListCollections() {
		documentsGauge.WithLabelValues(name).Set(float64(col.Count()))
	}
	logger.Info("vector store initialized",
		zap.String("path", path),
		zap.Bool("compress", cfg.Compress),
		zap.Int("collections", len(db.ListCollections())),
	)
	return s, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// collection returns the named collection or ErrCollectionNotFound.
// chromem needs the embedding func on every lookup or it falls back to its
// OpenAI default.
func (s *Store) collection(name string) (*chromem.Collection, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}
	col := s.db.GetCollection(name, s.embeddingFunc())
	if col == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return col, nil
}

// AddDocuments embeds docs and upserts them into collection, creating it if
// needed. Every document needs an ID; re-adding an ID replaces it.
func (s *Store) AddDocuments(ctx context.Context, collection string, docs []Document) (err error) {
	ctx, span := tracer.Start(ctx, "vectorstore.AddDocuments")
	defer span.End()
	defer func() { recordOperation("add", err) }()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("document_count", len(docs)),
	)

	if len(docs) == 0 {
		return ErrEmptyDocuments
	}
	if err = ValidateCollectionName(collection); err != nil {
		return err
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document at index %d has no id", i)
		}
		texts[i] = d.Content
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("getting collection %s: %w", collection, err)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(docs) {
		err = fmt.Errorf("%w: got %d vectors for %d documents", ErrEmbeddingFailed, len(vectors), len(docs))
		return err
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  copyMetadata(d.Metadata),
			Embedding: vectors[i],
		}
	}
	// Embeddings are precomputed so concurrency only affects copying.
	if err = col.AddDocuments(ctx, chromemDocs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents: %w", err)
	}

	documentsGauge.WithLabelValues(collection).Set(float64(col.Count()))
	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("added documents",
		zap.String("collection", collection),
		zap.Int("count", len(docs)),
	)
	return nil
}

// Search returns up to k documents most similar to query, optionally
// restricted to documents whose metadata equals every entry in where. A
// missing collection yields no results.
func (s *Store) Search(ctx context.Context, collection, query string, k int, where map[string]string) (results []SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "vectorstore.Search")
	defer span.End()
	start := time.Now()
	defer func() {
		queryDuration.Observe(time.Since(start).Seconds())
		recordOperation("search", err)
	}()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
	)

	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	col, err := s.collection(collection)
	if err != nil {
		if isNotFound(err) {
			return []SearchResult{}, nil
		}
		return nil, err
	}

	// chromem requires nResults <= document count.
	count := col.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	if k > count {
		k = count
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	found, err := col.QueryEmbedding(ctx, vector, k, emptyToNil(where), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	results = make([]SearchResult, len(found))
	for i, r := range found {
		results[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		}
	}
	span.SetAttributes(attribute.Int("results_count", len(results)))
	span.SetStatus(codes.Ok, "success")
	return results, nil
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	col, err := s.collection(collection)
	if err != nil {
		return Document{}, err
	}
	d, err := col.GetByID(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata}, nil
}

// DeleteDocuments removes documents by id. Unknown ids and a missing
// collection are not errors.
func (s *Store) DeleteDocuments(ctx context.Context, collection string, ids []string) (err error) {
	ctx, span := tracer.Start(ctx, "vectorstore.DeleteDocuments")
	defer span.End()
	defer func() { recordOperation("delete", err) }()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("id_count", len(ids)),
	)
	if len(ids) == 0 {
		return nil
	}
	col, err := s.collection(collection)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if err = col.Delete(ctx, nil, nil, ids...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("deleting documents: %w", err)
	}
	documentsGauge.WithLabelValues(collection).Set(float64(col.Count()))
	return nil
}

// DeleteWhere removes every document whose metadata matches where.
func (s *Store) DeleteWhere(ctx context.Context, collection string, where map[string]string) (err error) {
	ctx, span := tracer.Start(ctx, "vectorstore.DeleteWhere")
	defer span.End()
	defer func() { recordOperation("delete_where", err) }()

	if len(where) == 0 {
		return fmt.Errorf("delete filter cannot be empty")
	}
	col, err := s.collection(collection)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if err = col.Delete(ctx, where, nil); err != nil {
		span.RecordError(err)
		return fmt.Errorf("deleting documents: %w", err)
	}
	documentsGauge.WithLabelValues(collection).Set(float64(col.Count()))
	return nil
}

// Count returns the number of documents in collection, zero if it does not
// exist.
func (s *Store) Count(collection string) int {
	col, err := s.collection(collection)
	if err != nil {
		return 0
	}
	return col.Count()
}

// ListCollections returns every collection sorted by name.
func (s *Store) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols := s.db.ListCollections()
	out := make([]CollectionInfo, 0, len(cols))
	for name := range cols {
		col, err := s.collection(name)
		if err != nil {
			continue
		}
		info := CollectionInfo{Name: name, Documents: col.Count()}
		if dim, ok := s.embedder.(interface{ Dimension() int }); ok {
			info.VectorSize = dim.Dimension()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCollection drops a collection and its documents.
func (s *Store) DeleteCollection(ctx context.Context, collection string) (err error) {
	_, span := tracer.Start(ctx, "vectorstore.DeleteCollection")
	defer span.End()
	defer func() { recordOperation("delete_collection", err) }()

	if err = ValidateCollectionName(collection); err != nil {
		return err
	}
	if s.db.GetCollection(collection, s.embeddingFunc()) == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if err = s.db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("deleting collection %s: %w", collection, err)
	}
	documentsGauge.DeleteLabelValues(collection)
	s.logger.Info("deleted collection", zap.String("collection", collection))
	return nil
}

// Close is a no-op kept for symmetry with the other stores; persistent
// chromem writes each document as it is added.
func (s *Store) Close() error {
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrCollectionNotFound)
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func emptyToNil(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
