// Package knowledge ingests documents into the assistant's knowledge base:
// text extraction, secret scrubbing, chunking, LLM analysis and embedding.
package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/documents"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/reranker"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
	"github.com/fyrsmithlabs/folio/internal/secrets"
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

// Collection is the vector collection holding document chunks.
const Collection = "knowledge"

// Chunk metadata keys.
const (
	MetaDocumentID = "document_id"
	MetaChunkIndex = "chunk_index"
	MetaFilename   = "filename"
)

const maxErrorLen = 500

var (
	// ErrDocumentNotFound is returned for unknown document ids. It matches
	// storage.ErrNotFound.
	ErrDocumentNotFound = fmt.Errorf("knowledge document %w", storage.ErrNotFound)
	// ErrInvalidUpload is returned for uploads without a usable filename.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrNoText is returned when reprocessing a document whose text was never
	// extracted.
	ErrNoText = errors.New("document has no extracted text")
)

var tracer = otel.Tracer("folio.knowledge")

// DocumentStore persists knowledge document rows.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d storage.KnowledgeDocument) (storage.KnowledgeDocument, error)
	UpdateDocument(ctx context.Context, d storage.KnowledgeDocument) (storage.KnowledgeDocument, error)
	GetDocument(ctx context.Context, id string) (storage.KnowledgeDocument, error)
	GetDocumentByChecksum(ctx context.Context, checksum string) (storage.KnowledgeDocument, error)
	ListDocuments(ctx context.Context, status storage.DocumentStatus) ([]storage.KnowledgeDocument, error)
	DeleteDocument(ctx context.Context, id string) error
}

// VectorIndex stores and searches embedded chunks.
type VectorIndex interface {
	AddDocuments(ctx context.Context, collection string, docs []vectorstore.Document) error
	Search(ctx context.Context, collection, query string, k int, where map[string]string) ([]vectorstore.SearchResult, error)
	DeleteWhere(ctx context.Context, collection string, where map[string]string) error
}

// Upload is a file submitted to the knowledge base.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Processor runs the ingestion pipeline and answers knowledge queries.
type Processor struct {
	cfg       config.KnowledgeConfig
	store     DocumentStore
	vectors   VectorIndex
	llm       llm.Client
	scrubber  *secrets.Scrubber
	tokenizer *llm.Tokenizer
	extractor documents.Extractor
	splitter  textsplitter.RecursiveCharacter
	reranker  *reranker.Reranker
	logger    *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLLM sets the client used for document analysis.
func WithLLM(c llm.Client) Option { return func(p *Processor) { p.llm = c } }

// WithScrubber redacts secrets from extracted text before it is stored.
func WithScrubber(s *secrets.Scrubber) Option { return func(p *Processor) { p.scrubber = s } }

// WithTokenizer sets the tokenizer used for prompt and context budgets.
func WithTokenizer(t *llm.Tokenizer) Option { return func(p *Processor) { p.tokenizer = t } }

// NewProcessor returns a Processor. Without WithLLM, analysis is heuristic.
func NewProcessor(cfg config.KnowledgeConfig, store DocumentStore, vectors VectorIndex, logger *zap.Logger, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, errors.New("knowledge: document store is required")
	}
	if vectors == nil {
		return nil, errors.New("knowledge: vector index is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 8
	}
	if cfg.ContextTokens <= 0 {
		cfg.ContextTokens = 1500
	}

	p := &Processor{
		cfg:       cfg,
		store:     store,
		vectors:   vectors,
		llm:       llm.Disabled{},
		extractor: documents.Extractor{MaxBytes: cfg.MaxUploadBytes},
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
		reranker: reranker.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tokenizer == nil {
		p.tokenizer = llm.NewTokenizer("")
	}
	return p, nil
}

// Ingest stores and indexes an upload. A file whose checksum matches an
// existing document returns that document unless it previously failed, in
// which case it is processed again. Failures after the row is created mark
// it failed and return it alongside the error.
func (p *Processor) Ingest(ctx context.Context, up Upload) (doc storage.KnowledgeDocument, err error) {
	ctx, span := tracer.Start(ctx, "knowledge.Ingest")
	defer span.End()
	start := time.Now()
	result := "rejected"
	defer func() {
		ingestTotal.WithLabelValues(result).Inc()
		ingestDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	filename, err := sanitize.Filename(up.Filename)
	if err != nil {
		return doc, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	span.SetAttributes(attribute.String("filename", filename), attribute.Int("size_bytes", len(up.Data)))

	if len(up.Data) == 0 {
		return doc, fmt.Errorf("%w: %s", documents.ErrEmptyDocument, filename)
	}
	if p.cfg.MaxUploadBytes > 0 && int64(len(up.Data)) > p.cfg.MaxUploadBytes {
		return doc, fmt.Errorf("%w: %d bytes exceeds %d", documents.ErrTooLarge, len(up.Data), p.cfg.MaxUploadBytes)
	}
	kind, err := documents.Detect(filename, up.ContentType)
	if err != nil {
		return doc, err
	}

	checksum := Checksum(up.Data)
	existing, err := p.store.GetDocumentByChecksum(ctx, checksum)
	switch {
	case err == nil && existing.Status != storage.DocumentFailed:
		result = "duplicate"
		p.logger.Info("document already ingested",
			zap.String("filename", filename), zap.String("document_id", existing.ID))
		return existing, nil
	case err == nil:
		existing.Status = storage.DocumentProcessing
		existing.Error = ""
		if doc, err = p.store.UpdateDocument(ctx, existing); err != nil {
			return existing, fmt.Errorf("resetting failed document: %w", err)
		}
	case errors.Is(err, storage.ErrNotFound):
		doc, err = p.store.CreateDocument(ctx, storage.KnowledgeDocument{
			Filename:    filename,
			ContentType: contentTypeFor(kind, up.ContentType),
			SizeBytes:   int64(len(up.Data)),
			Checksum:    checksum,
			Status:      storage.DocumentProcessing,
		})
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Lost a race with an identical upload.
			result = "duplicate"
			return p.store.GetDocumentByChecksum(ctx, checksum)
		}
		if err != nil {
			return doc, fmt.Errorf("creating document: %w", err)
		}
	default:
		return doc, fmt.Errorf("checking for duplicate: %w", err)
	}
	span.SetAttributes(attribute.String("document_id", doc.ID))

	extracted, err := p.extractor.Extract(filename, up.ContentType, up.Data)
	if err != nil {
		result = "failed"
		return p.fail(ctx, doc, err)
	}
	doc.Text = p.scrubber.String(extracted.Text)
	doc.WordCount = extracted.Words
	doc.PageCount = extracted.Pages

	doc, err = p.index(ctx, doc)
	if err != nil {
		result = "failed"
		return doc, err
	}
	result = "completed"
	p.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", doc.ChunkCount),
		zap.String("analysis", doc.Insights.Source),
		zap.Duration("took", time.Since(start)),
	)
	return doc, nil
}

// IngestFile reads path and ingests it.
func (p *Processor) IngestFile(ctx context.Context, path string) (storage.KnowledgeDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return storage.KnowledgeDocument{}, err
	}
	if info.IsDir() {
		return storage.KnowledgeDocument{}, fmt.Errorf("%w: %s is a directory", ErrInvalidUpload, path)
	}
	if p.cfg.MaxUploadBytes > 0 && info.Size() > p.cfg.MaxUploadBytes {
		return storage.KnowledgeDocument{}, fmt.Errorf("%w: %s is %d bytes", documents.ErrTooLarge, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return storage.KnowledgeDocument{}, err
	}
	return p.Ingest(ctx, Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	})
}

// Reprocess re-chunks, re-analyses and re-embeds a document from its stored
// text.
func (p *Processor) Reprocess(ctx context.Context, id string) (storage.KnowledgeDocument, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Reprocess")
	defer span.End()

	doc, err := p.Get(ctx, id)
	if err != nil {
		return doc, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return doc, fmt.Errorf("%w: %s", ErrNoText, id)
	}
	doc.Status = storage.DocumentProcessing
	doc.Error = ""
	if doc, err = p.store.UpdateDocument(ctx, doc); err != nil {
		return doc, fmt.Errorf("marking document processing: %w", err)
	}
	doc, err = p.index(ctx, doc)
	if err != nil {
		ingestTotal.WithLabelValues("failed").Inc()
		return doc, err
	}
	ingestTotal.WithLabelValues("reprocessed").Inc()
	p.logger.Info("document reprocessed", zap.String("document_id", id), zap.Int("chunks", doc.ChunkCount))
	return doc, nil
}

// index chunks, analyses and embeds doc.Text and marks the row completed.
func (p *Processor) index(ctx context.Context, doc storage.KnowledgeDocument) (storage.KnowledgeDocument, error) {
	chunks, err := p.chunk(doc.Text)
	if err != nil {
		return p.fail(ctx, doc, err)
	}

	analysis := p.analyze(ctx, doc.Filename, doc.Text)

	if err := p.vectors.DeleteWhere(ctx, Collection, map[string]string{MetaDocumentID: doc.ID}); err != nil {
		return p.fail(ctx, doc, fmt.Errorf("removing old chunks: %w", err))
	}
	vdocs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		vdocs[i] = vectorstore.Document{
			ID:      fmt.Sprintf("%s-%d", doc.ID, i),
			Content: c,
			Metadata: map[string]string{
				MetaDocumentID: doc.ID,
				MetaChunkIndex: strconv.Itoa(i),
				MetaFilename:   doc.Filename,
			},
		}
	}
	if err := p.vectors.AddDocuments(ctx, Collection, vdocs); err != nil {
		return p.fail(ctx, doc, fmt.Errorf("embedding chunks: %w", err))
	}
	chunksTotal.Add(float64(len(vdocs)))

	doc.Status = storage.DocumentCompleted
	doc.Summary = analysis.Summary
	doc.Insights = analysis.Insights
	doc.ChunkCount = len(chunks)
	doc.Error = ""
	updated, err := p.store.UpdateDocument(ctx, doc)
	if err != nil {
		return doc, fmt.Errorf("saving document: %w", err)
	}
	return updated, nil
}

func (p *Processor) chunk(text string) ([]string, error) {
	parts, err := p.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}
	chunks := parts[:0]
	for _, c := range parts {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return nil, documents.ErrEmptyDocument
	}
	return chunks, nil
}

// fail records cause on the row and returns it. The row update outlives a
// canceled request.
func (p *Processor) fail(ctx context.Context, doc storage.KnowledgeDocument, cause error) (storage.KnowledgeDocument, error) {
	doc.Status = storage.DocumentFailed
	doc.Error = truncate(cause.Error(), maxErrorLen)
	updated, err := p.store.UpdateDocument(context.WithoutCancel(ctx), doc)
	if err != nil {
		p.logger.Error("failed to record document failure",
			zap.String("document_id", doc.ID), zap.Error(err))
	} else {
		doc = updated
	}
	p.logger.Warn("document processing failed",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Error(cause),
	)
	return doc, fmt.Errorf("processing %s: %w", doc.Filename, cause)
}

// Get returns a document by id.
func (p *Processor) Get(ctx context.Context, id string) (storage.KnowledgeDocument, error) {
	doc, err := p.store.GetDocument(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return doc, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, err
}

// List returns documents newest first, optionally filtered by status.
func (p *Processor) List(ctx context.Context, status storage.DocumentStatus) ([]storage.KnowledgeDocument, error) {
	return p.store.ListDocuments(ctx, status)
}

// Delete removes a document and its chunks.
func (p *Processor) Delete(ctx context.Context, id string) error {
	if _, err := p.Get(ctx, id); err != nil {
		return err
	}
	if err := p.vectors.DeleteWhere(ctx, Collection, map[string]string{MetaDocumentID: id}); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if err := p.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	p.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func contentTypeFor(kind documents.Kind, declared string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	switch kind {
	case documents.KindPDF:
		return "application/pdf"
	case documents.KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case documents.KindMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
