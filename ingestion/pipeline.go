package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

const (
	// semanticNeighbors is how many nearest neighbors are considered when
	// linking a freshly ingested chunk to existing chunks.
	semanticNeighbors = 5

	// similarityThreshold is the minimum cosine similarity for a
	// RELATED_TO edge between two chunks.
	similarityThreshold = 0.85
)

// Pipeline orchestrates document ingestion: cleaning, chunking, embedding,
// graph construction, and semantic and entity linking.
type Pipeline struct {
	graph     storage.GraphStore
	vectors   storage.VectorIndex
	embedder  ai.Embedder
	extractor ai.EntityExtractor
	processor *TextProcessor
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithTextProcessor sets a custom text processor, replacing the default
// 400-word window with 50 words of overlap.
func WithTextProcessor(processor *TextProcessor) Option {
	return func(p *Pipeline) error {
		if processor != nil {
			p.processor = processor
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graph storage.GraphStore,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:     graph,
		vectors:   vectors,
		embedder:  provider.Embedder(),
		extractor: provider.EntityExtractor(),
		processor: NewDefaultTextProcessor(),
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest cleans and chunks the document, then embeds each chunk, stores it
// in the vector index and the graph, links it to semantically similar chunks,
// and links it to the entities it mentions.
//
// Processing is best-effort and not transactional. Chunks are committed one
// at a time in order; an error aborts the failing chunk but leaves already
// committed chunks in place, so a retried document may produce duplicate
// chunk nodes. Entity extraction failures degrade gracefully: the chunk is
// still stored, only its MENTIONS edges are missing.
func (p *Pipeline) Ingest(ctx context.Context, doc *core.DocumentInput) ([]*core.Chunk, error) {
	if err := core.ValidateDocumentInput(doc); err != nil {
		return nil, err
	}

	text := p.processor.Clean(doc.Text)
	windows := p.processor.Chunk(text)
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: document is empty after cleaning", core.ErrValidation)
	}

	lang := DetectLang(text)

	chunks := make([]*core.Chunk, 0, len(windows))
	for i, window := range windows {
		select {
		case <-ctx.Done():
			return chunks, ctx.Err()
		default:
		}

		chunk, err := p.ingestChunk(ctx, doc, window, i, lang)
		if err != nil {
			return chunks, fmt.Errorf("chunk %d of %d failed: %w", i, len(windows), err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// IngestBatch ingests documents concurrently on the worker pool. Failures
// are logged per document and do not affect the other documents. It blocks
// until all documents have been processed and returns the chunks of the
// documents that succeeded.
func (p *Pipeline) IngestBatch(ctx context.Context, docs []*core.DocumentInput) []*core.Chunk {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		chunks []*core.Chunk
	)

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			docChunks, err := p.Ingest(ctx, doc)
			if err != nil {
				p.logger.Error("error ingesting document", "title", doc.Title, "err", err)
			}
			mu.Lock()
			chunks = append(chunks, docChunks...)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("error submitting document", "title", doc.Title, "err", submitErr)
		}
	}

	wg.Wait()
	return chunks
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// ingestChunk embeds and stores a single chunk, then runs semantic and
// entity linking for it.
func (p *Pipeline) ingestChunk(ctx context.Context, doc *core.DocumentInput, text string, index int, lang string) (*core.Chunk, error) {
	embedding, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %w", core.ErrDependency, err)
	}

	chunk := &core.Chunk{
		Id:         core.NewChunkID(),
		Text:       text,
		Title:      doc.Title,
		VectorID:   core.NoVector,
		Lang:       lang,
		ChunkIndex: index,
		Metadata:   doc.Metadata,
		InsertedAt: time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	vid, err := p.vectors.Add(ctx, chunk.Id, embedding)
	if err != nil {
		return nil, err
	}
	chunk.VectorID = vid

	if err := p.graph.UpsertChunkNode(ctx, chunk); err != nil {
		return nil, err
	}

	if err := p.linkSimilarChunks(ctx, chunk, embedding); err != nil {
		return nil, err
	}

	if err := p.linkEntities(ctx, chunk); err != nil {
		return nil, err
	}

	return chunk, nil
}

// linkSimilarChunks connects the chunk to its nearest neighbors above the
// similarity threshold. The chunk's own vector entry is excluded by vector
// ID, never by content, so duplicated text still links both copies.
func (p *Pipeline) linkSimilarChunks(ctx context.Context, chunk *core.Chunk, embedding []float32) error {
	matches, err := p.vectors.Search(ctx, embedding, semanticNeighbors)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if match.VectorID == chunk.VectorID {
			continue
		}
		if float64(match.Score) <= similarityThreshold {
			continue
		}

		edge := &core.EdgeInput{
			SourceID: chunk.Id,
			TargetID: match.DocID,
			Type:     core.EdgeTypeRelated,
			Weight:   float64(match.Score),
		}
		if err := p.graph.UpsertEdge(ctx, edge); err != nil {
			return err
		}
	}

	return nil
}

// linkEntities extracts named entities from the chunk text and connects the
// chunk to each recognized entity with a MENTIONS edge. Extraction failures
// are logged and swallowed so that a flaky model never loses chunks.
func (p *Pipeline) linkEntities(ctx context.Context, chunk *core.Chunk) error {
	extracted, err := p.extractor.ExtractEntities(ctx, chunk.Text)
	if err != nil {
		p.logger.Warn("entity extraction failed, storing chunk without entities",
			"chunk", chunk.Id, "err", err)
		return nil
	}

	for _, candidate := range extracted {
		if !ai.AllowedEntityType(candidate.Type) {
			continue
		}

		entity, err := p.graph.GetOrCreateEntity(ctx, candidate.Name, candidate.Type)
		if err != nil {
			return err
		}

		edge := &core.EdgeInput{
			SourceID: chunk.Id,
			TargetID: entity.Id,
			Type:     core.EdgeTypeMentions,
			Weight:   core.DefaultEdgeWeight,
		}
		if err := p.graph.UpsertEdge(ctx, edge); err != nil {
			return err
		}
	}

	return nil
}
