// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/weave"
	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/ai/openai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/mutation"
	"github.com/poiesic/weave/reembed"
	"github.com/poiesic/weave/search"
	"github.com/poiesic/weave/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "weave",
		Usage: "Hybrid vector and graph retrieval over document chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk, embed, and link a document into the database",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title stored on each chunk",
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Vector similarity search over chunk embeddings",
				Action: searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: 5,
					},
				),
			},
			{
				Name:   "hybrid",
				Usage:  "Fused vector and graph search",
				Action: hybridCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Weight of the normalized vector similarity",
						Value: 0.7,
					},
					&cli.Float64Flag{
						Name:  "graph-weight",
						Usage: "Weight of the graph connectivity component",
						Value: 0.3,
					},
					&cli.IntFlag{
						Name:  "expand-depth",
						Usage: "Hops to expand from query-matched entities",
						Value: 1,
					},
				),
			},
			{
				Name:   "traverse",
				Usage:  "Walk the graph outward from a node",
				Action: traverseCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "start",
						Usage:    "ID of the node to start from",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum number of hops (0 returns only the start node)",
						Value: 1,
					},
					&cli.StringSliceFlag{
						Name:  "edge-type",
						Usage: "Restrict traversal to these edge types (repeatable)",
					},
				),
			},
			{
				Name:  "node",
				Usage: "Inspect and edit graph nodes",
				Subcommands: []*cli.Command{
					{
						Name:   "get",
						Usage:  "Print a node by ID",
						Action: nodeGetCommand,
						Flags: append(databaseFlags(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Node ID",
								Required: true,
							},
						),
					},
					{
						Name:   "update",
						Usage:  "Update a chunk node (text changes are re-embedded)",
						Action: nodeUpdateCommand,
						Flags: append(databaseFlags(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Chunk ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "text",
								Usage: "Replacement chunk text",
							},
							&cli.StringFlag{
								Name:  "title",
								Usage: "Replacement chunk title",
							},
						),
					},
					{
						Name:   "delete",
						Usage:  "Delete a node and all its incident edges",
						Action: nodeDeleteCommand,
						Flags: append(databaseFlags(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Node ID",
								Required: true,
							},
						),
					},
				},
			},
			{
				Name:  "edge",
				Usage: "Create and delete graph edges",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create or update a typed, weighted edge",
						Action: edgeCreateCommand,
						Flags: append(databaseFlags(),
							&cli.StringFlag{
								Name:     "source",
								Usage:    "Source node ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "target",
								Usage:    "Target node ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "type",
								Usage:    "Edge type, e.g. RELATED_TO",
								Required: true,
							},
							&cli.Float64Flag{
								Name:  "weight",
								Usage: "Edge weight (defaults to 1.0)",
							},
						),
					},
					{
						Name:   "delete",
						Usage:  "Delete an edge by its (source, target, type) key",
						Action: edgeDeleteCommand,
						Flags: append(databaseFlags(),
							&cli.StringFlag{
								Name:     "source",
								Usage:    "Source node ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "target",
								Usage:    "Target node ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "type",
								Usage:    "Edge type",
								Required: true,
							},
						),
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all chunk embeddings with a new model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "relink",
				Usage:  "Rebuild semantic edges from the current embeddings",
				Action: relinkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
				},
			},
		},
	}
}

// databaseFlags are shared by every command that opens the full database,
// AI provider included.
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "extractor-host",
			Usage: "Entity extraction service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "extractor-model",
			Usage: "Entity extraction model name",
			Value: "qwen2.5:3b",
		},
	}
}

func openDatabase(c *cli.Context) (*weave.Database, error) {
	extractorHost := c.String("extractor-host")
	if extractorHost == "" {
		extractorHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorHost(extractorHost),
		ai.WithExtractorModel(c.String("extractor-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := weave.NewDatabase(c.String("db"), weave.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	// Document text comes from the file argument, or stdin without one
	var text []byte
	var err error
	if c.Args().Len() > 0 {
		text, err = os.ReadFile(c.Args().First())
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	chunks, err := pipeline.Ingest(ctx, &core.DocumentInput{
		Text:  string(text),
		Title: c.String("title"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d chunks\n", len(chunks))
	for _, chunk := range chunks {
		fmt.Printf("  %s (index %d, vector %d)\n", chunk.Id, chunk.ChunkIndex, chunk.VectorID)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results, err := engine.VectorSearch(ctx, c.String("query"), c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(results)
	return nil
}

func hybridCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	params := search.HybridParams{
		VectorWeight: c.Float64("vector-weight"),
		GraphWeight:  c.Float64("graph-weight"),
		ExpandDepth:  c.Int("expand-depth"),
	}

	results, err := engine.HybridSearch(ctx, c.String("query"), c.Int("top-k"), params)
	if err != nil {
		return fmt.Errorf("hybrid search failed: %w", err)
	}

	printResults(results)
	return nil
}

func traverseCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	subgraph, err := engine.GraphSearch(ctx, c.String("start"), c.Int("depth"), c.StringSlice("edge-type"))
	if err != nil {
		return fmt.Errorf("traversal failed: %w", err)
	}

	fmt.Printf("%d nodes, %d edges\n", len(subgraph.Nodes), len(subgraph.Edges))
	for _, node := range subgraph.Nodes {
		printNode(node)
	}
	for _, edge := range subgraph.Edges {
		fmt.Printf("edge %s -[%s %.3f]-> %s\n", edge.SourceID, edge.Type, edge.Weight, edge.TargetID)
	}
	return nil
}

func nodeGetCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewMutationService()
	if err != nil {
		return fmt.Errorf("failed to create mutation service: %w", err)
	}

	node, err := service.GetNode(ctx, c.String("id"))
	if err != nil {
		return err
	}
	printNode(node)
	return nil
}

func nodeUpdateCommand(c *cli.Context) error {
	ctx := context.Background()

	patch := &mutation.ChunkPatch{}
	if c.IsSet("text") {
		text := c.String("text")
		patch.Text = &text
	}
	if c.IsSet("title") {
		title := c.String("title")
		patch.Title = &title
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewMutationService()
	if err != nil {
		return fmt.Errorf("failed to create mutation service: %w", err)
	}

	chunk, err := service.UpdateChunk(ctx, c.String("id"), patch)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Printf("Updated chunk %s (vector %d)\n", chunk.Id, chunk.VectorID)
	return nil
}

func nodeDeleteCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewMutationService()
	if err != nil {
		return fmt.Errorf("failed to create mutation service: %w", err)
	}

	id := c.String("id")
	if err := service.DeleteNode(ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted node %s\n", id)
	return nil
}

func edgeCreateCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewMutationService()
	if err != nil {
		return fmt.Errorf("failed to create mutation service: %w", err)
	}

	edge, err := service.CreateEdge(ctx, &core.EdgeInput{
		SourceID: c.String("source"),
		TargetID: c.String("target"),
		Type:     c.String("type"),
		Weight:   c.Float64("weight"),
	})
	if err != nil {
		return fmt.Errorf("edge creation failed: %w", err)
	}

	fmt.Printf("edge %s -[%s %.3f]-> %s\n", edge.SourceID, edge.Type, edge.Weight, edge.TargetID)
	return nil
}

func edgeDeleteCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewMutationService()
	if err != nil {
		return fmt.Errorf("failed to create mutation service: %w", err)
	}

	err = service.DeleteEdge(ctx, c.String("source"), c.String("target"), c.String("type"))
	if err != nil {
		return fmt.Errorf("edge deletion failed: %w", err)
	}

	fmt.Printf("Deleted edge %s -[%s]-> %s\n", c.String("source"), c.String("type"), c.String("target"))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, vectors, graph, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer vectors.Close()
	defer graph.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := reembed.NewReembedder(graph, vectors, embedder, reembedConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func relinkCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, vectors, graph, err := openStores(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer vectors.Close()
	defer graph.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	relinker, err := reembed.NewRelinker(graph, vectors, embedder, c.Int("batch-size"), os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create relinker: %w", err)
	}

	if err := relinker.Run(ctx); err != nil {
		return fmt.Errorf("relinking failed: %w", err)
	}
	return nil
}

func openStores(dbPath string) (*badger.Backend, *badger.VectorIndex, *badger.GraphStore, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	vectors, err := badger.NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, nil, nil, fmt.Errorf("failed to open graph store: %w", err)
	}

	return backend, vectors, graph, nil
}

// newEmbedder builds a standalone embedder for commands that never touch the
// entity extractor. The extractor config fields are filled with placeholders
// so validation passes.
func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorHost(c.String("embedding-host")),
		ai.WithExtractorModel("unused"),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func printResults(results []*core.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No results")
		return
	}
	for i, result := range results {
		fmt.Printf("%d. [%.4f] %s\n", i+1, result.Score, result.Id)
		fmt.Printf("   %s\n", result.Text)
		if result.GraphInfo != nil {
			fmt.Printf("   hops=%d expanded=%t vector=%.3f connectivity=%.3f\n",
				result.GraphInfo.Hops, result.GraphInfo.Expanded,
				result.GraphInfo.VectorScoreNorm, result.GraphInfo.ConnectivityScoreNorm)
		}
	}
}

func printNode(node *core.Node) {
	switch node.Kind {
	case core.NodeKindChunk:
		fmt.Printf("chunk %s (index %d, vector %d)\n", node.Chunk.Id, node.Chunk.ChunkIndex, node.Chunk.VectorID)
		fmt.Printf("  %s\n", node.Chunk.Text)
	case core.NodeKindEntity:
		fmt.Printf("entity %s %s\n", node.Entity.Id, node.Entity.Tuple())
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
