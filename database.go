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


// Package weave is a hybrid retrieval database: documents are chunked,
// embedded, and woven into a graph of passages and named entities, then
// queried through vector similarity, graph traversal, or a fusion of both.
package weave

import (
	"log/slog"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/ai/openai"
	"github.com/poiesic/weave/ingestion"
	"github.com/poiesic/weave/mutation"
	"github.com/poiesic/weave/search"
	"github.com/poiesic/weave/storage"
	"github.com/poiesic/weave/storage/badger"
)

// Database owns the storage backend and the AI provider, and hands out the
// pipeline and service types that operate on them.
type Database struct {
	backend  *badger.Backend
	vectors  storage.VectorIndex
	graph    storage.GraphStore
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a pre-built AI provider instead of constructing
// one from config. The database takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory. Intended for tests.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	vectors, err := badger.NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			graph.Close()
			vectors.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		vectors:  vectors,
		graph:    graph,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close stores
	if err := db.graph.Close(); err != nil {
		db.logger.Error("error closing graph store", "err", err)
		return err
	}
	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) VectorIndex() storage.VectorIndex {
	return db.vectors
}

func (db *Database) GraphStore() storage.GraphStore {
	return db.graph
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.graph, db.vectors, db.provider, opts...)
}

func (db *Database) NewSearchEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.graph, db.vectors, db.provider, opts...)
}

func (db *Database) NewMutationService(opts ...mutation.Option) (*mutation.Service, error) {
	return mutation.NewService(db.graph, db.vectors, db.provider, opts...)
}
