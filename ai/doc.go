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


// Package ai defines the model-facing boundary of weave: text embeddings
// and named entity extraction.
//
// The ingestion, search, and mutation layers depend only on the three
// interfaces here:
//
//   - Embedder turns text into vectors
//   - EntityExtractor finds named entities in text
//   - AIProvider bundles both behind one constructor-friendly handle
//
// Two implementations ship with the module. ai/openai talks to any
// OpenAI-compatible endpoint (Ollama, LocalAI, vLLM) through langchaingo and
// is configured with the functional options on Config:
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	    ai.WithExtractorModel("qwen2.5:3b"),
//	))
//
// ai/mock provides deterministic in-process doubles for tests; see that
// package for the injection and call-counting hooks.
//
// Production constructors return interfaces so callers cannot couple to a
// concrete backend; the mock constructors return concrete types because
// tests need the extra surface.
package ai
