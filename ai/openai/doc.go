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


// Package openai implements the ai interfaces over OpenAI-compatible HTTP
// APIs via langchaingo.
//
// Embeddings go through the embeddings endpoint with newline stripping.
// Entity extraction prompts a chat model in JSON mode, then strips markdown
// fences and repairs the recurring malformed-JSON patterns before parsing,
// retrying the parse a few times on garbage output.
//
// The package works against any server speaking the OpenAI wire format;
// local Ollama with its /v1 prefix is the default target.
package openai
