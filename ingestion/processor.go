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


package ingestion

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/poiesic/weave/core"
	"golang.org/x/net/html"
)

const (
	// DefaultChunkSize is the default window length in words.
	DefaultChunkSize = 400

	// DefaultChunkOverlap is the default window overlap in words.
	DefaultChunkOverlap = 50
)

// mojibakeReplacer fixes the usual UTF-8-read-as-Latin-1 artifacts.
var mojibakeReplacer = strings.NewReplacer(
	"â", "'",
	"â", "'",
	"â", "\"",
	"â", "\"",
	"â", "-",
	"â", "-",
	"â¦", "...",
	"Â ", " ",
	"�", "",
)

// TextProcessor cleans raw input and splits it into overlapping word-window
// chunks. Both operations are deterministic pure functions of the input.
type TextProcessor struct {
	size    int
	overlap int
}

// NewTextProcessor creates a TextProcessor with the given window size and
// overlap, both in words. The stride is size-overlap and must be at least 1,
// so an overlap equal to or larger than the size is a configuration error.
func NewTextProcessor(size, overlap int) (*TextProcessor, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", core.ErrConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than size %d", core.ErrConfig, overlap, size)
	}
	return &TextProcessor{size: size, overlap: overlap}, nil
}

// NewDefaultTextProcessor creates a TextProcessor with the default window.
func NewDefaultTextProcessor() *TextProcessor {
	p, err := NewTextProcessor(DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		// Unreachable with the package defaults.
		panic(err)
	}
	return p
}

// Clean strips markup, repairs character-encoding artifacts, and collapses
// whitespace runs into single spaces.
func (p *TextProcessor) Clean(raw string) string {
	text := stripMarkup(raw)
	text = mojibakeReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Chunk slides a window of p.size words with stride p.size-p.overlap over
// the whitespace-delimited tokens of text. The result is ordered and finite;
// empty windows are dropped, so empty or whitespace-only input yields nil.
func (p *TextProcessor) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := p.size - p.overlap
	var chunks []string
	for start := 0; start < len(words); start += stride {
		end := start + p.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// DetectLang returns the ISO 639-1 code of the text's most likely language,
// or the empty string when detection is unreliable.
func DetectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// stripMarkup removes HTML/XML tags, keeping text content. Script and style
// bodies are dropped entirely. Plain text without markup passes through.
func stripMarkup(raw string) string {
	if !strings.ContainsRune(raw, '<') {
		return raw
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}
