package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/weave"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/ingestion"
)

var documents = []string{
	"Marie Curie carried out her early radioactivity research in Paris alongside Pierre Curie.",
	"The Eiffel Tower was completed in 1889 for the World's Fair held in Paris.",
	"Alan Turing worked at Bletchley Park during the war and later joined the University of Manchester.",
	"The Amazon River discharges more water than the next seven largest rivers combined.",
	"Ada Lovelace wrote the first published algorithm intended for Charles Babbage's Analytical Engine.",
	"Mount Kilimanjaro is the highest free-standing mountain in the world, rising from the plains of Tanzania.",
	"The Large Hadron Collider at CERN straddles the border between France and Switzerland.",
	"Katherine Johnson calculated trajectories for NASA's Mercury and Apollo missions.",
	"The Great Barrier Reef stretches over two thousand kilometres along the coast of Queensland.",
	"Nikola Tesla demonstrated alternating current power at the Chicago World's Fair in 1893.",
	"The Trans-Siberian Railway connects Moscow with Vladivostok across eight time zones.",
	"Rosalind Franklin's X-ray diffraction images were central to resolving the structure of DNA.",
	"The Sahara Desert has grown by roughly ten percent over the last century.",
	"Grace Hopper led the team that built the first compiler for a programming language.",
	"Kyoto served as the imperial capital of Japan for over a thousand years.",
	"The Panama Canal cut the sea voyage between New York and San Francisco by thirteen thousand kilometres.",
	"Srinivasa Ramanujan produced thousands of results in number theory with almost no formal training.",
	"Lake Baikal in Siberia holds about a fifth of the world's unfrozen fresh water.",
	"The Hubble Space Telescope has operated in low Earth orbit since 1990.",
	"Hedy Lamarr co-invented a frequency-hopping system that anticipated modern spread-spectrum radio.",
	"The Antikythera mechanism is an ancient Greek device used to predict astronomical positions.",
	"Machu Picchu sits on a ridge above the Sacred Valley in the Peruvian Andes.",
	"Tim Berners-Lee proposed the World Wide Web while working at CERN in 1989.",
	"The Ring of Fire accounts for about ninety percent of the world's earthquakes.",
	"Florence Nightingale pioneered the use of statistical graphics in public health.",
	"The Dead Sea shoreline is the lowest land elevation on Earth.",
	"Claude Shannon founded information theory with a single paper published in 1948.",
	"The Gobi Desert spans southern Mongolia and northern China.",
	"Barbara McClintock discovered transposable elements in maize decades before they were accepted.",
	"The Strait of Gibraltar separates Europe from Africa by less than fifteen kilometres.",
}

var seedFileName = flag.String("src", "", "file of seed documents, one per line")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests documents in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[string], batchSize int) {
	batch := make([]*core.DocumentInput, 0, batchSize)

	for line := range source {
		batch = append(batch, &core.DocumentInput{Text: line, Title: "seed"})
		if len(batch) == batchSize {
			pipeline.IngestBatch(ctx, batch)
			batch = batch[:0]
		}
	}

	// Process any remaining documents
	if len(batch) > 0 {
		pipeline.IngestBatch(ctx, batch)
	}
}

func main() {
	db, err := weave.NewDatabase("./weave_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(documents)
	}

	// Ingest in batches of 5
	ingestBatched(ctx, ingester, source, 5)
}
