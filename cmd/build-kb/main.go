package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/storage"
)

func main() {
	kbPath := flag.String("kb", "", "knowledge base JSON document to compile")
	outPath := flag.String("out", "kb.snap", "output snapshot directory")
	flag.Parse()

	if *kbPath == "" {
		fmt.Fprintln(os.Stderr, "A knowledge base document is required; use -kb")
		os.Exit(1)
	}

	fmt.Printf("Compiling %s -> %s\n", *kbPath, *outPath)

	raw, err := kb.LoadFile(*kbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load knowledge base: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open snapshot store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.PutRaw(raw); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write snapshot: %v\n", err)
		os.Exit(1)
	}

	indexed, err := kb.New(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to index knowledge base: %v\n", err)
		os.Exit(1)
	}
	s := indexed.Stats()
	fmt.Printf("  Entities:  %d\n", s.Entities)
	fmt.Printf("  Concepts:  %d\n", s.Concepts)
	fmt.Printf("  Facts:     %d attribute, %d relation, %d qualifier\n",
		s.AttributeFacts, s.RelationFacts, s.QualifierFacts)
	fmt.Println("Done. Use this snapshot with:")
	fmt.Printf("   kgraph -snapshot %s -i\n", *outPath)
}
