package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/wbrown/janus-kgraph/config"
	"github.com/wbrown/janus-kgraph/engine"
	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/storage"
	"github.com/wbrown/janus-kgraph/trace"
)

// programDoc is the on-the-wire program shape: two parallel lists.
type programDoc struct {
	Program []string   `json:"program"`
	Inputs  [][]string `json:"inputs"`
}

func main() {
	var kbPath string
	var snapshotPath string
	var configPath string
	var programPath string
	var interactive bool
	var stats bool
	var showTrace bool
	var ignoreErrors bool
	var format string

	flag.StringVar(&kbPath, "kb", "", "knowledge base JSON document")
	flag.StringVar(&snapshotPath, "snapshot", "", "compiled knowledge base snapshot")
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&programPath, "program", "", "program JSON file ('-' for stdin)")
	flag.BoolVar(&interactive, "i", false, "interactive mode")
	flag.BoolVar(&stats, "stats", false, "print knowledge base statistics and exit")
	flag.BoolVar(&showTrace, "trace", false, "print a per-step evaluation trace")
	flag.BoolVar(&ignoreErrors, "ignore-errors", false, "report failed programs as null instead of exiting")
	flag.StringVar(&format, "format", "", "answer format: plain or table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A program engine over an indexed knowledge graph.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -kb kb.json -program question.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -snapshot kb.snap -i\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -kb kb.json -stats\n", os.Args[0])
	}
	flag.Parse()

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if kbPath == "" {
			kbPath = cfg.KB.Path
		}
		if snapshotPath == "" {
			snapshotPath = cfg.KB.Snapshot
		}
		if !showTrace {
			showTrace = cfg.Engine.Trace
		}
		if !ignoreErrors {
			ignoreErrors = cfg.Engine.IgnoreErrors
		}
		if format == "" {
			format = cfg.Output.Format
		}
	}
	if format == "" {
		format = config.FormatPlain
	}
	if format != config.FormatPlain && format != config.FormatTable {
		log.Fatalf("Unknown format: %s", format)
	}

	raw, err := loadRaw(kbPath, snapshotPath)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	indexed, err := kb.New(raw)
	if err != nil {
		log.Fatalf("Failed to index knowledge base: %v", err)
	}

	if stats {
		printStats(indexed.Stats())
		return
	}

	eng := engine.New(indexed)
	opts := engine.Options{IgnoreErrors: ignoreErrors}
	if showTrace {
		formatter := trace.NewOutputFormatter(os.Stderr)
		opts.Trace = formatter.Handle
	}

	switch {
	case programPath != "":
		doc, err := readProgram(programPath)
		if err != nil {
			log.Fatalf("Failed to read program: %v", err)
		}
		if err := runProgram(eng, doc, opts, format); err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
	case interactive:
		runInteractive(eng, opts, format)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadRaw(kbPath, snapshotPath string) (*kb.Raw, error) {
	if snapshotPath != "" {
		store, err := storage.Open(snapshotPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadRaw()
	}
	if kbPath == "" {
		return nil, fmt.Errorf("no knowledge base given; use -kb or -snapshot")
	}
	return kb.LoadFile(kbPath)
}

func readProgram(path string) (*programDoc, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	doc := &programDoc{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return doc, nil
}

func runProgram(eng *engine.Engine, doc *programDoc, opts engine.Options, format string) error {
	answer, err := eng.Forward(doc.Program, doc.Inputs, opts)
	if err != nil {
		return err
	}
	printAnswer(answer, format)
	return nil
}

func runInteractive(eng *engine.Engine, opts engine.Options, format string) {
	fmt.Println("=== Janus KGraph Interactive Mode ===")
	fmt.Println("Enter one program per line as JSON:")
	fmt.Println(`  {"program": ["Find", "Relate", "What"], "inputs": [["Alice"], ["spouse", "forward"], []]}`)
	fmt.Println("Commands: .stats  .exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == ".exit":
			return
		case line == ".stats":
			printStats(eng.KB().Stats())
		default:
			doc := &programDoc{}
			if err := json.Unmarshal([]byte(line), doc); err != nil {
				fmt.Printf("Parse error: %v\n", err)
				continue
			}
			if err := runProgram(eng, doc, opts, format); err != nil {
				fmt.Printf("Evaluation error: %v\n", err)
			}
		}
	}
}

func printAnswer(answer *engine.Answer, format string) {
	if answer == nil {
		fmt.Println("null")
		return
	}
	if format == config.FormatTable {
		fmt.Println(answer.Table())
		return
	}
	fmt.Println(answer.String())
}

func printStats(s kb.Stats) {
	fmt.Printf("entities:        %d\n", s.Entities)
	fmt.Printf("concepts:        %d\n", s.Concepts)
	fmt.Printf("attribute keys:  %d\n", s.AttributeKeys)
	fmt.Printf("relation labels: %d\n", s.RelationNames)
	fmt.Printf("attribute facts: %d\n", s.AttributeFacts)
	fmt.Printf("relation facts:  %d\n", s.RelationFacts)
	fmt.Printf("qualifier facts: %d\n", s.QualifierFacts)
}
