package main

import (
	"fmt"
	"os"

	valuedict "github.com/ontolabs/valuedict"
	"github.com/ontolabs/valuedict/internal/config"
	"github.com/ontolabs/valuedict/pkg/rdf"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	configPath := "valuedict.yaml"
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "dump":
		runDump(configPath)
	case "load":
		if len(args) < 1 {
			fmt.Println("Usage: valuedict load <file.nq>")
			os.Exit(1)
		}
		runLoad(configPath, args[0])
	case "check":
		runCheck(configPath)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: valuedict <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  dump          - Print every stored ID -> value/namespace pair")
	fmt.Println("  load <file>   - Parse an N-Quads file and store every term it contains")
	fmt.Println("  check         - Verify the index's forward/reverse entries round-trip")
	fmt.Println("Reads ./valuedict.yaml for storage, cache, logging and metrics settings.")
}

func openStore() (*valuedict.Store, error) {
	cfg, err := config.Load("valuedict.yaml")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return valuedict.Open(cfg)
}

func runDump(_ string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	var id uint64
	for {
		id++
		if term, found, err := store.GetValue(id); err != nil {
			fmt.Fprintf(os.Stderr, "id %d: %v\n", id, err)
			os.Exit(1)
		} else if found {
			fmt.Printf("%d\t%s\n", id, term)
			continue
		}
		if ns, found, err := store.GetNamespace(id); err != nil {
			fmt.Fprintf(os.Stderr, "id %d: %v\n", id, err)
			os.Exit(1)
		} else if found {
			fmt.Printf("%d\tnamespace:%s\n", id, ns)
			continue
		}
		break
	}
}

func runLoad(_ string, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	quads, err := rdf.NewNQuadsParser(string(data)).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
		os.Exit(1)
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	stored := 0
	for _, q := range quads {
		for _, term := range []rdf.Term{q.Subject, q.Predicate, q.Object, q.Graph} {
			if _, isDefaultGraph := term.(*rdf.DefaultGraph); isDefaultGraph {
				continue
			}
			if _, err := store.StoreValue(term); err != nil {
				fmt.Fprintf(os.Stderr, "store %s: %v\n", term, err)
				os.Exit(1)
			}
			stored++
		}
	}
	fmt.Printf("loaded %d quads, stored %d term occurrences\n", len(quads), stored)
}

func runCheck(_ string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.CheckConsistency(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("consistent")
}
