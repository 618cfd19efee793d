package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gilchrisn/graph-leiden/pkg/leiden"
	"github.com/gilchrisn/graph-leiden/pkg/parser"
	"github.com/spf13/cobra"
)

var (
	configFile string
	nodesFile  string
	linksFile  string
	outputDir  string
	prefix     string
	quality    string
	resolution float64
	theta      float64
	seed       int64
	variant    string

	rootCmd = &cobra.Command{
		Use:   "leiden",
		Short: "Community detection with the Leiden and Louvain algorithms",
	}

	runCmd = &cobra.Command{
		Use:   "run [edgelist]",
		Short: "Partition a graph and write the communities",
		Long: `Reads an edge list ("from to [weight]" per line) or a pair of node/link
CSV tables, runs community detection and writes <prefix>.mapping,
<prefix>.assignments and <prefix>.json into the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDetection,
	}
)

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.StringVar(&nodesFile, "nodes", "", "node table CSV (name,group)")
	flags.StringVar(&linksFile, "links", "", "link table CSV (source,target)")
	flags.StringVarP(&outputDir, "output", "o", "leiden_output", "output directory")
	flags.StringVar(&prefix, "prefix", "", "output file prefix (defaults to the input name)")
	flags.StringVar(&quality, "quality", "", "quality function: cpm or modularity")
	flags.Float64Var(&resolution, "resolution", 0, "resolution parameter gamma")
	flags.Float64Var(&theta, "theta", 0, "refinement randomness")
	flags.Int64Var(&seed, "seed", 0, "random seed")
	flags.StringVar(&variant, "variant", "", "leiden or louvain")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDetection(cmd *cobra.Command, args []string) error {
	dataset, inputName, err := loadDataset(args)
	if err != nil {
		return err
	}

	config := leiden.NewConfig()
	if configFile != "" {
		if err := config.LoadFromFile(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	applyFlags(cmd, config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := leiden.Run(ctx, dataset.Graph, config)
	if err != nil && !errors.Is(err, leiden.ErrDidNotConverge) {
		return err
	}
	if err != nil {
		log.Printf("Warning: %v; writing best partition found", err)
	}

	if prefix == "" {
		prefix = inputName
	}
	writer := leiden.NewFileWriter()
	if err := writer.WriteAll(result, dataset.Name, outputDir, prefix); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	displayResults(result, dataset)
	return nil
}

func loadDataset(args []string) (*parser.Dataset, string, error) {
	switch {
	case len(args) == 1 && nodesFile == "" && linksFile == "":
		dataset, err := parser.LoadEdgeList(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
		return dataset, baseName(args[0]), nil
	case len(args) == 0 && nodesFile != "" && linksFile != "":
		dataset, err := parser.LoadCSV(nodesFile, linksFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s/%s: %w", nodesFile, linksFile, err)
		}
		return dataset, baseName(nodesFile), nil
	default:
		return nil, "", fmt.Errorf("give either an edge list or both --nodes and --links")
	}
}

// applyFlags copies explicitly set flags over the file and default values.
func applyFlags(cmd *cobra.Command, config *leiden.Config) {
	flags := cmd.Flags()
	if flags.Changed("quality") {
		config.Set("algorithm.quality", quality)
	}
	if flags.Changed("resolution") {
		config.Set("algorithm.resolution", resolution)
	}
	if flags.Changed("theta") {
		config.Set("algorithm.theta", theta)
	}
	if flags.Changed("seed") {
		config.Set("algorithm.random_seed", seed)
	}
	if flags.Changed("variant") {
		config.Set("algorithm.variant", variant)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func displayResults(result *leiden.Result, dataset *parser.Dataset) {
	fmt.Println("\n=== Results ===")
	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Printf("Quality (%s, gamma=%.4f): %.6f\n", result.QualityKind, result.Resolution, result.Quality)
	fmt.Printf("Number of levels: %d\n", result.NumLevels)
	fmt.Printf("Communities: %d\n", result.NumCommunities())
	fmt.Printf("Runtime: %d ms\n", result.Statistics.RuntimeMS)
	fmt.Printf("Total moves: %d\n", result.Statistics.TotalMoves)

	for _, level := range result.Levels {
		fmt.Printf("\nLevel %d:\n", level.Level)
		fmt.Printf("  Nodes: %d\n", level.Nodes)
		fmt.Printf("  Communities: %d\n", level.NumCommunities)
		if level.NumRefined > 0 {
			fmt.Printf("  Refined: %d\n", level.NumRefined)
		}
		fmt.Printf("  Quality: %.6f\n", level.Quality)
		fmt.Printf("  Moves: %d\n", level.NumMoves)
	}

	if len(dataset.Groups) == 0 {
		return
	}
	// Compare against the ground-truth groups of a node table.
	fmt.Println("\nGround truth groups per community:")
	for c, ids := range result.Groups() {
		counts := make(map[string]int)
		for _, id := range ids {
			counts[dataset.Groups[id]]++
		}
		fmt.Printf("  Community %d (%d nodes): %v\n", c, len(ids), counts)
	}
}
