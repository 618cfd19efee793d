package leiden

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Run executes the multi-level algorithm on graph: local moving, refinement
// (Leiden variant only) and aggregation, repeated until local moving leaves
// every node of the working graph in its own community.
//
// When a move or level budget runs out Run returns the partial result
// together with an error wrapping ErrDidNotConverge.
func Run(ctx context.Context, graph *Graph, config *Config) (*Result, error) {
	return run(ctx, graph, config, config.CreateLogger())
}

func run(ctx context.Context, graph *Graph, config *Config, baseLogger zerolog.Logger) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()
	logger := baseLogger.With().Str("run_id", runID).Logger()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	q, _ := config.Quality()
	variant, _ := config.Variant()
	mode, _ := config.EdgeMode()
	initial, _ := config.Initial()

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	var tracker *MoveTracker
	if config.EnableMoveTracking() {
		t, err := NewMoveTracker(config.TrackingOutputFile())
		if err != nil {
			return nil, fmt.Errorf("failed to open move tracking file: %w", err)
		}
		tracker = t
		defer tracker.Close()
	}

	logger.Info().
		Int("nodes", graph.NumNodes()).
		Int("edges", graph.NumEdges()).
		Str("quality", q.Kind.String()).
		Float64("resolution", q.Resolution).
		Str("variant", variant.String()).
		Msg("Starting community detection")

	result := &Result{
		RunID:       runID,
		QualityKind: q.Kind.String(),
		Resolution:  q.Resolution,
		Levels:      make([]LevelInfo, 0),
		Statistics:  Statistics{LevelStats: make([]LevelStats, 0)},
	}

	n := graph.NumNodes()
	if graph.NumEdges() == 0 {
		// Nothing can merge; skip the quality machinery entirely.
		assignment := make([]int, n)
		for i := range assignment {
			assignment[i] = i
		}
		finalize(result, graph, q, assignment, startTime)
		result.Converged = true
		logger.Info().Msg("Graph has no edges, returning singleton partition")
		return result, nil
	}

	rng := rand.New(rand.NewSource(config.RandomSeed()))
	current := graph
	lineage := NewLineage(n)
	p, err := initialPartition(graph, initial)
	if err != nil {
		return nil, err
	}

	// Deduplicated aggregation optimises a coarser objective on later
	// levels, so the answer is the best expansion seen on the input graph.
	var bestAssignment []int
	bestQuality := math.Inf(-1)

	var runErr error
	for level := 0; ; level++ {
		if level >= config.MaxLevels() {
			runErr = &ConvergenceError{Phase: "driver", Limit: config.MaxLevels()}
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		levelStart := time.Now()
		initialQuality := q.Value(current, p)
		if config.EnableProgress() {
			logger.Info().
				Int("level", level).
				Int("nodes", current.NumNodes()).
				Float64("initial_quality", initialQuality).
				Msg("Starting level")
		}

		// Phase 1: local moving
		tracker.SetLevel(level)
		moves, moveErr := MoveNodesFast(current, p, q, config.MaxMoves(), tracker)
		levelInfo := LevelInfo{
			Level:          level,
			Nodes:          current.NumNodes(),
			Edges:          current.NumEdges(),
			Communities:    expandCommunities(graph, p, lineage),
			NumCommunities: p.NumCommunities(),
			NumMoves:       moves,
			Quality:        q.Value(current, p),
		}
		result.Statistics.TotalMoves += moves

		expanded := lineage.Expand(p.Assignment(), n)
		if score := scoreAssignment(graph, q, expanded); score >= bestQuality-1e-12 {
			bestAssignment, bestQuality = expanded, score
		}

		if moveErr != nil {
			runErr = moveErr
			recordLevel(result, levelInfo, initialQuality, levelStart)
			break
		}

		if p.NumCommunities() == current.NumNodes() {
			recordLevel(result, levelInfo, initialQuality, levelStart)
			logger.Debug().Int("level", level).Msg("Converged: every node is its own community")
			result.Converged = true
			break
		}

		// Phase 2: refinement
		aggregateOn := p
		if variant == VariantLeiden {
			refined := Refine(current, p, q, config.Theta(), rng)
			levelInfo.NumRefined = refined.NumCommunities()
			if refined.NumCommunities() < current.NumNodes() {
				aggregateOn = refined
			} else {
				logger.Debug().Int("level", level).Msg("Refinement kept singletons, aggregating unrefined partition")
			}
		}
		recordLevel(result, levelInfo, initialQuality, levelStart)

		// Phase 3: aggregation
		next, members := Aggregate(current, aggregateOn, mode)
		logger.Info().
			Int("original_nodes", current.NumNodes()).
			Int("super_nodes", next.NumNodes()).
			Float64("compression_ratio", float64(next.NumNodes())/float64(current.NumNodes())).
			Msg("Graph aggregation completed")

		if variant == VariantLouvain {
			p = NewSingletonPartition(next)
		} else {
			assignment := make([]int, next.NumNodes())
			for i, group := range members {
				assignment[i] = p.CommunityOf(group[0])
			}
			p, err = NewPartitionFromAssignment(next, assignment)
			if err != nil {
				return nil, fmt.Errorf("carry partition to level %d: %w", level+1, err)
			}
		}
		lineage = lineage.Aggregate(members)
		current = next
	}

	finalize(result, graph, q, bestAssignment, startTime)

	if runErr != nil {
		logger.Warn().Err(runErr).Float64("quality", result.Quality).Msg("Stopped before convergence")
		return result, runErr
	}

	logger.Info().
		Int("levels", result.NumLevels).
		Int("communities", result.NumCommunities()).
		Float64("final_quality", result.Quality).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Community detection completed")

	return result, nil
}

// Detect is the compact entry point: it partitions g and returns node id ->
// community. maxIterations bounds the number of aggregation levels and,
// counted in sweeps over the nodes, the moves of each local-moving phase;
// maxIterations <= 0 keeps the defaults. Convergence is only confirmed by a
// level whose local moving makes no merge, so a graph settled at level 0
// still needs maxIterations >= 2. On ErrDidNotConverge the best partition
// found so far is returned along with the error.
func Detect(ctx context.Context, g *Graph, kind QualityKind, gamma, theta float64, seed int64, maxIterations int) (map[int64]int, error) {
	config := NewConfig()
	config.Set("algorithm.quality", kind.String())
	config.Set("algorithm.resolution", gamma)
	config.Set("algorithm.theta", theta)
	config.Set("algorithm.random_seed", seed)
	config.Set("logging.level", "disabled")
	if maxIterations > 0 {
		config.Set("algorithm.max_levels", maxIterations)
		config.Set("algorithm.max_moves", maxIterations*max(g.NumNodes(), 1))
	}

	result, err := Run(ctx, g, config)
	if result == nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, ErrDidNotConverge) {
		return nil, err
	}
	return result.Communities, err
}

func initialPartition(g *Graph, initial InitialPartition) (*Partition, error) {
	if initial != InitialDegree {
		return NewSingletonPartition(g), nil
	}
	assignment := make([]int, g.NumNodes())
	for v := range assignment {
		assignment[v] = g.Degree(v)
	}
	return NewPartitionFromAssignment(g, assignment)
}

// scoreAssignment evaluates an original-node assignment on graph.
func scoreAssignment(graph *Graph, q Quality, assignment []int) float64 {
	p, err := NewPartitionFromAssignment(graph, assignment)
	if err != nil {
		return math.Inf(-1)
	}
	return q.Value(graph, p)
}

func recordLevel(result *Result, info LevelInfo, initialQuality float64, levelStart time.Time) {
	info.RuntimeMS = time.Since(levelStart).Milliseconds()
	result.Levels = append(result.Levels, info)
	result.Statistics.LevelStats = append(result.Statistics.LevelStats, LevelStats{
		Level:          info.Level,
		Moves:          info.NumMoves,
		InitialQuality: initialQuality,
		FinalQuality:   info.Quality,
		RuntimeMS:      info.RuntimeMS,
	})
}

// expandCommunities lists, for every community of p on the working graph,
// the original node ids it contains.
func expandCommunities(original *Graph, p *Partition, lineage *Lineage) map[int][]int64 {
	out := make(map[int][]int64, p.NumCommunities())
	for _, c := range p.Communities() {
		ids := make([]int64, 0)
		for _, v := range p.Members(c) {
			for _, orig := range lineage.Origins(v) {
				ids = append(ids, original.ID(orig))
			}
		}
		out[c] = ids
	}
	return out
}

func finalize(result *Result, graph *Graph, q Quality, assignment []int, startTime time.Time) {
	result.Assignment = assignment
	result.Communities = make(map[int64]int, len(assignment))
	for v, c := range assignment {
		result.Communities[graph.ID(v)] = c
	}
	if final, err := NewPartitionFromAssignment(graph, assignment); err == nil {
		result.Quality = q.Value(graph, final)
	}
	result.NumLevels = len(result.Levels)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
	result.Statistics.MemoryPeakMB = getMemoryUsage()
}

// getMemoryUsage returns current memory usage in MB
func getMemoryUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
