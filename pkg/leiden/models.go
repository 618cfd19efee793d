package leiden

import "sort"

// Result represents the algorithm output
type Result struct {
	RunID       string        `json:"run_id"`
	QualityKind string        `json:"quality_kind"`
	Resolution  float64       `json:"resolution"`
	Quality     float64       `json:"quality"`
	Communities map[int64]int `json:"communities"` // original node id -> community
	Assignment  []int         `json:"-"`           // original node index -> community
	Levels      []LevelInfo   `json:"levels"`
	NumLevels   int           `json:"num_levels"`
	Converged   bool          `json:"converged"`
	Statistics  Statistics    `json:"statistics"`
}

// LevelInfo contains information about each hierarchical level
type LevelInfo struct {
	Level          int             `json:"level"`
	Nodes          int             `json:"nodes"`
	Edges          int             `json:"edges"`
	Communities    map[int][]int64 `json:"communities"` // community -> original node ids
	NumCommunities int             `json:"num_communities"`
	NumRefined     int             `json:"num_refined,omitempty"`
	NumMoves       int             `json:"num_moves"`
	Quality        float64         `json:"quality"`
	RuntimeMS      int64           `json:"runtime_ms"`
}

// Statistics contains algorithm performance metrics
type Statistics struct {
	TotalMoves   int          `json:"total_moves"`
	RuntimeMS    int64        `json:"runtime_ms"`
	MemoryPeakMB int64        `json:"memory_peak_mb"`
	LevelStats   []LevelStats `json:"level_stats"`
}

// LevelStats contains per-level statistics
type LevelStats struct {
	Level          int     `json:"level"`
	Moves          int     `json:"moves"`
	InitialQuality float64 `json:"initial_quality"`
	FinalQuality   float64 `json:"final_quality"`
	RuntimeMS      int64   `json:"runtime_ms"`
}

// NumCommunities returns the number of communities in the final partition.
func (r *Result) NumCommunities() int {
	seen := make(map[int]bool)
	for _, c := range r.Assignment {
		seen[c] = true
	}
	return len(seen)
}

// Groups returns the final communities as sorted lists of original node ids,
// ordered by community label.
func (r *Result) Groups() [][]int64 {
	byComm := make(map[int][]int64)
	for id, c := range r.Communities {
		byComm[c] = append(byComm[c], id)
	}
	labels := make([]int, 0, len(byComm))
	for c := range byComm {
		labels = append(labels, c)
	}
	sort.Ints(labels)

	groups := make([][]int64, 0, len(labels))
	for _, c := range labels {
		ids := byComm[c]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		groups = append(groups, ids)
	}
	return groups
}
