// Package parser loads graphs for community detection from edge lists and
// node/link CSV tables.
package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/graph-leiden/pkg/leiden"
)

// Dataset is a loaded graph plus the names its node ids stand for.
type Dataset struct {
	Graph  *leiden.Graph
	Names  []string         // node id -> name; ids are dense from 0
	Groups map[int64]string // optional ground-truth group per node id
}

// Name returns the display name of a node id.
func (d *Dataset) Name(id int64) string {
	if id >= 0 && int(id) < len(d.Names) {
		return d.Names[id]
	}
	return strconv.FormatInt(id, 10)
}

// nameTable assigns dense ids to names in first-seen order.
type nameTable struct {
	ids   map[string]int64
	names []string
}

func newNameTable() *nameTable {
	return &nameTable{ids: make(map[string]int64)}
}

func (t *nameTable) lookup(name string) (int64, bool) {
	id, ok := t.ids[name]
	return id, ok
}

func (t *nameTable) intern(name string) (int64, bool) {
	if id, ok := t.ids[name]; ok {
		return id, false
	}
	id := int64(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id, true
}

// LoadEdgeList reads an edge list file.
func LoadEdgeList(filename string) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadEdgeList(file)
}

// ReadEdgeList parses whitespace separated "from to [weight]" lines. Blank
// lines and lines starting with '#' are skipped. Node names are arbitrary
// tokens; a pair listed in both directions is kept once.
func ReadEdgeList(r io.Reader) (*Dataset, error) {
	names := newNameTable()
	builder := leiden.NewBuilder()
	seen := make(map[[2]int64]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected at least two fields, got %q", lineNo, line)
		}

		weight := 1.0
		if len(parts) >= 3 {
			w, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid weight %q: %w", lineNo, parts[2], err)
			}
			weight = w
		}

		from := internNode(names, builder, parts[0])
		to := internNode(names, builder, parts[1])

		key := [2]int64{from, to}
		if to < from {
			key = [2]int64{to, from}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		builder.AddWeightedEdge(from, to, weight)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	g, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Dataset{Graph: g, Names: names.names}, nil
}

func internNode(names *nameTable, builder *leiden.Builder, name string) int64 {
	id, added := names.intern(name)
	if added {
		builder.AddNode(id)
	}
	return id
}

// LoadCSV reads a node table and a link table from disk.
func LoadCSV(nodesFile, linksFile string) (*Dataset, error) {
	nodes, err := os.Open(nodesFile)
	if err != nil {
		return nil, err
	}
	defer nodes.Close()

	links, err := os.Open(linksFile)
	if err != nil {
		return nil, err
	}
	defer links.Close()

	return ReadCSV(nodes, links)
}

// ReadCSV parses a node table with a "name" column (and an optional "group"
// column) and a link table with "source" and "target" columns. Links that
// name unknown nodes are rejected as malformed.
func ReadCSV(nodes, links io.Reader) (*Dataset, error) {
	names := newNameTable()
	builder := leiden.NewBuilder()
	groups := make(map[int64]string)

	nodeRows, nodeCols, err := readTable(nodes, "name")
	if err != nil {
		return nil, fmt.Errorf("node table: %w", err)
	}
	groupCol, hasGroup := nodeCols["group"]
	for _, row := range nodeRows {
		name := row[nodeCols["name"]]
		id, added := names.intern(name)
		// A repeated name is passed through so the builder reports it.
		builder.AddNode(id)
		if added && hasGroup && groupCol < len(row) {
			groups[id] = row[groupCol]
		}
	}

	linkRows, linkCols, err := readTable(links, "source", "target")
	if err != nil {
		return nil, fmt.Errorf("link table: %w", err)
	}
	unknown := int64(len(names.names))
	seen := make(map[[2]int64]bool)
	for _, row := range linkRows {
		from := resolve(names, row[linkCols["source"]], &unknown)
		to := resolve(names, row[linkCols["target"]], &unknown)
		key := [2]int64{from, to}
		if to < from {
			key = [2]int64{to, from}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		builder.AddEdge(from, to)
	}

	g, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Dataset{Graph: g, Names: names.names, Groups: groups}, nil
}

// resolve maps a link endpoint to its node id; unknown names get a fresh id
// that was never added, so Build rejects the edge.
func resolve(names *nameTable, name string, unknown *int64) int64 {
	if id, ok := names.lookup(name); ok {
		return id
	}
	*unknown++
	return *unknown
}

func readTable(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return rows, cols, nil
}
