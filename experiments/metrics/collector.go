package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Strategy   string
	Duration   time.Duration
	Nodes      int
	Depth      int // Deepest completed iterative-deepening depth
	Iterations int // MCTS iterations
	TableHits  int
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Action int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Agent ID
	Winner         int // Agent ID
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers statistics of a single move search. Counters may be read
// from another goroutine while the search is running.
type Collector interface {
	Start(strategy string)
	AddNode()
	AddTableHit()
	AddIteration()
	SetDepth(depth int)
	Nodes() int64
	Complete() SearchMetric
}

type collector struct {
	strategy   string
	startTime  time.Time
	nodes      atomic.Int64
	tableHits  atomic.Int64
	iterations atomic.Int64
	depth      atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(strategy string) {
	m.strategy = strategy
	m.startTime = time.Now()
	m.nodes.Store(0)
	m.tableHits.Store(0)
	m.iterations.Store(0)
	m.depth.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddTableHit() {
	m.tableHits.Add(1)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) SetDepth(depth int) {
	m.depth.Store(int32(depth))
}

func (m *collector) Nodes() int64 {
	return m.nodes.Load()
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:   m.strategy,
		Duration:   time.Since(m.startTime),
		Nodes:      int(m.nodes.Load()),
		Depth:      int(m.depth.Load()),
		Iterations: int(m.iterations.Load()),
		TableHits:  int(m.tableHits.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string)  {}
func (m *dummyCollector) AddNode()               {}
func (m *dummyCollector) AddTableHit()           {}
func (m *dummyCollector) AddIteration()          {}
func (m *dummyCollector) SetDepth(depth int)     {}
func (m *dummyCollector) Nodes() int64           { return 0 }
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
