package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelFlows captures flow lifecycle, sends, acks, windows and drops.
	TraceLevelFlows TraceLevel = "flows"
	// TraceLevelAll additionally captures buffer occupancy and routing updates.
	TraceLevelAll TraceLevel = "all"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelFlows: true,
	TraceLevelAll:   true,
	"":              true, // empty defaults to flows
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a simulation.
type SimulationTrace struct {
	Config  TraceConfig
	Flows   []FlowRecord
	Sends   []SendRecord
	Acks    []AckRecord
	Drops   []DropRecord
	Windows []WindowRecord
	Routes  []RouteRecord
	Buffers []BufferRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" {
		config.Level = TraceLevelFlows
	}
	return &SimulationTrace{
		Config:  config,
		Flows:   make([]FlowRecord, 0),
		Sends:   make([]SendRecord, 0),
		Acks:    make([]AckRecord, 0),
		Drops:   make([]DropRecord, 0),
		Windows: make([]WindowRecord, 0),
		Routes:  make([]RouteRecord, 0),
		Buffers: make([]BufferRecord, 0),
	}
}

func (st *SimulationTrace) flows() bool {
	return st.Config.Level == TraceLevelFlows || st.Config.Level == TraceLevelAll
}

func (st *SimulationTrace) all() bool {
	return st.Config.Level == TraceLevelAll
}

// RecordFlow appends a flow lifecycle record.
func (st *SimulationTrace) RecordFlow(record FlowRecord) {
	if st.flows() {
		st.Flows = append(st.Flows, record)
	}
}

// RecordSend appends a payload transmission record.
func (st *SimulationTrace) RecordSend(record SendRecord) {
	if st.flows() {
		st.Sends = append(st.Sends, record)
	}
}

// RecordAck appends an acknowledgement record.
func (st *SimulationTrace) RecordAck(record AckRecord) {
	if st.flows() {
		st.Acks = append(st.Acks, record)
	}
}

// RecordDrop appends a packet drop record.
func (st *SimulationTrace) RecordDrop(record DropRecord) {
	if st.flows() {
		st.Drops = append(st.Drops, record)
	}
}

// RecordWindow appends a congestion window change.
func (st *SimulationTrace) RecordWindow(record WindowRecord) {
	if st.flows() {
		st.Windows = append(st.Windows, record)
	}
}

// RecordRoute appends a routing table update.
func (st *SimulationTrace) RecordRoute(record RouteRecord) {
	if st.all() {
		st.Routes = append(st.Routes, record)
	}
}

// RecordBuffer appends a buffer occupancy sample.
func (st *SimulationTrace) RecordBuffer(record BufferRecord) {
	if st.all() {
		st.Buffers = append(st.Buffers, record)
	}
}
