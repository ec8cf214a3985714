package sim

// HostConfig describes a host.
type HostConfig struct {
	ID string
}

// RouterConfig describes a router.
type RouterConfig struct {
	ID string
}

// LinkConfig describes a link between two devices.
type LinkConfig struct {
	ID          string
	EndpointA   string
	EndpointB   string
	Rate        float64 // bytes per second (must be > 0)
	Delay       int64   // propagation delay in ms
	BufferBytes int64   // drop-tail buffer capacity in bytes
}

// FlowConfig describes a bulk transfer between two hosts.
type FlowConfig struct {
	ID          string
	Source      string
	Destination string
	Bytes       int64
	StartTime   int64 // ms
}

// NetworkConfig groups an already materialized topology, in simulator units.
// Devices, links and flows are created in slice order.
type NetworkConfig struct {
	Hosts   []HostConfig
	Routers []RouterConfig
	Links   []LinkConfig
	Flows   []FlowConfig
}

// TransportConfig groups the transport and routing parameters.
type TransportConfig struct {
	Algorithm           Algorithm // "reno" (default) or "fast"
	RetransmitTimeout   int64     // fixed RTO in ms
	RoutingUpdatePeriod int64     // ms between host announcements
	FastAlpha           float64   // additive term of the FAST update
	Horizon             int64     // ms; 0 means run until every flow completes
}

// DefaultTransportConfig returns Reno with a 1s RTO and 1s routing period.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Algorithm:           AlgorithmReno,
		RetransmitTimeout:   DefaultRetransmitTimeout,
		RoutingUpdatePeriod: DefaultRoutingUpdatePeriod,
		FastAlpha:           DefaultFastAlpha,
	}
}
