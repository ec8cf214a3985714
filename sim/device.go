package sim

// Device is a network node that links deliver packets to.
// The two variants are *Host and *Router.
type Device interface {
	ID() string
	AttachLink(l *Link)
	Links() []*Link
	// HandlePacket processes a packet that arrived over from.
	HandlePacket(p Packet, from *Link)
}
