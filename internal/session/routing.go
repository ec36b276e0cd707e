package session

// RouteKind classifies a raw routing target string without resolving it.
type RouteKind string

const (
	RouteMissing  RouteKind = "missing"  // routing field absent
	RouteNone     RouteKind = "none"     // explicit AudioIn/None or AudioOut/None
	RouteTrack    RouteKind = "track"    // references a concrete track id
	RouteGroup    RouteKind = "group"    // routed to the enclosing group
	RouteMaster   RouteKind = "master"   // routed to the set master
	RouteExternal RouteKind = "external" // hardware input/output
	RouteUnknown  RouteKind = "unknown"
)

// RoutingDescriptor captures a track's signal routing as loaded. Inputs is
// the set of upstream source track ids; Output is the at-most-one downstream
// destination id when the target is a concrete track. A track never lists
// itself in Inputs; the loader drops such references and the graph builder
// records the anomaly if one slips through.
type RoutingDescriptor struct {
	Inputs     []TrackID
	InputKind  RouteKind
	Output     TrackID
	OutputKind RouteKind

	// RawInput and RawOutput preserve the source routing strings for the
	// verbose report and for trace messages.
	RawInput  string
	RawOutput string
}

// HasOutput reports whether a concrete downstream track is named.
func (r RoutingDescriptor) HasOutput() bool { return r.Output != "" }
