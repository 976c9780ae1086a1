package workflow

// Node names one workflow graph node. End is the terminal marker.
type Node string

const (
	// End is the terminal marker; routing to End finishes the invocation.
	End Node = ""

	NodeCoordinator   Node = "coordinator"
	NodeCrawler       Node = "crawler"
	NodeResearcher    Node = "researcher"
	NodeContent       Node = "content"
	NodeComms         Node = "comms"
	NodeHealthMonitor Node = "healthmonitor"
	NodeArchivist     Node = "archivist"
	NodeDesigner      Node = "designer"
)

// entryRoutes maps a delegated worker id to its graph node. Ids outside
// this table terminate the run; their tasks drain via the dispatcher.
var entryRoutes = map[string]Node{
	"crawler":       NodeCrawler,
	"researcher":    NodeResearcher,
	"content":       NodeContent,
	"comms":         NodeComms,
	"healthmonitor": NodeHealthMonitor,
	"archivist":     NodeArchivist,
	"designer":      NodeDesigner,
}

// RouteFromEntry picks the node to run after the coordinator delegates.
// No delegation, or an unknown head id, terminates the invocation.
func RouteFromEntry(state *State) Node {
	if len(state.Delegated) == 0 {
		return End
	}
	node, ok := entryRoutes[state.Delegated[0]]
	if !ok {
		return End
	}
	return node
}

// RouteAfterResearch routes research output: findings feed the content
// specialist, an empty result goes straight to the archivist.
func RouteAfterResearch(state *State) Node {
	if len(state.Findings) > 0 {
		return NodeContent
	}
	return NodeArchivist
}

// ShouldRunHealthCheck routes to the health monitor when the run has
// recorded an error, otherwise terminates.
func ShouldRunHealthCheck(state *State) Node {
	if state.Err != "" {
		return NodeHealthMonitor
	}
	return End
}
