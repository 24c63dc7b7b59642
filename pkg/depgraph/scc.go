package depgraph

// tarjanState holds per-node state during Tarjan's DFS.
type tarjanState struct {
	index   int32
	lowlink int32
	onStack bool
}

// StronglyConnectedComponents finds all SCCs using Tarjan's algorithm in
// O(V+E) time, following outgoing edges of every kind. Components are
// returned in discovery order; singletons are included, callers that only
// care about cycles filter on size.
func (g *Graph) StronglyConnectedComponents() [][]string {
	n := len(g.names)
	state := make([]tarjanState, n)
	visited := make([]bool, n)
	stack := make([]NodeID, 0, n)
	var indexCounter int32
	var components [][]string

	var strongconnect func(u NodeID)
	strongconnect = func(u NodeID) {
		visited[u] = true
		state[u] = tarjanState{
			index:   indexCounter,
			lowlink: indexCounter,
			onStack: true,
		}
		indexCounter++
		stack = append(stack, u)

		for _, e := range g.out[u] {
			v := e.to
			if !visited[v] {
				strongconnect(v)
				if state[v].lowlink < state[u].lowlink {
					state[u].lowlink = state[v].lowlink
				}
			} else if state[v].onStack {
				if state[v].index < state[u].lowlink {
					state[u].lowlink = state[v].index
				}
			}
		}

		// u is a root node: pop the stack to form one SCC
		if state[u].lowlink == state[u].index {
			var members []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				members = append(members, g.names[w])
				if w == u {
					break
				}
			}
			components = append(components, members)
		}
	}

	for id := NodeID(0); id < NodeID(n); id++ {
		if !visited[id] {
			strongconnect(id)
		}
	}

	return components
}
