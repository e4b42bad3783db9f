package constraint

import "sort"

// NodeDropping registers every penalized node as an optional visit: leaving
// it off all routes costs its penalty instead of failing the solve.
type NodeDropping struct{}

func (NodeDropping) Name() string { return "node_dropping" }

func (NodeDropping) Apply(ctx *Context) error {
	in := ctx.Input
	nodes := make([]int, 0, len(in.Penalties))
	for node := range in.Penalties {
		nodes = append(nodes, node)
	}
	sort.Ints(nodes)

	for _, node := range nodes {
		if node < in.NumDepots || node >= in.NumNodes() {
			ctx.Log.Warn().Int("node", node).Msg("drop penalty index out of range, skipping")
			continue
		}
		ctx.Model.AddDisjunction([]int64{ctx.Manager.NodeToIndex(node)}, in.Penalties[node])
	}
	return nil
}

// Precedence pins dependent pairs to one vehicle in visit order. Pairs with
// out-of-range endpoints were already filtered by the adapter; anything left
// malformed is skipped with a warning.
type Precedence struct{}

func (Precedence) Name() string { return "precedence" }

func (Precedence) Apply(ctx *Context) error {
	in := ctx.Input
	for _, pair := range in.PrecedencePairs {
		if pair[0] < 0 || pair[1] < 0 || pair[0] >= in.NumNodes() || pair[1] >= in.NumNodes() {
			ctx.Log.Warn().Ints("pair", pair[:]).Msg("precedence pair out of range, skipping")
			continue
		}
		ctx.Model.AddPrecedence(ctx.Manager.NodeToIndex(pair[0]), ctx.Manager.NodeToIndex(pair[1]))
	}
	return nil
}
