package managers

import "github.com/bawdo/ctebee/nodes"

// JoinContext is returned by SelectManager.Join() and holds a join until
// its ON condition is given. Nothing is added to the query before On is
// called.
type JoinContext struct {
	manager  *SelectManager
	right    nodes.Node
	joinType nodes.JoinType
}

// On completes the join and returns a new SelectManager for continued
// method chaining.
func (jc *JoinContext) On(condition nodes.Node) *SelectManager {
	return jc.manager.withJoin(&nodes.JoinNode{Right: jc.right, Type: jc.joinType, On: condition})
}
