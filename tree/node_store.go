package tree

/*
NodeStore is an arena where the nodes of a tree are created, retrieved and
deleted. Nodes are addressed by NodeID; the slots of deleted nodes are
reused by later creations, and their IDs become stale.

A NodeStore is not safe for concurrent modification.
*/
type NodeStore struct {
	slots []slot
	free  []int
	live  int
}

type slot struct {
	node       Node
	generation uint32
}

// NewNodeStore returns an empty NodeStore
func NewNodeStore() *NodeStore {
	return &NodeStore{}
}

/*
Create takes a node, stores it on a free slot, or a new one if none is
free, and returns its ID.
*/
func (ns *NodeStore) Create(n Node) NodeID {
	ns.live++
	if l := len(ns.free); l > 0 {
		index := ns.free[l-1]
		ns.free = ns.free[:l-1]
		ns.slots[index].node = n
		return NodeID{index, ns.slots[index].generation}
	}
	ns.slots = append(ns.slots, slot{node: n})
	return NodeID{len(ns.slots) - 1, 0}
}

/*
Get takes an id and returns the node in the store with that id, or nil if
the id is NoNode or stale.
*/
func (ns *NodeStore) Get(id NodeID) Node {
	if id.index < 0 || id.index >= len(ns.slots) {
		return nil
	}
	s := ns.slots[id.index]
	if s.generation != id.generation {
		return nil
	}
	return s.node
}

/*
Delete takes an id and removes its node from the store, releasing its slot.
It returns false if there was no node for the id.
*/
func (ns *NodeStore) Delete(id NodeID) bool {
	if ns.Get(id) == nil {
		return false
	}
	s := &ns.slots[id.index]
	s.node = nil
	s.generation++
	ns.free = append(ns.free, id.index)
	ns.live--
	return true
}

/*
Len returns the number of nodes in the store
*/
func (ns *NodeStore) Len() int {
	return ns.live
}
