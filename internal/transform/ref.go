package transform

import "fmt"

// NodeRef identifies a slot in the graph. The zero value refers to no node
// and is used wherever a parent or search base is optional.
type NodeRef struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether r is the "no node" reference.
func (r NodeRef) IsZero() bool {
	return r.gen == 0
}

func (r NodeRef) String() string {
	if r.IsZero() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d#%d)", r.slot, r.gen)
}
