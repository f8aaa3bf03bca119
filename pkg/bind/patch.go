package bind

import "github.com/rebind-dev/rebind/pkg/dom"

// PatchOp identifies the kind of element mutation a reaction applied.
type PatchOp uint8

const (
	PatchSetAttr     PatchOp = iota + 1 // Set attribute Key to Value
	PatchRemoveAttr                     // Remove attribute Key
	PatchSetProp                        // Set property Key to Value
	PatchRemoveProp                     // Remove property Key
	PatchSetText                        // Replace text content with Value
	PatchInsertNodes                    // Insert Nodes at child Index
	PatchRemoveNodes                    // Remove Count children at Index
	PatchMoveNodes                      // Move Count children from Index to To
	PatchHide                           // Element hidden (node became null)
	PatchShow                           // Element restored
	PatchDetach                         // Element removed from its parent
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchSetProp:
		return "SetProp"
	case PatchRemoveProp:
		return "RemoveProp"
	case PatchSetText:
		return "SetText"
	case PatchInsertNodes:
		return "InsertNodes"
	case PatchRemoveNodes:
		return "RemoveNodes"
	case PatchMoveNodes:
		return "MoveNodes"
	case PatchHide:
		return "Hide"
	case PatchShow:
		return "Show"
	case PatchDetach:
		return "Detach"
	default:
		return "Unknown"
	}
}

// Patch describes one element mutation that a reaction has already applied.
// Observers receive patches after the change so the tree and the patch
// stream never disagree.
type Patch struct {
	Op     PatchOp
	Target *dom.Node
	Key    string
	Value  any
	Index  int
	Count  int
	To     int
	Nodes  []*dom.Node
}

// Observer receives every patch a binder applies.
type Observer func(Patch)
