package protocol

import "fmt"

// PatchOp is the type of a mirrored document mutation. Values match
// bind.PatchOp one to one.
type PatchOp uint8

const (
	PatchSetAttr     PatchOp = 0x01 // Set attribute Key to Value
	PatchRemoveAttr  PatchOp = 0x02 // Remove attribute Key
	PatchSetProp     PatchOp = 0x03 // Set property Key to Value
	PatchRemoveProp  PatchOp = 0x04 // Remove property Key
	PatchSetText     PatchOp = 0x05 // Replace text content with Value
	PatchInsertNodes PatchOp = 0x06 // Insert HTML at child Index
	PatchRemoveNodes PatchOp = 0x07 // Remove Count children at Index
	PatchMoveNodes   PatchOp = 0x08 // Remove Count children at Index, insert at To
	PatchHide        PatchOp = 0x09 // Hide element
	PatchShow        PatchOp = 0x0A // Restore element visibility
	PatchDetach      PatchOp = 0x0B // Remove element from its parent
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

// Patch is one document mutation addressed by element ID. Inserted subtrees
// travel as rendered HTML in the HTML field; MoveNodes is applied as
// remove-then-insert with To indexed in the post-removal layout.
type Patch struct {
	Op     PatchOp
	Target string
	Key    string
	Value  string
	Index  int
	Count  int
	To     int
	HTML   string
}

// PatchesFrame is a batch of patches with a sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for _, p := range pf.Patches {
		e.WriteByte(byte(p.Op))
		e.WriteString(p.Target)
		switch p.Op {
		case PatchSetAttr, PatchSetProp:
			e.WriteString(p.Key)
			e.WriteString(p.Value)
		case PatchRemoveAttr, PatchRemoveProp:
			e.WriteString(p.Key)
		case PatchSetText:
			e.WriteString(p.Value)
		case PatchInsertNodes:
			e.WriteSvarint(int64(p.Index))
			e.WriteString(p.HTML)
		case PatchRemoveNodes:
			e.WriteSvarint(int64(p.Index))
			e.WriteUvarint(uint64(p.Count))
		case PatchMoveNodes:
			e.WriteSvarint(int64(p.Index))
			e.WriteUvarint(uint64(p.Count))
			e.WriteSvarint(int64(p.To))
		case PatchHide, PatchShow, PatchDetach:
			// Target only.
		}
	}
	return e.Bytes()
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(payload []byte) (*PatchesFrame, error) {
	d := NewDecoder(payload)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxCollectionCount {
		return nil, ErrCollectionTooLarge
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, 0, count)}
	for i := uint64(0); i < count; i++ {
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		p := Patch{Op: PatchOp(op)}
		if p.Target, err = d.ReadString(); err != nil {
			return nil, err
		}
		switch p.Op {
		case PatchSetAttr, PatchSetProp:
			if p.Key, err = d.ReadString(); err != nil {
				return nil, err
			}
			if p.Value, err = d.ReadString(); err != nil {
				return nil, err
			}
		case PatchRemoveAttr, PatchRemoveProp:
			if p.Key, err = d.ReadString(); err != nil {
				return nil, err
			}
		case PatchSetText:
			if p.Value, err = d.ReadString(); err != nil {
				return nil, err
			}
		case PatchInsertNodes:
			if p.Index, err = d.readInt(); err != nil {
				return nil, err
			}
			if p.HTML, err = d.ReadString(); err != nil {
				return nil, err
			}
		case PatchRemoveNodes:
			if p.Index, err = d.readInt(); err != nil {
				return nil, err
			}
			if p.Count, err = d.readCount(); err != nil {
				return nil, err
			}
		case PatchMoveNodes:
			if p.Index, err = d.readInt(); err != nil {
				return nil, err
			}
			if p.Count, err = d.readCount(); err != nil {
				return nil, err
			}
			if p.To, err = d.readInt(); err != nil {
				return nil, err
			}
		case PatchHide, PatchShow, PatchDetach:
			// Target only.
		default:
			return nil, fmt.Errorf("protocol: unknown patch op 0x%02x", op)
		}
		pf.Patches = append(pf.Patches, p)
	}
	return pf, nil
}

func (d *Decoder) readInt() (int, error) {
	v, err := d.ReadSvarint()
	return int(v), err
}

func (d *Decoder) readCount() (int, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	return int(v), nil
}
