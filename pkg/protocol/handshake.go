package protocol

// Handshake is the first frame a mirror client receives: the full rendered
// document plus the sequence number subsequent patch batches continue from.
type Handshake struct {
	ClientID string
	Seq      uint64
	HTML     string
}

// EncodeHandshake encodes a handshake payload.
func EncodeHandshake(h *Handshake) []byte {
	e := NewEncoder()
	e.WriteString(h.ClientID)
	e.WriteUvarint(h.Seq)
	e.WriteString(h.HTML)
	return e.Bytes()
}

// DecodeHandshake decodes a handshake payload.
func DecodeHandshake(payload []byte) (*Handshake, error) {
	d := NewDecoder(payload)
	h := &Handshake{}
	var err error
	if h.ClientID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if h.HTML, err = d.ReadString(); err != nil {
		return nil, err
	}
	return h, nil
}
