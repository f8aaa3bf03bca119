package protocol

import "errors"

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // Connection setup: document snapshot
	FramePatches   FrameType = 0x01 // Server → client patch batch
	FrameControl   FrameType = 0x02 // Control messages (ping, resync)
	FrameError     FrameType = 0x03 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge  = errors.New("protocol: frame payload too large")
	ErrFrameTooShort  = errors.New("protocol: frame shorter than header")
	ErrInvalidFrame   = errors.New("protocol: invalid frame type")
	ErrLengthMismatch = errors.New("protocol: frame length mismatch")
)

// Frame is a protocol frame with header and payload.
//
// Wire format: 1 byte type, 1 byte flags (reserved), 2 bytes big-endian
// payload length, then the payload.
type Frame struct {
	Type    FrameType
	Flags   uint8
	Payload []byte
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() ([]byte, error) {
	length := len(f.Payload)
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = f.Flags
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame decodes a frame from bytes.
func DecodeFrame(buf []byte) (*Frame, error) {
	if len(buf) < FrameHeaderSize {
		return nil, ErrFrameTooShort
	}
	ft := FrameType(buf[0])
	if ft > FrameError {
		return nil, ErrInvalidFrame
	}
	length := int(buf[2])<<8 | int(buf[3])
	if len(buf) != FrameHeaderSize+length {
		return nil, ErrLengthMismatch
	}
	return &Frame{
		Type:    ft,
		Flags:   buf[1],
		Payload: buf[FrameHeaderSize:],
	}, nil
}
