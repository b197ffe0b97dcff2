package rosmsg

import (
	"encoding/binary"
	"fmt"
)

// Header is a ROS 2 message type
// Full name: std_msgs/msg/Header
type Header struct {
	Stamp   Time
	FrameId string
}

const Header_TypeName = "std_msgs/msg/Header"

// TypeName returns the full ROS 2 type name
func (m *Header) TypeName() string {
	return Header_TypeName
}

// SerializeCDR serializes the message to CDR format
func (m *Header) SerializeCDR() ([]byte, error) {
	raw := m.packToRaw()
	buf := make([]byte, 4, 4+len(raw))
	buf[0], buf[1], buf[2], buf[3] = 0x00, 0x01, 0x00, 0x00 // CDR_LE encapsulation header
	return append(buf, raw...), nil
}

func (m *Header) packToRaw() []byte {
	buf := make([]byte, 0, 64)
	// Pack stamp
	{
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(m.Stamp.Sec))
		buf = append(buf, b...)
		binary.LittleEndian.PutUint32(b, m.Stamp.Nanosec)
		buf = append(buf, b...)
	}
	// Pack string: frame_id
	{
		data := []byte(m.FrameId)
		lenBytes := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBytes, uint32(len(data)+1))
		buf = append(buf, lenBytes...)
		buf = append(buf, data...)
		buf = append(buf, 0) // null terminator
	}
	return buf
}

// DeserializeCDR deserializes CDR data into the message
func (m *Header) DeserializeCDR(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("CDR data too short: need 4-byte encapsulation header")
	}
	_, err := m.unpackFromRaw(data[4:]) // skip CDR encapsulation header
	return err
}

func (m *Header) unpackFromRaw(data []byte) (int, error) {
	offset := 0
	if offset+8 > len(data) {
		return 0, fmt.Errorf("buffer too short for stamp")
	}
	m.Stamp.Sec = int32(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	m.Stamp.Nanosec = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	if offset+4 > len(data) {
		return 0, fmt.Errorf("buffer too short for frame_id length")
	}
	strLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if strLen < 1 || offset+strLen > len(data) {
		return 0, fmt.Errorf("buffer too short for frame_id")
	}
	m.FrameId = string(data[offset : offset+strLen-1]) // strip null terminator
	offset += strLen
	return offset, nil
}
