package rosmsg

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Joy is a ROS 2 message type
// Full name: sensor_msgs/msg/Joy
type Joy struct {
	Header  Header
	Axes    []float32
	Buttons []int32
}

const Joy_TypeName = "sensor_msgs/msg/Joy"

// TypeName returns the full ROS 2 type name
func (m *Joy) TypeName() string {
	return Joy_TypeName
}

// SerializeCDR serializes the message to CDR format
func (m *Joy) SerializeCDR() ([]byte, error) {
	raw := m.packToRaw()
	buf := make([]byte, 4, 4+len(raw))
	buf[0], buf[1], buf[2], buf[3] = 0x00, 0x01, 0x00, 0x00 // CDR_LE encapsulation header
	return append(buf, raw...), nil
}

func (m *Joy) packToRaw() []byte {
	buf := make([]byte, 0, 256)
	// Pack custom type: header
	buf = append(buf, m.Header.packToRaw()...)
	// Pack Float32 sequence: axes
	{
		lenBytes := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBytes, uint32(len(m.Axes)))
		buf = append(buf, lenBytes...)
		for _, v := range m.Axes {
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, math.Float32bits(v))
			buf = append(buf, b...)
		}
	}
	// Pack Int32 sequence: buttons
	{
		lenBytes := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBytes, uint32(len(m.Buttons)))
		buf = append(buf, lenBytes...)
		for _, v := range m.Buttons {
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, uint32(v))
			buf = append(buf, b...)
		}
	}
	return buf
}

// DeserializeCDR deserializes CDR data into the message
func (m *Joy) DeserializeCDR(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("CDR data too short: need 4-byte encapsulation header")
	}
	return m.unpackFromRaw(data[4:]) // skip CDR encapsulation header
}

func (m *Joy) unpackFromRaw(data []byte) error {
	offset, err := m.Header.unpackFromRaw(data)
	if err != nil {
		return err
	}
	if offset+4 > len(data) {
		return fmt.Errorf("buffer too short for axes length")
	}
	axesLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if offset+4*axesLen > len(data) {
		return fmt.Errorf("buffer too short for axes")
	}
	m.Axes = make([]float32, axesLen)
	for i := 0; i < axesLen; i++ {
		m.Axes[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}
	if offset+4 > len(data) {
		return fmt.Errorf("buffer too short for buttons length")
	}
	buttonsLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if offset+4*buttonsLen > len(data) {
		return fmt.Errorf("buffer too short for buttons")
	}
	m.Buttons = make([]int32, buttonsLen)
	for i := 0; i < buttonsLen; i++ {
		m.Buttons[i] = int32(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}
	return nil
}
