// Package rosmsg provides Go representations of the ROS 2 message types
// joynode consumes, with CDR serialization.
package rosmsg

// Message is implemented by all message types
type Message interface {
	// TypeName returns the full ROS 2 type name (e.g., "sensor_msgs/msg/Joy")
	TypeName() string

	// SerializeCDR serializes the message to CDR format
	SerializeCDR() ([]byte, error)

	// DeserializeCDR deserializes CDR data into the message
	DeserializeCDR(data []byte) error
}

// Time represents a ROS 2 time
type Time struct {
	Sec     int32
	Nanosec uint32
}
