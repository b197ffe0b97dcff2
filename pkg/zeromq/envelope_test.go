package zeromq

import (
	"bytes"
	"errors"
	"testing"

	message "github.com/open-teleop/joynode/pkg/flatbuffers/joynode/message"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef}
	data := BuildEnvelope("joy", message.ContentTypeROS2_CDR, 1234567890, payload)

	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}

	if string(env.Topic()) != "joy" {
		t.Errorf("Expected topic 'joy', got '%s'", env.Topic())
	}
	if env.ContentType() != message.ContentTypeROS2_CDR {
		t.Errorf("Expected content type ROS2_CDR, got %v", env.ContentType())
	}
	if env.TimestampNs() != 1234567890 {
		t.Errorf("Expected timestamp 1234567890, got %d", env.TimestampNs())
	}
	if env.Version() != EnvelopeVersion {
		t.Errorf("Expected version %d, got %d", EnvelopeVersion, env.Version())
	}
	if !bytes.Equal(env.PayloadBytes(), payload) {
		t.Errorf("Payload mismatch: got % x, want % x", env.PayloadBytes(), payload)
	}
}

func TestEnvelopeEmptyPayload(t *testing.T) {
	data := BuildEnvelope("joy", message.ContentTypeROS2_CDR, 0, nil)

	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.PayloadLength() != 0 {
		t.Errorf("Expected empty payload, got %d bytes", env.PayloadLength())
	}
}

func TestParseEnvelopeInvalid(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"short", []byte{0x01, 0x02}},
		{"garbage", bytes.Repeat([]byte{0xff}, 32)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEnvelope(tc.data)
			if err == nil {
				t.Fatalf("Expected error for %s input", tc.name)
			}
			if !errors.Is(err, ErrInvalidEnvelope) {
				t.Errorf("Expected ErrInvalidEnvelope, got: %v", err)
			}
		})
	}
}
