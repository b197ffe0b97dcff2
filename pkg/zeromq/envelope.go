package zeromq

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	message "github.com/open-teleop/joynode/pkg/flatbuffers/joynode/message"
)

// EnvelopeVersion is written into every outbound TopicMessage
const EnvelopeVersion = 1

// BuildEnvelope wraps a serialized message payload in a TopicMessage flatbuffer
func BuildEnvelope(topic string, contentType message.ContentType, timestampNs int64, payload []byte) []byte {
	builder := flatbuffers.NewBuilder(len(payload) + 64)

	topicOffset := builder.CreateString(topic)
	payloadOffset := builder.CreateByteVector(payload)

	message.TopicMessageStart(builder)
	message.TopicMessageAddTopic(builder, topicOffset)
	message.TopicMessageAddContentType(builder, contentType)
	message.TopicMessageAddTimestampNs(builder, timestampNs)
	message.TopicMessageAddVersion(builder, EnvelopeVersion)
	message.TopicMessageAddPayload(builder, payloadOffset)
	builder.Finish(message.TopicMessageEnd(builder))

	return builder.FinishedBytes()
}

// ParseEnvelope reads a TopicMessage from raw bytes. Malformed buffers are
// reported as ErrInvalidEnvelope instead of panicking in the flatbuffers
// accessors.
func ParseEnvelope(data []byte) (env *message.TopicMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = fmt.Errorf("%w: %v", ErrInvalidEnvelope, r)
		}
	}()

	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidEnvelope, len(data))
	}

	env = message.GetRootAsTopicMessage(data, 0)
	if len(env.Topic()) == 0 {
		return nil, fmt.Errorf("%w: empty topic", ErrInvalidEnvelope)
	}
	return env, nil
}
