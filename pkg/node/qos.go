package node

import (
	"fmt"

	"github.com/open-teleop/joynode/pkg/config"
)

// QosReliability controls message delivery guarantees
type QosReliability int32

const (
	// ReliabilityReliable keeps queued messages until the executor drains them;
	// new messages are dropped when the queue is full (default)
	ReliabilityReliable QosReliability = 0
	// ReliabilityBestEffort drops the oldest queued message when the queue is full
	ReliabilityBestEffort QosReliability = 1
)

// QosHistory controls how many messages are kept
type QosHistory int32

const (
	// HistoryKeepLast keeps only the last Depth messages (default)
	HistoryKeepLast QosHistory = 0
	// HistoryKeepAll keeps all messages (limited by an internal cap)
	HistoryKeepAll QosHistory = 1
)

// keepAllDepth bounds HistoryKeepAll queues so a stalled callback cannot
// grow memory without limit.
const keepAllDepth = 1024

// QosProfile contains the QoS settings for a subscription
type QosProfile struct {
	Reliability QosReliability
	History     QosHistory
	Depth       int
}

// QosDefault returns the default QoS profile (Reliable, KeepLast(10))
func QosDefault() QosProfile {
	return QosProfile{
		Reliability: ReliabilityReliable,
		History:     HistoryKeepLast,
		Depth:       10,
	}
}

// QosSensorData returns QoS suitable for sensor data (BestEffort, KeepLast(5))
func QosSensorData() QosProfile {
	qos := QosDefault()
	qos.Reliability = ReliabilityBestEffort
	qos.Depth = 5
	return qos
}

// QosFromConfig resolves a named profile from a subscription config entry.
// A non-zero depth overrides the profile's history depth.
func QosFromConfig(sub config.SubscriptionConfig) (QosProfile, error) {
	var qos QosProfile
	switch sub.Profile {
	case config.ProfileDefault, "":
		qos = QosDefault()
	case config.ProfileSensorData:
		qos = QosSensorData()
	default:
		return QosProfile{}, fmt.Errorf("unknown qos profile '%s'", sub.Profile)
	}
	if sub.Depth > 0 {
		qos.Depth = sub.Depth
	}
	return qos, nil
}

// queueDepth returns the effective queue capacity for this profile
func (q QosProfile) queueDepth() int {
	if q.History == HistoryKeepAll {
		return keepAllDepth
	}
	if q.Depth <= 0 {
		return 1
	}
	return q.Depth
}
