package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldPingTrueBeforeFirstPing(t *testing.T) {
	l := NewLatencyTracker()
	assert.True(t, l.ShouldPing(0))
}

func TestShouldPingFalseWithinInterval(t *testing.T) {
	l := NewLatencyTracker()
	l.RecordPingSent(1000)
	assert.False(t, l.ShouldPing(1500))
}

func TestShouldPingTrueAfterInterval(t *testing.T) {
	l := NewLatencyTracker()
	l.RecordPingSent(1000)
	assert.True(t, l.ShouldPing(1000+pingInterval))
}

func TestRecordPongComputesRTT(t *testing.T) {
	l := NewLatencyTracker()
	l.RecordPingSent(1000)
	l.RecordPongReceived(1050)
	assert.EqualValues(t, 50, l.RollingAverageMs())
}

func TestRollingAverageAcrossMultipleSamples(t *testing.T) {
	l := NewLatencyTracker()
	l.RecordPingSent(0)
	l.RecordPongReceived(40)
	l.RecordPingSent(100)
	l.RecordPongReceived(160)

	assert.EqualValues(t, 50, l.RollingAverageMs()) // (40+60)/2
}

func TestStalePongIgnoredWithoutOutstandingPing(t *testing.T) {
	l := NewLatencyTracker()
	l.RecordPongReceived(500) // no Ping was ever sent
	assert.EqualValues(t, 0, l.RollingAverageMs())
}

func TestRollingAverageZeroBeforeAnySample(t *testing.T) {
	l := NewLatencyTracker()
	assert.EqualValues(t, 0, l.RollingAverageMs())
}
