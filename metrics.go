package pie

// Metrics holds the per-frame draw statistics for a device. Counters
// accumulate across draw calls and are reset once per Present. They are
// owned by the device instance, not by the process.
type Metrics struct {
	// DrawCalls is the number of draw calls issued since the last
	// Present.
	DrawCalls uint64

	// TriCount is the number of triangles submitted since the last
	// Present, computed as vertexOrIndexCount/3 per draw, multiplied by
	// the instance count for instanced draws.
	TriCount uint64
}

// AddDraw records one draw call of count vertices or indices across
// instances instances. Backends call this from every draw entry point.
func (m *Metrics) AddDraw(count, instances uint32) {
	m.DrawCalls++
	m.TriCount += uint64(count/3) * uint64(instances)
}

// Reset zeroes the counters. Called by Present after the frame is
// queued.
func (m *Metrics) Reset() {
	m.DrawCalls = 0
	m.TriCount = 0
}
