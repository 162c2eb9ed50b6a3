// ABOUTME: In-memory EncoderWorker/DecoderWorker test doubles
// ABOUTME: Replay a fixed result queue so pipeline tests hit exact scripted scenarios
package codec

// MockEncoderWorker replays a fixed queue of EncodeResults, one per
// Submit call, letting pipeline tests exercise exact scenarios (the
// spec's S1-S6 walkthroughs prescribe exact codec responses) without
// depending on real Opus/resampler arithmetic. If a queued result's
// RequestID is zero, Submit fills in the request's own id; a non-zero
// RequestID is left as programmed, which is how tests construct the
// ResponseOutOfOrder scenario.
type MockEncoderWorker struct {
	Resampling bool
	Queue      []EncodeResult

	resultCh  chan EncodeResult
	nextIndex int
}

func NewMockEncoderWorker(resampling bool, queue []EncodeResult) *MockEncoderWorker {
	return &MockEncoderWorker{
		Resampling: resampling,
		Queue:      queue,
		resultCh:   make(chan EncodeResult, len(queue)+1),
	}
}

func (m *MockEncoderWorker) Setup(EncoderConfig) (bool, error) { return m.Resampling, nil }

func (m *MockEncoderWorker) Submit(requestID uint32, _ []float32) {
	res := m.Queue[m.nextIndex]
	m.nextIndex++
	if res.RequestID == 0 {
		res.RequestID = requestID
	}
	m.resultCh <- res
}

func (m *MockEncoderWorker) Results() <-chan EncodeResult { return m.resultCh }
func (m *MockEncoderWorker) Reset()                       { m.nextIndex = 0 }
func (m *MockEncoderWorker) Close()                       {}

// MockDecoderWorker is MockEncoderWorker's counterpart for decode
// scenarios.
type MockDecoderWorker struct {
	Queue []DecodeResult

	resultCh  chan DecodeResult
	nextIndex int
}

func NewMockDecoderWorker(queue []DecodeResult) *MockDecoderWorker {
	return &MockDecoderWorker{
		Queue:    queue,
		resultCh: make(chan DecodeResult, len(queue)+1),
	}
}

func (m *MockDecoderWorker) Setup(DecoderConfig) error { return nil }

func (m *MockDecoderWorker) Submit(requestID uint32, _ []byte) {
	res := m.Queue[m.nextIndex]
	m.nextIndex++
	if res.RequestID == 0 {
		res.RequestID = requestID
	}
	m.resultCh <- res
}

func (m *MockDecoderWorker) Results() <-chan DecodeResult { return m.resultCh }
func (m *MockDecoderWorker) Reset()                       { m.nextIndex = 0 }
func (m *MockDecoderWorker) Close()                       {}
