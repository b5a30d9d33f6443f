package pipeline

import (
	"sync"
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

// MockWorkers is a recording test double for Workers.
type MockWorkers struct {
	mu              sync.Mutex
	pauseAll        int
	pauseReadDecode int
	resumeAll       int
	resumePaused    int
	disposed        bool
}

// NewMockWorkers creates a mock worker set for testing.
func NewMockWorkers() *MockWorkers {
	return &MockWorkers{}
}

func (m *MockWorkers) PauseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseAll++
}

func (m *MockWorkers) PauseReadDecode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseReadDecode++
}

func (m *MockWorkers) ResumeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeAll++
}

func (m *MockWorkers) ResumePaused() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumePaused++
}

func (m *MockWorkers) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
}

// Test helpers

func (m *MockWorkers) PauseAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseAll
}

func (m *MockWorkers) PauseReadDecodeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseReadDecode
}

func (m *MockWorkers) ResumeAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeAll
}

func (m *MockWorkers) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// Verify MockWorkers implements Workers at compile time.
var _ Workers = (*MockWorkers)(nil)

// MockRenderer is a recording test double for Renderer.
type MockRenderer struct {
	mu          sync.Mutex
	onPlay      int
	onPause     int
	onStop      int
	onClose     int
	invalidated int
	rendered    []*media.Block
}

// NewMockRenderer creates a mock renderer for testing.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

func (m *MockRenderer) OnPlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPlay++
}

func (m *MockRenderer) OnPause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPause++
}

func (m *MockRenderer) OnStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStop++
}

func (m *MockRenderer) OnClose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose++
}

func (m *MockRenderer) InvalidateCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
}

func (m *MockRenderer) Render(block *media.Block, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = append(m.rendered, block)
}

// Test helpers

func (m *MockRenderer) OnPlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onPlay
}

func (m *MockRenderer) OnPauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onPause
}

func (m *MockRenderer) OnStopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onStop
}

func (m *MockRenderer) InvalidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidated
}

func (m *MockRenderer) RenderedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rendered)
}

func (m *MockRenderer) LastRendered() *media.Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rendered) == 0 {
		return nil
	}
	return m.rendered[len(m.rendered)-1]
}

// Verify MockRenderer implements Renderer at compile time.
var _ Renderer = (*MockRenderer)(nil)
