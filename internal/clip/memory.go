package clip

import "sync"

// Memory is an in-memory Clipboard. It backs headless environments where no
// display server is available and doubles as the test implementation: writes
// bump the revision exactly like a real clipboard.
type Memory struct {
	mu   sync.Mutex
	rev  uint64
	text []byte
	img  []byte
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rev
}

func (m *Memory) Read(f Format) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch f {
	case FmtText:
		return m.text
	case FmtImage:
		return m.img
	}
	return nil
}

// Write replaces the clipboard content. Writing text clears any image and
// vice versa, mirroring how real clipboards replace all representations.
func (m *Memory) Write(f Format, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch f {
	case FmtText:
		m.text = data
		m.img = nil
	case FmtImage:
		m.img = data
		m.text = nil
	}
	m.rev++
}

func (m *Memory) Close() {}
