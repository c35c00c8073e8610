package surface

// Cell is one position of the in-memory buffer.
type Cell struct {
	Glyph rune
	Color ColorID
}

// DrawCall records a single Draw request that landed at least partly in bounds.
type DrawCall struct {
	Row, Col int
	Text     string
	Color    ColorID
}

// Memory is an in-memory Surface. It keeps the composed cells, the draw calls
// issued since the last Clear and, while recording, a copy of those calls for
// every Show.
type Memory struct {
	rows, cols int
	cells      []Cell

	pending   []DrawCall
	frames    [][]DrawCall
	recording bool
	shows     int
	clears    int

	keys          []Key
	cursorVisible bool
	restores      int
	closed        bool
}

func NewMemory(rows, cols int) *Memory {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	m := &Memory{
		rows:          rows,
		cols:          cols,
		cells:         make([]Cell, rows*cols),
		recording:     true,
		cursorVisible: true,
	}
	m.Clear()
	m.clears = 0
	return m
}

// SetRecording controls whether Show keeps a copy of each frame's draw calls.
// Headless runs over many frames turn it off.
func (m *Memory) SetRecording(on bool) { m.recording = on }

// QueueKeys scripts keys returned by subsequent PollKey calls, in order.
func (m *Memory) QueueKeys(keys ...Key) { m.keys = append(m.keys, keys...) }

func (m *Memory) Size() (int, int) { return m.rows, m.cols }

func (m *Memory) SetCursorVisible(visible bool) { m.cursorVisible = visible }

func (m *Memory) Clear() {
	for i := range m.cells {
		m.cells[i] = Cell{Glyph: ' '}
	}
	m.pending = m.pending[:0]
	m.clears++
}

func (m *Memory) Draw(row, col int, text string, color ColorID) error {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return ErrOutOfBounds
	}
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var err error
	if col+len(runes) > m.cols {
		runes = runes[:m.cols-col]
		err = ErrOutOfBounds
	}
	base := row * m.cols
	for i, r := range runes {
		m.cells[base+col+i] = Cell{Glyph: r, Color: color}
	}
	m.pending = append(m.pending, DrawCall{Row: row, Col: col, Text: string(runes), Color: color})
	return err
}

func (m *Memory) Show() error {
	if m.closed {
		return ErrClosed
	}
	m.shows++
	if m.recording {
		frame := make([]DrawCall, len(m.pending))
		copy(frame, m.pending)
		m.frames = append(m.frames, frame)
	}
	return nil
}

func (m *Memory) PollKey() Key {
	if len(m.keys) == 0 {
		return KeyNone
	}
	k := m.keys[0]
	m.keys = m.keys[1:]
	return k
}

func (m *Memory) Restore() {
	m.restores++
	m.closed = true
	m.cursorVisible = true
}

// Cell returns the composed cell at row, col. Out-of-range positions read blank.
func (m *Memory) Cell(row, col int) Cell {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Cell{Glyph: ' '}
	}
	return m.cells[row*m.cols+col]
}

// Pending returns the draw calls issued since the last Clear.
func (m *Memory) Pending() []DrawCall { return m.pending }

// Frames returns the recorded draw calls of every Show, oldest first.
func (m *Memory) Frames() [][]DrawCall { return m.frames }

func (m *Memory) Shows() int          { return m.shows }
func (m *Memory) Clears() int         { return m.clears }
func (m *Memory) Restores() int       { return m.restores }
func (m *Memory) CursorVisible() bool { return m.cursorVisible }
