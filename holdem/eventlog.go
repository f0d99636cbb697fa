package holdem

// EventLog keeps the most recent capacity lines, oldest first.
type EventLog struct {
	capacity int
	lines    []string
	total    int
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &EventLog{capacity: capacity, lines: make([]string, 0, capacity)}
}

func (l *EventLog) Append(line string) {
	l.total++
	if len(l.lines) == l.capacity {
		copy(l.lines, l.lines[1:])
		l.lines = l.lines[:len(l.lines)-1]
	}
	l.lines = append(l.lines, line)
}

// Lines returns a copy of the retained lines.
func (l *EventLog) Lines() []string {
	return append([]string(nil), l.lines...)
}

// Total counts every line ever appended, including evicted ones.
func (l *EventLog) Total() int { return l.total }
