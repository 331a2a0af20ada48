package machine

// backlog keeps the most recent trace lines so that they can be logged
// after an error without formatting every line as it happens.
type backlog struct {
	entries [maxBacklog]logEntry
	n       int // total entries recorded since Reset
}

type logEntry struct {
	format string
	args   []any
}

const maxBacklog = 100

func (b *backlog) LazyPrintf(format string, args ...any) {
	b.entries[b.n%maxBacklog] = logEntry{format, args}
	b.n++
}

// Emit writes the retained entries, oldest first, to logf.
func (b *backlog) Emit(logf func(string, ...any)) {
	i := 0
	if b.n > maxBacklog {
		i = b.n - maxBacklog
	}
	for ; i < b.n; i++ {
		e := b.entries[i%maxBacklog]
		logf(e.format, e.args...)
	}
}

func (b *backlog) Reset() {
	b.entries = [maxBacklog]logEntry{}
	b.n = 0
}
