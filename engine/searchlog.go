package engine

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// searchLog is the optional append-only log behind the "Use Search Log"
// option. Every engine process stamps its entries with a session id so logs
// from concurrent matches can be untangled afterwards. A nil receiver is a
// no-op, which keeps the call sites free of guards.
type searchLog struct {
	f       *os.File
	path    string
	session string
}

// reopen returns a log writing to path, reusing the receiver when it already
// points there.
func (l *searchLog) reopen(path string) *searchLog {
	if l != nil && l.path == path {
		return l
	}
	l.close()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Println("info string cannot open search log:", err)
		return nil
	}
	nl := &searchLog{f: f, path: path, session: uuid.NewString()}
	fmt.Fprintf(f, "session %s\n", nl.session)
	return nl
}

func (l *searchLog) printf(format string, args ...any) {
	if l == nil || l.f == nil {
		return
	}
	fmt.Fprintf(l.f, format, args...)
}

func (l *searchLog) println(line string) {
	if l == nil || l.f == nil {
		return
	}
	fmt.Fprintln(l.f, line)
}

func (l *searchLog) close() {
	if l == nil || l.f == nil {
		return
	}
	l.f.Close()
	l.f = nil
}
