package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChatLog buffers the room's activity lines in memory until they are flushed
// to a timestamped file. Chat, joins, leaves, host changes, map requests and
// kicks all land here.
type ChatLog struct {
	mu     sync.Mutex
	lines  []string
	dir    string
	format string
	now    func() time.Time
}

func NewChatLog(dir, format string) *ChatLog {
	return &ChatLog{
		dir:    dir,
		format: format,
		now:    time.Now,
	}
}

// Event records a server-side event line, marked with a leading asterisk the
// way the game's logs always have.
func (l *ChatLog) Event(text string) {
	l.append("* " + text)
}

// Chat records one player chat line.
func (l *ChatLog) Chat(name, message string) {
	l.append(name + ": " + message)
}

func (l *ChatLog) append(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, "["+l.now().Format(l.format)+"] "+text)
}

// Len reports the number of buffered lines.
func (l *ChatLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Contains reports whether any buffered line contains text. Console and
// tests use it; the hot path never does.
func (l *ChatLog) Contains(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, text) {
			return true
		}
	}
	return false
}

// Save writes the buffered lines to a timestamped file under the log
// directory and empties the buffer. An empty buffer writes nothing and
// returns an empty path.
func (l *ChatLog) Save() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.lines) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("chat log dir: %w", err)
	}

	name := filenameSafe(l.now().Format(l.format)) + ".txt"
	path := filepath.Join(l.dir, name)
	data := strings.Join(l.lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", fmt.Errorf("write chat log: %w", err)
	}

	l.lines = nil
	return path, nil
}

// filenameSafe rewrites the characters a timestamp format tends to produce
// that filesystems refuse.
func filenameSafe(s string) string {
	r := strings.NewReplacer("/", "-", ":", "-", " ", "_")
	return r.Replace(s)
}
