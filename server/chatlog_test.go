package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedChatLog(dir string) *ChatLog {
	l := NewChatLog(dir, "2006-01-02 15:04:05")
	l.now = func() time.Time { return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC) }
	return l
}

func TestChatLogFormatsLines(t *testing.T) {
	dir := t.TempDir()
	l := fixedChatLog(dir)

	l.Event("alice joined the game")
	l.Chat("alice", "hello there")

	path, err := l.Save()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14_15-09-26.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[2025-03-14 15:09:26] * alice joined the game\n"+
			"[2025-03-14 15:09:26] alice: hello there\n",
		string(data))
}

func TestChatLogSaveEmptiesBuffer(t *testing.T) {
	l := fixedChatLog(t.TempDir())
	l.Event("something happened")
	require.Equal(t, 1, l.Len())

	path, err := l.Save()
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, 0, l.Len())

	// Nothing new buffered, so a second save writes nothing.
	path, err = l.Save()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestChatLogEmptySaveWritesNoFile(t *testing.T) {
	dir := t.TempDir()
	l := fixedChatLog(dir)

	path, err := l.Save()
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatLogContains(t *testing.T) {
	l := fixedChatLog(t.TempDir())
	l.Chat("bob", "anyone here?")

	assert.True(t, l.Contains("bob: anyone here?"))
	assert.False(t, l.Contains("alice"))
}

func TestChatLogCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	l := fixedChatLog(dir)
	l.Event("first line")

	path, err := l.Save()
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}
