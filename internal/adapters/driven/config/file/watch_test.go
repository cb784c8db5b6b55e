package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

func TestPromptName(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		want     string
		relevant bool
	}{
		{"write prompt", fsnotify.Event{Name: "/p/chat_system.txt", Op: fsnotify.Write}, "chat_system", true},
		{"create prompt", fsnotify.Event{Name: "/p/chat_system.txt", Op: fsnotify.Create}, "chat_system", true},
		{"remove prompt", fsnotify.Event{Name: "/p/chat_system.txt", Op: fsnotify.Remove}, "chat_system", true},
		{"rename prompt", fsnotify.Event{Name: "/p/chat_system.txt", Op: fsnotify.Rename}, "chat_system", true},
		{"chmod ignored", fsnotify.Event{Name: "/p/chat_system.txt", Op: fsnotify.Chmod}, "", false},
		{"readme ignored", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, "", false},
		{"hidden ignored", fsnotify.Event{Name: "/p/.chat_system.txt", Op: fsnotify.Write}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, relevant := promptName(tt.event)
			assert.Equal(t, tt.relevant, relevant)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptStore_Watch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	before, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, nil, func(name string) {
			select {
			case changed <- name:
			default:
			}
		})
	}()

	// The watcher registers asynchronously; keep writing until it reports.
	path := filepath.Join(dir, driven.PromptChatSystem+".txt")
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(path, []byte("Answer like a race engineer."), 0600))
		select {
		case name := <-changed:
			return name == driven.PromptChatSystem
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	after, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, "Answer like a race engineer.", after)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestPromptStore_Watch_InitFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	store, err := NewPromptStore(filepath.Join(file, "prompts"))
	require.NoError(t, err)

	assert.Error(t, store.Watch(context.Background(), nil, nil))
}
