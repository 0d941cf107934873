package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// AssertPluginLoaded checks the log output for the load message of the
// plugin instance called name.
func AssertPluginLoaded(t *testing.T, logs, name string) {
	t.Helper()

	require.True(t,
		strings.Contains(logs, "Successfully loaded plugin.") && strings.Contains(logs, "name="+name),
		"expected log output for plugin '%s' was not found in logs", name,
	)
}
