// Package testutil holds the harness the application-level tests share.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/lidarcore/internal/app"
	"github.com/specialistvlad/lidarcore/internal/hcl_adapter"
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

// WriteFiles writes files, keyed by relative path, into a fresh temporary
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an application test run.
type HarnessResult struct {
	LogOutput string
	Report    *app.Report
	Err       error
	App       *app.App
}

// RunApp loads files as the run configuration, runs the pipeline with debug
// logging and closes the app. Startup errors are returned in Err with a nil
// App. Set LIDARCORE_TEST_LOGS=true to print the captured logs.
func RunApp(t *testing.T, files map[string]string, modules ...app.Module) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	logBuffer := &SafeBuffer{}
	defer func() {
		if os.Getenv("LIDARCORE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	}()

	ctx := context.Background()
	appConfig := &app.Config{RunPaths: []string{dir}, LogLevel: "debug", LogFormat: "text"}
	testApp, err := app.NewApp(ctx, logBuffer, appConfig, hcl_adapter.NewLoader(), modules...)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	report, runErr := testApp.Run(ctx)
	require.NoError(t, testApp.Close(ctx))

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Report:    report,
		Err:       runErr,
		App:       testApp,
	}
}
