package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI answers every chat completion with a fixed text reply.
func fakeOpenAI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Chisel after harvest."},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	for _, name := range []string{"INTILLA_AI_BASE_URL", "OPENAI_BASE_URL", "INTILLA_AI_PROVIDER", "INTILLA_DATABASE_PATH"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	dataDir, err := filepath.Abs("../../data")
	require.NoError(t, err)

	cfg := fmt.Sprintf(`logger:
  level: error
ai:
  provider: openai
  api_key: test-key
  base_url: %q
  model: gpt-test
farms:
  data_dir: %q
database:
  path: %q
`, baseURL, dataDir, filepath.Join(dir, "exchanges.db"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.Execute()
	return out.String(), err
}

func TestFarmsCommand(t *testing.T) {
	out, err := run(t, "farms", "--config", writeConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)
	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "$803.00 total")

	out, err = run(t, "farms", "--json", "--config", writeConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["))
	assert.Contains(t, out, `"totalCost": 803`)
}

func TestAskThenExchanges(t *testing.T) {
	ts, hits := fakeOpenAI(t)
	cfgPath := writeConfig(t, ts.URL)

	out, err := run(t, "ask", "--config", cfgPath, "--farm", "1", "--text", "When should I till?", "--mode", "text")
	require.NoError(t, err)
	assert.Equal(t, "Chisel after harvest.\n", out)
	assert.EqualValues(t, 1, hits.Load())

	out, err = run(t, "exchanges", "--config", cfgPath, "--limit", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "REQUEST")
	assert.Contains(t, lines[1], "cli")
	assert.Contains(t, lines[1], "ok")
}

func TestAskRejectsBadInput(t *testing.T) {
	ts, hits := fakeOpenAI(t)
	cfgPath := writeConfig(t, ts.URL)

	_, err := run(t, "ask", "--config", cfgPath, "--farm", "1")
	require.Error(t, err, "no text and no image")

	_, err = run(t, "ask", "--config", cfgPath, "--text", "hi")
	require.Error(t, err, "--farm is required")

	_, err = run(t, "ask", "--config", cfgPath, "--farm", "1", "--image", filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)

	assert.Zero(t, hits.Load())
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := run(t, "farms", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
