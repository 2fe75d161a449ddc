package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainlist-rpcs/internal/domain/entity"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", t.TempDir()))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeEndpointFile(t *testing.T, urls ...string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("endpoints:\n")
	for _, u := range urls {
		fmt.Fprintf(&buf, "  - %q\n", u)
	}
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func newRPCServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"number":"0x2a"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_File(t *testing.T) {
	srv := newRPCServer(t)
	path := writeEndpointFile(t, srv.URL, "https://API_KEY.example")

	stdout, stderr, err := runCLI(t, "probe", "--file", path, "--no-color", "--timeout", "2s")
	require.NoError(t, err)

	var report entity.ProbeReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.All, 2)
	require.Len(t, report.Working, 1)
	assert.Equal(t, uint64(42), *report.Working[0].Height)
	assert.Equal(t, "https://API_KEY.example", report.NotWorking[0].Endpoint.String())
	assert.Contains(t, stderr, "1/2 working")
}

func TestProbe_FileNameLabelsSummary(t *testing.T) {
	srv := newRPCServer(t)
	path := filepath.Join(t.TempDir(), "devnet.yaml")
	content := fmt.Sprintf("name: local devnet\ntimeout: 2s\nendpoints:\n  - %q\n", srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, stderr, err := runCLI(t, "probe", "--file", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stderr, "local devnet: 1/1 working")
}

func TestProbe_WorkingOnly(t *testing.T) {
	srv := newRPCServer(t)
	path := writeEndpointFile(t, srv.URL, "https://API_KEY.example")

	stdout, _, err := runCLI(t, "probe", "-f", path, "--no-color", "--working-only")
	require.NoError(t, err)

	var working []entity.ProbeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &working))
	require.Len(t, working, 1)
	assert.Equal(t, srv.URL, working[0].Endpoint.String())
}

func TestProbe_FailIfNone(t *testing.T) {
	path := writeEndpointFile(t, "https://API_KEY.example")

	_, _, err := runCLI(t, "probe", "--file", path, "--no-color", "--fail-if-none")
	assert.ErrorIs(t, err, errNoWorkingRPCs)
}

func TestProbe_ArgumentErrors(t *testing.T) {
	_, _, err := runCLI(t, "probe")
	assert.Error(t, err)

	_, _, err = runCLI(t, "probe", "eth", "--file", "x.yaml")
	assert.Error(t, err)

	_, _, err = runCLI(t, "probe", "eth", "polygon")
	assert.Error(t, err)

	_, _, err = runCLI(t, "probe", "--file", "x.yaml", "--timeout", "-1s")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rpcprobe dev")
}
