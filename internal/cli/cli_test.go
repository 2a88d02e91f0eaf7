package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/gsack/internal/logger"
)

func listingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		plz := r.URL.Query().Get("plz")
		fmt.Fprintf(w, `<table><tbody>
<tr><td class="cols2"><a href="/detail?uid=%[1]s1">Hauptstraße</a></td><td class="cols4">1-9</td><td class="cols5">1</td></tr>
<tr><td class="cols2"><a href="/detail?uid=%[1]s2">Nebenweg</a></td><td class="cols4">alle</td><td class="cols5">2</td></tr>
</tbody></table>`, plz)
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="table"><p>Abfuhrtermine</p></div>
<table class="listing"><tr><td>07.01.2025</td><td>21.01.2025</td><td>04.02.2025</td><td>18.02.2025</td></tr></table>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// runCmd executes the root command with a config pointing at server and returns
// stdout, stderr and the output directory.
func runCmd(t *testing.T, server *httptest.Server, args ...string) (string, string, string, error) {
	t.Helper()
	return runCmdWithPostcodes(t, server, `["70173"]`, args...)
}

// runCmdWithPostcodes is runCmd with the listing postcodes of the config file given as
// a YAML flow sequence.
func runCmdWithPostcodes(t *testing.T, server *httptest.Server, postcodes string, args ...string) (string, string, string, error) {
	t.Helper()
	for _, key := range []string{"GSACK_OUTPUT_DIR", "GSACK_SLEEP", "GSACK_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })

	outDir := filepath.Join(t.TempDir(), "out")
	cfgPath := filepath.Join(t.TempDir(), "gsack.yaml")
	cfg := fmt.Sprintf(`output_dir: %s
sleep: 0s
listing:
  search_url: %s/search?plz={postcode}
  base_url: %s/
  postcodes: %s
`, outDir, server.URL, server.URL, postcodes)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), outDir, err
}

func TestRootCmd_WritesCalendars(t *testing.T) {
	server := listingServer(t)

	stdout, stderr, outDir, err := runCmd(t, server, "--postcode", "70173", "--postcode", "70174")
	require.NoError(t, err, stderr)

	require.Contains(t, stdout, "Wrote 4 calendars from listing source")

	calendars, _ := filepath.Glob(filepath.Join(outDir, "*.ics"))
	require.Len(t, calendars, 4)
	catalogs, _ := filepath.Glob(filepath.Join(outDir, "*.json"))
	require.Len(t, catalogs, 2)

	// Logs are JSON lines on stderr.
	first := strings.SplitN(stderr, "\n", 2)[0]
	var entry logger.LogEntry
	require.NoError(t, json.Unmarshal([]byte(first), &entry))
	require.Equal(t, "starting run", entry.Message)
}

func TestRootCmd_FlagsRepairConfig(t *testing.T) {
	server := listingServer(t)

	// The file alone is invalid, the --postcode flag makes it usable.
	stdout, stderr, _, err := runCmdWithPostcodes(t, server, "[]", "--postcode", "70174")
	require.NoError(t, err, stderr)
	require.Contains(t, stdout, "Wrote 2 calendars from listing source")

	_, _, _, err = runCmdWithPostcodes(t, server, "[]")
	require.Error(t, err)
	require.Contains(t, err.Error(), "listing.postcodes must not be empty")
}

func TestRootCmd_DryRun(t *testing.T) {
	server := listingServer(t)

	stdout, stderr, outDir, err := runCmd(t, server, "--dry-run", "--format", "json")
	require.NoError(t, err, stderr)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.True(t, result.DryRun)
	require.Equal(t, 2, result.Summary.Records)
	require.Equal(t, 2, result.Summary.Emitted)

	files, _ := filepath.Glob(filepath.Join(outDir, "*"))
	require.Empty(t, files, "dry run must not write files")
}

func TestRootCmd_Verbose(t *testing.T) {
	server := listingServer(t)

	stdout, stderr, _, err := runCmd(t, server, "--verbose")
	require.NoError(t, err, stderr)

	require.Contains(t, stdout, "Counters:")
	require.Contains(t, stdout, "records.emitted")
	require.Contains(t, stderr, `"level":"DEBUG"`)
}

func TestRootCmd_InvalidInput(t *testing.T) {
	server := listingServer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad format", []string{"--format", "xml"}, "invalid format"},
		{"bad source", []string{"--source", "ftp"}, `unknown source "ftp"`},
		{"negative sleep", []string{"--sleep", "-1s"}, "sleep must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := runCmd(t, server, tt.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
