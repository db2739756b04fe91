package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantisuite/internal/calc"
	"quantisuite/internal/convert"
	"quantisuite/internal/storage"
)

// writeConfig creates a config with file history in a temp dir plus any
// extra YAML.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("history:\n  backend: file\n  path: %s\n%s",
		filepath.Join(dir, "history.json"), extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEval(t *testing.T) {
	cfg := writeConfig(t, "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "2+3*4"}, "14\n"},
		{[]string{"eval", "2", "+", "3"}, "5\n"},
		{[]string{"eval", "--deg", "sin(30)"}, "0.5\n"},
		{[]string{"eval", "log(8,2)+5!"}, "123\n"},
		{[]string{"eval", "--simple", "12/4+1"}, "4\n"},
		{[]string{"eval", "--show-rewrite", "2PI"}, "RAD 2*@pi\n6.2831853071796\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, cfg, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "eval", "1/0")
	assert.ErrorIs(t, err, calc.ErrNonFinite)

	_, err = run(t, cfg, "eval", "--", "-3!")
	assert.ErrorIs(t, err, calc.ErrFactorialDomain)

	_, err = run(t, cfg, "eval", "--deg", "--rad", "1")
	assert.Error(t, err)

	_, err = run(t, cfg, "eval")
	assert.Error(t, err)
}

func TestEvalUsesConfiguredAngleMode(t *testing.T) {
	cfg := writeConfig(t, "angle_mode: DEG\n")

	out, err := run(t, cfg, "eval", "asin(1)")
	require.NoError(t, err)
	assert.Equal(t, "90\n", out)

	out, err = run(t, cfg, "eval", "--rad", "cos(0)")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestRewrite(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "rewrite", "--deg", "2sin(30)")
	require.NoError(t, err)
	assert.Equal(t, "2*@sin(@rad(30))\n", out)

	out, err = run(t, cfg, "rewrite", "--stages", "5!")
	require.NoError(t, err)
	assert.Contains(t, out, "factorial")
	assert.Contains(t, out, "@fact(5)")
	assert.NotContains(t, out, "power", "unchanged stages are skipped")
}

func TestConvertAndInterest(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "convert", "length", "mi", "km", "1")
	require.NoError(t, err)
	assert.Equal(t, "1.60934 km\n", out)

	out, err = run(t, cfg, "convert", "temperature", "Fahrenheit", "Celsius", "212")
	require.NoError(t, err)
	assert.Equal(t, "100 Celsius\n", out)

	_, err = run(t, cfg, "convert", "length", "parsec", "km", "1")
	assert.ErrorIs(t, err, convert.ErrUnknownUnit)

	_, err = run(t, cfg, "convert", "length", "mi", "km", "far")
	assert.Error(t, err)

	out, err = run(t, cfg, "convert", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "temperature")
	assert.Contains(t, out, "mi")

	out, err = run(t, cfg, "interest", "1000", "5", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Total interest: 150.00")
	assert.Contains(t, out, "1150.00")
}

func TestBits(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "bits", "12", "AND", "10")
	require.NoError(t, err)
	assert.Equal(t, "BIN 1000\nOCT 10\nDEC 8\nHEX 8\n", out)

	out, err = run(t, cfg, "bits", "--base", "hex", "FF", "<<", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "DEC 4080\n")
	assert.Contains(t, out, "HEX FF0\n")

	out, err = run(t, cfg, "bits", "5", "not")
	require.NoError(t, err)
	assert.Contains(t, out, "DEC -6\n")

	_, err = run(t, cfg, "bits", "5", "NOT", "3")
	assert.Error(t, err)
	_, err = run(t, cfg, "bits", "5", "AND")
	assert.Error(t, err)
	_, err = run(t, cfg, "bits", "--base", "bin", "12", "OR", "1")
	assert.Error(t, err)
}

func TestPlot(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "plot", "y = x", "--width", "21", "--height", "11")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 11)
	assert.Contains(t, out, "─")
	assert.Contains(t, out, "│")
	assert.Contains(t, out, "•")

	out, err = run(t, cfg, "plot", "--table", "--from", "0", "--to", "2", "--step", "1", "y = 2x+1")
	require.NoError(t, err)
	assert.Equal(t, "    0.00  1\n    1.00  3\n    2.00  5\n", out)

	_, err = run(t, cfg, "plot", "x+1")
	assert.Error(t, err)
}

func TestHistoryCommands(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "No matching history\n", out)

	_, err = run(t, cfg, "eval", "2+2")
	require.NoError(t, err)
	_, err = run(t, cfg, "eval", "--simple", "3*3")
	require.NoError(t, err)
	_, err = run(t, cfg, "eval", "--no-history", "4*4")
	require.NoError(t, err)
	_, err = run(t, cfg, "bits", "1", "OR", "2")
	require.NoError(t, err)

	out, err = run(t, cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2+2 = 4")
	assert.Contains(t, out, "3*3 = 9")
	assert.Contains(t, out, "1 OR 2 = 3")
	assert.NotContains(t, out, "4*4")
	assert.Contains(t, out, "3 total, 3 today")
	assert.Contains(t, out, "by type: programmer 1, scientific 1, simple 1\n")

	out, err = run(t, cfg, "history", "list", "--filter", "simple")
	require.NoError(t, err)
	assert.Contains(t, out, "3*3")
	assert.NotContains(t, out, "2+2")

	out, err = run(t, cfg, "history", "list", "-s", "2+")
	require.NoError(t, err)
	assert.Contains(t, out, "2+2")
	assert.NotContains(t, out, "3*3")

	_, err = run(t, cfg, "history", "list", "--filter", "yesterday")
	assert.Error(t, err)

	csvPath := filepath.Join(t.TempDir(), "history.csv")
	out, err = run(t, cfg, "history", "export", csvPath)
	require.NoError(t, err)
	assert.Equal(t, "Exported 3 entries to "+csvPath+"\n", out)
	entries, err := storage.ImportCSV(csvPath)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	out, err = run(t, cfg, "history", "clear")
	require.NoError(t, err)
	assert.Equal(t, "History cleared\n", out)

	_, err = run(t, cfg, "history", "export", csvPath)
	assert.Error(t, err)

	out, err = run(t, cfg, "history", "import", csvPath)
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 entries\n", out)
}

func TestHistorySQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("history:\n  backend: sqlite\n  path: %s\n", filepath.Join(dir, "history.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := run(t, path, "eval", "6*7")
	require.NoError(t, err)
	out, err := run(t, path, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "6*7 = 42")
	assert.Contains(t, out, "by type: scientific 1\n")
	assert.FileExists(t, filepath.Join(dir, "history.db"))
}

func TestCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/k/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":"success","conversion_rates":{"USD":1,"EUR":0.5}}`)
	}))
	defer srv.Close()
	cfg := writeConfig(t, fmt.Sprintf("currency:\n  base_url: %s\n  api_key: k\n", srv.URL))

	out, err := run(t, cfg, "currency", "2.5", "usd", "eur")
	require.NoError(t, err)
	assert.Equal(t, "2.5 USD = 1.2500 EUR\n", out)

	_, err = run(t, cfg, "currency", "lots", "usd", "eur")
	assert.Error(t, err)
}

func TestWeather(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Lagos" {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"name":"Lagos","country":"Nigeria","latitude":6.45,"longitude":3.39}]}`)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current_weather":{"temperature":29.5,"windspeed":12,"weathercode":1,"time":"2026-03-14T15:00"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	cfg := writeConfig(t, fmt.Sprintf("weather:\n  geocoding_url: %s/geo\n  forecast_url: %s/forecast\n", srv.URL, srv.URL))

	out, err := run(t, cfg, "weather", "Lagos", "NG")
	require.NoError(t, err)
	assert.Equal(t, "Lagos, Nigeria\nTemp: 29.5°C\nWind: 12 km/h\nTime: 2026-03-14T15:00\n", out)

	_, err = run(t, cfg, "weather", "Atlantis")
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	cfg := writeConfig(t, "angle_mode: GRAD\n")
	_, err := run(t, cfg, "eval", "1")
	assert.Error(t, err)
}
