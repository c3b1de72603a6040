package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rbx/logicore/internal/model"
)

const testConfig = `
app:
  name: logicore-test
rates:
  source: static
  directory: static
  cards:
    - mode: Express
      courier: Delhivery
      base_rate: 40
      additional_weight_rate: 20
      cod_rate: 30
      gst_percentage: 0.18
      free_weight_threshold: 0.5
      transit_days: 2
    - mode: Surface
      courier: Ecom
      base_rate: 30
      additional_weight_rate: 10
      cod_rate: 30
      gst_percentage: 0.18
      free_weight_threshold: 0.5
      transit_days: 5
store:
  backend: file
  path: %STORE%
  passphrase: cli-test
  iterations: 1000
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := strings.ReplaceAll(testConfig, "%STORE%", filepath.Join(dir, "store.json"))
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestZoneCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "zone", "--from", "110001", "--to", "110001")
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	if strings.TrimSpace(out) != "WITHIN_CITY" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, cfg, "zone", "--from", "12", "--to", "110001"); err == nil {
		t.Fatalf("malformed pincode should fail")
	}
}

func TestQuoteCommandJSON(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "quote", "--from", "110001", "--to", "400001", "--weight", "1.2", "--cod", "--json")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	var res model.QuoteResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(res.Rates) != 2 || res.Rates[0].Mode != "Surface" || res.RecommendedMode != "Surface" {
		t.Fatalf("unexpected rates: %+v", res.Rates)
	}
}

func TestQuoteCommandTable(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "quote", "--from", "110001", "--to", "400001", "--weight", "1", "--modes", "Express")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !strings.Contains(out, "MODE") || !strings.Contains(out, "Express") || strings.Contains(out, "Surface") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestStoreCommands(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := run(t, cfg, "store", "set", "api_token", "s3cr3t"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := run(t, cfg, "store", "get", "api_token")
	if err != nil || strings.TrimSpace(out) != "s3cr3t" {
		t.Fatalf("get: %q %v", out, err)
	}

	if _, err := run(t, cfg, "store", "rm", "api_token"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := run(t, cfg, "store", "get", "api_token"); err == nil {
		t.Fatalf("removed key should not be found")
	}

	_, _ = run(t, cfg, "store", "set", "a", "1")
	if _, err := run(t, cfg, "store", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := run(t, cfg, "store", "get", "a"); err == nil {
		t.Fatalf("clear should remove everything")
	}
}

func TestRateCardsList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "ratecards", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"mode": "Express"`) || !strings.Contains(out, `"mode": "Surface"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
