package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

const payload910 = `{
  "load": 910,
  "fuels": {"gas(euro/MWh)": 13.4, "kerosine(euro/MWh)": 50.8, "co2(euro/ton)": 20, "wind(%)": 60},
  "powerplants": [
    {"name": "gasfiredbig1", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "gasfiredbig2", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "gasfiredsomewhatsmaller", "type": "gasfired", "efficiency": 0.37, "pmin": 40, "pmax": 210},
    {"name": "tj1", "type": "turbojet", "efficiency": 0.3, "pmin": 0, "pmax": 16},
    {"name": "windpark1", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 150},
    {"name": "windpark2", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 36}
  ]
}`

func write(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(bytes.NewBufferString(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestPlanCommand_JSON(t *testing.T) {
	out, _, err := runCmd(t, "", "plan", "-f", write(t, "payload.json", payload910))
	require.NoError(t, err)

	var plan model.ProductionPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, model.ProductionPlan{
		{Name: "gasfiredbig1", P: 460},
		{Name: "gasfiredbig2", P: 338.4},
		{Name: "gasfiredsomewhatsmaller", P: 0},
		{Name: "tj1", P: 0},
		{Name: "windpark1", P: 90},
		{Name: "windpark2", P: 21.6},
	}, plan)
}

func TestPlanCommand_YAMLAndStdin(t *testing.T) {
	yamlPayload := `load: 50
fuels: {gas: 10, kerosine: 50, co2: 0, wind: 0}
powerplants:
  - {name: g, type: gasfired, efficiency: 0.5, pmin: 0, pmax: 100}
`
	out, _, err := runCmd(t, "", "plan", "-f", write(t, "payload.yaml", yamlPayload))
	require.NoError(t, err)
	assert.Contains(t, out, `"p": 50`)

	out, _, err = runCmd(t, payload910, "plan", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "gasfiredbig1")
}

func TestPlanCommand_Infeasible(t *testing.T) {
	infeasible := `{"load": 30, "fuels": {}, "powerplants": [{"name": "g", "type": "gasfired", "efficiency": 0.5, "pmin": 50, "pmax": 100}]}`
	path := write(t, "payload.json", infeasible)

	_, _, err := runCmd(t, "", "plan", "-f", path)
	assert.ErrorIs(t, err, dispatch.ErrInfeasible)

	out, stderr, err := runCmd(t, "", "plan", "-f", path, "--best-effort")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning")
	assert.Contains(t, out, `"name": "g"`)
}

func TestPlanCommand_CSV(t *testing.T) {
	out, _, err := runCmd(t, "", "plan", "-o", "csv", "-f", write(t, "payload.json", payload910))
	require.NoError(t, err)
	assert.Contains(t, out, "name,p\ngasfiredbig1,460.0\ngasfiredbig2,338.4\n")

	_, _, err = runCmd(t, "", "plan", "-o", "xml", "-f", write(t, "payload.json", payload910))
	assert.ErrorContains(t, err, "unknown output format")
}

func TestPlanCommand_Errors(t *testing.T) {
	_, _, err := runCmd(t, "", "plan")
	assert.Error(t, err, "file flag is required")

	_, _, err = runCmd(t, "", "plan", "-f", write(t, "bad.json", "{"))
	assert.ErrorContains(t, err, "decode payload")

	_, _, err = runCmd(t, "", "plan", "-c", "missing.yaml", "-f", write(t, "p.json", payload910))
	assert.ErrorContains(t, err, "load config")
}

func TestPlanCommand_UsesConfig(t *testing.T) {
	cfg := write(t, "config.yaml", "dispatch:\n  strategy: random\n")
	_, _, err := runCmd(t, "", "plan", "-c", cfg, "-f", write(t, "p.json", payload910))
	assert.ErrorContains(t, err, "dispatch")
}
