package simulate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/strategy"
)

const validScenario = `
task:
  query:
    origin: CAI
    destination: JED
    date: 2026-03-01
rounds: 5
seed: 42
strategies:
  - name: amadeus
    cost_class: high
    reliability: 0.9
    expected_latency: 800ms
    behavior:
      base_price: 340
      latency: 5ms
  - name: kiwi
    task_types: [price_check]
    behavior:
      base_price: 350
      abstain_rate: 0.2
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, pricing.TaskTypePriceCheck, sc.Task.Type)
	assert.Equal(t, 5, sc.Rounds)
	assert.Equal(t, uint64(42), sc.Seed)
	assert.Equal(t, 1, sc.Task.Query.Passengers)
	assert.Equal(t, "CAI", sc.Task.Query.Origin)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), sc.Task.Query.Date)

	require.Len(t, sc.Strategies, 2)
	meta := sc.Strategies[0].Metadata()
	assert.Equal(t, strategy.CostHigh, meta.CostClass)
	assert.Equal(t, 0.9, meta.Reliability)
	assert.Equal(t, 800*time.Millisecond, meta.ExpectedLatency)
	assert.Equal(t, 5*time.Millisecond, sc.Strategies[0].Behavior.Latency)
	assert.Equal(t, []string{"price_check"}, sc.Strategies[1].TaskTypes)
}

func TestParseScenario_Defaults(t *testing.T) {
	sc, err := ParseScenario([]byte("strategies:\n  - name: a\n    behavior:\n      base_price: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRounds, sc.Rounds)
	assert.Equal(t, pricing.TaskTypePriceCheck, sc.Task.Type)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed",
			yaml:    "strategies: [",
			wantErr: "failed to parse scenario",
		},
		{
			name:    "no strategies",
			yaml:    "rounds: 3\n",
			wantErr: "strategies",
		},
		{
			name:    "missing name",
			yaml:    "strategies:\n  - behavior:\n      base_price: 1\n",
			wantErr: "name",
		},
		{
			name:    "missing price",
			yaml:    "strategies:\n  - name: a\n",
			wantErr: "base_price",
		},
		{
			name:    "bad cost class",
			yaml:    "strategies:\n  - name: a\n    cost_class: free\n    behavior:\n      base_price: 1\n",
			wantErr: "cost_class",
		},
		{
			name:    "reliability above one",
			yaml:    "strategies:\n  - name: a\n    reliability: 1.5\n    behavior:\n      base_price: 1\n",
			wantErr: "reliability",
		},
		{
			name:    "duplicate names",
			yaml:    "strategies:\n  - name: a\n    behavior:\n      base_price: 1\n  - name: a\n    behavior:\n      base_price: 2\n",
			wantErr: "duplicate strategy",
		},
		{
			name:    "rates exceed one",
			yaml:    "strategies:\n  - name: a\n    behavior:\n      base_price: 1\n      failure_rate: 0.7\n      abstain_rate: 0.5\n",
			wantErr: "exceeds 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Strategies, 2)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Example(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "price_check.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, sc.Strategies)
}

type recordingRegistrar struct {
	names []string
	metas []strategy.Metadata
}

func (r *recordingRegistrar) Register(name string, _ strategy.Func, meta strategy.Metadata) error {
	r.names = append(r.names, name)
	r.metas = append(r.metas, meta)
	return nil
}

func TestScenario_Register(t *testing.T) {
	sc, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	var reg recordingRegistrar
	providers, err := sc.Register(&reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"amadeus", "kiwi"}, reg.names)
	assert.Equal(t, strategy.CostHigh, reg.metas[0].CostClass)
	require.Len(t, providers, 2)
	assert.Equal(t, "kiwi", providers[1].Name())
}

func TestScenario_RegisterWithRegistry(t *testing.T) {
	sc, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	reg := strategy.NewRegistry(nil, nil)
	_, err = sc.Register(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	_, err = sc.Register(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len(), "re-registering replaces existing strategies")
}

func TestScenario_Task(t *testing.T) {
	sc, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	task := sc.Task(3)
	assert.Equal(t, "round-3", task.ID)
	assert.Equal(t, pricing.TaskTypePriceCheck, task.Type)
	assert.True(t, strings.Contains(task.Description, "CAI-JED"))

	q, ok := task.Payload.(pricing.Query)
	require.True(t, ok)
	assert.Equal(t, "JED", q.Destination)
}
