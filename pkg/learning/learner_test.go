package learning

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"amrikyy/nanoagent/pkg/weights"
)

func newTestLearner(t *testing.T, cfg Config) (*Learner, *weights.MemoryStore) {
	t.Helper()
	store := weights.NewMemoryStore(0.1)
	l, err := New(store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, store
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "full rate", cfg: Config{Rate: 1}},
		{name: "negative rate", cfg: Config{Rate: -0.1}, wantErr: true},
		{name: "rate above one", cfg: Config{Rate: 1.5}, wantErr: true},
		{name: "decay above one", cfg: Config{NonWinnerDecay: 2}, wantErr: true},
		{name: "decay in range", cfg: Config{NonWinnerDecay: 0.05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(weights.NewMemoryStore(0.1), tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := New(nil, Config{}, nil); err == nil {
		t.Error("New(nil store) should fail")
	}
}

func TestLearner_Update(t *testing.T) {
	l, store := newTestLearner(t, Config{})
	store.Set("winner", 0.5)
	store.Set("loser", 0.5)
	store.Set("broken", 0.5)
	store.Set("silent", 0.5)

	changes := l.Update([]Observation{
		{Strategy: "winner", Outcome: Valid},
		{Strategy: "loser", Outcome: Valid},
		{Strategy: "broken", Outcome: Failed},
		{Strategy: "silent", Outcome: Neutral},
	}, "winner")

	want := map[string]float64{
		"winner": 0.55,
		"loser":  0.5,
		"broken": 0.45,
		"silent": 0.5,
	}
	for name, w := range want {
		if got := store.Get(name); math.Abs(got-w) > 1e-9 {
			t.Errorf("weight[%s] = %v, want %v", name, got, w)
		}
	}

	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	if changes[0].Strategy != "winner" || changes[0].Reason != ReasonWin {
		t.Errorf("changes[0] = %+v, want win for winner", changes[0])
	}
	if changes[1].Strategy != "broken" || changes[1].Reason != ReasonFailure {
		t.Errorf("changes[1] = %+v, want failure for broken", changes[1])
	}
}

func TestLearner_WinnerAtCeiling(t *testing.T) {
	l, store := newTestLearner(t, Config{})
	store.Ensure("a")

	changes := l.Update([]Observation{{Strategy: "a", Outcome: Valid}}, "a")
	if len(changes) != 0 {
		t.Errorf("changes = %+v, want none at 1.0", changes)
	}
	if got := store.Get("a"); got != weights.MaxWeight {
		t.Errorf("weight = %v, want %v", got, weights.MaxWeight)
	}
}

func TestLearner_RepeatedFailuresDecreaseToFloor(t *testing.T) {
	l, store := newTestLearner(t, Config{})
	store.Ensure("flaky")

	prev := store.Get("flaky")
	for i := 0; i < 5; i++ {
		l.Update([]Observation{{Strategy: "flaky", Outcome: Failed}}, "")
		got := store.Get("flaky")
		if got >= prev {
			t.Errorf("round %d: weight %v did not decrease from %v", i, got, prev)
		}
		if got < store.Floor() {
			t.Errorf("round %d: weight %v below floor %v", i, got, store.Floor())
		}
		prev = got
	}

	for i := 0; i < 100; i++ {
		l.Update([]Observation{{Strategy: "flaky", Outcome: Failed}}, "")
	}
	if got := store.Get("flaky"); got != store.Floor() {
		t.Errorf("weight after many failures = %v, want floor %v", got, store.Floor())
	}
}

func TestLearner_NonWinnerDecay(t *testing.T) {
	l, store := newTestLearner(t, Config{NonWinnerDecay: 0.5})
	store.Set("loser", 0.8)

	changes := l.Update([]Observation{
		{Strategy: "winner", Outcome: Valid},
		{Strategy: "loser", Outcome: Valid},
	}, "winner")

	if got := store.Get("loser"); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("loser weight = %v, want 0.4", got)
	}
	var sawLoss bool
	for _, c := range changes {
		if c.Strategy == "loser" && c.Reason == ReasonLoss {
			sawLoss = true
		}
	}
	if !sawLoss {
		t.Errorf("changes = %+v, want a loss entry for loser", changes)
	}
}

func TestLearner_FailedDecisionHasNoWinner(t *testing.T) {
	l, store := newTestLearner(t, Config{})
	store.Set("a", 0.5)

	l.Update([]Observation{{Strategy: "a", Outcome: Valid}}, "")
	if got := store.Get("a"); got != 0.5 {
		t.Errorf("weight = %v, want unchanged 0.5", got)
	}
}
