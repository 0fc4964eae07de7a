package racer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"amrikyy/nanoagent/pkg/strategy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strat(name string, fn strategy.Func) *strategy.Strategy {
	return strategy.New(name, fn, strategy.Metadata{})
}

func returning(v any, err error, delay time.Duration) strategy.Func {
	return func(ctx context.Context, _ strategy.Task, _ any) (any, error) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return v, err
	}
}

// stubborn ignores its context.
func stubborn(d time.Duration) strategy.Func {
	return func(context.Context, strategy.Task, any) (any, error) {
		time.Sleep(d)
		return "late", nil
	}
}

func TestSupervisor_Outcomes(t *testing.T) {
	boom := errors.New("network error")

	tests := []struct {
		name        string
		fn          strategy.Func
		wantOutcome Outcome
		wantErr     error
	}{
		{name: "success", fn: returning("ok", nil, 0), wantOutcome: OutcomeSucceeded},
		{name: "abstain", fn: returning(nil, nil, 0), wantOutcome: OutcomeAbstained},
		{name: "typed nil abstains", fn: returning((*string)(nil), nil, 0), wantOutcome: OutcomeAbstained},
		{name: "nil map abstains", fn: returning(map[string]int(nil), nil, 0), wantOutcome: OutcomeAbstained},
		{name: "error", fn: returning(nil, boom, 0), wantOutcome: OutcomeErrored, wantErr: boom},
		{name: "cooperative timeout", fn: returning("ok", nil, time.Second), wantOutcome: OutcomeTimedOut, wantErr: ErrStrategyTimeout},
		{name: "stubborn timeout", fn: stubborn(time.Second), wantOutcome: OutcomeTimedOut, wantErr: ErrStrategyTimeout},
		{
			name: "panic",
			fn: func(context.Context, strategy.Task, any) (any, error) {
				panic("kaboom")
			},
			wantOutcome: OutcomeErrored,
			wantErr:     ErrStrategyFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSupervisor(0, nil, testLogger())
			attempts := s.Run(context.Background(), strategy.Task{}, nil,
				[]*strategy.Strategy{strat("s", tt.fn)}, 50*time.Millisecond)

			if len(attempts) != 1 {
				t.Fatalf("len(attempts) = %d, want 1", len(attempts))
			}
			a := attempts[0]
			if a.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", a.Outcome, tt.wantOutcome)
			}
			if a.Success != (tt.wantOutcome == OutcomeSucceeded) {
				t.Errorf("Success = %v for outcome %q", a.Success, a.Outcome)
			}
			if tt.wantErr == nil && a.Err != nil {
				t.Errorf("Err = %v, want nil", a.Err)
			}
			if tt.wantErr != nil && !errors.Is(a.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", a.Err, tt.wantErr)
			}
			if !a.Success && a.Result != nil {
				t.Errorf("Result = %v, want nil for failed attempt", a.Result)
			}
		})
	}
}

func TestSupervisor_PreservesOrder(t *testing.T) {
	s := NewSupervisor(0, nil, testLogger())
	selected := []*strategy.Strategy{
		strat("slow", returning("slow", nil, 40*time.Millisecond)),
		strat("fast", returning("fast", nil, 0)),
		strat("medium", returning("medium", nil, 20*time.Millisecond)),
	}

	attempts := s.Run(context.Background(), strategy.Task{}, nil, selected, time.Second)

	for i, want := range []string{"slow", "fast", "medium"} {
		if attempts[i].Strategy != want {
			t.Errorf("attempts[%d].Strategy = %q, want %q", i, attempts[i].Strategy, want)
		}
		if attempts[i].Result != want {
			t.Errorf("attempts[%d].Result = %v, want %q", i, attempts[i].Result, want)
		}
	}
}

func TestSupervisor_BoundedByTimeout(t *testing.T) {
	s := NewSupervisor(0, nil, testLogger())
	selected := []*strategy.Strategy{
		strat("a", stubborn(2*time.Second)),
		strat("b", stubborn(2*time.Second)),
		strat("c", returning("ok", nil, 0)),
	}

	start := time.Now()
	attempts := s.Run(context.Background(), strategy.Task{}, nil, selected, 50*time.Millisecond)
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("Run() took %s, want close to the 50ms timeout", elapsed)
	}
	if attempts[0].Outcome != OutcomeTimedOut || attempts[1].Outcome != OutcomeTimedOut {
		t.Errorf("outcomes = %q, %q, want timed_out", attempts[0].Outcome, attempts[1].Outcome)
	}
	if attempts[2].Outcome != OutcomeSucceeded {
		t.Errorf("attempts[2].Outcome = %q, want succeeded", attempts[2].Outcome)
	}
}

func TestSupervisor_ParentCancellation(t *testing.T) {
	s := NewSupervisor(0, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	attempts := s.Run(ctx, strategy.Task{}, nil,
		[]*strategy.Strategy{strat("a", returning("ok", nil, time.Second))}, 5*time.Second)

	a := attempts[0]
	if a.Outcome != OutcomeCancelled {
		t.Errorf("Outcome = %q, want cancelled", a.Outcome)
	}
	if !errors.Is(a.Err, ErrStrategyCancelled) {
		t.Errorf("Err = %v, want ErrStrategyCancelled", a.Err)
	}
}

func TestSupervisor_StrategyReceivesDeadline(t *testing.T) {
	var sawDeadline atomic.Bool
	fn := func(ctx context.Context, _ strategy.Task, _ any) (any, error) {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		return "ok", nil
	}

	s := NewSupervisor(0, nil, testLogger())
	s.Run(context.Background(), strategy.Task{}, nil, []*strategy.Strategy{strat("a", fn)}, time.Second)

	if !sawDeadline.Load() {
		t.Error("strategy context should carry the attempt deadline")
	}
}

func TestSupervisor_RateLimitWaitCountsAgainstDeadline(t *testing.T) {
	limited := strategy.New("limited", returning("ok", nil, 0), strategy.Metadata{RateLimit: 0.01, Burst: 1})
	s := NewSupervisor(0, nil, testLogger())

	first := s.Run(context.Background(), strategy.Task{}, nil, []*strategy.Strategy{limited}, 50*time.Millisecond)
	if first[0].Outcome != OutcomeSucceeded {
		t.Fatalf("first Outcome = %q, want succeeded", first[0].Outcome)
	}

	start := time.Now()
	second := s.Run(context.Background(), strategy.Task{}, nil, []*strategy.Strategy{limited}, 50*time.Millisecond)
	if second[0].Outcome != OutcomeThrottled {
		t.Errorf("second Outcome = %q, want throttled", second[0].Outcome)
	}
	if !errors.Is(second[0].Err, ErrStrategyThrottled) {
		t.Errorf("second Err = %v, want ErrStrategyThrottled", second[0].Err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("rate-limited Run() took %s", elapsed)
	}
}

func TestSupervisor_MaxConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	fn := func(ctx context.Context, _ strategy.Task, _ any) (any, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return "ok", nil
	}

	s := NewSupervisor(1, nil, testLogger())
	attempts := s.Run(context.Background(), strategy.Task{}, nil,
		[]*strategy.Strategy{strat("a", fn), strat("b", fn), strat("c", fn)}, 2*time.Second)

	for _, a := range attempts {
		if a.Outcome != OutcomeSucceeded {
			t.Errorf("%s Outcome = %q, want succeeded", a.Strategy, a.Outcome)
		}
	}
	if got := peak.Load(); got != 1 {
		t.Errorf("peak concurrency = %d, want 1", got)
	}
}

func TestSupervisor_ConcurrencySlotWaitIsThrottled(t *testing.T) {
	fn := returning("ok", nil, 200*time.Millisecond)

	s := NewSupervisor(1, nil, testLogger())
	attempts := s.Run(context.Background(), strategy.Task{}, nil,
		[]*strategy.Strategy{strat("a", fn), strat("b", fn)}, 300*time.Millisecond)

	var succeeded, throttled int
	for _, a := range attempts {
		switch a.Outcome {
		case OutcomeSucceeded:
			succeeded++
		case OutcomeThrottled:
			throttled++
			if !errors.Is(a.Err, ErrStrategyThrottled) {
				t.Errorf("%s Err = %v, want ErrStrategyThrottled", a.Strategy, a.Err)
			}
		default:
			t.Errorf("%s Outcome = %q, want succeeded or throttled", a.Strategy, a.Outcome)
		}
	}
	if succeeded != 1 || throttled != 1 {
		t.Errorf("succeeded = %d, throttled = %d, want 1 and 1", succeeded, throttled)
	}
}

func TestSupervisor_UnqueuedTimeoutIsNotThrottled(t *testing.T) {
	s := NewSupervisor(2, nil, testLogger())
	attempts := s.Run(context.Background(), strategy.Task{}, nil,
		[]*strategy.Strategy{strat("a", returning("ok", nil, time.Second)), strat("b", returning("ok", nil, 0))},
		50*time.Millisecond)

	if attempts[0].Outcome != OutcomeTimedOut {
		t.Errorf("a Outcome = %q, want timed_out", attempts[0].Outcome)
	}
	if attempts[1].Outcome != OutcomeSucceeded {
		t.Errorf("b Outcome = %q, want succeeded", attempts[1].Outcome)
	}
}
