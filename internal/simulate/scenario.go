package simulate

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/strategy"
)

// DefaultRounds is used when a scenario does not set rounds.
const DefaultRounds = 10

// Scenario is a set of simulated strategies raced over a number of rounds.
type Scenario struct {
	Task       TaskConfig       `yaml:"task"`
	Rounds     int              `yaml:"rounds" validate:"gte=0"`
	Seed       uint64           `yaml:"seed"`
	Strategies []StrategyConfig `yaml:"strategies" validate:"required,min=1,dive"`
}

// TaskConfig describes the task submitted each round.
type TaskConfig struct {
	// Type defaults to price_check.
	Type        string        `yaml:"type"`
	Description string        `yaml:"description"`
	Query       pricing.Query `yaml:"query"`
}

// StrategyConfig declares one simulated strategy.
type StrategyConfig struct {
	Name            string        `yaml:"name" validate:"required"`
	Description     string        `yaml:"description"`
	CostClass       string        `yaml:"cost_class" validate:"omitempty,oneof=low medium high"`
	Reliability     float64       `yaml:"reliability" validate:"gte=0,lte=1"`
	ExpectedLatency time.Duration `yaml:"expected_latency" validate:"gte=0"`
	TaskTypes       []string      `yaml:"task_types"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"`
	Burst           int           `yaml:"burst" validate:"gte=0"`
	Behavior        Behavior      `yaml:"behavior"`
}

// Metadata converts the declaration to strategy metadata.
func (s StrategyConfig) Metadata() strategy.Metadata {
	return strategy.Metadata{
		Description:     s.Description,
		CostClass:       strategy.CostClass(s.CostClass),
		Reliability:     s.Reliability,
		ExpectedLatency: s.ExpectedLatency,
		TaskTypes:       s.TaskTypes,
		RateLimit:       s.RateLimit,
		Burst:           s.Burst,
	}
}

// Registrar accepts strategies. *strategy.Registry satisfies it.
type Registrar interface {
	Register(name string, fn strategy.Func, meta strategy.Metadata) error
}

var scenarioValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes, defaults and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Task.Type == "" {
		sc.Task.Type = pricing.TaskTypePriceCheck
	}
	if sc.Rounds == 0 {
		sc.Rounds = DefaultRounds
	}
	if sc.Task.Query.Passengers == 0 {
		sc.Task.Query.Passengers = 1
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks field constraints and that strategy names are unique.
func (sc *Scenario) Validate() error {
	var errs []error
	if err := scenarioValidator.Struct(sc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			field := fe.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			errs = append(errs, fmt.Errorf("%s: failed %q constraint", field, fe.Tag()))
		}
	}

	seen := make(map[string]bool, len(sc.Strategies))
	for i, s := range sc.Strategies {
		if s.Name != "" && seen[s.Name] {
			errs = append(errs, fmt.Errorf("strategies[%d].name: duplicate strategy %q", i, s.Name))
		}
		seen[s.Name] = true
		if r := s.Behavior.FailureRate + s.Behavior.AbstainRate; r > 1 {
			errs = append(errs, fmt.Errorf("strategies[%d].behavior: failure_rate + abstain_rate = %s exceeds 1",
				i, strconv.FormatFloat(r, 'g', -1, 64)))
		}
	}
	return errors.Join(errs...)
}

// Providers builds one provider per strategy. Seeds are derived from the
// scenario seed so that runs are reproducible.
func (sc *Scenario) Providers() []*Provider {
	providers := make([]*Provider, len(sc.Strategies))
	for i, s := range sc.Strategies {
		providers[i] = NewProvider(s.Name, s.Behavior, sc.Seed+uint64(i)+1)
	}
	return providers
}

// Register builds the scenario's providers and registers them with r.
func (sc *Scenario) Register(r Registrar) ([]*Provider, error) {
	providers := sc.Providers()
	for i, p := range providers {
		if err := r.Register(p.Name(), p.Func(), sc.Strategies[i].Metadata()); err != nil {
			return nil, fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}
	return providers, nil
}

// Task returns the task for a round. Rounds are numbered from 1.
func (sc *Scenario) Task(round int) strategy.Task {
	desc := sc.Task.Description
	if desc == "" {
		q := sc.Task.Query
		desc = fmt.Sprintf("%s %s-%s", sc.Task.Type, q.Origin, q.Destination)
	}
	return strategy.Task{
		ID:          fmt.Sprintf("round-%d", round),
		Type:        sc.Task.Type,
		Description: desc,
		Payload:     sc.Task.Query,
	}
}
