// Package bench replays scripted conversations against a running server and
// scores how well the model recalls them.
package bench

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/elee1766/chatledger/src/fs"
)

const (
	conversationsDir = "conversations"
	evalDir          = "eval"
	evalSuffix       = "_eval.json"

	// DefaultScenario is run when no scenario is named
	DefaultScenario = "life_coach_baseline"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Turn is one scripted message
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Scenario is a scripted conversation
type Scenario struct {
	ScenarioID   string `json:"scenario_id" validate:"required"`
	Title        string `json:"title,omitempty"`
	Conversation []Turn `json:"conversation" validate:"dive"`
}

// Probe is a question asked after the conversation, with the words a good answer contains
type Probe struct {
	ID          string   `json:"id" validate:"required"`
	Type        string   `json:"type,omitempty"`
	Question    string   `json:"question" validate:"required"`
	MustInclude []string `json:"must_include,omitempty"`
	ExpectedAny []string `json:"expected_any,omitempty"`
}

// Eval is the probe set of a scenario
type Eval struct {
	Probes []Probe `json:"probes" validate:"dive"`
}

// Store loads scenarios from a directory holding conversations/<name>.json
// and eval/<name>_eval.json
type Store struct {
	fs       *fs.ContextualFs
	validate *validator.Validate
}

// NewStore creates a scenario store over fsys
func NewStore(fsys *fs.ContextualFs) *Store {
	return &Store{fs: fsys, validate: validator.New()}
}

// List returns the names of scenarios that have both a conversation and an eval file
func (s *Store) List() ([]string, error) {
	files, err := s.fs.Glob(path.Join(conversationsDir, "*.json"))
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".json")
		ok, err := s.fs.Exists(evalPath(name))
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Load reads and validates a scenario and its probes
func (s *Store) Load(name string) (*Scenario, *Eval, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, nil, fmt.Errorf("invalid scenario name %q", name)
	}

	var scenario Scenario
	if err := s.read(path.Join(conversationsDir, name+".json"), &scenario); err != nil {
		return nil, nil, err
	}
	var eval Eval
	if err := s.read(evalPath(name), &eval); err != nil {
		return nil, nil, err
	}

	if scenario.Title == "" {
		scenario.Title = scenario.ScenarioID
	}
	for i := range eval.Probes {
		if eval.Probes[i].Type == "" {
			eval.Probes[i].Type = "unknown"
		}
	}
	return &scenario, &eval, nil
}

func (s *Store) read(name string, v interface{}) error {
	ok, err := s.fs.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	if err := s.fs.ReadJSON(name, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}

func evalPath(name string) string {
	return path.Join(evalDir, name+evalSuffix)
}
