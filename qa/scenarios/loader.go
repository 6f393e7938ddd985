// Package scenarios replays staffing situations against the roster
// engine from YAML definitions, so coverage behaviour can be rehearsed
// without touching a live store.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rotaops/rota/core/model"
)

type EngineerDef struct {
	Email         string `yaml:"email"`
	Name          string `yaml:"name"`
	Qualification string `yaml:"qualification"`
	Pod           string `yaml:"pod"`
}

func (e EngineerDef) ToModel() (model.Engineer, error) {
	qual, err := model.ParseRotation(e.Qualification)
	if err != nil {
		return model.Engineer{}, fmt.Errorf("engineer %s: %w", e.Email, err)
	}
	return model.Engineer{
		Email:         e.Email,
		Name:          e.Name,
		Qualification: qual,
		Pod:           e.Pod,
	}, nil
}

// OOODef marks an engineer out of office for whole scheduling weeks,
// counted from the start of the generation window.
type OOODef struct {
	Engineer string `yaml:"engineer"`
	Weeks    []int  `yaml:"weeks"`
}

type Expected struct {
	Uncovered    bool `yaml:"uncovered"`
	Forced       bool `yaml:"forced"`
	MinEngineers int  `yaml:"min_engineers"`
}

type Scenario struct {
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description,omitempty"`
	LookaheadDays int           `yaml:"lookahead_days"`
	Engineers     []EngineerDef `yaml:"engineers"`
	OOO           []OOODef      `yaml:"ooo,omitempty"`
	Expected      Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.LookaheadDays <= 0 {
		sc.LookaheadDays = 14
	}
	return &sc, nil
}
