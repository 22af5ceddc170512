// Package frontdesk runs multi-call front desk flows against the studio API.
package frontdesk

import (
	"context"
	"fmt"
)

type Step struct {
	Name    string
	Execute func(ctx context.Context, s *State) error
}

type Flow interface {
	Name() string
	Steps() []Step
}

type Engine struct {
	flows map[string]Flow
}

func NewEngine(flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m}
}

// Run executes the named flow step by step and stops at the first failure.
func (e *Engine) Run(ctx context.Context, flowName string, s *State) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}
	for _, step := range f.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Execute(ctx, s); err != nil {
			return fmt.Errorf("%s step failed: %w", step.Name, err)
		}
		s.Completed = append(s.Completed, step.Name)
	}
	return nil
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
