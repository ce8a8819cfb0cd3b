//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// pipeline.go - Task graph with validation and topological ordering
package dag

// Pipeline is a named collection of tasks plus the dependency edges implied
// by each task's DependsOn declaration. Registration order is recorded in an
// explicit slice so that execution ordering never depends on map iteration.
type Pipeline struct {
	name  string
	tasks map[string]*Task
	order []string
}

// NewPipeline creates an empty pipeline.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{
		name:  name,
		tasks: make(map[string]*Task),
	}
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Add registers a task. It fails with *DuplicateTaskError when a task of the
// same name is already registered.
func (p *Pipeline) Add(t *Task) error {
	if _, exists := p.tasks[t.Name()]; exists {
		return &DuplicateTaskError{Task: t.Name()}
	}
	p.tasks[t.Name()] = t
	p.order = append(p.order, t.Name())
	return nil
}

// Task looks up a task by name.
func (p *Pipeline) Task(name string) (*Task, bool) {
	t, ok := p.tasks[name]
	return t, ok
}

// Tasks returns the registered tasks in registration order.
func (p *Pipeline) Tasks() []*Task {
	out := make([]*Task, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.tasks[name])
	}
	return out
}

// Len returns the number of registered tasks.
func (p *Pipeline) Len() int { return len(p.order) }

// Dependents returns the names of tasks that directly depend on the given
// task, in registration order.
func (p *Pipeline) Dependents(name string) []string {
	var out []string
	for _, id := range p.order {
		for _, dep := range p.tasks[id].dependsOn {
			if dep == name {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Validate checks that every declared dependency names a registered task,
// that no output name is claimed by more than one producer, and that the
// dependency relation is acyclic. It must pass before any task executes;
// Execute calls it implicitly.
func (p *Pipeline) Validate() error {
	for _, name := range p.order {
		for _, dep := range p.tasks[name].dependsOn {
			if _, ok := p.tasks[dep]; !ok {
				return &UnknownDependencyError{Task: name, Dependency: dep}
			}
		}
	}

	producers := make(map[string]string)
	for _, name := range p.order {
		for _, out := range p.tasks[name].produces {
			if first, claimed := producers[out]; claimed {
				return &DuplicateOutputError{Output: out, First: first, Second: name}
			}
			producers[out] = name
		}
	}

	if member, found := p.findCycle(); found {
		return &CyclicDependencyError{Task: member}
	}
	return nil
}

// ExecutionOrder computes a topological order over task names. When several
// tasks are ready at the same step the earliest-registered one runs first,
// which keeps repeated runs of the same pipeline definition reproducible.
func (p *Pipeline) ExecutionOrder() ([]string, error) {
	inDegree := make(map[string]int, len(p.order))
	for _, name := range p.order {
		inDegree[name] = len(p.tasks[name].dependsOn)
	}

	emitted := make(map[string]bool, len(p.order))
	result := make([]string, 0, len(p.order))

	for len(result) < len(p.order) {
		advanced := false
		for _, name := range p.order {
			if emitted[name] || inDegree[name] != 0 {
				continue
			}
			emitted[name] = true
			result = append(result, name)
			for _, dependent := range p.Dependents(name) {
				inDegree[dependent]--
			}
			advanced = true
			break
		}
		if !advanced {
			member, _ := p.findCycle()
			return nil, &CyclicDependencyError{Task: member}
		}
	}

	return result, nil
}

// findCycle performs depth-first search over the dependency edges and
// returns one task on a cycle, if any. Iteration follows registration order
// so the reported member is stable.
func (p *Pipeline) findCycle() (string, bool) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(name string) (string, bool)
	visit = func(name string) (string, bool) {
		visited[name] = true
		onStack[name] = true
		for _, dep := range p.tasks[name].dependsOn {
			if _, ok := p.tasks[dep]; !ok {
				continue
			}
			if !visited[dep] {
				if member, found := visit(dep); found {
					return member, true
				}
			} else if onStack[dep] {
				return dep, true
			}
		}
		onStack[name] = false
		return "", false
	}

	for _, name := range p.order {
		if !visited[name] {
			if member, found := visit(name); found {
				return member, true
			}
		}
	}
	return "", false
}
