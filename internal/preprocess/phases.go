// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/mongodb/genny-sub000/internal/node"
)

// nop is the phase placed at every inactive index.
func nop() *node.Node {
	return node.Map(node.Pair{Key: "Nop", Value: node.Bool(true)})
}

// onlyActiveInPhases expands
// {OnlyActiveInPhases: {Active, NopInPhasesUpTo, PhaseConfig}} into a phase
// list of NopInPhasesUpTo+1 entries.
func (w *walker) onlyActiveInPhases(payload *node.Node, p *Path) (*node.Node, error) {
	f, err := fields(payload, p, keyOnlyActiveInPhases, "Active", "NopInPhasesUpTo", "PhaseConfig")
	if err != nil {
		return nil, err
	}

	rawUpTo, ok := f.Get("NopInPhasesUpTo")
	if !ok {
		return nil, invalidArgument(p, "missing required field %q", "NopInPhasesUpTo")
	}
	upTo, err := w.resolveInt(rawUpTo, p.Child("NopInPhasesUpTo"))
	if err != nil {
		return nil, err
	}
	if upTo < 0 {
		return nil, invalidArgument(p.Child("NopInPhasesUpTo"), "must be non-negative, got %d", upTo)
	}

	rawActive, ok := f.Get("Active")
	if !ok {
		return nil, invalidArgument(p, "missing required field %q", "Active")
	}
	ap := p.Child("Active")
	active, err := w.resolve(rawActive, ap)
	if err != nil {
		return nil, err
	}
	if active.Kind() != node.SequenceKind {
		return nil, invalidArgument(ap, "expected a sequence of phase indexes, got %s", active.Kind())
	}
	isActive := make(map[int64]bool, active.Len())
	for i, item := range active.Items() {
		idx, ok := item.AsInt()
		if !ok {
			return nil, invalidArgument(ap.Index(i), "expected an integer phase index, got %s %v", item.Kind(), item)
		}
		if idx < 0 || idx > upTo {
			return nil, invalidArgument(ap.Index(i), "phase %d is outside 0..%d", idx, upTo)
		}
		isActive[idx] = true
	}

	config, ok := f.Get("PhaseConfig")
	if !ok {
		return nil, invalidArgument(p, "missing required field %q", "PhaseConfig")
	}

	phases := make([]*node.Node, upTo+1)
	for i := range phases {
		if !isActive[int64(i)] {
			phases[i] = nop()
			continue
		}
		if phases[i], err = w.activePhase(config, p.Child("PhaseConfig")); err != nil {
			return nil, err
		}
	}
	return node.Seq(phases...), nil
}

// activePhase resolves one activation of a phase config in its own frame.
func (w *walker) activePhase(config *node.Node, p *Path) (*node.Node, error) {
	h := w.scope.Enter()
	defer h.Close()
	return w.resolve(config, p)
}
