// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// Kind identifies which population an agent belongs to.
type Kind uint8

const (
	KindLumberjack Kind = iota
	KindBear
)

// InitialValue is the accumulator every agent starts with.
const InitialValue = 1

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindLumberjack:
		return "lumberjack"
	case KindBear:
		return "bear"
	}
	return "unknown"
}

// Glyph returns the character drawn for the kind.
func (k Kind) Glyph() byte {
	if k == KindBear {
		return 'B'
	}
	return '$'
}

// Agent holds per-agent state.
type Agent struct {
	Kind   Kind
	Lumber int // Lumber harvested, starting at InitialValue. Unused for bears.
	Kills  int // Lumberjacks caught. Bears only.
}

// Link chains the agents of one population in insertion order.
// The zero entity marks either end of the chain.
type Link struct {
	Prev ecs.Entity
	Next ecs.Entity
}
