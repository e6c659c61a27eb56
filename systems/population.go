package systems

import (
	"errors"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forest/components"
)

// ErrBoardFull is returned when no free cell is left to place an agent on.
var ErrBoardFull = errors.New("no free cell left on the board")

// Population is an ordered collection of agents of one kind.
//
// Agents are entities in a shared ECS world. A Link component chains them
// in insertion order so the tail is always known, and an occupancy grid
// answers position queries. Entity handles stay valid across removals of
// other agents; a removed handle is simply no longer alive.
type Population struct {
	kind  components.Kind
	size  int
	world *ecs.World
	rng   Rand

	mapper    *ecs.Map3[components.Position, components.Agent, components.Link]
	positions *ecs.Map[components.Position]
	agents    *ecs.Map[components.Agent]
	links     *ecs.Map[components.Link]

	occupied   *OccupancyGrid
	head, tail ecs.Entity
	count      int
}

// NewPopulation creates an empty population on a board of the given side.
func NewPopulation(world *ecs.World, kind components.Kind, size int, rng Rand) *Population {
	return &Population{
		kind:      kind,
		size:      size,
		world:     world,
		rng:       rng,
		mapper:    ecs.NewMap3[components.Position, components.Agent, components.Link](world),
		positions: ecs.NewMap[components.Position](world),
		agents:    ecs.NewMap[components.Agent](world),
		links:     ecs.NewMap[components.Link](world),
		occupied:  NewOccupancyGrid(size),
	}
}

// Bootstrap creates a population of count agents, each placed on a cell
// free of both the new population and avoid.
func Bootstrap(world *ecs.World, kind components.Kind, size, count int, avoid *Population, rng Rand) (*Population, error) {
	p := NewPopulation(world, kind, size, rng)
	for range count {
		if _, err := p.Append(avoid); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Kind returns the kind of agent the population holds.
func (p *Population) Kind() components.Kind {
	return p.kind
}

// Len returns the number of agents.
func (p *Population) Len() int {
	return p.count
}

// First returns the head agent, or the zero entity if empty.
func (p *Population) First() ecs.Entity {
	return p.head
}

// Last returns the tail agent, or the zero entity if empty.
func (p *Population) Last() ecs.Entity {
	return p.tail
}

// Next returns the agent after e, or the zero entity at the tail.
// e must still be alive.
func (p *Population) Next(e ecs.Entity) ecs.Entity {
	return p.links.Get(e).Next
}

// Each calls fn for every agent in insertion order until fn returns false.
// fn may remove the agent it is given.
func (p *Population) Each(fn func(e ecs.Entity) bool) {
	for e := p.head; !e.IsZero(); {
		next := p.links.Get(e).Next
		if !fn(e) {
			return
		}
		e = next
	}
}

// Contains reports whether e is a live member of this population.
func (p *Population) Contains(e ecs.Entity) bool {
	if e.IsZero() || !p.world.Alive(e) || !p.positions.Has(e) {
		return false
	}
	at, ok := p.occupied.At(*p.positions.Get(e))
	return ok && at == e
}

// Position returns the cell agent e stands on.
func (p *Population) Position(e ecs.Entity) components.Position {
	return *p.positions.Get(e)
}

// Agent returns the agent state of e. The pointer is valid until the next
// agent is added or removed.
func (p *Population) Agent(e ecs.Entity) *components.Agent {
	return p.agents.Get(e)
}

// At returns the agent standing on pos, if any.
func (p *Population) At(pos components.Position) (ecs.Entity, bool) {
	return p.occupied.At(pos)
}

// Collides reports whether any agent of the population stands on pos.
func (p *Population) Collides(pos components.Position) bool {
	return p.occupied.Occupied(pos)
}

// TotalLumber sums the lumber accumulator of all agents.
func (p *Population) TotalLumber() int {
	total := 0
	p.Each(func(e ecs.Entity) bool {
		total += p.agents.Get(e).Lumber
		return true
	})
	return total
}

// Positions returns the agents' cells in insertion order.
func (p *Population) Positions() []components.Position {
	out := make([]components.Position, 0, p.count)
	p.Each(func(e ecs.Entity) bool {
		out = append(out, *p.positions.Get(e))
		return true
	})
	return out
}

// free reports whether pos is empty in this population and in avoid.
func (p *Population) free(pos components.Position, avoid *Population) bool {
	if p.Collides(pos) {
		return false
	}
	return avoid == nil || !avoid.Collides(pos)
}

// randomFreeCell rejection-samples a cell free of both populations.
func (p *Population) randomFreeCell(avoid *Population) (components.Position, error) {
	taken := p.occupied.Count()
	if avoid != nil {
		taken += avoid.occupied.Count()
	}
	if taken >= p.size*p.size {
		return components.Position{}, ErrBoardFull
	}
	for {
		pos := RandomCell(p.rng, p.size)
		if p.free(pos, avoid) {
			return pos, nil
		}
	}
}

// Append adds one agent at a random cell free of this population and
// avoid, at the tail of the population.
func (p *Population) Append(avoid *Population) (ecs.Entity, error) {
	pos, err := p.randomFreeCell(avoid)
	if err != nil {
		return ecs.Entity{}, err
	}
	return p.PlaceAt(pos), nil
}

// PlaceAt appends an agent at pos. The caller guarantees pos is free.
func (p *Population) PlaceAt(pos components.Position) ecs.Entity {
	agent := components.Agent{Kind: p.kind, Lumber: components.InitialValue}
	link := components.Link{Prev: p.tail}
	e := p.mapper.NewEntity(&pos, &agent, &link)

	if p.tail.IsZero() {
		p.head = e
	} else {
		p.links.Get(p.tail).Next = e
	}
	p.tail = e
	p.occupied.Insert(e, pos)
	p.count++
	return e
}

// Remove takes agent e out of the population in O(1).
// Removing an agent that is not a live member is a no-op.
func (p *Population) Remove(e ecs.Entity) bool {
	if !p.Contains(e) {
		return false
	}
	link := *p.links.Get(e)
	pos := *p.positions.Get(e)

	if link.Prev.IsZero() {
		p.head = link.Next
	} else {
		p.links.Get(link.Prev).Next = link.Next
	}
	if link.Next.IsZero() {
		p.tail = link.Prev
	} else {
		p.links.Get(link.Next).Prev = link.Prev
	}

	p.occupied.Remove(e, pos)
	p.world.RemoveEntity(e)
	p.count--
	return true
}

// RemoveTail removes the most recently appended agent. A population of
// one or no agents is left untouched.
func (p *Population) RemoveTail() bool {
	if p.count <= 1 {
		return false
	}
	return p.Remove(p.tail)
}

// MoveTo relocates agent e to pos. Same-kind collisions are the caller's
// responsibility; see RandomStep.
func (p *Population) MoveTo(e ecs.Entity, pos components.Position) {
	cur := p.positions.Get(e)
	p.occupied.Remove(e, *cur)
	*cur = pos
	p.occupied.Insert(e, pos)
}

// Boxed reports whether every cell around pos holds an agent of this
// population, leaving no step to take.
func (p *Population) Boxed(pos components.Position) bool {
	boxed := true
	neighbours(pos, p.size, func(n components.Position) bool {
		if !p.Collides(n) {
			boxed = false
			return false
		}
		return true
	})
	return boxed
}

// RandomStep draws random adjacent cells around e's position until one is
// free of other agents of this population, and returns it without moving.
// ok is false when e is boxed in.
func (p *Population) RandomStep(e ecs.Entity) (components.Position, bool) {
	origin := p.Position(e)
	if p.Boxed(origin) {
		return origin, false
	}
	for {
		pos := RandomAdjacent(p.rng, origin, p.size)
		if !p.Collides(pos) {
			return pos, true
		}
	}
}

// Clear removes every agent.
func (p *Population) Clear() {
	for !p.head.IsZero() {
		p.Remove(p.head)
	}
	p.occupied.Clear()
}
