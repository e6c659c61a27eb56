package systems

import "github.com/pthm-cable/forest/components"

// Rand is the random source used by the board and populations.
// *rand.Rand satisfies it; tests substitute scripted sources.
type Rand interface {
	Intn(n int) int
}

// RandomAdjacent returns a uniformly random in-bounds cell of the
// 8-neighbourhood around origin. It rejection-samples the offset, so it
// terminates with probability 1 on any board of side >= 2.
func RandomAdjacent(rng Rand, origin components.Position, size int) components.Position {
	for {
		dx := rng.Intn(3) - 1
		dy := rng.Intn(3) - 1
		if dx == 0 && dy == 0 {
			continue
		}
		p := origin.Add(dx, dy)
		if p.InBounds(size) {
			return p
		}
	}
}

// RandomCell returns a uniformly random cell of the board.
func RandomCell(rng Rand, size int) components.Position {
	x := rng.Intn(size)
	y := rng.Intn(size)
	return components.Position{X: x, Y: y}
}

// neighbours calls fn for each in-bounds cell adjacent to origin.
func neighbours(origin components.Position, size int, fn func(components.Position) bool) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := origin.Add(dx, dy)
			if p.InBounds(size) && !fn(p) {
				return
			}
		}
	}
}
