package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forest/components"
)

// scriptedRand replays fixed draws, reduced modulo n. Once the script runs
// out it returns 0.
type scriptedRand struct {
	draws []int
	next  int
}

func (r *scriptedRand) Intn(n int) int {
	if r.next >= len(r.draws) {
		return 0
	}
	v := r.draws[r.next] % n
	r.next++
	return v
}

func TestRandomAdjacent_RejectsOriginAndOffBoard(t *testing.T) {
	// (-1,-1) is off the board, (0,0) is the origin, (+1,+1) is accepted.
	rng := &scriptedRand{draws: []int{0, 0, 1, 1, 2, 2}}
	got := RandomAdjacent(rng, components.Position{}, 3)
	want := components.Position{X: 1, Y: 1}
	if got != want {
		t.Errorf("RandomAdjacent = %v, want %v", got, want)
	}
	if rng.next != 6 {
		t.Errorf("consumed %d draws, want 6", rng.next)
	}
}

func TestRandomAdjacent_StaysAdjacentAndInBounds(t *testing.T) {
	const size = 5
	rng := rand.New(rand.NewSource(42))
	origins := []components.Position{
		{X: 0, Y: 0}, {X: size - 1, Y: 0}, {X: 0, Y: size - 1}, {X: size - 1, Y: size - 1},
		{X: 2, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2},
	}

	for _, origin := range origins {
		seen := make(map[components.Position]bool)
		for range 500 {
			p := RandomAdjacent(rng, origin, size)
			if !p.InBounds(size) {
				t.Fatalf("RandomAdjacent(%v) = %v, off the board", origin, p)
			}
			if p == origin {
				t.Fatalf("RandomAdjacent(%v) returned the origin", origin)
			}
			dx, dy := p.X-origin.X, p.Y-origin.Y
			if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
				t.Fatalf("RandomAdjacent(%v) = %v, not adjacent", origin, p)
			}
			seen[p] = true
		}

		want := 0
		neighbours(origin, size, func(components.Position) bool {
			want++
			return true
		})
		if len(seen) != want {
			t.Errorf("origin %v: reached %d neighbours, want all %d", origin, len(seen), want)
		}
	}
}

func TestRandomCell_DrawsColumnThenRow(t *testing.T) {
	rng := &scriptedRand{draws: []int{3, 1}}
	got := RandomCell(rng, 4)
	want := components.Position{X: 3, Y: 1}
	if got != want {
		t.Errorf("RandomCell = %v, want %v", got, want)
	}
}

func TestNeighbours_Count(t *testing.T) {
	tests := []struct {
		name   string
		origin components.Position
		want   int
	}{
		{"corner", components.Position{X: 0, Y: 0}, 3},
		{"edge", components.Position{X: 2, Y: 0}, 5},
		{"interior", components.Position{X: 2, Y: 2}, 8},
		{"far corner", components.Position{X: 4, Y: 4}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := 0
			neighbours(tt.origin, 5, func(components.Position) bool {
				got++
				return true
			})
			if got != tt.want {
				t.Errorf("neighbours(%v) visited %d cells, want %d", tt.origin, got, tt.want)
			}
		})
	}
}

func TestNeighbours_StopsEarly(t *testing.T) {
	calls := 0
	neighbours(components.Position{X: 2, Y: 2}, 5, func(components.Position) bool {
		calls++
		return calls < 2
	})
	if calls != 2 {
		t.Errorf("expected iteration to stop after 2 calls, got %d", calls)
	}
}
