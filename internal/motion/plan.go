package motion

import (
	"math/rand"
	"time"

	"github.com/stigoleg/stayactive/internal/geometry"
)

// Episode shape.
const (
	MinSubMoves = 2
	MaxSubMoves = 5

	MaxOffsetX      = 300
	MaxOffsetY      = 200
	MaxReturnOffset = 3

	SubMoveDurationMin = 200 * time.Millisecond
	SubMoveDurationMax = 800 * time.Millisecond
	PauseMin           = 50 * time.Millisecond
	PauseMax           = 300 * time.Millisecond
	ReturnDurationMin  = 300 * time.Millisecond
	ReturnDurationMax  = 700 * time.Millisecond
)

// SubMove is one eased leg of an episode.
type SubMove struct {
	// Offset is measured from where the episode started.
	Offset   geometry.Point
	Duration time.Duration
	Easing   geometry.Easing
	// Pause follows the leg.
	Pause time.Duration
}

// Plan is a randomized episode: a few wandering legs and a return leg that
// lands near the starting point.
type Plan struct {
	Moves  []SubMove
	Return SubMove
}

// Planner draws episode plans from a random source.
type Planner struct {
	rnd *rand.Rand
}

// NewPlanner creates a planner. rnd must not be shared across goroutines.
func NewPlanner(rnd *rand.Rand) *Planner {
	return &Planner{rnd: rnd}
}

// Plan generates the next episode.
func (p *Planner) Plan() Plan {
	n := MinSubMoves + p.rnd.Intn(MaxSubMoves-MinSubMoves+1)
	plan := Plan{Moves: make([]SubMove, 0, n)}
	for i := 0; i < n; i++ {
		plan.Moves = append(plan.Moves, SubMove{
			Offset:   p.offset(MaxOffsetX, MaxOffsetY),
			Duration: p.between(SubMoveDurationMin, SubMoveDurationMax),
			Easing:   geometry.RandomEasing(p.rnd),
			Pause:    p.between(PauseMin, PauseMax),
		})
	}
	plan.Return = SubMove{
		Offset:   p.offset(MaxReturnOffset, MaxReturnOffset),
		Duration: p.between(ReturnDurationMin, ReturnDurationMax),
		Easing:   geometry.RandomEasing(p.rnd),
	}
	return plan
}

// offset draws each axis uniformly from [-maxX, maxX] and [-maxY, maxY].
func (p *Planner) offset(maxX, maxY int) geometry.Point {
	return geometry.Point{
		X: p.rnd.Intn(2*maxX+1) - maxX,
		Y: p.rnd.Intn(2*maxY+1) - maxY,
	}
}

func (p *Planner) between(lo, hi time.Duration) time.Duration {
	return lo + time.Duration(p.rnd.Float64()*float64(hi-lo))
}
