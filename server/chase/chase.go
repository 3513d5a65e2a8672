// Package chase is the couch co-op pursuit simulation: one player runs, the
// slightly faster one chases, and getting caught opens the sulk dialogue.
package chase

import (
	"math"
	"math/rand"
	"time"
)

type Status string

const (
	StatusPlaying    Status = "playing"
	StatusCaught     Status = "caught"
	StatusReconciled Status = "reconciled"
)

// Sulk choices offered on the caught screen. Everything except Forgive pushes
// the chaser back and resumes the run.
const (
	SulkGo     = "git"
	SulkHuff   = "hih"
	SulkRefuse = "istemiyorum"
	SulkCome   = "gel"
)

const (
	baseSpeed   = 120.0 // world units per second at full deflection
	chaserBoost = 1.06  // chaser edge so the run always ends eventually
	catchRadius = 50.0

	seedEntities  = 40
	minEntities   = 60
	despawnRadius = 2500.0
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Input is a joystick deflection. Magnitude above 1 is clamped; below 1 it
// scales speed proportionally.
type Input struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type EntityKind string

const (
	KindObstacle EntityKind = "obstacle"
	KindDeco     EntityKind = "deco"
)

// Entity is a piece of world dressing streamed in around the players.
type Entity struct {
	ID    int64      `json:"id"`
	Pos   Vec        `json:"pos"`
	Kind  EntityKind `json:"kind"`
	Emoji string     `json:"emoji"`
}

// Sim holds one pursuit. It is not goroutine safe; callers serialize access.
type Sim struct {
	Status    Status   `json:"status"`
	Runner    Vec      `json:"runner"`
	Chaser    Vec      `json:"chaser"`
	Entities  []Entity `json:"entities"`
	Elapsed   float64  `json:"elapsed"`
	SulkLevel int      `json:"sulk_level"`

	rng    *rand.Rand
	nextID int64
}

// New creates a sim in the playing state. Seed 0 seeds from the clock.
func New(seed int64) *Sim {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Sim{rng: rand.New(rand.NewSource(seed))}
	s.Reset()
	return s
}

// Reset restarts the pursuit from the opening positions with a fresh world.
// The sulk counter survives a reset only through Sulk, never through here.
func (s *Sim) Reset() {
	s.Status = StatusPlaying
	s.Runner = Vec{X: 0, Y: -250}
	s.Chaser = Vec{X: 0, Y: 250}
	s.Elapsed = 0
	s.SulkLevel = 0
	s.Entities = s.Entities[:0]
	for i := 0; i < seedEntities; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		dist := 400 + s.rng.Float64()*1000
		s.spawn(math.Cos(angle)*dist, math.Sin(angle)*dist)
	}
}

func (s *Sim) spawn(x, y float64) {
	s.nextID++
	kind := KindDeco
	if s.rng.Float64() > 0.8 {
		kind = KindObstacle
	}
	s.Entities = append(s.Entities, Entity{
		ID:    s.nextID,
		Pos:   Vec{X: x, Y: y},
		Kind:  kind,
		Emoji: s.biomeEmoji(x, y),
	})
}

// biomeEmoji picks dressing by world quadrant: forest far north, desert far
// south, city far east, flower fields far west, mixed ground near the origin.
func (s *Sim) biomeEmoji(x, y float64) string {
	pick := func(rare, common string) string {
		if s.rng.Float64() > 0.7 {
			return rare
		}
		return common
	}
	switch {
	case y < -1000:
		return pick("🌲", "🍄")
	case y > 1000:
		return pick("🌵", "🦂")
	case x > 1000:
		return pick("🏢", "🚗")
	case x < -1000:
		return pick("🌸", "🌷")
	}
	defaults := []string{"🌳", "🪨", "💐", "🚧", "🪵"}
	return defaults[s.rng.Intn(len(defaults))]
}

func move(p *Vec, in Input, speed, dt float64) {
	mag := math.Hypot(in.DX, in.DY)
	if mag == 0 {
		return
	}
	if mag > 1 {
		in.DX /= mag
		in.DY /= mag
		mag = 1
	}
	p.X += in.DX * speed * dt
	p.Y += in.DY * speed * dt
}

// Step advances the sim by dt seconds using both players' inputs. Outside the
// playing state it does nothing. Entities far from the pair midpoint are
// dropped and at most one replacement streams in per step, so the world stays
// bounded however far the chase roams.
func (s *Sim) Step(dt float64, runner, chaser Input) {
	if s.Status != StatusPlaying || dt <= 0 {
		return
	}
	move(&s.Runner, runner, baseSpeed, dt)
	move(&s.Chaser, chaser, baseSpeed*chaserBoost, dt)

	if math.Hypot(s.Runner.X-s.Chaser.X, s.Runner.Y-s.Chaser.Y) < catchRadius {
		s.Status = StatusCaught
		return
	}

	midX := (s.Runner.X + s.Chaser.X) / 2
	midY := (s.Runner.Y + s.Chaser.Y) / 2

	kept := s.Entities[:0]
	for _, e := range s.Entities {
		if math.Hypot(e.Pos.X-midX, e.Pos.Y-midY) < despawnRadius {
			kept = append(kept, e)
		}
	}
	s.Entities = kept

	if len(s.Entities) < minEntities {
		angle := s.rng.Float64() * 2 * math.Pi
		dist := 1200 + s.rng.Float64()*800
		s.spawn(midX+math.Cos(angle)*dist, midY+math.Sin(angle)*dist)
	}

	s.Elapsed += dt
}

// Sulk resolves the caught screen. SulkCome ends the game reconciled; the
// other choices shove the chaser away along the escape line and resume play
// with the clock still running.
func (s *Sim) Sulk(choice string) {
	if s.Status != StatusCaught {
		return
	}
	if choice == SulkCome {
		s.Status = StatusReconciled
		return
	}

	var push float64
	switch choice {
	case SulkGo:
		push = 600
	case SulkHuff:
		push = 200
	case SulkRefuse:
		push = 900
	default:
		return
	}
	s.SulkLevel++

	dx := s.Chaser.X - s.Runner.X
	dy := s.Chaser.Y - s.Runner.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		length = 1
	}
	s.Chaser.X += dx / length * push
	s.Chaser.Y += dy / length * push
	s.Status = StatusPlaying
}
