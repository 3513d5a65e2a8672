package games

import (
	"math/rand"
	"time"
)

type DrawStage string

const (
	StageIntro   DrawStage = "intro"
	StageDrawing DrawStage = "drawing"
	StageDone    DrawStage = "done"
)

// DrawTopics are the prompts for a round; each describes a picture split
// across the two halves of the screen.
var DrawTopics = []string{
	"Yarım Kalp (Sen Solu, Ben Sağı) ❤️",
	"Ruh Eşleri (Yüzümüzün Yarısı) 👩‍❤️‍👨",
	"Gökkuşağının İki Ucu 🌈",
	"Aramızdaki Köprü 🌉",
}

// DrawDuration is how long a round runs once started.
const DrawDuration = 60 * time.Second

type DrawSide string

const (
	SideLeft  DrawSide = "left"
	SideRight DrawSide = "right"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen movement on one half of the canvas.
type Stroke struct {
	Side   DrawSide `json:"side"`
	Points []Point  `json:"points"`
	Color  string   `json:"color"`
	Width  float64  `json:"width"`
}

// DrawSession is one collaborative round. Strokes arrive from both halves
// until the deadline passes or Finish is called. Not goroutine safe.
type DrawSession struct {
	Stage    DrawStage `json:"stage"`
	Topic    string    `json:"topic"`
	Deadline time.Time `json:"deadline,omitempty"`
	Strokes  []Stroke  `json:"strokes"`

	rng *rand.Rand
	now func() time.Time
}

// NewDrawSession creates a session in the intro stage. Seed 0 seeds from the
// clock.
func NewDrawSession(seed int64) *DrawSession {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DrawSession{
		Stage: StageIntro,
		rng:   rand.New(rand.NewSource(seed)),
		now:   time.Now,
	}
}

// Start picks a topic, clears any previous round and opens the timer. It also
// restarts a finished session, matching the "play again" flow.
func (s *DrawSession) Start() {
	s.Topic = DrawTopics[s.rng.Intn(len(DrawTopics))]
	s.Strokes = nil
	s.Deadline = s.now().Add(DrawDuration)
	s.Stage = StageDrawing
}

// AddStroke records a stroke. Strokes outside the drawing stage, after the
// deadline, or with no points are dropped. The deadline crossing flips the
// session to done.
func (s *DrawSession) AddStroke(st Stroke) {
	if s.Stage != StageDrawing {
		return
	}
	if !s.now().Before(s.Deadline) {
		s.Stage = StageDone
		return
	}
	if len(st.Points) == 0 {
		return
	}
	s.Strokes = append(s.Strokes, st)
}

// Finish ends the round early, before the timer runs out.
func (s *DrawSession) Finish() {
	if s.Stage == StageDrawing {
		s.Stage = StageDone
	}
}

// Remaining reports the time left on the round clock, never negative.
func (s *DrawSession) Remaining() time.Duration {
	if s.Stage != StageDrawing {
		return 0
	}
	left := s.Deadline.Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}
