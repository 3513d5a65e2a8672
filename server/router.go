package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"bizim-dunyamiz/server/chase"
	"bizim-dunyamiz/server/engine"
	"bizim-dunyamiz/server/games"
	"bizim-dunyamiz/server/llm"
	"bizim-dunyamiz/server/pubsub"
	"bizim-dunyamiz/server/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NoteErrorFallback is served when love note generation fails outright; the
// letter screen always shows something warm.
const NoteErrorFallback = "Teknoloji bazen teklese de, kalbim her zaman senin için atıyor."

type api struct {
	db          *store.DB
	bus         *pubsub.Bus
	sessions    *registry
	dice        *games.Dice
	anniversary time.Time
}

func Router(a *api) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})
	r.Get("/api/home", a.handleHome)

	r.Route("/api/notes", func(r chi.Router) {
		r.Get("/", a.handleListNotes)
		r.Post("/", a.handleCreateNote)
		r.Get("/feed", a.feed("notes"))
	})

	r.Route("/api/lists", func(r chi.Router) {
		r.Get("/feed", a.feed("lists"))
		r.Get("/{type}", a.handleListItems)
		r.Post("/", a.handleCreateListItem)
		r.Post("/{id}/toggle", a.handleToggleListItem)
		r.Delete("/{id}", a.handleDeleteListItem)
	})

	r.Route("/api/memories", func(r chi.Router) {
		r.Get("/", a.handleListMemories)
		r.Post("/", a.handleCreateMemory)
		r.Get("/feed", a.feed("memories"))
	})

	r.Get("/api/places", a.handleListPlaces)
	r.Post("/api/places", a.handleCreatePlace)
	r.Post("/api/lovenote", a.handleLoveNote)
	r.Post("/api/dice/roll", a.handleDiceRoll)

	r.Route("/api/kent", func(r chi.Router) {
		r.Post("/", a.handleKentCreate)
		r.Get("/stats", a.handleKentStats)
		r.Get("/{id}", a.handleKentState)
		r.Post("/{id}/play", a.handleKentPlay)
		r.Post("/{id}/slap", a.handleKentSlap)
		r.Post("/{id}/collect", a.handleKentCollect)
		r.Post("/{id}/restart", a.handleKentRestart)
		r.Delete("/{id}", a.handleSessionDelete(kindKent))
	})

	r.Route("/api/chase", func(r chi.Router) {
		r.Post("/", a.handleChaseCreate)
		r.Get("/{id}", a.handleChaseState)
		r.Post("/{id}/step", a.handleChaseStep)
		r.Post("/{id}/sulk", a.handleChaseSulk)
		r.Post("/{id}/reset", a.handleChaseReset)
		r.Delete("/{id}", a.handleSessionDelete(kindChase))
	})

	r.Route("/api/draw", func(r chi.Router) {
		r.Post("/", a.handleDrawCreate)
		r.Get("/{id}", a.handleDrawState)
		r.Post("/{id}/start", a.handleDrawStart)
		r.Post("/{id}/stroke", a.handleDrawStroke)
		r.Post("/{id}/finish", a.handleDrawFinish)
		r.Delete("/{id}", a.handleSessionDelete(kindDraw))
	})

	return r
}

//
// ===== home =====
//

func (a *api) handleHome(w http.ResponseWriter, _ *http.Request) {
	days := int(time.Since(a.anniversary).Hours() / 24)
	if days < 0 {
		days = 0
	}
	writeJSON(w, map[string]any{
		"anniversary":   a.anniversary.Format("2006-01-02"),
		"days_together": days,
	})
}

//
// ===== notes =====
//

func (a *api) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.db.ListNotes(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"notes": notes})
}

func (a *api) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var in store.Note
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		http.Error(w, "text required", 400)
		return
	}
	if in.Category == "" {
		in.Category = "Rastgele"
	}
	n, err := a.db.InsertNote(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	a.bus.Publish(pubsub.Event{Topic: "notes", Op: "created", ID: n.ID})
	writeJSON(w, n)
}

//
// ===== plans & wishes =====
//

func (a *api) handleListItems(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if typ != "plan" && typ != "wish" {
		http.Error(w, "type must be plan or wish", 400)
		return
	}
	items, err := a.db.ListItems(r.Context(), typ)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"items": items})
}

func (a *api) handleCreateListItem(w http.ResponseWriter, r *http.Request) {
	var in store.ListItem
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		http.Error(w, "text required", 400)
		return
	}
	if in.Type != "plan" && in.Type != "wish" {
		http.Error(w, "type must be plan or wish", 400)
		return
	}
	it, err := a.db.InsertListItem(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	a.bus.Publish(pubsub.Event{Topic: "lists", Op: "created", ID: it.ID})
	writeJSON(w, it)
}

func (a *api) handleToggleListItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	done, err := a.db.ToggleListItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	a.bus.Publish(pubsub.Event{Topic: "lists", Op: "updated", ID: id})
	writeJSON(w, map[string]any{"id": id, "is_completed": done})
}

func (a *api) handleDeleteListItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := a.db.DeleteListItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	a.bus.Publish(pubsub.Event{Topic: "lists", Op: "deleted", ID: id})
	writeJSON(w, map[string]any{"id": id, "deleted": true})
}

//
// ===== memories & places =====
//

func (a *api) handleListMemories(w http.ResponseWriter, r *http.Request) {
	ms, err := a.db.ListMemories(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"memories": ms})
}

func (a *api) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var in store.Memory
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.URL) == "" {
		http.Error(w, "url required", 400)
		return
	}
	if in.Category == "" {
		in.Category = "Anlar"
	}
	m, err := a.db.InsertMemory(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	a.bus.Publish(pubsub.Event{Topic: "memories", Op: "created", ID: m.ID})
	writeJSON(w, m)
}

func (a *api) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	ps, err := a.db.ListPlaces(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"places": ps})
}

func (a *api) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var in store.Place
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		http.Error(w, "title required", 400)
		return
	}
	p, err := a.db.InsertPlace(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, p)
}

//
// ===== love note =====
//

func (a *api) handleLoveNote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Topic string `json:"topic"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Topic) == "" {
		http.Error(w, "topic required", 400)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	note, err := llm.GenerateLoveNote(ctx, in.Topic)
	if err != nil {
		log.Printf("love note generation failed: %v", err)
		writeJSON(w, map[string]any{"note": NoteErrorFallback, "generated": false})
		return
	}
	writeJSON(w, map[string]any{"note": note, "generated": true})
}

//
// ===== dice =====
//

func (a *api) handleDiceRoll(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.dice.Roll())
}

//
// ===== kent =====
//

type kentPayload struct {
	SessionID  string       `json:"session_id"`
	Seq        int64        `json:"seq"`
	State      engine.State `json:"state"`
	Tally      kentTally    `json:"tally"`
	SlapShareA float64      `json:"slap_share_a"`
}

func (a *api) kentSession(w http.ResponseWriter, r *http.Request) *session {
	s, ok := a.sessions.get(chi.URLParam(r, "id"))
	if !ok || s.Kind != kindKent {
		http.Error(w, "session not found", 404)
		return nil
	}
	return s
}

func kentResponse(s *session, seq int64) kentPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kentPayload{
		SessionID:  s.ID,
		Seq:        seq,
		State:      s.Kent.Snapshot(),
		Tally:      s.tally,
		SlapShareA: s.tally.SlapShare(),
	}
}

func (a *api) handleKentCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seed int64 `json:"seed"`
	}
	if r.ContentLength > 0 && !readJSON(w, r, &in) {
		return
	}
	if in.Seed == 0 {
		in.Seed = time.Now().UnixNano()
	}
	s := a.sessions.create(kindKent)
	seq := s.do(func() {
		s.Kent = engine.New()
		s.Kent.StartNewGame(in.Seed)
		s.seed = in.Seed
		s.startedAt = time.Now()
	})
	writeJSON(w, kentResponse(s, seq))
}

func (a *api) handleKentState(w http.ResponseWriter, r *http.Request) {
	s := a.kentSession(w, r)
	if s == nil {
		return
	}
	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()
	writeJSON(w, kentResponse(s, seq))
}

func parsePlayer(s string) (engine.PlayerID, bool) {
	switch engine.PlayerID(strings.ToUpper(strings.TrimSpace(s))) {
	case engine.PlayerA:
		return engine.PlayerA, true
	case engine.PlayerB:
		return engine.PlayerB, true
	}
	return "", false
}

func (a *api) handleKentPlay(w http.ResponseWriter, r *http.Request) {
	s := a.kentSession(w, r)
	if s == nil {
		return
	}
	var in struct {
		Player string `json:"player"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	player, ok := parsePlayer(in.Player)
	if !ok {
		http.Error(w, "player must be A or B", 400)
		return
	}
	var finished bool
	seq := s.do(func() {
		wasOver := s.Kent.Phase == engine.PhaseGameOver
		pileBefore := len(s.Kent.Pile)
		s.Kent.PlayCard(player)
		if len(s.Kent.Pile) > pileBefore {
			s.tally.addPlay(player)
			// A fresh obligation names the actor as beneficiary; a frozen
			// one (slap pending) never does, since the play that froze it
			// kept the previous beneficiary.
			if !s.Kent.SlapClaimable && s.Kent.Penalty.Active && s.Kent.Penalty.Beneficiary == player {
				s.tally.Penalties++
			}
		}
		finished = !wasOver && s.Kent.Phase == engine.PhaseGameOver
	})
	if finished {
		a.persistKentMatch(r.Context(), s)
	}
	writeJSON(w, kentResponse(s, seq))
}

func (a *api) handleKentSlap(w http.ResponseWriter, r *http.Request) {
	s := a.kentSession(w, r)
	if s == nil {
		return
	}
	var in struct {
		Player string `json:"player"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	player, ok := parsePlayer(in.Player)
	if !ok {
		http.Error(w, "player must be A or B", 400)
		return
	}
	seq := s.do(func() {
		claimable := s.Kent.SlapClaimable
		s.Kent.ClaimSlap(player)
		if claimable && !s.Kent.SlapClaimable {
			s.tally.addSlap(player)
		}
	})
	writeJSON(w, kentResponse(s, seq))
}

func (a *api) handleKentCollect(w http.ResponseWriter, r *http.Request) {
	s := a.kentSession(w, r)
	if s == nil {
		return
	}
	seq := s.do(func() { s.Kent.CollectPile() })
	writeJSON(w, kentResponse(s, seq))
}

func (a *api) handleKentRestart(w http.ResponseWriter, r *http.Request) {
	s := a.kentSession(w, r)
	if s == nil {
		return
	}
	var in struct {
		Seed int64 `json:"seed"`
	}
	if r.ContentLength > 0 && !readJSON(w, r, &in) {
		return
	}
	if in.Seed == 0 {
		in.Seed = time.Now().UnixNano()
	}
	seq := s.do(func() {
		s.Kent.StartNewGame(in.Seed)
		s.seed = in.Seed
		s.startedAt = time.Now()
		s.tally.reset()
	})
	writeJSON(w, kentResponse(s, seq))
}

func (a *api) persistKentMatch(ctx context.Context, s *session) {
	if a.db == nil {
		return
	}
	s.mu.Lock()
	m := store.KentMatch{
		Seed:      s.seed,
		Winner:    string(s.Kent.Winner),
		HandA:     len(s.Kent.HandA),
		HandB:     len(s.Kent.HandB),
		PlaysA:    s.tally.PlaysA,
		PlaysB:    s.tally.PlaysB,
		SlapsA:    s.tally.SlapsA,
		SlapsB:    s.tally.SlapsB,
		Penalties: s.tally.Penalties,
		StartedAt: s.startedAt,
	}
	s.mu.Unlock()
	if _, err := a.db.InsertKentMatch(ctx, m); err != nil {
		log.Printf("persist kent match: %v", err)
	}
}

func (a *api) handleKentStats(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		http.Error(w, "history unavailable", 503)
		return
	}
	stats, err := a.db.GetKentStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	recent, err := a.db.RecentKentMatches(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	elo := replayRatings(recent)
	career := kentTally{SlapsA: stats.SlapsA, SlapsB: stats.SlapsB}
	writeJSON(w, map[string]any{
		"stats":        stats,
		"recent":       recent,
		"rating":       map[string]any{"a": elo.A, "b": elo.B, "games": elo.Games},
		"slap_share_a": career.SlapShare(),
	})
}

//
// ===== chase =====
//

type chasePayload struct {
	SessionID string     `json:"session_id"`
	Seq       int64      `json:"seq"`
	Sim       *chase.Sim `json:"sim"`
}

func (a *api) chaseSession(w http.ResponseWriter, r *http.Request) *session {
	s, ok := a.sessions.get(chi.URLParam(r, "id"))
	if !ok || s.Kind != kindChase {
		http.Error(w, "session not found", 404)
		return nil
	}
	return s
}

func (a *api) handleChaseCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seed int64 `json:"seed"`
	}
	if r.ContentLength > 0 && !readJSON(w, r, &in) {
		return
	}
	s := a.sessions.create(kindChase)
	seq := s.do(func() { s.Chase = chase.New(in.Seed) })
	writeJSON(w, chasePayload{SessionID: s.ID, Seq: seq, Sim: s.Chase})
}

func (a *api) handleChaseState(w http.ResponseWriter, r *http.Request) {
	s := a.chaseSession(w, r)
	if s == nil {
		return
	}
	s.mu.Lock()
	out := chasePayload{SessionID: s.ID, Seq: s.seq, Sim: s.Chase}
	defer s.mu.Unlock()
	writeJSON(w, out)
}

func (a *api) handleChaseStep(w http.ResponseWriter, r *http.Request) {
	s := a.chaseSession(w, r)
	if s == nil {
		return
	}
	var in struct {
		DT     float64     `json:"dt"`
		Runner chase.Input `json:"runner"`
		Chaser chase.Input `json:"chaser"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.DT <= 0 || in.DT > 1 {
		http.Error(w, "dt must be in (0, 1]", 400)
		return
	}
	seq := s.do(func() { s.Chase.Step(in.DT, in.Runner, in.Chaser) })
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, chasePayload{SessionID: s.ID, Seq: seq, Sim: s.Chase})
}

func (a *api) handleChaseSulk(w http.ResponseWriter, r *http.Request) {
	s := a.chaseSession(w, r)
	if s == nil {
		return
	}
	var in struct {
		Choice string `json:"choice"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	seq := s.do(func() { s.Chase.Sulk(in.Choice) })
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, chasePayload{SessionID: s.ID, Seq: seq, Sim: s.Chase})
}

func (a *api) handleChaseReset(w http.ResponseWriter, r *http.Request) {
	s := a.chaseSession(w, r)
	if s == nil {
		return
	}
	seq := s.do(func() { s.Chase.Reset() })
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, chasePayload{SessionID: s.ID, Seq: seq, Sim: s.Chase})
}

//
// ===== drawing =====
//

type drawPayload struct {
	SessionID string             `json:"session_id"`
	Seq       int64              `json:"seq"`
	Session   *games.DrawSession `json:"session"`
	Remaining float64            `json:"remaining_seconds"`
}

func (a *api) drawSession(w http.ResponseWriter, r *http.Request) *session {
	s, ok := a.sessions.get(chi.URLParam(r, "id"))
	if !ok || s.Kind != kindDraw {
		http.Error(w, "session not found", 404)
		return nil
	}
	return s
}

func drawResponse(s *session, seq int64) drawPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return drawPayload{
		SessionID: s.ID,
		Seq:       seq,
		Session:   s.Draw,
		Remaining: s.Draw.Remaining().Seconds(),
	}
}

func (a *api) handleDrawCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seed int64 `json:"seed"`
	}
	if r.ContentLength > 0 && !readJSON(w, r, &in) {
		return
	}
	s := a.sessions.create(kindDraw)
	seq := s.do(func() { s.Draw = games.NewDrawSession(in.Seed) })
	writeJSON(w, drawResponse(s, seq))
}

func (a *api) handleDrawState(w http.ResponseWriter, r *http.Request) {
	s := a.drawSession(w, r)
	if s == nil {
		return
	}
	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()
	writeJSON(w, drawResponse(s, seq))
}

func (a *api) handleDrawStart(w http.ResponseWriter, r *http.Request) {
	s := a.drawSession(w, r)
	if s == nil {
		return
	}
	seq := s.do(func() { s.Draw.Start() })
	writeJSON(w, drawResponse(s, seq))
}

func (a *api) handleDrawStroke(w http.ResponseWriter, r *http.Request) {
	s := a.drawSession(w, r)
	if s == nil {
		return
	}
	var in games.Stroke
	if !readJSON(w, r, &in) {
		return
	}
	if in.Side != games.SideLeft && in.Side != games.SideRight {
		http.Error(w, "side must be left or right", 400)
		return
	}
	seq := s.do(func() { s.Draw.AddStroke(in) })
	writeJSON(w, drawResponse(s, seq))
}

func (a *api) handleDrawFinish(w http.ResponseWriter, r *http.Request) {
	s := a.drawSession(w, r)
	if s == nil {
		return
	}
	seq := s.do(func() { s.Draw.Finish() })
	writeJSON(w, drawResponse(s, seq))
}

// handleSessionDelete ends a game session early, when a player backs out of
// full-screen mode instead of waiting for the idle pruner.
func (a *api) handleSessionDelete(kind sessionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, ok := a.sessions.get(id)
		if !ok || s.Kind != kind {
			http.Error(w, "session not found", 404)
			return
		}
		a.sessions.remove(id)
		writeJSON(w, map[string]any{"id": id, "deleted": true})
	}
}

//
// ===== change feeds =====
//

// feed streams change notifications for one topic over SSE. With NATS the
// wakeups are instant; without it the client still gets a periodic sync tick
// so the fallback is just slower, never broken.
func (a *api) feed(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "stream unsupported", 500)
			return
		}

		events := make(chan pubsub.Event, 16)
		stop, err := a.bus.Subscribe(topic, func(ev pubsub.Event) {
			select {
			case events <- ev:
			default:
			}
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer stop()

		enc := json.NewEncoder(w)
		send := func(name string, v any) {
			w.Write([]byte("event: " + name + "\n"))
			w.Write([]byte("data: "))
			_ = enc.Encode(v)
			w.Write([]byte("\n"))
			flusher.Flush()
		}
		send("sync", pubsub.Event{Topic: topic, Op: "sync"})

		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				send("change", ev)
			case <-ticker.C:
				send("sync", pubsub.Event{Topic: topic, Op: "sync"})
			}
		}
	}
}

//
// ===== helpers =====
//

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request body: "+err.Error(), 400)
		return false
	}
	return true
}
