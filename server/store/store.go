package store

import (
	"context"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// ErrNotFound is returned when a row lookup comes up empty.
var ErrNotFound = errors.New("not found")

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Sticky notes
------------------------------*/

type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	Date      string    `json:"date"`
	Rotation  float64   `json:"rotation"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) InsertNote(ctx context.Context, n Note) (Note, error) {
	n.ID = uuid.NewString()
	err := db.QueryRow(ctx, `
        INSERT INTO notes(id, text, category, color, date, rotation)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at
    `, n.ID, n.Text, n.Category, n.Color, n.Date, n.Rotation).Scan(&n.CreatedAt)
	return n, err
}

// ListNotes returns notes newest first. Category "" or "Hepsi" means all.
func (db *DB) ListNotes(ctx context.Context, category string) ([]Note, error) {
	query := `
        SELECT id, text, category, color, date, rotation, created_at
          FROM notes`
	args := []any{}
	if category != "" && category != "Hepsi" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Text, &n.Category, &n.Color, &n.Date, &n.Rotation, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

/* -----------------------------
   Plans & wishes
------------------------------*/

type ListItem struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Type        string    `json:"type"` // plan|wish
	IsCompleted bool      `json:"is_completed"`
	TargetDate  *string   `json:"target_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (db *DB) InsertListItem(ctx context.Context, it ListItem) (ListItem, error) {
	it.ID = uuid.NewString()
	var date any
	if it.TargetDate != nil && strings.TrimSpace(*it.TargetDate) != "" {
		date = *it.TargetDate
	}
	err := db.QueryRow(ctx, `
        INSERT INTO list_items(id, text, type, is_completed, target_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at
    `, it.ID, it.Text, it.Type, it.IsCompleted, date).Scan(&it.CreatedAt)
	return it, err
}

// ListItems returns the plan or wish list newest first.
func (db *DB) ListItems(ctx context.Context, typ string) ([]ListItem, error) {
	rows, err := db.Query(ctx, `
        SELECT id, text, type, is_completed, target_date, created_at
          FROM list_items
         WHERE type = $1
         ORDER BY created_at DESC
    `, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ListItem{}
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.Text, &it.Type, &it.IsCompleted, &it.TargetDate, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ToggleListItem flips the completion flag and returns the new value.
func (db *DB) ToggleListItem(ctx context.Context, id string) (bool, error) {
	var done bool
	err := db.QueryRow(ctx, `
        UPDATE list_items SET is_completed = NOT is_completed
         WHERE id = $1
        RETURNING is_completed
    `, id).Scan(&done)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return done, err
}

func (db *DB) DeleteListItem(ctx context.Context, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* -----------------------------
   Memories gallery
------------------------------*/

type Memory struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) InsertMemory(ctx context.Context, m Memory) (Memory, error) {
	m.ID = uuid.NewString()
	err := db.QueryRow(ctx, `
        INSERT INTO memories(id, url, caption, category, date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at
    `, m.ID, m.URL, m.Caption, m.Category, m.Date).Scan(&m.CreatedAt)
	return m, err
}

// ListMemories returns the gallery newest first. Category "" or "Hepsi"
// means all.
func (db *DB) ListMemories(ctx context.Context, category string) ([]Memory, error) {
	query := `
        SELECT id, url, caption, category, date, created_at
          FROM memories`
	args := []any{}
	if category != "" && category != "Hepsi" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Memory{}
	for rows.Next() {
		var m Memory
		if err := rows.Scan(&m.ID, &m.URL, &m.Caption, &m.Category, &m.Date, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

/* -----------------------------
   Map places
------------------------------*/

type Place struct {
	ID          int64  `json:"id"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Coords      string `json:"coords"` // "lat,lng"
	Label       string `json:"label"`
}

func (db *DB) InsertPlace(ctx context.Context, p Place) (Place, error) {
	err := db.QueryRow(ctx, `
        INSERT INTO places(position, title, description, coords, label)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id
    `, p.Position, p.Title, p.Description, p.Coords, p.Label).Scan(&p.ID)
	return p, err
}

func (db *DB) ListPlaces(ctx context.Context) ([]Place, error) {
	rows, err := db.Query(ctx, `
        SELECT id, position, title, description, coords, label
          FROM places
         ORDER BY position
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Place{}
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.Position, &p.Title, &p.Description, &p.Coords, &p.Label); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

/* -----------------------------
   Kent match history
------------------------------*/

type KentMatch struct {
	ID        int64     `json:"id"`
	Seed      int64     `json:"seed"`
	Winner    string    `json:"winner"`
	HandA     int       `json:"hand_a"`
	HandB     int       `json:"hand_b"`
	PlaysA    int       `json:"plays_a"`
	PlaysB    int       `json:"plays_b"`
	SlapsA    int       `json:"slaps_a"`
	SlapsB    int       `json:"slaps_b"`
	Penalties int       `json:"penalties"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (db *DB) InsertKentMatch(ctx context.Context, m KentMatch) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO kent_matches(
            seed, winner, hand_a, hand_b,
            plays_a, plays_b, slaps_a, slaps_b, penalties,
            started_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id
    `, m.Seed, m.Winner, m.HandA, m.HandB,
		m.PlaysA, m.PlaysB, m.SlapsA, m.SlapsB, m.Penalties,
		m.StartedAt).Scan(&id)
	return id, err
}

// KentStats is the career scoreboard across all recorded matches.
type KentStats struct {
	Matches   int `json:"matches"`
	WinsA     int `json:"wins_a"`
	WinsB     int `json:"wins_b"`
	SlapsA    int `json:"slaps_a"`
	SlapsB    int `json:"slaps_b"`
	Penalties int `json:"penalties"`
}

func (db *DB) GetKentStats(ctx context.Context) (KentStats, error) {
	var s KentStats
	err := db.QueryRow(ctx, `
        SELECT COUNT(*)::int,
               COALESCE(SUM(CASE WHEN winner = 'A' THEN 1 ELSE 0 END), 0)::int,
               COALESCE(SUM(CASE WHEN winner = 'B' THEN 1 ELSE 0 END), 0)::int,
               COALESCE(SUM(slaps_a), 0)::int,
               COALESCE(SUM(slaps_b), 0)::int,
               COALESCE(SUM(penalties), 0)::int
          FROM kent_matches
    `).Scan(&s.Matches, &s.WinsA, &s.WinsB, &s.SlapsA, &s.SlapsB, &s.Penalties)
	return s, err
}

// RecentKentMatches returns the latest finished matches, newest first.
func (db *DB) RecentKentMatches(ctx context.Context, limit int) ([]KentMatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
        SELECT id, seed, winner, hand_a, hand_b,
               plays_a, plays_b, slaps_a, slaps_b, penalties,
               started_at, ended_at
          FROM kent_matches
         ORDER BY ended_at DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []KentMatch{}
	for rows.Next() {
		var m KentMatch
		if err := rows.Scan(&m.ID, &m.Seed, &m.Winner, &m.HandA, &m.HandB,
			&m.PlaysA, &m.PlaysB, &m.SlapsA, &m.SlapsB, &m.Penalties,
			&m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
