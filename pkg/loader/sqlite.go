package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	year INTEGER NOT NULL,
	month INTEGER,
	country TEXT,
	region TEXT,
	best REAL,
	deaths_a REAL,
	deaths_b REAL,
	deaths_civilians REAL,
	deaths_unknown REAL,
	type_of_violence INTEGER,
	side_a TEXT,
	side_b TEXT,
	latitude REAL,
	longitude REAL
);

CREATE INDEX IF NOT EXISTS idx_events_year ON events(year);
`

// eventRow mirrors the events table. Every column but year may be NULL.
type eventRow struct {
	ID              sql.NullString  `db:"id"`
	Year            sql.NullInt64   `db:"year"`
	Month           sql.NullInt64   `db:"month"`
	Country         sql.NullString  `db:"country"`
	Region          sql.NullString  `db:"region"`
	Best            sql.NullFloat64 `db:"best"`
	DeathsA         sql.NullFloat64 `db:"deaths_a"`
	DeathsB         sql.NullFloat64 `db:"deaths_b"`
	DeathsCivilians sql.NullFloat64 `db:"deaths_civilians"`
	DeathsUnknown   sql.NullFloat64 `db:"deaths_unknown"`
	ViolenceType    sql.NullInt64   `db:"type_of_violence"`
	SideA           sql.NullString  `db:"side_a"`
	SideB           sql.NullString  `db:"side_b"`
	Latitude        sql.NullFloat64 `db:"latitude"`
	Longitude       sql.NullFloat64 `db:"longitude"`
}

func (r *eventRow) event(row int) model.Event {
	e := model.Event{
		ID:              r.ID.String,
		Year:            int(r.Year.Int64),
		Month:           int(r.Month.Int64),
		Country:         r.Country.String,
		Region:          r.Region.String,
		Best:            r.Best.Float64,
		DeathsA:         r.DeathsA.Float64,
		DeathsB:         r.DeathsB.Float64,
		DeathsCivilians: r.DeathsCivilians.Float64,
		DeathsUnknown:   r.DeathsUnknown.Float64,
		ViolenceType:    violenceType(int(r.ViolenceType.Int64)),
		SideA:           r.SideA.String,
		SideB:           r.SideB.String,
	}
	if e.ID == "" {
		e.ID = strconv.Itoa(row)
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		e.Latitude, e.Longitude, e.HasCoordinates = r.Latitude.Float64, r.Longitude.Float64, true
	}
	return e
}

// SQLiteSource reads the events table of a SQLite database
type SQLiteSource struct {
	path string
}

// NewSQLiteSource creates a source for the given database file
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

// Path returns the database file
func (s *SQLiteSource) Path() string {
	return s.path
}

// Load reads every row, ordered by rowid so event order is stable
func (s *SQLiteSource) Load(ctx context.Context) ([]model.Event, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}

	conn, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	var rows []eventRow
	query := `SELECT id, year, month, country, region, best, deaths_a, deaths_b,
		deaths_civilians, deaths_unknown, type_of_violence, side_a, side_b,
		latitude, longitude
		FROM events ORDER BY rowid`
	if err := conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query events in %s: %w", s.path, err)
	}

	events := make([]model.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].event(i+1))
	}

	logging.Info("loaded events", "source", s.path, "count", len(events))
	return events, nil
}

// SaveSQLite writes events into the events table of a database, replacing
// its previous contents
func SaveSQLite(ctx context.Context, path string, events []model.Event) error {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return err
	}

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO events
		(id, year, month, country, region, best, deaths_a, deaths_b,
		 deaths_civilians, deaths_unknown, type_of_violence, side_a, side_b,
		 latitude, longitude)
		VALUES (:id, :year, :month, :country, :region, :best, :deaths_a, :deaths_b,
		 :deaths_civilians, :deaths_unknown, :type_of_violence, :side_a, :side_b,
		 :latitude, :longitude)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range events {
		if _, err := stmt.ExecContext(ctx, rowFromEvent(&events[i])); err != nil {
			return fmt.Errorf("insert event %s: %w", events[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Info("saved events", "path", path, "count", len(events))
	return nil
}

func rowFromEvent(e *model.Event) eventRow {
	r := eventRow{
		ID:              sql.NullString{String: e.ID, Valid: true},
		Year:            sql.NullInt64{Int64: int64(e.Year), Valid: true},
		Month:           sql.NullInt64{Int64: int64(e.Month), Valid: e.Month > 0},
		Country:         sql.NullString{String: e.Country, Valid: true},
		Region:          sql.NullString{String: e.Region, Valid: true},
		Best:            sql.NullFloat64{Float64: e.Best, Valid: true},
		DeathsA:         sql.NullFloat64{Float64: e.DeathsA, Valid: true},
		DeathsB:         sql.NullFloat64{Float64: e.DeathsB, Valid: true},
		DeathsCivilians: sql.NullFloat64{Float64: e.DeathsCivilians, Valid: true},
		DeathsUnknown:   sql.NullFloat64{Float64: e.DeathsUnknown, Valid: true},
		ViolenceType:    sql.NullInt64{Int64: int64(e.ViolenceType), Valid: e.ViolenceType != model.ViolenceAny},
		SideA:           sql.NullString{String: e.SideA, Valid: true},
		SideB:           sql.NullString{String: e.SideB, Valid: true},
	}
	if e.HasCoordinates {
		r.Latitude = sql.NullFloat64{Float64: e.Latitude, Valid: true}
		r.Longitude = sql.NullFloat64{Float64: e.Longitude, Valid: true}
	}
	return r
}
