package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

//go:embed schema.sql
var schemaSQL string

// sqlColumns maps projectable columns to their qualified SQL expressions.
var sqlColumns = map[weather.Column]string{
	weather.ColumnWeatherID:       "weather._id",
	weather.ColumnDate:            "weather.date",
	weather.ColumnShortDesc:       "weather.short_desc",
	weather.ColumnMaxTemp:         "weather.max",
	weather.ColumnMinTemp:         "weather.min",
	weather.ColumnHumidity:        "weather.humidity",
	weather.ColumnPressure:        "weather.pressure",
	weather.ColumnWindSpeed:       "weather.wind",
	weather.ColumnDegrees:         "weather.degrees",
	weather.ColumnConditionID:     "weather.weather_id",
	weather.ColumnLocationSetting: "location.location_setting",
	weather.ColumnCityName:        "location.city_name",
	weather.ColumnCoordLat:        "location.coord_lat",
	weather.ColumnCoordLong:       "location.coord_long",
}

// SQLStore is a forecast store backed by SQLite.
type SQLStore struct {
	db        *sql.DB
	logger    *slog.Logger
	observers observers
}

// OpenSQLite opens the database at path and makes sure the schema exists.
// Use ":memory:" for an in-memory database.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := NewSQLStore(db, logger)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. The schema is not touched.
func NewSQLStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, logger: logger.With(slog.String("store", "sqlite"))}
}

// InitSchema creates the tables if they do not exist yet.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Query implements loader.Querier. Rows are read eagerly so no connection is
// held while the result set sits on screen.
func (s *SQLStore) Query(ctx context.Context, d query.Descriptor) (query.ResultSet, error) {
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}
	p, err := parseSource(d)
	if err != nil {
		return nil, err
	}

	stmt, args := buildSelect(p, d)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast: %w", err)
	}
	defer rows.Close()

	width := len(d.Columns())
	var out [][]any
	for rows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read forecast rows: %w", err)
	}

	s.logger.Debug("query", slog.String("source", string(d.Source())), slog.Int("rows", len(out)))
	return query.NewSliceResultSet(out), nil
}

func buildSelect(p weather.ParsedLocator, d query.Descriptor) (string, []any) {
	cols := d.Columns()
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = sqlColumns[c]
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	b.WriteString(" FROM weather INNER JOIN location ON weather.location_id = location._id")
	b.WriteString(" WHERE location.location_setting = ?")
	args := []any{p.Setting}

	switch p.Kind {
	case weather.LocatorLocationWithStartDate:
		b.WriteString(" AND weather.date >= ?")
		args = append(args, p.Date)
	case weather.LocatorLocationWithDate:
		b.WriteString(" AND weather.date = ?")
		args = append(args, p.Date)
	}

	if f, ok := d.Filter(); ok {
		fmt.Fprintf(&b, " AND %s %s ?", sqlColumns[f.Column], f.Op)
		args = append(args, f.Value)
	}

	if orders := d.Sort(); len(orders) > 0 {
		clauses := make([]string, len(orders))
		for i, o := range orders {
			dir := "ASC"
			if o.Descending {
				dir = "DESC"
			}
			clauses[i] = sqlColumns[o.Column] + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(clauses, ", "))
	}
	return b.String(), args
}

// SaveForecast upserts the location and its days in one transaction, then
// notifies subscribers.
func (s *SQLStore) SaveForecast(ctx context.Context, loc weather.Location, days []weather.DayForecast) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO location (location_setting, city_name, coord_lat, coord_long) VALUES (?, ?, ?, ?)
		 ON CONFLICT(location_setting) DO UPDATE SET
		   city_name = excluded.city_name,
		   coord_lat = COALESCE(excluded.coord_lat, location.coord_lat),
		   coord_long = COALESCE(excluded.coord_long, location.coord_long)`,
		loc.Setting, loc.City, nullFloat(loc.Lat), nullFloat(loc.Lon),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}

	var locationID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT _id FROM location WHERE location_setting = ?`, loc.Setting,
	).Scan(&locationID); err != nil {
		return fmt.Errorf("failed to resolve location: %w", err)
	}

	for _, day := range days {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO weather (location_id, date, short_desc, weather_id, min, max, humidity, pressure, wind, degrees)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(date, location_id) DO UPDATE SET
			   short_desc = excluded.short_desc,
			   weather_id = excluded.weather_id,
			   min = excluded.min,
			   max = excluded.max,
			   humidity = excluded.humidity,
			   pressure = excluded.pressure,
			   wind = excluded.wind,
			   degrees = excluded.degrees`,
			locationID, day.Date, day.Description, day.ConditionID, day.MinTempC, day.MaxTempC,
			day.HumidityPct, day.PressureHpa, day.WindSpeedMS, day.WindDegrees,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert forecast for %d: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit forecast: %w", err)
	}

	s.logger.Info("forecast saved", slog.String("location", loc.Setting), slog.Int("days", len(days)))
	s.observers.notify()
	return nil
}

// PurgeBefore deletes every day dated before cutoff.
func (s *SQLStore) PurgeBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM weather WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old forecasts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged forecasts: %w", err)
	}
	if n > 0 {
		s.observers.notify()
	}
	return n, nil
}

// Subscribe implements loader.Observable.
func (s *SQLStore) Subscribe(fn func()) func() {
	return s.observers.subscribe(fn)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
