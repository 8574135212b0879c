package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hourlytracker/tracker-bot/internal/models"
	"github.com/lib/pq"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func tableFor(kind models.LogKind) string {
	switch kind {
	case models.KindSleep:
		return "sleep_logs"
	case models.KindEnergy:
		return "energy_logs"
	case models.KindHourly:
		return "hourly_logs"
	case models.KindThought:
		return "thoughts_logs"
	}
	return ""
}

func (s *PostgresStorage) FindUser(ctx context.Context, contactID string) (*models.User, error) {
	query := `
		SELECT id, contact_id, name, created_at
		FROM users
		WHERE contact_id = $1
		LIMIT 1`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, contactID).Scan(&user.ID, &user.ContactID, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	return user, nil
}

// GetOrCreateUser is a plain read-then-insert: two concurrent first
// contacts from the same sender can each take the insert path.
func (s *PostgresStorage) GetOrCreateUser(ctx context.Context, contactID, name string) (*models.User, error) {
	user, err := s.FindUser(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	query := `
		INSERT INTO users (contact_id, name)
		VALUES ($1, $2)
		RETURNING id, contact_id, name, created_at`

	user = &models.User{}
	err = s.db.QueryRowContext(ctx, query, contactID, name).Scan(&user.ID, &user.ContactID, &user.Name, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *PostgresStorage) SaveSleepLog(ctx context.Context, log *models.SleepLog) error {
	query := `
		INSERT INTO sleep_logs (user_id, bedtime, wake_time, sleep_quality, tiredness_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sleep_date, logged_at`

	// The DATE column scans as time.Time; keep the field in YYYY-MM-DD
	// form, matching the in-memory backend.
	var sleepDate time.Time
	err := s.db.QueryRowContext(ctx, query,
		log.UserID,
		log.Bedtime,
		log.WakeTime,
		log.Quality,
		log.Tiredness,
	).Scan(&log.ID, &sleepDate, &log.LoggedAt)

	if err != nil {
		return fmt.Errorf("error saving sleep log: %w", err)
	}

	log.SleepDate = sleepDate.Format("2006-01-02")
	return nil
}

func (s *PostgresStorage) SaveEnergyLog(ctx context.Context, log *models.EnergyLog) error {
	query := `
		INSERT INTO energy_logs (user_id, energy_level)
		VALUES ($1, $2)
		RETURNING id, logged_at`

	err := s.db.QueryRowContext(ctx, query, log.UserID, log.Level).Scan(&log.ID, &log.LoggedAt)
	if err != nil {
		return fmt.Errorf("error saving energy log: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SaveHourlyLog(ctx context.Context, log *models.HourlyLog) error {
	query := `
		INSERT INTO hourly_logs (user_id, hour_rating, activity)
		VALUES ($1, $2, $3)
		RETURNING id, logged_at`

	err := s.db.QueryRowContext(ctx, query, log.UserID, log.Rating, log.Activity).Scan(&log.ID, &log.LoggedAt)
	if err != nil {
		return fmt.Errorf("error saving hourly log: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SaveThoughtLog(ctx context.Context, log *models.ThoughtLog) error {
	query := `
		INSERT INTO thoughts_logs (user_id, content, log_type, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, logged_at`

	err := s.db.QueryRowContext(ctx, query,
		log.UserID,
		log.Content,
		log.Type,
		pq.Array(log.Tags),
	).Scan(&log.ID, &log.LoggedAt)

	if err != nil {
		return fmt.Errorf("error saving thought log: %w", err)
	}

	return nil
}

func (s *PostgresStorage) LastEntry(ctx context.Context, userID int64, kind models.LogKind) (*models.LastEntry, error) {
	var entry *models.LastEntry
	var err error

	switch kind {
	case models.KindSleep:
		log := &models.SleepLog{}
		err = s.db.QueryRowContext(ctx, `
			SELECT id, user_id, bedtime, wake_time, sleep_quality, tiredness_level, logged_at
			FROM sleep_logs
			WHERE user_id = $1
			ORDER BY logged_at DESC
			LIMIT 1`, userID,
		).Scan(&log.ID, &log.UserID, &log.Bedtime, &log.WakeTime, &log.Quality, &log.Tiredness, &log.LoggedAt)
		entry = &models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt}

	case models.KindEnergy:
		log := &models.EnergyLog{}
		err = s.db.QueryRowContext(ctx, `
			SELECT id, user_id, energy_level, logged_at
			FROM energy_logs
			WHERE user_id = $1
			ORDER BY logged_at DESC
			LIMIT 1`, userID,
		).Scan(&log.ID, &log.UserID, &log.Level, &log.LoggedAt)
		entry = &models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt}

	case models.KindHourly:
		log := &models.HourlyLog{}
		err = s.db.QueryRowContext(ctx, `
			SELECT id, user_id, hour_rating, activity, logged_at
			FROM hourly_logs
			WHERE user_id = $1
			ORDER BY logged_at DESC
			LIMIT 1`, userID,
		).Scan(&log.ID, &log.UserID, &log.Rating, &log.Activity, &log.LoggedAt)
		entry = &models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt}

	case models.KindThought:
		log := &models.ThoughtLog{}
		err = s.db.QueryRowContext(ctx, `
			SELECT id, user_id, content, log_type, logged_at
			FROM thoughts_logs
			WHERE user_id = $1
			ORDER BY logged_at DESC
			LIMIT 1`, userID,
		).Scan(&log.ID, &log.UserID, &log.Content, &log.Type, &log.LoggedAt)
		entry = &models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt}

	default:
		return nil, fmt.Errorf("unknown log kind: %s", kind)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying last %s entry: %w", kind, err)
	}

	return entry, nil
}

func (s *PostgresStorage) DeleteEntry(ctx context.Context, id int64, kind models.LogKind) error {
	table := tableFor(kind)
	if table == "" {
		return fmt.Errorf("unknown log kind: %s", kind)
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("error deleting %s entry: %w", kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no %s entry with id %d", kind, id)
	}

	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
