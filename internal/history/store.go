package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY,
		createdAt REAL NOT NULL,
		timestamp TEXT NOT NULL,
		original TEXT NOT NULL DEFAULT '',
		translated TEXT NOT NULL
	);
`

// Store - архив журнала в SQLite. Хранит не больше Capacity записей.
type Store struct {
	db *sql.DB
}

// OpenStore открывает или создаёт архив. ":memory:" открывает
// временную базу.
func OpenStore(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save добавляет запись и удаляет всё сверх Capacity.
func (s *Store) Save(rec Record) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO records (id, createdAt, timestamp, original, translated)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, unixFromTime(rec.Time), rec.Timestamp, rec.Original, rec.Translated)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return s.trim()
}

func (s *Store) trim() error {
	_, err := s.db.Exec(`
		DELETE FROM records
		WHERE id NOT IN (SELECT id FROM records ORDER BY id DESC LIMIT ?)
	`, Capacity)
	if err != nil {
		return fmt.Errorf("trim records: %w", err)
	}
	return nil
}

// Load возвращает до limit последних записей, новые первыми.
func (s *Store) Load(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = Capacity
	}
	rows, err := s.db.Query(`
		SELECT id, createdAt, timestamp, original, translated
		FROM records
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt float64
		if err := rows.Scan(&r.ID, &createdAt, &r.Timestamp, &r.Original, &r.Translated); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Time = timeFromUnix(createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Clear удаляет все записи.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
