package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/entigraph/enrichmesh/core"
)

// summaryRecord is the database shape of a core.Summary. Structured fields
// travel as JSON text so the schema stays stable as payloads evolve.
type summaryRecord struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID     string `gorm:"size:64;uniqueIndex;not null"`
	EntityName    string `gorm:"size:256;index;not null"`
	CollectedData string `gorm:"type:longtext"`
	Metrics       string `gorm:"type:text"`
	Errors        string `gorm:"type:text"`
	Warnings      string `gorm:"type:text"`
	StartTime     time.Time
	DurationNS    int64
	CreatedAt     time.Time
}

// TableName keeps the table name explicit.
func (summaryRecord) TableName() string { return "session_summaries" }

// MySQLStore persists summaries in MySQL through gorm.
type MySQLStore struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL, ensures sane DSN parameters, migrates the
// schema and returns the store.
func OpenMySQL(dsn string) (*MySQLStore, error) {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return NewMySQLStore(db)
}

// NewMySQLStore wraps an existing gorm handle and migrates the schema.
func NewMySQLStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(&summaryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session_summaries: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

// Save implements SummaryStore with an upsert on session id.
func (s *MySQLStore) Save(ctx context.Context, summary core.Summary) error {
	record, err := toRecord(summary)
	if err != nil {
		return err
	}

	var existing summaryRecord
	err = s.db.WithContext(ctx).Where("session_id = ?", summary.SessionID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.WithContext(ctx).Create(&record).Error
	case err != nil:
		return err
	default:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(&record).Error
	}
}

// Get implements SummaryStore.
func (s *MySQLStore) Get(ctx context.Context, sessionID string) (core.Summary, error) {
	var record summaryRecord
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return core.Summary{}, err
	}
	return fromRecord(record)
}

// ListByEntity implements SummaryStore.
func (s *MySQLStore) ListByEntity(ctx context.Context, entityName string, limit int) ([]core.Summary, error) {
	query := s.db.WithContext(ctx).
		Where("entity_name = ?", entityName).
		Order("start_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []summaryRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	summaries := make([]core.Summary, 0, len(records))
	for _, record := range records {
		summary, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func toRecord(summary core.Summary) (summaryRecord, error) {
	collected, err := json.Marshal(summary.CollectedData)
	if err != nil {
		return summaryRecord{}, fmt.Errorf("encode collected data: %w", err)
	}
	metrics, err := json.Marshal(summary.Metrics)
	if err != nil {
		return summaryRecord{}, fmt.Errorf("encode metrics: %w", err)
	}
	errs, err := json.Marshal(summary.Errors)
	if err != nil {
		return summaryRecord{}, fmt.Errorf("encode errors: %w", err)
	}
	warnings, err := json.Marshal(summary.Warnings)
	if err != nil {
		return summaryRecord{}, fmt.Errorf("encode warnings: %w", err)
	}

	return summaryRecord{
		SessionID:     summary.SessionID,
		EntityName:    summary.EntityName,
		CollectedData: string(collected),
		Metrics:       string(metrics),
		Errors:        string(errs),
		Warnings:      string(warnings),
		StartTime:     summary.StartTime,
		DurationNS:    int64(summary.Duration),
	}, nil
}

func fromRecord(record summaryRecord) (core.Summary, error) {
	summary := core.Summary{
		SessionID:  record.SessionID,
		EntityName: record.EntityName,
		StartTime:  record.StartTime,
		Duration:   time.Duration(record.DurationNS),
	}
	if err := json.Unmarshal([]byte(record.CollectedData), &summary.CollectedData); err != nil {
		return core.Summary{}, fmt.Errorf("decode collected data: %w", err)
	}
	if err := json.Unmarshal([]byte(record.Metrics), &summary.Metrics); err != nil {
		return core.Summary{}, fmt.Errorf("decode metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(record.Errors), &summary.Errors); err != nil {
		return core.Summary{}, fmt.Errorf("decode errors: %w", err)
	}
	if err := json.Unmarshal([]byte(record.Warnings), &summary.Warnings); err != nil {
		return core.Summary{}, fmt.Errorf("decode warnings: %w", err)
	}
	return summary, nil
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}
