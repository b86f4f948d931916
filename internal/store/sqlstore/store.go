package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger forwards GORM output to the application logger
type gormLogger struct {
	level gormlogger.LogLevel
	log   logger.Logger
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{level: level, log: l.log}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("gorm query error",
			logger.Error(err),
			logger.Duration("duration", elapsed),
			logger.String("sql", sql),
			logger.Int64("rows", rows))
	case elapsed > slowQueryThreshold:
		l.log.Warn("slow query",
			logger.Duration("duration", elapsed),
			logger.String("sql", sql),
			logger.Int64("rows", rows))
	case l.level >= gormlogger.Info:
		l.log.Debug("gorm query",
			logger.Duration("duration", elapsed),
			logger.String("sql", sql),
			logger.Int64("rows", rows))
	}
}

// Store persists comments in SQLite
type Store struct {
	db *gorm.DB
}

var _ store.CommentStore = (*Store)(nil)

// Open opens (and migrates) the database at path. debug enables query traces.
func Open(path string, debug bool, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  (&gormLogger{log: log}).LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&commentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate comments schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Name() string { return "sqlite" }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	in := c.Clone()
	in.ApplyDefaults()
	row := toRow(in)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	var row commentRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]*domain.Comment, error) {
	q := s.db.WithContext(ctx).Model(&commentRow{})
	if f.PageURL != "" {
		q = q.Where("page_url = ?", f.PageURL)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var rows []commentRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	out := make([]*domain.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	var out *domain.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row commentRow
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		current := row.toDomain()
		u.Apply(current, time.Now())

		updates := map[string]interface{}{
			"content":     current.Content,
			"status":      string(current.Status),
			"priority":    string(current.Priority),
			"category":    string(current.Category),
			"resolution":  current.Resolution,
			"assigned_to": current.AssignedTo,
			"updated_at":  current.UpdatedAt.UTC(),
		}
		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return err
		}
		out = current
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&commentRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
