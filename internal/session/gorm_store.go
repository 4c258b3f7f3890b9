package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

type credentialRecord struct {
	SessionID string         `gorm:"primaryKey;size:64"`
	Token     string         `gorm:"type:text;not null;default:''"`
	Profile   datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (credentialRecord) TableName() string {
	return "client_sessions"
}

// GormStore keeps credentials in a postgres table, one row per browser.
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore connects to postgres and migrates the credential table.
func OpenGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&credentialRecord{}); err != nil {
		return nil, fmt.Errorf("migrate client_sessions: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) find(ctx context.Context, sid string) (*credentialRecord, error) {
	var record credentialRecord
	err := s.db.WithContext(ctx).Where("session_id = ?", sid).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) GetToken(ctx context.Context, sid string) (string, error) {
	record, err := s.find(ctx, sid)
	if err != nil || record == nil {
		return "", err
	}
	return record.Token, nil
}

func (s *GormStore) SetToken(ctx context.Context, sid, token string) error {
	record := credentialRecord{SessionID: sid, Token: token, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&record).Error
}

func (s *GormStore) RemoveToken(ctx context.Context, sid string) error {
	return s.db.WithContext(ctx).Model(&credentialRecord{}).
		Where("session_id = ?", sid).
		Updates(map[string]interface{}{"token": "", "updated_at": time.Now()}).Error
}

func (s *GormStore) GetUser(ctx context.Context, sid string) (*models.User, error) {
	record, err := s.find(ctx, sid)
	if err != nil || record == nil || len(record.Profile) == 0 || string(record.Profile) == "null" {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(record.Profile, &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &user, nil
}

func (s *GormStore) SetUser(ctx context.Context, sid string, user *models.User) error {
	if user == nil {
		return s.RemoveUser(ctx, sid)
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	record := credentialRecord{SessionID: sid, Profile: datatypes.JSON(profile), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile", "updated_at"}),
	}).Create(&record).Error
}

// RemoveUser deletes the row once neither token nor profile remain.
func (s *GormStore) RemoveUser(ctx context.Context, sid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&credentialRecord{}).
			Where("session_id = ?", sid).
			Updates(map[string]interface{}{"profile": nil, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ? AND token = ''", sid).Delete(&credentialRecord{}).Error
	})
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether postgres is reachable.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
