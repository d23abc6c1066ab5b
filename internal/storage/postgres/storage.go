// Package postgres is a relational registration backend built on gorm.
// A unique index on the normalized player name is the uniqueness constraint
// and an auto-increment sequence column preserves insertion order.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage"
)

// registrationRow is the persisted form of a registration
type registrationRow struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)"`
	Seq            int64     `gorm:"autoIncrement;not null;index"`
	Faction        string    `gorm:"not null;index"`
	PlayerName     string    `gorm:"not null"`
	NormalizedName string    `gorm:"not null;uniqueIndex"`
	CharacterUUID  *string   `gorm:"column:character_uuid"`
	TeamName       *string
	RegisteredAt   time.Time `gorm:"not null;index"`
	OwnerSecret    string    `gorm:"not null"`
}

func (registrationRow) TableName() string {
	return "faction_registrations"
}

func rowFromModel(reg *model.Registration) *registrationRow {
	c := reg.Clone()
	return &registrationRow{
		ID:             string(c.ID),
		Faction:        string(c.Faction),
		PlayerName:     c.PlayerName,
		NormalizedName: c.NormalizedName(),
		CharacterUUID:  c.CharacterUUID,
		TeamName:       c.TeamName,
		RegisteredAt:   c.RegisteredAt,
		OwnerSecret:    c.OwnerSecret,
	}
}

func (r *registrationRow) toModel() *model.Registration {
	return &model.Registration{
		ID:            model.RegistrationID(r.ID),
		Faction:       model.Faction(r.Faction),
		PlayerName:    r.PlayerName,
		CharacterUUID: r.CharacterUUID,
		TeamName:      r.TeamName,
		RegisteredAt:  r.RegisteredAt.UTC(),
		OwnerSecret:   r.OwnerSecret,
	}
}

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// NewConnection opens a gorm connection with driver error translation
// enabled, so unique-index violations surface as gorm.ErrDuplicatedKey
func NewConnection(databaseURL string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
}

// New connects to databaseURL and migrates the registrations table
func New(databaseURL string) (*Storage, error) {
	db, err := NewConnection(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing connection and migrates the schema
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&registrationRow{}); err != nil {
		return nil, fmt.Errorf("migrate registrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) ListRegistrations(ctx context.Context) ([]*model.Registration, error) {
	var rows []registrationRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	regs := make([]*model.Registration, len(rows))
	for i := range rows {
		regs[i] = rows[i].toModel()
	}
	return regs, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.Registration, error) {
	var row registrationRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRegistrationNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	return translate(s.db.WithContext(ctx).Create(rowFromModel(reg)).Error)
}

func (s *Storage) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	row := rowFromModel(reg)
	result := s.db.WithContext(ctx).
		Model(&registrationRow{}).
		Where("id = ?", row.ID).
		Select("faction", "player_name", "normalized_name", "character_uuid", "team_name").
		Updates(row)
	if err := translate(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

func (s *Storage) DeleteRegistration(ctx context.Context, id model.RegistrationID) error {
	result := s.db.WithContext(ctx).Delete(&registrationRow{}, "id = ?", string(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicatePlayer
	}
	return err
}
