package history

import (
	"errors"

	"github.com/robgonnella/ipscannr/internal/exception"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteRepo is our repo implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new SqliteRepo backed by db
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{db: db}
}

// NewSqliteDatabase opens and migrates the history database at dbFile
func NewSqliteDatabase(dbFile string) (*SqliteRepo, error) {
	if dbFile == "" {
		return nil, errors.New("history database file path cannot be empty")
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Sighting{}); err != nil {
		return nil, err
	}

	return NewSqliteRepo(db), nil
}

// AddSightings inserts all sightings in a single batch
func (r *SqliteRepo) AddSightings(sightings []*Sighting) error {
	if len(sightings) == 0 {
		return nil
	}

	return r.db.Create(sightings).Error
}

// GetByIP returns every sighting of ip, oldest first
func (r *SqliteRepo) GetByIP(ip string) ([]*Sighting, error) {
	if ip == "" {
		return nil, errors.New("ip cannot be empty")
	}

	return r.find(r.db.Where(&Sighting{IP: ip}))
}

// GetBySession returns every sighting recorded by a session
func (r *SqliteRepo) GetBySession(sessionID string) ([]*Sighting, error) {
	if sessionID == "" {
		return nil, errors.New("session id cannot be empty")
	}

	return r.find(r.db.Where(&Sighting{SessionID: sessionID}))
}

// RemoveAll deletes all sightings
func (r *SqliteRepo) RemoveAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Sighting{}).Error
}

func (r *SqliteRepo) find(query *gorm.DB) ([]*Sighting, error) {
	sightings := []*Sighting{}

	if result := query.Order("seen_at asc, id asc").Find(&sightings); result.Error != nil {
		return nil, result.Error
	}

	if len(sightings) == 0 {
		return nil, exception.ErrRecordNotFound
	}

	return sightings, nil
}
