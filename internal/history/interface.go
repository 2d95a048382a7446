package history

import (
	"encoding/json"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
	"gorm.io/datatypes"
)

//go:generate mockgen -destination=../mock/history/mock_history.go -package=mock_history . Repo,Service

// Sighting represents a live host observed during a scan session
type Sighting struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	RangeKey  string
	IP        string `gorm:"index"`
	Status    host.Status
	Hostname  string
	MAC       string
	Vendor    string
	Ports     datatypes.JSON
	SeenAt    time.Time
}

// OpenPorts decodes the stored port list
func (s *Sighting) OpenPorts() ([]host.Port, error) {
	ports := []host.Port{}

	if len(s.Ports) == 0 {
		return ports, nil
	}

	if err := json.Unmarshal(s.Ports, &ports); err != nil {
		return nil, err
	}

	return ports, nil
}

// Repo interface for persisting sightings
type Repo interface {
	AddSightings(sightings []*Sighting) error
	GetByIP(ip string) ([]*Sighting, error)
	GetBySession(sessionID string) ([]*Sighting, error)
	RemoveAll() error
}

// Service interface for recording and querying scan history
type Service interface {
	Record(sessionID string, rangeKey string, records []host.Record) (int, error)
	Timeline(ip string) ([]*Sighting, error)
	Clear() error
}
