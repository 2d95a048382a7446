package history

import (
	"encoding/json"
	"time"

	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"gorm.io/datatypes"
)

// HistoryService represents our history.Service implementation
type HistoryService struct {
	log  logger.Logger
	repo Repo
	now  func() time.Time
}

// NewService returns a new instance HistoryService
func NewService(repo Repo) *HistoryService {
	return &HistoryService{
		log:  logger.New(),
		repo: repo,
		now:  time.Now,
	}
}

// Record stores a sighting for every live host in records and returns
// the number stored
func (s *HistoryService) Record(sessionID string, rangeKey string, records []host.Record) (int, error) {
	sightings := []*Sighting{}

	for _, r := range records {
		if !r.Alive() {
			continue
		}

		ports, err := json.Marshal(r.Ports)

		if err != nil {
			return 0, err
		}

		seen := r.LastSeen

		if seen.IsZero() {
			seen = s.now()
		}

		sightings = append(sightings, &Sighting{
			SessionID: sessionID,
			RangeKey:  rangeKey,
			IP:        r.IP.String(),
			Status:    r.Status,
			Hostname:  r.Hostname,
			MAC:       r.MAC,
			Vendor:    r.Vendor,
			Ports:     datatypes.JSON(ports),
			SeenAt:    seen.UTC(),
		})
	}

	if err := s.repo.AddSightings(sightings); err != nil {
		return 0, err
	}

	s.log.Debug().
		Str("session", sessionID).
		Int("sightings", len(sightings)).
		Msg("recorded scan history")

	return len(sightings), nil
}

// Timeline returns every sighting of ip, oldest first
func (s *HistoryService) Timeline(ip string) ([]*Sighting, error) {
	return s.repo.GetByIP(ip)
}

// Clear removes all recorded history
func (s *HistoryService) Clear() error {
	return s.repo.RemoveAll()
}
