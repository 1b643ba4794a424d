package directory

import (
	"context"
	"database/sql"
	"fmt"

	"release-service/models"

	"github.com/apex/log"
)

// MySQLSource reads the rosters from local tables instead of the
// spreadsheet export. Selected with DIRECTORY_SOURCE=mysql.
type MySQLSource struct {
	db *sql.DB
}

func NewMySQLSource(db *sql.DB) *MySQLSource {
	return &MySQLSource{db: db}
}

func (s *MySQLSource) Load(ctx context.Context) (*models.Directory, error) {
	personnel, err := s.loadPersonnel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load personnel: %w", err)
	}

	neighborhoods, err := s.loadNeighborhoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods: %w", err)
	}

	log.WithFields(log.Fields{
		"personnel":     len(personnel),
		"neighborhoods": len(neighborhoods),
	}).Info("directory.load.mysql")

	return &models.Directory{
		Personnel:     personnel,
		Neighborhoods: neighborhoods,
	}, nil
}

func (s *MySQLSource) loadPersonnel(ctx context.Context) ([]models.PersonnelRecord, error) {
	// rank is reserved in MySQL 8.
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, `rank`, callsign FROM personnel WHERE id <> ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.PersonnelRecord{}
	for rows.Next() {
		var p models.PersonnelRecord
		if err := rows.Scan(&p.ID, &p.Rank, &p.Callsign); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (s *MySQLSource) loadNeighborhoods(ctx context.Context) ([]models.NeighborhoodRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, sector, officer, commander_phone FROM neighborhoods WHERE name <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.NeighborhoodRecord{}
	for rows.Next() {
		var n models.NeighborhoodRecord
		if err := rows.Scan(&n.Name, &n.Sector, &n.SectorOfficer, &n.CommanderPhone); err != nil {
			return nil, err
		}
		if n.Sector == "" {
			n.Sector = defaultSector
		}
		records = append(records, n)
	}
	return records, rows.Err()
}
