package submit

import (
	"context"
	"database/sql"
	"fmt"

	"release-service/models"

	"github.com/apex/log"
)

// MySQLSink appends the flattened report to a local table. Selected
// with SUBMIT_SINK=mysql.
type MySQLSink struct {
	db *sql.DB
}

func NewMySQLSink(db *sql.DB) *MySQLSink {
	return &MySQLSink{db: db}
}

func (s *MySQLSink) Save(ctx context.Context, rec models.SubmissionRecord) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO release_reports
		 (submitted_at, team, vehicles, address, neighborhood, sector, officer, narrative, productivity, has_photo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Team, rec.Vehicles, rec.Address,
		rec.Neighborhood, rec.Sector, rec.Officer,
		rec.Narrative, rec.Productivity, rec.HasPhoto)
	if err != nil {
		return fmt.Errorf("failed to insert release report: %w", err)
	}

	id, _ := result.LastInsertId()
	log.WithFields(log.Fields{
		"id":   id,
		"team": rec.Team,
	}).Info("submit.mysql.saved")
	return nil
}
