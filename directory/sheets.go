package directory

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"release-service/config"
	"release-service/models"

	"github.com/apex/log"
)

// Column positions inside each roster sheet. Fixed by the spreadsheet
// layout, not negotiable with the other side.
const (
	personnelColID       = 1
	personnelColRank     = 2
	personnelColCallsign = 4

	neighborhoodColName    = 0
	neighborhoodColSector  = 1
	neighborhoodColOfficer = 2
	neighborhoodColPhone   = 3
)

const defaultSector = "SETOR"

// SheetsSource reads both rosters from the spreadsheet's public CSV
// export endpoint.
type SheetsSource struct {
	baseURL           string
	sheetID           string
	personnelSheet    string
	neighborhoodSheet string
	client            *http.Client
}

func NewSheetsSource(cfg *config.Config) *SheetsSource {
	return &SheetsSource{
		baseURL:           strings.TrimRight(cfg.SheetBaseURL, "/"),
		sheetID:           cfg.SheetID,
		personnelSheet:    cfg.PersonnelSheet,
		neighborhoodSheet: cfg.NeighborhoodSheet,
		client:            &http.Client{Timeout: 20 * time.Second},
	}
}

// Load fetches both rosters. A failure on either sheet fails the whole
// load; a partial directory is never returned.
func (s *SheetsSource) Load(ctx context.Context) (*models.Directory, error) {
	personnelRows, err := s.fetchSheet(ctx, s.personnelSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch personnel sheet: %w", err)
	}

	neighborhoodRows, err := s.fetchSheet(ctx, s.neighborhoodSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch neighborhood sheet: %w", err)
	}

	dir := &models.Directory{
		Personnel:     parsePersonnel(personnelRows),
		Neighborhoods: parseNeighborhoods(neighborhoodRows),
	}

	log.WithFields(log.Fields{
		"personnel":     len(dir.Personnel),
		"neighborhoods": len(dir.Neighborhoods),
	}).Info("directory.load.sheets")

	return dir, nil
}

func (s *SheetsSource) fetchSheet(ctx context.Context, name string) ([][]string, error) {
	sheetURL := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s",
		s.baseURL, s.sheetID, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sheetURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet %q returned status %d", name, resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet %q: %w", name, err)
	}
	return rows, nil
}

// parsePersonnel maps raw sheet rows to records. The first row is the
// header; rows without an id are dropped.
func parsePersonnel(rows [][]string) []models.PersonnelRecord {
	records := []models.PersonnelRecord{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		id := col(row, personnelColID)
		if id == "" {
			continue
		}
		records = append(records, models.PersonnelRecord{
			ID:       id,
			Rank:     col(row, personnelColRank),
			Callsign: col(row, personnelColCallsign),
		})
	}
	return records
}

// parseNeighborhoods maps raw sheet rows to records. The first row is
// the header; rows without a name are dropped.
func parseNeighborhoods(rows [][]string) []models.NeighborhoodRecord {
	records := []models.NeighborhoodRecord{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := col(row, neighborhoodColName)
		if name == "" {
			continue
		}
		sector := col(row, neighborhoodColSector)
		if sector == "" {
			sector = defaultSector
		}
		records = append(records, models.NeighborhoodRecord{
			Name:           name,
			Sector:         sector,
			SectorOfficer:  col(row, neighborhoodColOfficer),
			CommanderPhone: col(row, neighborhoodColPhone),
		})
	}
	return records
}

func col(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
