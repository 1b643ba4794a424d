package models

// Sentinel values written into a team entry when a complete id is
// looked up and no personnel record matches it.
const (
	RankNotFound     = "NOT FOUND"
	CallsignNotFound = "-"
)

// PersonnelRecord is one row of the personnel roster. Immutable once
// loaded; keyed by ID.
type PersonnelRecord struct {
	ID       string `json:"id"`
	Rank     string `json:"rank"`
	Callsign string `json:"callsign"`
}

// NeighborhoodRecord is one row of the neighborhood roster. Immutable
// once loaded; keyed by Name.
type NeighborhoodRecord struct {
	Name           string `json:"name"`
	Sector         string `json:"sector"`
	SectorOfficer  string `json:"sector_officer"`
	CommanderPhone string `json:"commander_phone"`
}

// Directory is the roster snapshot loaded once at service start.
type Directory struct {
	Personnel     []PersonnelRecord    `json:"personnel"`
	Neighborhoods []NeighborhoodRecord `json:"neighborhoods"`
}

// FindPersonnel scans for an exact id match. No partial matching.
func (d *Directory) FindPersonnel(id string) (PersonnelRecord, bool) {
	for _, p := range d.Personnel {
		if p.ID == id {
			return p, true
		}
	}
	return PersonnelRecord{}, false
}

// FindNeighborhood scans for an exact name match.
func (d *Directory) FindNeighborhood(name string) (*NeighborhoodRecord, bool) {
	for i := range d.Neighborhoods {
		if d.Neighborhoods[i].Name == name {
			return &d.Neighborhoods[i], true
		}
	}
	return nil, false
}

// TeamMemberEntry is one roster slot of the in-progress report. Rank
// and Callsign are derived from ID against the directory snapshot and
// are never edited independently.
type TeamMemberEntry struct {
	ID       string `json:"id"`
	Rank     string `json:"rank"`
	Callsign string `json:"callsign"`
}

// ReportDraft is the single mutable report a session is editing. Team
// and Vehicles never go below one slot.
type ReportDraft struct {
	Team         []TeamMemberEntry   `json:"team"`
	Vehicles     []string            `json:"vehicles"`
	Street       string              `json:"street"`
	Number       string              `json:"number"`
	Neighborhood *NeighborhoodRecord `json:"neighborhood"`
	City         string              `json:"city"`
	Narrative    string              `json:"narrative"`
	Productivity string              `json:"productivity"`
	Photo        *string             `json:"photo,omitempty"`
}

// Clone returns a copy that shares nothing mutable with the draft.
// The neighborhood pointer still refers to the immutable directory
// snapshot, which is safe to share.
func (d *ReportDraft) Clone() ReportDraft {
	out := *d
	out.Team = append([]TeamMemberEntry(nil), d.Team...)
	out.Vehicles = append([]string(nil), d.Vehicles...)
	if d.Photo != nil {
		photo := *d.Photo
		out.Photo = &photo
	}
	return out
}

// SubmissionRecord is the flat row appended to the external release
// store. The JSON keys are the Apps Script contract and must not
// change.
type SubmissionRecord struct {
	Timestamp    string `json:"timestamp"`
	Team         string `json:"equipe"`
	Vehicles     string `json:"viaturas"`
	Address      string `json:"endereco"`
	Neighborhood string `json:"bairro"`
	Sector       string `json:"setor"`
	Officer      string `json:"oficial"`
	Narrative    string `json:"historico"`
	Productivity string `json:"produtividade"`
	HasPhoto     string `json:"temFoto"`
}
