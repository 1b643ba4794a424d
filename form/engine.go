// Package form holds the in-progress report and every edit operation
// the form can issue against it.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"release-service/models"

	"github.com/apex/log"
)

// Field names a free-text slot of the draft.
type Field string

const (
	FieldStreet       Field = "street"
	FieldNumber       Field = "number"
	FieldNarrative    Field = "narrative"
	FieldProductivity Field = "productivity"
)

// Enhancer rewrites free text. Implementations must fail soft: on any
// failure they return the input unchanged, never an error.
type Enhancer interface {
	Rewrite(ctx context.Context, text string, field Field) string
}

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
)

// Session owns one report draft. All edits go through its methods;
// the mutex makes it a single-writer object even though HTTP requests
// arrive on arbitrary goroutines.
type Session struct {
	ID string

	mu        sync.Mutex
	dir       *models.Directory
	draft     models.ReportDraft
	lookupMin int

	// Per-field revision stamps. An enhancement result is discarded
	// when the field was edited after the request captured its text.
	rev map[Field]uint64

	// Serializes enhancement calls per field.
	enhanceMu map[Field]*sync.Mutex

	lastTouch time.Time
}

// NewSession creates an empty draft with one team slot and one vehicle
// slot, bound to the given directory snapshot.
func NewSession(id string, dir *models.Directory, city string, lookupMin int) *Session {
	return &Session{
		ID:        id,
		dir:       dir,
		lookupMin: lookupMin,
		draft: models.ReportDraft{
			Team:     []models.TeamMemberEntry{{}},
			Vehicles: []string{""},
			City:     city,
		},
		rev: map[Field]uint64{},
		enhanceMu: map[Field]*sync.Mutex{
			FieldNarrative:    {},
			FieldProductivity: {},
		},
		lastTouch: time.Now(),
	}
}

// reduceTeamEntry derives a full entry from a typed id. Rank and
// callsign only ever come out of this reducer.
func reduceTeamEntry(rawID string, dir *models.Directory, lookupMin int) models.TeamMemberEntry {
	id := strings.TrimSpace(rawID)
	if len(id) < lookupMin {
		return models.TeamMemberEntry{ID: id}
	}
	if rec, ok := dir.FindPersonnel(id); ok {
		return models.TeamMemberEntry{ID: rec.ID, Rank: rec.Rank, Callsign: rec.Callsign}
	}
	return models.TeamMemberEntry{
		ID:       id,
		Rank:     models.RankNotFound,
		Callsign: models.CallsignNotFound,
	}
}

// SetTeamMemberID replaces the entry at index with the reduction of
// the typed id against the directory snapshot.
func (s *Session) SetTeamMemberID(index int, rawID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if index < 0 || index >= len(s.draft.Team) {
		return fmt.Errorf("team %w: %d", ErrIndexOutOfRange, index)
	}
	s.draft.Team[index] = reduceTeamEntry(rawID, s.dir, s.lookupMin)
	return nil
}

func (s *Session) AddTeamMember() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.draft.Team = append(s.draft.Team, models.TeamMemberEntry{})
}

// RemoveTeamMember removes the entry at index. A no-op when only one
// entry remains.
func (s *Session) RemoveTeamMember(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if index < 0 || index >= len(s.draft.Team) {
		return fmt.Errorf("team %w: %d", ErrIndexOutOfRange, index)
	}
	if len(s.draft.Team) <= 1 {
		return nil
	}
	s.draft.Team = append(s.draft.Team[:index], s.draft.Team[index+1:]...)
	return nil
}

func (s *Session) SetVehicle(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if index < 0 || index >= len(s.draft.Vehicles) {
		return fmt.Errorf("vehicle %w: %d", ErrIndexOutOfRange, index)
	}
	s.draft.Vehicles[index] = value
	return nil
}

func (s *Session) AddVehicle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.draft.Vehicles = append(s.draft.Vehicles, "")
}

// RemoveVehicle removes the slot at index. A no-op when only one slot
// remains.
func (s *Session) RemoveVehicle(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if index < 0 || index >= len(s.draft.Vehicles) {
		return fmt.Errorf("vehicle %w: %d", ErrIndexOutOfRange, index)
	}
	if len(s.draft.Vehicles) <= 1 {
		return nil
	}
	s.draft.Vehicles = append(s.draft.Vehicles[:index], s.draft.Vehicles[index+1:]...)
	return nil
}

// SetNeighborhood resolves the name against the directory snapshot.
// An empty or unknown name clears the selection.
func (s *Session) SetNeighborhood(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if name == "" {
		s.draft.Neighborhood = nil
		return
	}
	rec, ok := s.dir.FindNeighborhood(name)
	if !ok {
		s.draft.Neighborhood = nil
		return
	}
	s.draft.Neighborhood = rec
}

// SetField overwrites a free-text field. No validation is applied.
func (s *Session) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch field {
	case FieldStreet:
		s.draft.Street = value
	case FieldNumber:
		s.draft.Number = value
	case FieldNarrative:
		s.draft.Narrative = value
	case FieldProductivity:
		s.draft.Productivity = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.rev[field]++
	return nil
}

// AttachPhoto stores the base64 payload as-is. Size and type limits
// are the file picker's problem, not the engine's.
func (s *Session) AttachPhoto(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.draft.Photo = &data
}

func (s *Session) RemovePhoto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.draft.Photo = nil
}

// Enhance sends the current field text to the enhancer and stores the
// rewritten text, unless the field was hand-edited while the call was
// in flight. Concurrent calls on the same field are serialized.
func (s *Session) Enhance(ctx context.Context, field Field, enhancer Enhancer) error {
	if field != FieldNarrative && field != FieldProductivity {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	s.enhanceMu[field].Lock()
	defer s.enhanceMu[field].Unlock()

	s.mu.Lock()
	text := s.fieldValue(field)
	rev := s.rev[field]
	s.mu.Unlock()

	if text == "" {
		return nil
	}

	rewritten := enhancer.Rewrite(ctx, text, field)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.rev[field] != rev {
		log.WithFields(log.Fields{
			"session": s.ID,
			"field":   string(field),
		}).Info("enhance.discard.stale")
		return nil
	}
	s.setFieldLocked(field, rewritten)
	s.rev[field]++
	return nil
}

func (s *Session) fieldValue(field Field) string {
	switch field {
	case FieldNarrative:
		return s.draft.Narrative
	case FieldProductivity:
		return s.draft.Productivity
	}
	return ""
}

func (s *Session) setFieldLocked(field Field, value string) {
	switch field {
	case FieldNarrative:
		s.draft.Narrative = value
	case FieldProductivity:
		s.draft.Productivity = value
	}
}

// IsSubmittable reports whether the draft passes every submission
// gate: complete team, at least one vehicle, street, neighborhood and
// narrative present.
func (s *Session) IsSubmittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Submittable(&s.draft)
}

// Submittable is the validity predicate over a draft snapshot.
func Submittable(d *models.ReportDraft) bool {
	for _, m := range d.Team {
		if m.ID == "" || m.Rank == models.RankNotFound {
			return false
		}
	}
	hasVehicle := false
	for _, v := range d.Vehicles {
		if strings.TrimSpace(v) != "" {
			hasVehicle = true
			break
		}
	}
	if !hasVehicle {
		return false
	}
	return d.Street != "" && d.Neighborhood != nil && d.Narrative != ""
}

// Snapshot returns a consistent copy of the draft for rendering and
// submission.
func (s *Session) Snapshot() models.ReportDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) touch() {
	s.lastTouch = time.Now()
}

// idleSince reports whether the session saw no edits within ttl.
func (s *Session) idleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastTouch) > ttl
}
