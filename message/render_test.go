package message

import (
	"strings"
	"testing"

	"release-service/models"

	"github.com/stretchr/testify/assert"
)

func sampleDraft() models.ReportDraft {
	return models.ReportDraft{
		Team: []models.TeamMemberEntry{
			{ID: "123456", Rank: "3rd SGT", Callsign: "SILVA"},
			{ID: "654321", Rank: "CPL", Callsign: "SANTOS"},
		},
		Vehicles: []string{"M-01", "", "M-02"},
		Street:   "Main Ave",
		Number:   "100",
		Neighborhood: &models.NeighborhoodRecord{
			Name:           "ELDORADO",
			Sector:         "SETOR 01",
			SectorOfficer:  "LT COSTA",
			CommanderPhone: "5531988887777",
		},
		City:         "CONTAGEM/MG",
		Narrative:    "Patrol completed.",
		Productivity: "2 stops",
	}
}

func TestRender_Content(t *testing.T) {
	d := sampleDraft()
	out := Render(&d)

	assert.True(t, strings.HasPrefix(out, Header))
	assert.True(t, strings.HasSuffix(out, Footer))
	assert.Contains(t, out, "• 3rd SGT SILVA (PM 123456)")
	assert.Contains(t, out, "• CPL SANTOS (PM 654321)")
	assert.Contains(t, out, "*VIATURA(S):* M-01, M-02")
	assert.Contains(t, out, "*LOCAL:* Main Ave, 100 - ELDORADO")
	assert.Contains(t, out, "*CMT SETOR:* LT COSTA")
	assert.Contains(t, out, "*HISTÓRICO:*\nPatrol completed.")
	assert.Contains(t, out, "*PRODUTIVIDADE:*\n2 stops")
	assert.NotContains(t, out, "FOTO ANEXADA")
}

func TestRender_EmptyNumberKeepsSeparator(t *testing.T) {
	d := sampleDraft()
	d.Number = ""
	out := Render(&d)

	assert.Contains(t, out, "*LOCAL:* Main Ave,  - ELDORADO")
}

func TestRender_VehiclesPlaceholder(t *testing.T) {
	d := sampleDraft()
	d.Vehicles = []string{"", "   "}
	out := Render(&d)

	assert.Contains(t, out, "*VIATURA(S):* ---")
}

func TestRender_PhotoMarker(t *testing.T) {
	d := sampleDraft()
	photo := "data:image/jpeg;base64,AAAA"
	d.Photo = &photo
	out := Render(&d)

	assert.Contains(t, out, "📸 *FOTO ANEXADA AO RELATÓRIO*")
	// The payload itself never leaks into the message.
	assert.NotContains(t, out, "AAAA")
}

func TestRender_NilNeighborhood(t *testing.T) {
	d := sampleDraft()
	d.Neighborhood = nil
	out := Render(&d)

	assert.Contains(t, out, "*LOCAL:* Main Ave, 100 - \n")
	assert.Contains(t, out, "*CMT SETOR:* \n")
}

func TestRender_Deterministic(t *testing.T) {
	d := sampleDraft()
	assert.Equal(t, Render(&d), Render(&d))
}
