package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"release-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submittedDraft() models.ReportDraft {
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
		City:      "CONTAGEM/MG",
		Narrative: "Patrol completed.",
	}
}

func TestBuildRecord(t *testing.T) {
	d := submittedDraft()
	now := time.Date(2025, 3, 9, 21, 30, 5, 0, time.UTC)

	rec := BuildRecord(&d, now)

	assert.Equal(t, "09/03/2025 21:30:05", rec.Timestamp)
	assert.Equal(t, "3rd SGT SILVA (123456); CPL SANTOS (654321)", rec.Team)
	assert.Equal(t, "M-01, M-02", rec.Vehicles)
	assert.Equal(t, "Main Ave, 100", rec.Address)
	assert.Equal(t, "ELDORADO", rec.Neighborhood)
	assert.Equal(t, "SETOR 01", rec.Sector)
	assert.Equal(t, "LT COSTA", rec.Officer)
	assert.Equal(t, "Patrol completed.", rec.Narrative)
	assert.Equal(t, "NÃO", rec.HasPhoto)
}

func TestBuildRecord_PhotoAndMissingNeighborhood(t *testing.T) {
	d := submittedDraft()
	photo := "data:image/jpeg;base64,AAAA"
	d.Photo = &photo
	d.Neighborhood = nil

	rec := BuildRecord(&d, time.Now())

	assert.Equal(t, "SIM", rec.HasPhoto)
	assert.Equal(t, "", rec.Neighborhood)
	assert.Equal(t, "", rec.Sector)
	assert.Equal(t, "", rec.Officer)
}

func TestWebhookSink_DeliversWireFormat(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	d := submittedDraft()
	rec := BuildRecord(&d, time.Date(2025, 3, 9, 21, 30, 5, 0, time.UTC))

	require.NoError(t, NewWebhookSink(srv.URL).Save(context.Background(), rec))

	// The external store keys are a fixed contract.
	assert.Equal(t, "09/03/2025 21:30:05", got["timestamp"])
	assert.Equal(t, "3rd SGT SILVA (123456); CPL SANTOS (654321)", got["equipe"])
	assert.Equal(t, "M-01, M-02", got["viaturas"])
	assert.Equal(t, "Main Ave, 100", got["endereco"])
	assert.Equal(t, "ELDORADO", got["bairro"])
	assert.Equal(t, "SETOR 01", got["setor"])
	assert.Equal(t, "LT COSTA", got["oficial"])
	assert.Equal(t, "Patrol completed.", got["historico"])
	assert.Equal(t, "NÃO", got["temFoto"])
}

// The transport on the other side suppresses responses; any completed
// exchange counts as delivered.
func TestWebhookSink_IgnoresResponseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := submittedDraft()
	err := NewWebhookSink(srv.URL).Save(context.Background(), BuildRecord(&d, time.Now()))
	assert.NoError(t, err)
}

func TestWebhookSink_UnconfiguredLogsOnly(t *testing.T) {
	d := submittedDraft()
	err := NewWebhookSink("").Save(context.Background(), BuildRecord(&d, time.Now()))
	assert.NoError(t, err)
}

func TestWebhookSink_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := submittedDraft()
	err := NewWebhookSink(srv.URL).Save(context.Background(), BuildRecord(&d, time.Now()))
	assert.Error(t, err)
}
