// Package message renders the shareable occurrence summary and builds
// the messenger link that carries it. Everything here is a pure
// function of the draft.
package message

import (
	"fmt"
	"strings"

	"release-service/models"
)

// Letterhead and footer of the summary. Fixed blocks, byte for byte.
const (
	Header = `========================
           🇧🇷  2ª RPM  🇧🇷
🔺 39º BPM - O INCANSÁVEL 🔺
              186ª CIA PM
========================`

	Footer = `========================
POLÍCIA MILITAR DE MINAS GERAIS - 250 ANOS

A FORÇA DO POVO MINEIRO.
PRESENÇA QUE PROTEGE.
========================`
)

const noVehiclesPlaceholder = "---"

// Render produces the plain-text summary for a draft. Two calls with
// the same draft produce identical output; there is no timestamp or
// randomness in here.
func Render(d *models.ReportDraft) string {
	teamLines := make([]string, 0, len(d.Team))
	for _, m := range d.Team {
		teamLines = append(teamLines, fmt.Sprintf("• %s %s (PM %s)", m.Rank, m.Callsign, m.ID))
	}

	vehicles := joinNonEmpty(d.Vehicles)
	if vehicles == "" {
		vehicles = noVehiclesPlaceholder
	}

	var neighborhoodName, officer string
	if d.Neighborhood != nil {
		neighborhoodName = d.Neighborhood.Name
		officer = d.Neighborhood.SectorOfficer
	}

	photoLine := ""
	if d.Photo != nil {
		photoLine = "\n📸 *FOTO ANEXADA AO RELATÓRIO*"
	}

	return Header + "\n" +
		"*RESUMO DE OCORRÊNCIA* 🚔\n" +
		"--------------------------------\n" +
		"*EQUIPE:*\n" + strings.Join(teamLines, "\n") + "\n" +
		"*VIATURA(S):* " + vehicles + "\n\n" +
		"*LOCAL:* " + d.Street + ", " + d.Number + " - " + neighborhoodName + "\n" +
		"*CMT SETOR:* " + officer + "\n" +
		"--------------------------------\n" +
		"*HISTÓRICO:*\n" + d.Narrative + "\n\n" +
		"*PRODUTIVIDADE:*\n" + d.Productivity + photoLine + "\n\n" +
		Footer
}

func joinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
