// Package directory loads the personnel and neighborhood rosters the
// form autocompletes from.
package directory

import (
	"context"

	"release-service/models"
)

// Source is the roster backend. Exactly one implementation is selected
// at startup; callers never know which transport is active.
type Source interface {
	Load(ctx context.Context) (*models.Directory, error)
}
