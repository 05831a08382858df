// Package users implements the user resource. User rows are created by the
// first OIDC login, this package only reads them and toggles privileges.
package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// User is an account row.
type User struct {
	ID             uuid.UUID `json:"id" db:"id" filter:"multi"`
	Email          string    `json:"email" db:"email" filter:"multi" sort:"true"`
	Name           string    `json:"name" db:"name" filter:"multi" sort:"true"`
	Username       string    `json:"username" db:"username" filter:"multi" sort:"true"`
	IsAdmin        bool      `json:"is_admin" db:"is_admin" filter:"single"`
	IsBanned       bool      `json:"is_banned" db:"is_banned" filter:"single"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" filter:"range" sort:"true"`
	LastAccessTime time.Time `json:"last_access_time" db:"last_access_time" filter:"range" sort:"true"`
}

// Def is the derived filter/sort parameter set of the user entity.
var Def = query.MustDef[User]()
