package service

import (
	"fmt"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
)

// requireWrite is checked before any validation or repository access.
func requireWrite(p models.Principal, action string) error {
	if p.UserID <= 0 {
		return apperr.Unauthorized("authentication required to " + action)
	}
	if !p.CanWrite() {
		return apperr.Forbidden(fmt.Sprintf("role %q may not %s", p.Role, action))
	}
	return nil
}
