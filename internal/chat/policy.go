package chat

import "github.com/clinicavet/vet-scheduler/internal/models"

// CanAccess decides whether a user may read or write the chat of an
// appointment: admins always, otherwise only the booking client or the
// assigned veterinarian. A missing appointment is simply "no access";
// callers that need to distinguish not-found check existence first.
func CanAccess(ap *models.Appointment, userID uint, role models.Role) bool {
	if ap == nil {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	if ap.ClientID == userID {
		return true
	}
	return ap.VetID != nil && *ap.VetID == userID
}
