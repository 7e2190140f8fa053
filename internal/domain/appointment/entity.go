package appointment

import (
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

// AssignVet sets the veterinarian on an unassigned appointment. Assignment
// confirms the appointment as a side effect; the vet can never be swapped.
func AssignVet(ap *models.Appointment, vetID uint) error {
	if ap.VetID != nil {
		return httperr.Validation("appointment already has a veterinarian assigned")
	}
	if Status(ap.Status) != StatusPending {
		return httperr.Validation("only pending appointments can be assigned")
	}

	ap.VetID = &vetID
	ap.Status = string(StatusConfirmed)
	return nil
}

// UpdateStatus applies a status transition guarded by the state machine.
func UpdateStatus(ap *models.Appointment, to Status) error {
	if err := Transition(Status(ap.Status), to); err != nil {
		return err
	}
	ap.Status = string(to)
	return nil
}
