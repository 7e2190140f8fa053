package appointment

import (
	"context"

	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/timezone"
)

type Stats struct {
	TotalAppointments int64 `json:"total_appointments"`
	Pending           int64 `json:"pending"`
	Confirmed         int64 `json:"confirmed"`
	InProgress        int64 `json:"in_progress"`
	Completed         int64 `json:"completed"`
	Cancelled         int64 `json:"cancelled"`
	Today             int64 `json:"today"`
}

type GetStats struct {
	repo domain.Repository
	tz   string
}

func NewGetStats(repo domain.Repository, tz string) *GetStats {
	return &GetStats{repo: repo, tz: tz}
}

// Execute aggregates the last month of appointments for the admin dashboard.
func (uc *GetStats) Execute(ctx context.Context) (*Stats, error) {
	now := timezone.NowIn(uc.tz)
	since := now.AddDate(0, -1, 0)

	counts, err := uc.repo.CountByStatus(ctx, since)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := timezone.DayBounds(now)
	today, err := uc.repo.CountForRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Pending:    counts[string(domain.StatusPending)],
		Confirmed:  counts[string(domain.StatusConfirmed)],
		InProgress: counts[string(domain.StatusInProgress)],
		Completed:  counts[string(domain.StatusCompleted)],
		Cancelled:  counts[string(domain.StatusCancelled)],
		Today:      today,
	}
	for _, n := range counts {
		stats.TotalAppointments += n
	}
	return stats, nil
}

// TodaySchedule lists today's appointments in clinic time, earliest first.
func (uc *GetStats) TodaySchedule(ctx context.Context) ([]models.Appointment, error) {
	dayStart, dayEnd := timezone.DayBounds(timezone.NowIn(uc.tz))
	aps, err := uc.repo.ListForRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	// ListForRange sorts newest first; the day view reads better oldest first.
	for i, j := 0, len(aps)-1; i < j; i, j = i+1, j-1 {
		aps[i], aps[j] = aps[j], aps[i]
	}
	return aps, nil
}
