package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/appointly/appointment-scheduler/internal/domain/appointment"
	"github.com/appointly/appointment-scheduler/internal/httperr"
)

type AvailabilityQuery struct {
	BusinessID uuid.UUID
	StaffID    uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time // midnight in the business timezone
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

// Execute lists the free slots of one staff member for one day, stepping
// through the staff window in service-duration increments and keeping the
// candidates the availability check approves.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	q AvailabilityQuery,
) ([]TimeSlot, error) {

	svc, err := uc.repo.GetService(ctx, q.BusinessID, q.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness("service_inactive")
	}

	hours, err := uc.repo.BusinessWeek(ctx, q.BusinessID)
	if err != nil {
		return nil, err
	}

	staffWeek, err := uc.repo.StaffWeek(ctx, q.StaffID)
	if err != nil {
		return nil, err
	}

	window, ok := staffWeek[q.Date.Weekday()]
	if !ok {
		return []TimeSlot{}, nil
	}

	dayStart, dayEnd := window.Materialize(q.Date)

	booked, err := uc.repo.ListBlockingIntervals(
		ctx,
		q.StaffID,
		domain.Interval{Start: dayStart, End: dayEnd},
		nil,
	)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	slots := []TimeSlot{}

	for cur := dayStart; !cur.Add(duration).After(dayEnd); cur = cur.Add(duration) {
		_, err := domain.CheckAvailability(domain.AvailabilityInput{
			Start:         cur,
			Duration:      duration,
			Hours:         hours,
			StaffSchedule: staffWeek,
			Booked:        booked,
		})
		if err != nil {
			continue
		}

		slots = append(slots, TimeSlot{
			Start: cur.Format("15:04"),
			End:   cur.Add(duration).Format("15:04"),
		})
	}

	return slots, nil
}
