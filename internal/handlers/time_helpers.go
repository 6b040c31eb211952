package handlers

import (
	"time"

	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

func locationFromBusiness(biz *models.Business) *time.Location {
	if biz == nil {
		return time.UTC
	}
	return timezone.Location(biz.Timezone)
}

func parseDateInBusiness(biz *models.Business, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromBusiness(biz),
	)
}
