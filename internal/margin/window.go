package margin

import (
	"time"
)

// DayWindow resolves start/end epoch seconds, understood as UTC calendar
// dates, into the tenant's local business-day window [from, to) in UTC.
// The UTC instant is first flattened to a calendar date and that date is then
// reinterpreted in the tenant zone. Shifting the instant by a fixed offset
// instead breaks across daylight-saving transitions.
func DayWindow(startEpoch, endEpoch int64, loc *time.Location) (time.Time, time.Time, error) {
	localFrom, localEnd, err := dayBounds(startEpoch, endEpoch, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// AddDate moves by calendar day, so a 23 or 25 hour DST day stays whole
	return localFrom.UTC(), localEnd.AddDate(0, 0, 1).UTC(), nil
}

// dayBounds resolves both epochs to local midnights, the raw material for
// DayWindow and for spend queries that want local dates rather than instants.
func dayBounds(startEpoch, endEpoch int64, loc *time.Location) (time.Time, time.Time, error) {
	localFrom, err := localDayStart(startEpoch, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	localEnd, err := localDayStart(endEpoch, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return localFrom, localEnd, nil
}

func localDayStart(epoch int64, loc *time.Location) (time.Time, error) {
	day := time.Unix(epoch, 0).UTC().Format("2006-01-02")
	return time.ParseInLocation("2006-01-02", day, loc)
}

// BucketDate projects a stored UTC timestamp onto the tenant's local
// calendar day, formatted DD-MM-YYYY.
func BucketDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02-01-2006")
}
