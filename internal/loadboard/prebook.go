package loadboard

import "time"

// centralTime is the dispatch desk's timezone; pre-book cutoffs are defined
// against it regardless of where a load originates.
var centralTime = mustLoadCentral()

func mustLoadCentral() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		// tzdata is always present in the deploy images; fall back to a
		// fixed offset rather than crash if it ever is not.
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// IsPrebook reports whether a load with the given pickup close time still
// counts as pre-book at now:
//   - pickup strictly after today (Central): past and same-day pickups are
//     working inventory, not pre-book;
//   - a pickup tomorrow before 9:00 AM Central stops being pre-book once the
//     current time passes noon Central.
//
// A missing pickup time is not pre-book.
func IsPrebook(pickupClose *time.Time, now time.Time) bool {
	if pickupClose == nil {
		return false
	}

	pickup := pickupClose.In(centralTime)
	local := now.In(centralTime)

	pickupDay := dateOf(pickup)
	today := dateOf(local)
	tomorrow := today.AddDate(0, 0, 1)

	if pickupDay.Before(today) || pickupDay.Equal(today) {
		return false
	}

	if pickupDay.Equal(tomorrow) && local.Hour() >= 12 && pickup.Hour() < 9 {
		return false
	}

	return true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
