package dhan

import "time"

// nowFunc is swapped in tests.
var nowFunc = time.Now

func istLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST has no DST; a fixed offset is an exact fallback.
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// IsMarketOpen reports whether the NSE regular session is in progress:
// Monday to Friday, 9:15 to 15:30 IST. Orders placed outside the session
// go in flagged after-market.
func IsMarketOpen() bool {
	now := nowFunc().In(istLocation())

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	sessionOpen := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, now.Location())
	sessionClose := time.Date(now.Year(), now.Month(), now.Day(), 15, 30, 0, 0, now.Location())
	return !now.Before(sessionOpen) && !now.After(sessionClose)
}
