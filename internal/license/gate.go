package license

import "time"

// CheckValidity evaluates a license against the given instant. It is a pure
// function of now, the issue date, the window length and the unlimited flag.
func CheckValidity(lic License, now time.Time) Evaluation {
	if lic.Unlimited {
		return Evaluation{State: StateUnlimited}
	}

	expiry := lic.IssuedAt.AddDate(0, 0, lic.WindowDays)
	nowDay := truncateToDay(now)
	expiryDay := truncateToDay(expiry)

	if nowDay.After(expiryDay) {
		return Evaluation{State: StateExpired}
	}
	remaining := int(expiryDay.Sub(nowDay).Hours() / 24)
	return Evaluation{State: StateValid, DaysRemaining: remaining}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
