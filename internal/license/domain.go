package license

import (
	"errors"
	"time"
)

// Kind labels the commercial license flavour.
type Kind string

const (
	// KindTrial is a time-boxed evaluation license.
	KindTrial Kind = "trial"
	// KindFull is a purchased license, usually unlimited.
	KindFull Kind = "full"
)

// License is the persisted activation record. Exactly one record is active
// at a time; activating a new key retires the previous one.
type License struct {
	ID          int64      `json:"id"`
	Key         string     `json:"key"`
	Kind        Kind       `json:"kind"`
	IssuedAt    time.Time  `json:"issued_at"`
	WindowDays  int        `json:"window_days"`
	Unlimited   bool       `json:"unlimited"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// State classifies the outcome of a validity check.
type State string

const (
	// StateValid means the license window is still open.
	StateValid State = "valid"
	// StateUnlimited means the license never expires.
	StateUnlimited State = "unlimited"
	// StateExpired means the window has closed. Access is blocked but no
	// data is deleted.
	StateExpired State = "expired"
)

// Evaluation is the result of checking a license against a point in time.
type Evaluation struct {
	State         State `json:"state"`
	DaysRemaining int   `json:"days_remaining"`
}

// Blocked reports whether the evaluation denies access.
func (e Evaluation) Blocked() bool {
	return e.State == StateExpired
}

// ErrNoLicense indicates no license has been activated yet.
var ErrNoLicense = errors.New("license: no active license")
