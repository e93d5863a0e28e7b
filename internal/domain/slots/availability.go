package slots

// Interval is a single published opening window, wall-clock "HH:MM".
type Interval struct {
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

// Availability declares when a studio can be booked: which weekdays, and
// which opening windows inside those days. Weekdays use English day names as
// the canonical, locale-invariant comparison key.
type Availability struct {
	Days  []string   `json:"days" validate:"dive,weekday"`
	Times []Interval `json:"times" validate:"dive"`
}
