package models

// Offering is a (university, programme) seat pool.
// FilledSlots stays within [0, Capacity] and only changes through the capacity ledger.
type Offering struct {
	ID             int64  `json:"id" db:"id"`
	UniversityID   int64  `json:"universityId" db:"university_id"`
	ProgrammeID    int64  `json:"programmeId" db:"programme_id"`
	Capacity       int    `json:"capacity" db:"capacity"`
	FilledSlots    int    `json:"filledSlots" db:"filled_slots"`
	UniversityName string `json:"universityName,omitempty" db:"university_name"`
}

// Remaining returns the number of free seats
func (o *Offering) Remaining() int {
	if o.FilledSlots >= o.Capacity {
		return 0
	}
	return o.Capacity - o.FilledSlots
}

// Programme is an academic offering independent of any university
type Programme struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Level string `json:"level" db:"level"`
}

// University hosts offerings
type University struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Type   string `json:"type" db:"type"`
	County string `json:"county,omitempty" db:"county"`
}
