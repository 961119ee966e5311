package models

// Local record envelopes: the server shape plus the sync bookkeeping the
// on-device store maintains. The bookkeeping fields never cross the REST
// boundary; mapping happens at the storage adapter.

// LocalHabit is a Habit as stored on-device.
type LocalHabit struct {
	Habit
	Synced  bool   `json:"_synced"`
	LocalID string `json:"_localId,omitempty"`
	Deleted bool   `json:"_deleted,omitempty"`
}

// LocalHabitLog is a HabitLog as stored on-device.
type LocalHabitLog struct {
	HabitLog
	Synced  bool   `json:"_synced"`
	LocalID string `json:"_localId,omitempty"`
	Deleted bool   `json:"_deleted,omitempty"`
}

// ToServer strips the bookkeeping fields, yielding the REST API shape.
func (l LocalHabit) ToServer() Habit { return l.Habit }

// ToServer strips the bookkeeping fields, yielding the REST API shape.
func (l LocalHabitLog) ToServer() HabitLog { return l.HabitLog }
