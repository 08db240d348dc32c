package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldValues holds the named fields of a monitored record.
type FieldValues map[string]string

func (v FieldValues) Clone() FieldValues {
	if v == nil {
		return FieldValues{}
	}
	out := make(FieldValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v FieldValues) Equal(other FieldValues) bool {
	if len(v) != len(other) {
		return false
	}
	for k, val := range v {
		if other[k] != val {
			return false
		}
	}
	return true
}

// MonitoredRecord is the business entity as ordinary readers see it. Live
// contains the authoritative field values: unmoderated fields always mirror
// the latest save, moderated fields the last approved version.
type MonitoredRecord struct {
	RecordID  uuid.UUID
	TypeName  string
	Live      FieldValues
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModerationState is the 1:1 companion of a MonitoredRecord. Staged is the
// most recently submitted candidate copy of the record ("changed object"),
// whether or not it has been reviewed yet.
type ModerationState struct {
	StateID         uuid.UUID
	RecordID        uuid.UUID
	TypeName        string
	Status          Status
	Staged          FieldValues
	ChangedBy       string
	Reason          string
	FirstApprovedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Approved reports whether the record has been approved at least once.
// Visibility and bypass-after-approval both key off this, and it is never
// cleared by later status changes.
func (s ModerationState) Approved() bool {
	return s.FirstApprovedAt != nil
}

// Decision is one append-only audit row for an approve/reject action.
type Decision struct {
	DecisionID uuid.UUID
	RecordID   uuid.UUID
	TypeName   string
	Decision   Status
	Moderator  string
	Reason     string
	DecidedAt  time.Time
}
