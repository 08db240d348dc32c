package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const visibleTrue = "true"

// SaveOutcome describes what a single intercepted save did.
type SaveOutcome struct {
	Live           FieldValues
	State          ModerationState
	EnteredPending bool
	BypassApplied  bool
}

// NewRecord builds a fresh record and its companion state from the first
// save. The initial status is pending when the type moderates any field,
// approved otherwise.
func NewRecord(cfg TypeConfig, submitted FieldValues, actor string, now time.Time) (MonitoredRecord, ModerationState, error) {
	if len(submitted) == 0 {
		return MonitoredRecord{}, ModerationState{}, fmt.Errorf("%w: no fields submitted", ErrInvalidInput)
	}
	if err := checkSchema(cfg, submitted, nil); err != nil {
		return MonitoredRecord{}, ModerationState{}, err
	}

	live := submitted.Clone()
	status := StatusPending
	var firstApproved *time.Time
	if !cfg.HasModeratedFields() {
		status = StatusApproved
		t := now
		firstApproved = &t
	}
	if cfg.HasVisibilityField() {
		if firstApproved != nil {
			live[cfg.VisibilityField] = visibleTrue
		} else {
			live[cfg.VisibilityField] = "false"
		}
	}

	record := MonitoredRecord{
		RecordID:  uuid.New(),
		TypeName:  cfg.Name,
		Live:      live,
		CreatedAt: now,
		UpdatedAt: now,
	}
	state := ModerationState{
		StateID:         uuid.New(),
		RecordID:        record.RecordID,
		TypeName:        cfg.Name,
		Status:          status,
		Staged:          live.Clone(),
		ChangedBy:       actor,
		FirstApprovedAt: firstApproved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return record, state, nil
}

// ApplySave runs the diff engine over one intercepted save.
//
// Fields in scope are partitioned by the type config: unmoderated fields are
// written through to the live copy unconditionally, moderated fields are
// staged, capturing the submitted value even when it equals the live one.
// The status moves to pending only when a moderated field's submitted value
// diverges from the live copy; when nothing moderated diverges the current
// status is kept, whatever it is. A rejected record therefore stays rejected
// through unmoderated-only and no-op saves, and a pending record stays
// pending even when a save re-submits the live values: a save never moves
// the status back to approved. That matches the long-observed behavior of
// the system this replaces and is kept on purpose.
//
// When restrictTo is non-nil it limits the save to exactly the named fields;
// everything else is untouched regardless of what submitted contains.
func ApplySave(cfg TypeConfig, state ModerationState, live, submitted FieldValues, restrictTo []string, actor string, now time.Time) (SaveOutcome, error) {
	if err := checkSchema(cfg, submitted, restrictTo); err != nil {
		return SaveOutcome{}, err
	}

	scope := make([]string, 0, len(submitted))
	if restrictTo != nil {
		for _, f := range restrictTo {
			if _, ok := submitted[f]; !ok {
				return SaveOutcome{}, fmt.Errorf("%w: update field %q has no submitted value", ErrInvalidInput, f)
			}
			scope = append(scope, f)
		}
	} else {
		for f := range submitted {
			scope = append(scope, f)
		}
	}

	bypass := cfg.BypassAfterApproval && state.Approved()
	outLive := live.Clone()
	outState := state
	outState.Staged = state.Staged.Clone()

	enteredPending := false
	moderatedTouched := false
	for _, f := range scope {
		v := submitted[f]
		if !cfg.IsModerated(f) {
			outLive[f] = v
			outState.Staged[f] = v
			continue
		}
		moderatedTouched = true
		if live[f] != v && !bypass {
			enteredPending = true
		}
		outState.Staged[f] = v
		if bypass {
			outLive[f] = v
		}
	}

	if moderatedTouched {
		outState.ChangedBy = actor
	}
	if enteredPending {
		outState.Status = StatusPending
	}
	outState.UpdatedAt = now

	return SaveOutcome{
		Live:           outLive,
		State:          outState,
		EnteredPending: enteredPending,
		BypassApplied:  bypass && moderatedTouched,
	}, nil
}

// ApproveState promotes the staged moderated fields to the live copy and
// marks the record approved. The first approval also flips the type's
// visibility field, when it has one.
func ApproveState(cfg TypeConfig, state ModerationState, live FieldValues, by, reason string, now time.Time) (FieldValues, ModerationState, error) {
	if err := checkDecision(by, reason); err != nil {
		return nil, ModerationState{}, err
	}
	outLive := live.Clone()
	for _, f := range cfg.ModeratedFields {
		if v, ok := state.Staged[f]; ok {
			outLive[f] = v
		}
	}
	if cfg.HasVisibilityField() {
		outLive[cfg.VisibilityField] = visibleTrue
		state.Staged = state.Staged.Clone()
		state.Staged[cfg.VisibilityField] = visibleTrue
	}
	state.Status = StatusApproved
	state.Reason = reason
	if state.FirstApprovedAt == nil {
		t := now
		state.FirstApprovedAt = &t
	}
	state.UpdatedAt = now
	return outLive, state, nil
}

// RejectState discards the pending candidate from a reviewer's point of
// view: the live copy keeps the last approved values and the staged copy
// retains the rejected candidate for the audit view. Rejection is not
// sticky; the record stays rejected until a moderated field diverges from
// the live copy again, which re-enters pending.
func RejectState(state ModerationState, by, reason string, now time.Time) (ModerationState, error) {
	if err := checkDecision(by, reason); err != nil {
		return ModerationState{}, err
	}
	state.Status = StatusRejected
	state.Reason = reason
	state.UpdatedAt = now
	return state, nil
}

func checkDecision(by, reason string) error {
	if by == "" {
		return fmt.Errorf("%w: decision requires a moderator", ErrInvalidInput)
	}
	if reason == "" {
		return fmt.Errorf("%w: decision requires a reason", ErrInvalidInput)
	}
	return nil
}

func checkSchema(cfg TypeConfig, submitted FieldValues, restrictTo []string) error {
	for f := range submitted {
		if !cfg.HasField(f) {
			return fmt.Errorf("%w: field %q is not in the %q schema", ErrConfiguration, f, cfg.Name)
		}
	}
	for _, f := range restrictTo {
		if !cfg.HasField(f) {
			return fmt.Errorf("%w: update field %q is not in the %q schema", ErrConfiguration, f, cfg.Name)
		}
	}
	return nil
}
