// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package notify delivers key lifecycle notifications. Events are a closed
// set: creation, deletion, rotation, rotation failure and the phases of an
// emergency replacement. Every event renders to one Notification, which is
// fanned out to channels by severity.
package notify

import (
	"fmt"
	"time"

	"github.com/weylandt/keyledger/internal/model"
)

// Severity orders notifications for channel fan-out. Slack receives
// everything; email starts at warning; paging is reserved for critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// EmergencyPhase is the stage of an emergency replacement procedure.
type EmergencyPhase string

const (
	PhaseInitiated EmergencyPhase = "initiated"
	PhaseRevoked   EmergencyPhase = "revoked"
	PhaseCompleted EmergencyPhase = "completed"
	PhaseFailed    EmergencyPhase = "failed"
)

// Event is a key lifecycle occurrence that warrants a notification.
// The concrete types form a closed set; Render is the only way in.
type Event interface {
	render(now time.Time) Notification
}

// Notification is the channel-independent payload built from an event.
type Notification struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Timestamp      string   `json:"timestamp"`
	KeyID          string   `json:"key_id,omitempty"`
	Alias          string   `json:"alias,omitempty"`
	Environment    string   `json:"environment,omitempty"`
	Owner          string   `json:"owner,omitempty"`
	IncidentID     string   `json:"incident_id,omitempty"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
}

// Render converts an event into its notification payload.
func Render(e Event, now time.Time) Notification {
	return e.render(now)
}

// KeyCreated announces a newly provisioned key.
type KeyCreated struct {
	Key *model.KeyRecord
}

func (e KeyCreated) render(now time.Time) Notification {
	n := base("key-created", SeverityInfo, now, e.Key)
	n.Title = fmt.Sprintf("🔑 New Key Created: %s", orUnknown(e.Key.Alias))
	n.Message = "A new cryptographic key has been created and provisioned."
	n.AdditionalInfo = fmt.Sprintf("Purpose: %s", orNotSpecified(e.Key.Purpose))
	return n
}

// KeyDeleted announces permanent removal of a key.
type KeyDeleted struct {
	Key    *model.KeyRecord
	Reason string
}

func (e KeyDeleted) render(now time.Time) Notification {
	n := base("key-deleted", SeverityWarning, now, e.Key)
	n.Title = fmt.Sprintf("🗑️ Key Deleted: %s", orUnknown(e.Key.Alias))
	n.Message = "A cryptographic key has been permanently deleted."
	n.AdditionalInfo = fmt.Sprintf("Deletion reason: %s", orNotSpecified(e.Reason))
	return n
}

// KeyRotated announces a successful key rotation.
type KeyRotated struct {
	Key             *model.KeyRecord
	NextRotationDue string
}

func (e KeyRotated) render(now time.Time) Notification {
	n := base("key-rotated", SeverityInfo, now, e.Key)
	n.Title = fmt.Sprintf("🔄 Key Rotated: %s", orUnknown(e.Key.Alias))
	n.Message = "A cryptographic key has been successfully rotated."
	next := e.NextRotationDue
	if next == "" {
		next = "Not calculated"
	}
	n.AdditionalInfo = fmt.Sprintf("Next rotation due: %s", next)
	return n
}

// RotationFailed announces a rotation that did not complete.
type RotationFailed struct {
	Key *model.KeyRecord
	Err string
}

func (e RotationFailed) render(now time.Time) Notification {
	n := base("rotation-failed", SeverityError, now, e.Key)
	n.Title = fmt.Sprintf("❌ Key Rotation Failed: %s", orUnknown(e.Key.Alias))
	n.Message = "Failed to rotate cryptographic key. Manual intervention required."
	errText := e.Err
	if errText == "" {
		errText = "Unknown error"
	}
	n.AdditionalInfo = fmt.Sprintf("Error: %s", errText)
	return n
}

// EmergencyReplacement tracks the phases of replacing a compromised key.
// The initiated and failed phases page; the rest only warn.
type EmergencyReplacement struct {
	Key        *model.KeyRecord
	Phase      EmergencyPhase
	IncidentID string
}

func (e EmergencyReplacement) render(now time.Time) Notification {
	severity := SeverityWarning
	if e.Phase == PhaseInitiated || e.Phase == PhaseFailed {
		severity = SeverityCritical
	}

	n := base("emergency-replacement", severity, now, e.Key)
	n.Title = fmt.Sprintf("%s Emergency: %s", phaseIcon(e.Phase), orUnknown(e.Key.Alias))
	n.Message = phaseMessage(e.Phase)
	n.IncidentID = e.IncidentID
	incident := e.IncidentID
	if incident == "" {
		incident = "Unknown"
	}
	n.AdditionalInfo = fmt.Sprintf("Incident: %s | Severity: %s", incident, severity)
	return n
}

func phaseMessage(p EmergencyPhase) string {
	switch p {
	case PhaseInitiated:
		return "Emergency key replacement procedure has been initiated"
	case PhaseRevoked:
		return "Compromised key has been immediately revoked"
	case PhaseCompleted:
		return "Emergency key replacement has been completed successfully"
	case PhaseFailed:
		return "Emergency key replacement procedure has failed - immediate action required"
	}
	return "Emergency key replacement update"
}

func phaseIcon(p EmergencyPhase) string {
	switch p {
	case PhaseInitiated:
		return "🚨"
	case PhaseRevoked:
		return "⛔"
	case PhaseCompleted:
		return "✅"
	case PhaseFailed:
		return "💥"
	}
	return "🔔"
}

func base(eventType string, severity Severity, now time.Time, key *model.KeyRecord) Notification {
	n := Notification{
		Type:      eventType,
		Severity:  severity,
		Timestamp: now.Format(time.RFC3339),
	}
	if key != nil {
		n.KeyID = key.KeyID
		n.Alias = key.Alias
		n.Environment = key.Environment
		n.Owner = key.Owner
	}
	return n
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
