// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/logging"
	"github.com/weylandt/keyledger/internal/model"
	"github.com/weylandt/keyledger/internal/notify"
)

var (
	notifyType       string
	notifyKeyID      string
	notifyInputDir   string
	notifyPhase      string
	notifyIncidentID string
	notifyReason     string
	notifyError      string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a key lifecycle notification",
	Long: `Notify renders a lifecycle event for the given key and fans it out
by severity: Slack gets everything, email joins at warning and above,
paging fires only for critical emergency phases.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := notifyInputDir
		if inputDir == "" {
			inputDir = appConfig.InputDir
		}

		key := loadNotifyKey(inputDir, notifyKeyID)

		var event notify.Event
		switch notifyType {
		case "key-created":
			event = notify.KeyCreated{Key: key}
		case "key-deleted":
			event = notify.KeyDeleted{Key: key, Reason: notifyReason}
		case "key-rotated":
			next := ""
			if key.Lifecycle != nil {
				next = key.Lifecycle.NextRotationDue
			}
			event = notify.KeyRotated{Key: key, NextRotationDue: next}
		case "rotation-failed":
			event = notify.RotationFailed{Key: key, Err: notifyError}
		case "emergency":
			phase := notify.EmergencyPhase(notifyPhase)
			if phase == "" {
				phase = notify.PhaseInitiated
			}
			event = notify.EmergencyReplacement{Key: key, Phase: phase, IncidentID: notifyIncidentID}
		default:
			return fmt.Errorf("unknown notification type %q", notifyType)
		}

		dispatcher := notify.NewDispatcher(appConfig.Notify)
		if err := dispatcher.Dispatch(event); err != nil {
			return exitWithCode(1, "notification delivery incomplete: %v", err)
		}
		return nil
	},
}

// loadNotifyKey resolves the key record for the notification. A missing or
// unreadable record degrades to an identity-only stub so the notification
// still goes out.
func loadNotifyKey(inputDir, keyID string) *model.KeyRecord {
	stub := &model.KeyRecord{KeyID: keyID, Alias: "unknown"}
	if keyID == "" {
		return stub
	}

	path := filepath.Join(inputDir, keyID+".yaml")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(inputDir, keyID+".yml")
		if _, err := os.Stat(path); err != nil {
			return stub
		}
	}

	rec, err := inventory.LoadRecord(path)
	if err != nil {
		logging.Warnf("could not load key file %s: %v", path, err)
		return stub
	}
	return rec
}

func init() {
	notifyCmd.Flags().StringVar(&notifyType, "type", "", "Notification type: key-created, key-deleted, key-rotated, rotation-failed, emergency")
	notifyCmd.Flags().StringVar(&notifyKeyID, "key-id", "", "Key ID the event concerns")
	notifyCmd.Flags().StringVar(&notifyInputDir, "input-dir", "", "Inventory directory (overrides config)")
	notifyCmd.Flags().StringVar(&notifyPhase, "phase", "", "Emergency phase: initiated, revoked, completed, failed")
	notifyCmd.Flags().StringVar(&notifyIncidentID, "incident-id", "", "Incident ID for emergency notifications")
	notifyCmd.Flags().StringVar(&notifyReason, "reason", "", "Deletion reason for key-deleted notifications")
	notifyCmd.Flags().StringVar(&notifyError, "error", "", "Error detail for rotation-failed notifications")
	_ = notifyCmd.MarkFlagRequired("type")
}
