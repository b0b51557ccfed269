// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package notify

import (
	"time"

	"github.com/pkg/errors"

	"github.com/weylandt/keyledger/internal/config"
	"github.com/weylandt/keyledger/internal/logging"
)

// Channel delivers a rendered notification to one destination.
type Channel interface {
	Name() string
	Send(n Notification) error
}

// Dispatcher fans notifications out by severity: Slack receives every
// event, email joins at warning and above, paging only for critical.
type Dispatcher struct {
	Slack     Channel
	Email     Channel
	PagerDuty Channel
	Now       func() time.Time
}

// NewDispatcher wires channels from the notification configuration.
// Unconfigured channels stay nil and are skipped with a warning.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	d := &Dispatcher{Now: time.Now}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.SlackWebhookURL != "" {
		d.Slack = NewSlackChannel(cfg.SlackWebhookURL, timeout)
	}
	if cfg.EmailConfig != "" {
		email, err := NewEmailChannel(cfg.EmailConfig)
		if err != nil {
			logging.Warnf("invalid email configuration, email channel disabled: %v", err)
		} else {
			d.Email = email
		}
	}
	if cfg.PagerDutyAPIKey != "" {
		d.PagerDuty = &PagerDutyChannel{APIKey: cfg.PagerDutyAPIKey, ServiceID: cfg.PagerDutyService}
	}
	return d
}

// Dispatch renders the event and delivers it to every channel its severity
// warrants. All eligible channels are attempted; the first failure is
// returned after the fan-out completes.
func (d *Dispatcher) Dispatch(event Event) error {
	n := Render(event, d.Now())

	var firstErr error
	deliver := func(ch Channel, label string) {
		if ch == nil {
			logging.Warnf("%s channel not configured, skipping %s notification", label, n.Type)
			return
		}
		if err := ch.Send(n); err != nil {
			logging.Errorf("%s notification failed: %v", label, err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "sending %s notification via %s", n.Type, label)
			}
			return
		}
		logging.Infof("%s notification sent via %s", n.Type, label)
	}

	deliver(d.Slack, "slack")
	if n.Severity == SeverityWarning || n.Severity == SeverityError || n.Severity == SeverityCritical {
		deliver(d.Email, "email")
	}
	if n.Severity == SeverityCritical {
		deliver(d.PagerDuty, "pagerduty")
	}

	return firstErr
}
