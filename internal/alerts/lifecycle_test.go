package alerts

import (
	"errors"
	"testing"
	"time"

	"github.com/moneymatters/backend/internal/models"
)

func TestApply(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name         string
		from         models.AlertState
		target       models.AlertState
		snoozedUntil *time.Time
		wantChanged  bool
		wantErr      bool
		validate     func(t *testing.T, a *models.Alert)
	}{
		{
			name:        "acknowledge new alert",
			from:        models.AlertNew,
			target:      models.AlertAcknowledged,
			wantChanged: true,
			validate: func(t *testing.T, a *models.Alert) {
				if a.AcknowledgedAt == nil || !a.AcknowledgedAt.Equal(now) {
					t.Errorf("AcknowledgedAt = %v, want %v", a.AcknowledgedAt, now)
				}
			},
		},
		{
			name:        "acknowledge snoozed alert",
			from:        models.AlertSnoozed,
			target:      models.AlertAcknowledged,
			wantChanged: true,
		},
		{
			name:    "acknowledge resolved alert is rejected",
			from:    models.AlertResolved,
			target:  models.AlertAcknowledged,
			wantErr: true,
		},
		{
			name:         "snooze new alert with future timestamp",
			from:         models.AlertNew,
			target:       models.AlertSnoozed,
			snoozedUntil: &future,
			wantChanged:  true,
			validate: func(t *testing.T, a *models.Alert) {
				if a.SnoozedUntil == nil || !a.SnoozedUntil.Equal(future) {
					t.Errorf("SnoozedUntil = %v, want %v", a.SnoozedUntil, future)
				}
			},
		},
		{
			name:         "snooze acknowledged alert",
			from:         models.AlertAcknowledged,
			target:       models.AlertSnoozed,
			snoozedUntil: &future,
			wantChanged:  true,
		},
		{
			name:    "snooze without timestamp is rejected",
			from:    models.AlertNew,
			target:  models.AlertSnoozed,
			wantErr: true,
		},
		{
			name:         "snooze with past timestamp is rejected",
			from:         models.AlertNew,
			target:       models.AlertSnoozed,
			snoozedUntil: &past,
			wantErr:      true,
		},
		{
			name:         "snooze with current timestamp is rejected",
			from:         models.AlertNew,
			target:       models.AlertSnoozed,
			snoozedUntil: &now,
			wantErr:      true,
		},
		{
			name:         "snooze resolved alert is rejected",
			from:         models.AlertResolved,
			target:       models.AlertSnoozed,
			snoozedUntil: &future,
			wantErr:      true,
		},
		{
			name:        "resolve new alert",
			from:        models.AlertNew,
			target:      models.AlertResolved,
			wantChanged: true,
			validate: func(t *testing.T, a *models.Alert) {
				if a.ResolvedAt == nil || !a.ResolvedAt.Equal(now) {
					t.Errorf("ResolvedAt = %v, want %v", a.ResolvedAt, now)
				}
			},
		},
		{
			name:        "resolve snoozed alert",
			from:        models.AlertSnoozed,
			target:      models.AlertResolved,
			wantChanged: true,
		},
		{
			name:        "resolve resolved alert is a no-op",
			from:        models.AlertResolved,
			target:      models.AlertResolved,
			wantChanged: false,
			validate: func(t *testing.T, a *models.Alert) {
				if a.ResolvedAt != nil {
					t.Error("no-op resolve must not stamp ResolvedAt again")
				}
			},
		},
		{
			name:    "transition back to new is rejected",
			from:    models.AlertAcknowledged,
			target:  models.AlertNew,
			wantErr: true,
		},
		{
			name:    "transition new to new is rejected",
			from:    models.AlertNew,
			target:  models.AlertNew,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := &models.Alert{
				Type:     models.AlertCashShortfall,
				Severity: models.SeverityWarning,
				State:    tt.from,
			}

			changed, err := Apply(alert, tt.target, now, tt.snoozedUntil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStateTransition) {
					t.Fatalf("Apply error = %v, want ErrInvalidStateTransition", err)
				}
				if alert.State != tt.from {
					t.Errorf("rejected transition mutated state to %s", alert.State)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if changed && alert.State != tt.target {
				t.Errorf("state = %s, want %s", alert.State, tt.target)
			}
			if tt.validate != nil {
				tt.validate(t, alert)
			}
		})
	}
}
