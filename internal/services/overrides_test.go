package services

import (
	"testing"

	"signn-go/internal/config"
	"signn-go/internal/decision"
)

func TestConfigOverridePolicy(t *testing.T) {
	config.Conf = &config.Config{
		Readiness: config.ReadinessConfig{
			StatusOverrides: []config.StatusOverride{
				{RiderID: "rider-789", Status: "GREEN", Reason: "clear"},
				{RiderID: "rider-123", Status: "RED"},
			},
		},
	}
	t.Cleanup(func() { config.Conf = nil })

	policy := NewConfigOverridePolicy()
	computed := decision.ReadinessVerdict{
		Status:              decision.StatusYellow,
		Reason:              decision.ReasonHighStress,
		LatencyDeltaPercent: 12,
	}

	t.Run("forces configured status", func(t *testing.T) {
		got, ok := policy.Override("rider-789", computed)
		if !ok {
			t.Fatal("expected override for rider-789")
		}
		if got.Status != decision.StatusGreen || got.Reason != decision.ReasonClear {
			t.Errorf("verdict = %s/%s, want GREEN/clear", got.Status, got.Reason)
		}
		if got.LatencyDeltaPercent != computed.LatencyDeltaPercent {
			t.Errorf("latency delta = %v, want preserved %v", got.LatencyDeltaPercent, computed.LatencyDeltaPercent)
		}
	})

	t.Run("blank reason keeps computed reason", func(t *testing.T) {
		got, ok := policy.Override("rider-123", computed)
		if !ok {
			t.Fatal("expected override for rider-123")
		}
		if got.Status != decision.StatusRed {
			t.Errorf("status = %s, want RED", got.Status)
		}
		if got.Reason != computed.Reason {
			t.Errorf("reason = %q, want computed %q", got.Reason, computed.Reason)
		}
	})

	t.Run("unlisted rider passes through", func(t *testing.T) {
		got, ok := policy.Override("rider-555", computed)
		if ok {
			t.Fatal("did not expect an override")
		}
		if got != computed {
			t.Errorf("verdict = %+v, want computed unchanged", got)
		}
	})
}
