package services

import (
	"signn-go/internal/config"
	"signn-go/internal/decision"
)

// ConfigOverridePolicy resolves forced verdicts from the status_overrides
// config list. Reloading the config picks up new entries without a restart
// since the list is read on every call.
type ConfigOverridePolicy struct{}

func NewConfigOverridePolicy() *ConfigOverridePolicy {
	return &ConfigOverridePolicy{}
}

// Override returns the configured verdict for riderID, if any. The
// configured reason is optional; a blank reason falls back to the one the
// engine computed so the audit trail stays meaningful.
func (p *ConfigOverridePolicy) Override(riderID string, computed decision.ReadinessVerdict) (decision.ReadinessVerdict, bool) {
	for _, o := range config.Conf.Readiness.StatusOverrides {
		if o.RiderID != riderID {
			continue
		}
		forced := computed
		forced.Status = decision.Status(o.Status)
		if o.Reason != "" {
			forced.Reason = o.Reason
		}
		return forced, true
	}
	return computed, false
}
