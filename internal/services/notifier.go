package services

import (
	"signn-go/internal/decision"

	"go.uber.org/zap"
)

// OpsNotifier is a placeholder for a real operations alerting channel.
type OpsNotifier struct {
	log *zap.Logger
}

func NewOpsNotifier(log *zap.Logger) *OpsNotifier {
	return &OpsNotifier{log: log}
}

// VerdictReached reports a finalized check to the operations channel.
// RED verdicts are escalated; everything else is logged for the audit trail.
func (n *OpsNotifier) VerdictReached(ownerID, checkID string, verdict decision.ReadinessVerdict) {
	fields := []zap.Field{
		zap.String("rider", ownerID),
		zap.String("check", checkID),
		zap.String("status", string(verdict.Status)),
		zap.String("reason", verdict.Reason),
	}

	if verdict.Status == decision.StatusRed {
		// In a real deployment this would page the dispatch desk via
		// an SMS or webhook integration.
		n.log.Warn("Rider blocked by readiness check", fields...)
		return
	}
	n.log.Info("Readiness check finalized", fields...)
}
