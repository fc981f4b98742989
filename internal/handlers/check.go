package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"signn-go/internal/decision"
	"signn-go/internal/models"
	"signn-go/internal/repository"
	"signn-go/internal/services"
	"signn-go/internal/session"
	"signn-go/internal/vision"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckHandler drives the readiness check flow: one session manager for
// the state machines, one tracker for the in-flight vision scans.
type CheckHandler struct {
	log      *zap.Logger
	manager  *session.Manager
	tracker  *vision.Tracker
	quiz     *models.Quiz
	notifier *services.OpsNotifier
}

func NewCheckHandler(log *zap.Logger, manager *session.Manager, tracker *vision.Tracker, quiz *models.Quiz, notifier *services.OpsNotifier) *CheckHandler {
	return &CheckHandler{log: log, manager: manager, tracker: tracker, quiz: quiz, notifier: notifier}
}

type consentRequest struct {
	Agreed *bool `json:"agreed" binding:"required"`
}

type frameRequest struct {
	Landmarks   vision.Landmarks   `json:"landmarks" binding:"required"`
	Blendshapes vision.Blendshapes `json:"blendshapes"`
	TimestampMs int64              `json:"timestamp_ms"`
}

type behavioralRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

type checkResponse struct {
	CheckID string                     `json:"check_id"`
	Stage   session.Stage              `json:"stage"`
	Verdict *decision.ReadinessVerdict `json:"verdict,omitempty"`
}

// Create opens a new check session for the logged-in rider.
func (h *CheckHandler) Create(c *gin.Context) {
	riderID, ok := currentRiderID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snap := h.manager.Create(ownerKey(riderID))
	record := &models.CheckRecord{
		ID:      snap.ID,
		RiderID: riderID,
		Stage:   string(snap.Stage),
	}
	if err := repository.CreateCheck(record); err != nil {
		h.log.Error("Failed to persist new check", zap.String("checkID", snap.ID), zap.Error(err))
		h.manager.Discard(snap.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create check"})
		return
	}

	c.JSON(http.StatusCreated, checkResponse{CheckID: snap.ID, Stage: snap.Stage})
}

// Consent records the privacy consent decision.
func (h *CheckHandler) Consent(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid consent payload"})
		return
	}

	if err := h.manager.RecordConsent(checkID, *req.Agreed); err != nil {
		h.writeSessionError(c, err)
		return
	}

	snap, _ := h.manager.Get(checkID)
	if err := repository.UpdateCheckStage(checkID, string(snap.Stage), snap.ConsentAgreed); err != nil {
		h.log.Error("Failed to persist consent", zap.String("checkID", checkID), zap.Error(err))
	}
	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: snap.Stage})
}

// Frame feeds one landmark sample through the session's scan and returns
// the smoothed metrics. Frames arrive at whatever rate the capture loop
// produces; per-scan serialization lives in the tracker.
func (h *CheckHandler) Frame(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}

	snap, err := h.manager.Get(checkID)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	if snap.Finalized() || snap.Signals != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "vision scan already completed"})
		return
	}

	var req frameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame payload"})
		return
	}
	nowMs := req.TimestampMs
	if nowMs == 0 {
		nowMs = time.Now().UnixMilli()
	}

	metrics := h.tracker.Process(checkID, req.Landmarks, req.Blendshapes, nowMs)

	sample := &models.FaceSampleRecord{
		CheckID:          checkID,
		EyeAspectRatio:   metrics.EyeAspectRatio,
		EyeBlinkRate:     metrics.EyeBlinkRate,
		BlinkVariance:    metrics.BlinkVariance,
		BrowFurrow:       metrics.BrowFurrow,
		LipTighten:       metrics.LipTighten,
		MouthOpen:        metrics.MouthOpen,
		HeadStability:    metrics.HeadStability,
		HeadTiltVariance: metrics.HeadTiltVariance,
		FaceVisibility:   metrics.FaceVisibility,
		TimestampMs:      metrics.TimestampMs,
	}
	if err := repository.SaveFaceSample(sample); err != nil {
		h.log.Error("Failed to persist face sample", zap.String("checkID", checkID), zap.Error(err))
	}

	c.JSON(http.StatusOK, metrics)
}

// Vision attaches the classifier's impairment signals and closes the scan.
func (h *CheckHandler) Vision(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var signals decision.ImpairmentSignals
	if err := c.ShouldBindJSON(&signals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid impairment signals payload"})
		return
	}

	if err := h.manager.RecordVision(checkID, signals); err != nil {
		h.writeSessionError(c, err)
		return
	}
	// The scan's rolling state has served its purpose.
	h.tracker.Discard(checkID)

	snap, _ := h.manager.Get(checkID)
	record := models.CheckRecord{
		Intoxication:             signals.Intoxication,
		Fatigue:                  signals.Fatigue,
		Stress:                   signals.Stress,
		Fever:                    signals.Fever,
		Eyewear:                  signals.Eyewear,
		FacialDrooping:           signals.FacialDrooping,
		MicroNods:                signals.MicroNods,
		Mood:                     signals.Mood,
		EyeRedness:               signals.EyeRedness,
		PupilReactivity:          signals.PupilReactivity,
		BlinkInstructionFollowed: signals.BlinkInstructionFollowed,
	}
	if err := repository.SaveVisionSignals(checkID, string(snap.Stage), record); err != nil {
		h.log.Error("Failed to persist vision signals", zap.String("checkID", checkID), zap.Error(err))
	}
	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: snap.Stage})
}

// Cognitive attaches the reaction-latency result.
func (h *CheckHandler) Cognitive(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var result decision.CognitiveResult
	if err := c.ShouldBindJSON(&result); err != nil || result.AverageLatencyMs <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cognitive result payload"})
		return
	}

	if err := h.manager.RecordCognitive(checkID, result); err != nil {
		h.writeSessionError(c, err)
		return
	}

	snap, _ := h.manager.Get(checkID)
	if err := repository.SaveCognitiveResult(checkID, string(snap.Stage), result.AverageLatencyMs, result.RoundLatenciesMs); err != nil {
		h.log.Error("Failed to persist cognitive result", zap.String("checkID", checkID), zap.Error(err))
	}
	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: snap.Stage})
}

// Behavioral attaches the quiz answers in catalog order.
func (h *CheckHandler) Behavioral(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var req behavioralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid behavioral payload"})
		return
	}

	// Order answers by the catalog so grading and persistence are stable.
	outcome := decision.BehavioralOutcome{}
	for _, question := range h.quiz.Questions {
		if choice, ok := req.Answers[question.ID]; ok {
			outcome.Answers = append(outcome.Answers, decision.BehavioralAnswer{
				QuestionID: question.ID,
				Choice:     choice,
			})
		}
	}

	if err := h.manager.RecordBehavioral(checkID, outcome); err != nil {
		h.writeSessionError(c, err)
		return
	}

	snap, _ := h.manager.Get(checkID)
	if err := repository.UpdateCheckStage(checkID, string(snap.Stage), snap.ConsentAgreed); err != nil {
		h.log.Error("Failed to persist behavioral stage", zap.String("checkID", checkID), zap.Error(err))
	}
	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: snap.Stage})
}

// Finalize produces the terminal verdict. Safe to retry: repeats return
// the stored verdict without re-running the fusion engine or re-writing
// the ledger.
func (h *CheckHandler) Finalize(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}
	riderID, _ := currentRiderID(c)
	baseline := repository.BaselineLatency(c.Request.Context(), riderID)

	verdict, err := h.manager.Finalize(checkID, baseline, func(snap session.CheckSession) {
		h.persistFinalized(snap)
	})
	if err != nil {
		h.writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: session.StageFinalized, Verdict: &verdict})
}

// Get returns the session's current state.
func (h *CheckHandler) Get(c *gin.Context) {
	checkID, ok := h.ownedSession(c)
	if !ok {
		return
	}
	snap, err := h.manager.Get(checkID)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkResponse{CheckID: checkID, Stage: snap.Stage, Verdict: snap.Verdict})
}

// persistFinalized runs on the single transition into FINALIZED.
func (h *CheckHandler) persistFinalized(snap session.CheckSession) {
	verdict := *snap.Verdict
	summary := models.CheckRecord{
		ID:                  snap.ID,
		Stage:               string(snap.Stage),
		Status:              string(verdict.Status),
		Reason:              verdict.Reason,
		LatencyDeltaPercent: verdict.LatencyDeltaPercent,
	}

	var answers []models.BehavioralAnswerRecord
	if snap.Behavioral != nil {
		for _, answer := range snap.Behavioral.Answers {
			correct, known := h.quiz.CorrectChoice(answer.QuestionID)
			answers = append(answers, models.BehavioralAnswerRecord{
				QuestionID: answer.QuestionID,
				Choice:     answer.Choice,
				Correct:    known && answer.Choice == correct,
			})
		}
	}

	if err := repository.SaveFinalizedCheckTx(summary, answers); err != nil {
		h.log.Error("Failed to persist finalized check", zap.String("checkID", snap.ID), zap.Error(err))
	}

	h.notifier.VerdictReached(snap.OwnerID, snap.ID, verdict)
}

// ownedSession resolves the :id parameter and rejects riders touching a
// session they do not own.
func (h *CheckHandler) ownedSession(c *gin.Context) (string, bool) {
	riderID, ok := currentRiderID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}

	checkID := c.Param("id")
	snap, err := h.manager.Get(checkID)
	if err != nil {
		h.writeSessionError(c, err)
		return "", false
	}
	if snap.OwnerID != ownerKey(riderID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "check belongs to another rider"})
		return "", false
	}
	return checkID, true
}

// writeSessionError maps the session error taxonomy onto HTTP statuses.
func (h *CheckHandler) writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "check not found"})
	case errors.Is(err, session.ErrMissingVisionData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "vision scan must be completed first"})
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("Unexpected session error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func ownerKey(riderID uint) string {
	return fmt.Sprintf("rider-%d", riderID)
}
