// checks.go
package repository

import (
	"context"

	"signn-go/internal/database"
	"signn-go/internal/models"

	"github.com/lib/pq"
)

// CreateCheck inserts the open record for a freshly created session.
func CreateCheck(record *models.CheckRecord) error {
	return database.DB.Create(record).Error
}

// UpdateCheckStage advances the persisted stage and consent flag.
func UpdateCheckStage(checkID, stage string, consented bool) error {
	query := `UPDATE check_records SET stage = $1, consented = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	return database.DB.Exec(query, stage, consented, checkID).Error
}

// SaveVisionSignals flattens the classifier output onto the check row.
func SaveVisionSignals(checkID, stage string, record models.CheckRecord) error {
	return database.DB.Model(&models.CheckRecord{}).Where("id = ?", checkID).Updates(map[string]interface{}{
		"stage":                      stage,
		"vision_recorded":            true,
		"intoxication":               record.Intoxication,
		"fatigue":                    record.Fatigue,
		"stress":                     record.Stress,
		"fever":                      record.Fever,
		"eyewear":                    record.Eyewear,
		"facial_drooping":            record.FacialDrooping,
		"micro_nods":                 record.MicroNods,
		"mood":                       record.Mood,
		"eye_redness":                record.EyeRedness,
		"pupil_reactivity":           record.PupilReactivity,
		"blink_instruction_followed": record.BlinkInstructionFollowed,
	}).Error
}

// SaveCognitiveResult stores the latency summary and per-round samples.
func SaveCognitiveResult(checkID, stage string, averageMs float64, rounds []float64) error {
	query := `UPDATE check_records SET stage = $1, average_latency_ms = $2, round_latencies_ms = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`
	return database.DB.Exec(query, stage, averageMs, pq.Array(rounds), checkID).Error
}

// SaveFinalizedCheckTx writes the terminal verdict and the graded quiz
// answers in a single transaction. It runs once per session; finalize
// idempotence upstream guarantees no double write.
func SaveFinalizedCheckTx(summary models.CheckRecord, answers []models.BehavioralAnswerRecord) error {
	tx, err := database.DB.DB()
	if err != nil {
		return err
	}

	sqlTx, err := tx.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	verdictQuery := `UPDATE check_records SET stage = $1, status = $2, reason = $3, latency_delta_percent = $4, finalized_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = $5`
	if _, err = sqlTx.Exec(verdictQuery, summary.Stage, summary.Status, summary.Reason, summary.LatencyDeltaPercent, summary.ID); err != nil {
		return err
	}

	stmt, err := sqlTx.Prepare(`INSERT INTO behavioral_answer_records (check_id, question_id, choice, correct, created_at) VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, answer := range answers {
		if _, err = stmt.Exec(summary.ID, answer.QuestionID, answer.Choice, answer.Correct); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// SaveFaceSample appends one smoothed metrics row for a scan in progress.
func SaveFaceSample(sample *models.FaceSampleRecord) error {
	return database.DB.Create(sample).Error
}

// GetCheck loads one check row.
func GetCheck(ctx context.Context, checkID string) (*models.CheckRecord, error) {
	var record models.CheckRecord
	result := database.DB.WithContext(ctx).First(&record, "id = ?", checkID)
	return &record, result.Error
}

// RecentChecks returns the newest finalized checks for the admin ledger.
// Pending sessions have no verdict and are deliberately excluded.
func RecentChecks(ctx context.Context, limit int) ([]models.CheckRecord, error) {
	var records []models.CheckRecord
	err := database.DB.WithContext(ctx).
		Where("finalized_at IS NOT NULL").
		Order("finalized_at DESC").
		Limit(limit).
		Preload("Rider").
		Find(&records).Error
	return records, err
}
