package repository

import (
	"context"

	"signn-go/internal/config"
	"signn-go/internal/database"
	"signn-go/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func CreateRider(username, password, name, email, language string) (*models.Rider, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	rider := &models.Rider{
		Username:          username,
		Password:          string(hashedPassword),
		Name:              name,
		Email:             email,
		Language:          language,
		BaselineLatencyMs: config.Conf.Readiness.DefaultBaselineLatencyMs,
	}
	result := database.DB.Create(rider)
	return rider, result.Error
}

func GetRiderByUsername(ctx context.Context, username string) (*models.Rider, error) {
	var rider models.Rider
	result := database.DB.WithContext(ctx).First(&rider, "username = ?", username)
	return &rider, result.Error
}

func GetRiderByID(ctx context.Context, id uint) (*models.Rider, error) {
	var rider models.Rider
	result := database.DB.WithContext(ctx).First(&rider, id)
	return &rider, result.Error
}

// BaselineLatency resolves the rider's reference reaction latency, falling
// back to the configured default when the stored value is unusable.
func BaselineLatency(ctx context.Context, riderID uint) float64 {
	rider, err := GetRiderByID(ctx, riderID)
	if err != nil || rider.BaselineLatencyMs <= 0 {
		return config.Conf.Readiness.DefaultBaselineLatencyMs
	}
	return rider.BaselineLatencyMs
}

func UpdateRiderLanguage(ctx context.Context, riderID uint, language string) error {
	return database.DB.WithContext(ctx).Model(&models.Rider{}).Where("id = ?", riderID).Update("language", language).Error
}
