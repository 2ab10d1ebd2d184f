package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/analyzer"
	"github.com/nutriscan/nutriscan-go/internal/crypto"
	"github.com/nutriscan/nutriscan-go/internal/metrics"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
	"github.com/nutriscan/nutriscan-go/internal/storage"
)

// DefaultUploadUserID is used when an upload names no user.
const DefaultUploadUserID int64 = 1

// placeholderPassword is the password of auto-created users.
const placeholderPassword = "password"

var (
	ErrEmptyFile  = errors.New("file is empty")
	ErrImageSave  = errors.New("failed to save image file")
	ErrAnalysis   = errors.New("AI analysis failed")
	ErrAINotReady = analyzer.ErrNotConfigured
)

// Upload is one food image submitted for analysis.
type Upload struct {
	UserID      int64
	Filename    string
	ContentType string
	Data        []byte
	Notes       string
}

// AnalysisService stores uploaded food images and has them analyzed.
type AnalysisService struct {
	users    UserStore
	logs     LogStore
	ings     IngredientStore
	images   storage.ImageStore
	analyzer analyzer.ImageAnalyzer
	tools    *FoodTools
	metrics  metrics.Recorder
	logger   *slog.Logger

	// autoCreate inserts placeholder users for unknown IDs. Development only.
	autoCreate      bool
	placeholderOnce sync.Once
	placeholderHash string
	placeholderErr  error
}

// AnalysisDeps groups the collaborators of an AnalysisService.
type AnalysisDeps struct {
	Users           UserStore
	Logs            LogStore
	Ingredients     IngredientStore
	Images          storage.ImageStore
	Analyzer        analyzer.ImageAnalyzer
	Metrics         metrics.Recorder
	Logger          *slog.Logger
	AutoCreateUsers bool
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(d AnalysisDeps) *AnalysisService {
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Analyzer == nil {
		d.Analyzer = analyzer.Disabled{}
	}
	return &AnalysisService{
		users:      d.Users,
		logs:       d.Logs,
		ings:       d.Ingredients,
		images:     d.Images,
		analyzer:   d.Analyzer,
		tools:      NewFoodTools(d.Logs, d.Ingredients, d.Metrics, d.Logger),
		metrics:    d.Metrics,
		logger:     d.Logger,
		autoCreate: d.AutoCreateUsers,
	}
}

// Analyze saves the image, creates a log for it and runs the analysis. The
// returned response is always populated; on failure its message describes
// the problem and err classifies it.
func (s *AnalysisService) Analyze(ctx context.Context, up Upload) (model.UploadResponse, error) {
	resp, err := s.analyze(ctx, up)
	if err != nil {
		s.metrics.RecordAnalysis("failed")
		s.logger.Warn("food analysis failed", "user_id", up.UserID, "log_id", resp.LogID, "error", err)
		return resp, err
	}
	s.metrics.RecordAnalysis("success")
	return resp, nil
}

func (s *AnalysisService) analyze(ctx context.Context, up Upload) (model.UploadResponse, error) {
	if len(up.Data) == 0 {
		return failed("File is empty."), ErrEmptyFile
	}
	if up.UserID <= 0 {
		up.UserID = DefaultUploadUserID
	}

	if err := s.ensureUser(ctx, up.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return failed(err.Error()), err
		}
		return failed("An error occurred during AI analysis: " + err.Error()), fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	path, err := s.images.Save(ctx, up.Filename, up.ContentType, bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return failed("Failed to save image file: " + err.Error()), fmt.Errorf("%w: %w", ErrImageSave, err)
	}

	log := &model.FoodLog{UserID: up.UserID, ImagePath: path, Confidence: 0}
	if err := s.logs.Create(ctx, log); err != nil {
		return failed("An error occurred during AI analysis: " + err.Error()), fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	err = s.analyzer.Analyze(ctx, analyzer.Request{
		LogID:       log.ID,
		Notes:       plainText(up.Notes),
		Image:       up.Data,
		ContentType: up.ContentType,
	}, s.tools.For(log.ID))
	if err != nil {
		resp := failed("An error occurred during AI analysis: " + err.Error())
		resp.LogID = log.ID
		return resp, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	// The stored rows are the result; whatever the model said is ignored.
	ingredients, err := s.ings.ListByLogID(ctx, log.ID)
	if err != nil {
		return failed("An error occurred during AI analysis: " + err.Error()), fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	count := len(ingredients)

	resp := model.UploadResponse{Status: model.StatusSuccess, LogID: log.ID, Count: &count}
	if saved, err := s.logs.GetByID(ctx, log.ID); err == nil {
		confidence := saved.Confidence
		resp.Confidence = &confidence
	}

	s.logger.Info("food analysis finished", "user_id", up.UserID, "log_id", log.ID, "count", count)
	return resp, nil
}

func (s *AnalysisService) ensureUser(ctx context.Context, id int64) error {
	_, err := s.users.GetByID(ctx, id)
	if err == nil || !errors.Is(err, repository.ErrUserNotFound) || !s.autoCreate {
		return err
	}

	s.placeholderOnce.Do(func() {
		s.placeholderHash, s.placeholderErr = crypto.HashPassword(placeholderPassword)
	})
	if s.placeholderErr != nil {
		return s.placeholderErr
	}

	s.logger.Warn("creating placeholder user", "user_id", id)
	return s.users.EnsureExists(ctx, id, s.placeholderHash)
}

func failed(msg string) model.UploadResponse {
	return model.UploadResponse{Status: model.StatusFailed, Message: msg}
}
