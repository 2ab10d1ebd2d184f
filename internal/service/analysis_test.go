package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nutriscan/nutriscan-go/internal/analyzer"
	"github.com/nutriscan/nutriscan-go/internal/model"
)

type fakeImages struct {
	saved []string
	err   error
}

func (f *fakeImages) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.saved = append(f.saved, string(b))
	return "/images/" + name, nil
}

// scriptedAnalyzer calls the tools the way a model would.
type scriptedAnalyzer struct {
	run func(ctx context.Context, req analyzer.Request, tools analyzer.Tools) error
	got analyzer.Request
}

func (s *scriptedAnalyzer) Analyze(ctx context.Context, req analyzer.Request, tools analyzer.Tools) error {
	s.got = req
	if s.run == nil {
		return nil
	}
	return s.run(ctx, req, tools)
}

type analysisFixture struct {
	svc    *AnalysisService
	users  *memUsers
	logs   *memLogs
	ings   *memIngredients
	images *fakeImages
	ai     *scriptedAnalyzer
	rec    *countingRecorder
}

func newAnalysisFixture(autoCreate bool) *analysisFixture {
	users := newMemUsers()
	users.Create(context.Background(), &model.User{Email: "one@x.io"})
	ings := newMemIngredients()
	f := &analysisFixture{
		users:  users,
		ings:   ings,
		logs:   newMemLogs(ings),
		images: &fakeImages{},
		ai:     &scriptedAnalyzer{},
		rec:    &countingRecorder{},
	}
	f.svc = NewAnalysisService(AnalysisDeps{
		Users:           f.users,
		Logs:            f.logs,
		Ingredients:     f.ings,
		Images:          f.images,
		Analyzer:        f.ai,
		Metrics:         f.rec,
		Logger:          discardLogger,
		AutoCreateUsers: autoCreate,
	})
	return f
}

func upload(userID int64) Upload {
	return Upload{UserID: userID, Filename: "meal.jpg", ContentType: "image/jpeg", Data: []byte("jpeg"), Notes: "my lunch"}
}

func TestAnalyze_Success(t *testing.T) {
	f := newAnalysisFixture(false)
	f.ai.run = func(ctx context.Context, req analyzer.Request, tools analyzer.Tools) error {
		id := req.LogID
		tools.LogFoodIngredients(ctx, &id, []model.IngredientEntry{entry("Rice", 200, "150"), entry("Egg", 70, "50")})
		tools.SetAnalysisConfidence(ctx, &id, intPtr(90))
		return nil
	}

	resp, err := f.svc.Analyze(context.Background(), upload(1))
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}

	if resp.Status != model.StatusSuccess || resp.LogID == 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Count == nil || *resp.Count != 2 {
		t.Errorf("expected count 2, got %v", resp.Count)
	}
	if resp.Confidence == nil || *resp.Confidence != 90 {
		t.Errorf("expected confidence 90, got %v", resp.Confidence)
	}

	log := f.logs.byID[resp.LogID]
	if log.ImagePath != "/images/meal.jpg" || log.UserID != 1 {
		t.Errorf("unexpected stored log %+v", log)
	}
	if f.ai.got.Notes != "my lunch" || string(f.ai.got.Image) != "jpeg" {
		t.Errorf("unexpected analyzer request %+v", f.ai.got)
	}
	if f.rec.analyses["success"] != 1 || f.rec.ingredients != 2 {
		t.Errorf("unexpected metrics %+v", f.rec)
	}
}

func TestAnalyze_ToolsBoundToLog(t *testing.T) {
	f := newAnalysisFixture(false)
	var res model.ToolResult
	f.ai.run = func(ctx context.Context, req analyzer.Request, tools analyzer.Tools) error {
		other := req.LogID + 100
		res = tools.LogFoodIngredients(ctx, &other, []model.IngredientEntry{entry("Rice", 200, "150")})
		return nil
	}

	resp, err := f.svc.Analyze(context.Background(), upload(1))
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}
	if res.Status != model.StatusFailed {
		t.Errorf("expected tool call for another log to fail, got %+v", res)
	}
	if *resp.Count != 0 {
		t.Errorf("expected count 0, got %d", *resp.Count)
	}
}

func TestAnalyze_EmptyFile(t *testing.T) {
	f := newAnalysisFixture(false)
	up := upload(1)
	up.Data = nil

	resp, err := f.svc.Analyze(context.Background(), up)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if resp.Status != model.StatusFailed || resp.Message != "File is empty." {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(f.logs.byID) != 0 || len(f.images.saved) != 0 {
		t.Error("expected nothing stored for an empty file")
	}
}

func TestAnalyze_UnknownUser(t *testing.T) {
	f := newAnalysisFixture(false)

	resp, err := f.svc.Analyze(context.Background(), upload(7))
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if resp.Message != "user not found" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if len(f.images.saved) != 0 {
		t.Error("expected no image saved")
	}
}

func TestAnalyze_AutoCreatesUser(t *testing.T) {
	f := newAnalysisFixture(true)

	resp, err := f.svc.Analyze(context.Background(), upload(7))
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}
	if _, ok := f.users.byID[7]; !ok {
		t.Error("expected placeholder user 7")
	}
	if f.logs.byID[resp.LogID].UserID != 7 {
		t.Error("expected log owned by user 7")
	}
}

func TestAnalyze_DefaultUser(t *testing.T) {
	f := newAnalysisFixture(false)

	resp, err := f.svc.Analyze(context.Background(), upload(0))
	if err != nil {
		t.Fatalf("Analyze() unexpected error: %v", err)
	}
	if f.logs.byID[resp.LogID].UserID != DefaultUploadUserID {
		t.Errorf("expected default user, got %d", f.logs.byID[resp.LogID].UserID)
	}
}

func TestAnalyze_SaveFails(t *testing.T) {
	f := newAnalysisFixture(false)
	f.images.err = errors.New("disk full")

	resp, err := f.svc.Analyze(context.Background(), upload(1))
	if !errors.Is(err, ErrImageSave) {
		t.Fatalf("expected ErrImageSave, got %v", err)
	}
	if resp.Message != "Failed to save image file: disk full" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if f.rec.analyses["failed"] != 1 {
		t.Error("expected failed analysis recorded")
	}
}

func TestAnalyze_AnalyzerFails(t *testing.T) {
	f := newAnalysisFixture(false)
	f.ai.run = func(context.Context, analyzer.Request, analyzer.Tools) error {
		return errors.New("rate limited")
	}

	resp, err := f.svc.Analyze(context.Background(), upload(1))
	if !errors.Is(err, ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
	if !strings.HasPrefix(resp.Message, "An error occurred during AI analysis: ") {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.LogID == 0 {
		t.Error("expected the created log id in the failure")
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	f := newAnalysisFixture(false)
	f.svc.analyzer = analyzer.Disabled{}

	_, err := f.svc.Analyze(context.Background(), upload(1))
	if !errors.Is(err, ErrAINotReady) {
		t.Errorf("expected ErrAINotReady, got %v", err)
	}
}
