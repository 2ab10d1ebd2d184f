package screens

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

// Scan is the capture screen: pick an image and a meal type, then upload.
type Scan struct {
	notifier

	Notes string

	d     Deps
	image *apiclient.Image
	meal  settings.MealType
}

func NewScan(d Deps) *Scan {
	return &Scan{d: d}
}

// SelectImage replaces the chosen image. Only image types are accepted;
// a missing content type is sniffed from the data.
func (s *Scan) SelectImage(img apiclient.Image) error {
	if img.ContentType == "" {
		img.ContentType = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		s.notify(SeverityError, "Please select an image file")
		return invalid("file", "Please select an image file")
	}
	s.image = &img
	return nil
}

// SelectMealType tags the pending upload.
func (s *Scan) SelectMealType(meal settings.MealType) error {
	if _, ok := settings.ParseMealType(string(meal)); !ok {
		return invalid("mealType", fmt.Sprintf("unknown meal type %q", meal))
	}
	s.meal = meal
	return nil
}

// Image returns the selected image.
func (s *Scan) Image() (apiclient.Image, bool) {
	if s.image == nil {
		return apiclient.Image{}, false
	}
	return *s.image, true
}

// MealType returns the selected meal type, or "".
func (s *Scan) MealType() settings.MealType {
	return s.meal
}

// Submit uploads the image. Without an image or a meal type nothing is
// sent. On failure the selection is kept for a retry.
func (s *Scan) Submit(ctx context.Context) (model.UploadResponse, error) {
	user, ok := s.d.Session.User()
	if s.image == nil || !ok {
		s.notify(SeverityError, "Please select an image first")
		return model.UploadResponse{}, invalid("file", "Please select an image first")
	}
	if s.meal == "" {
		s.notify(SeverityWarning, "Please select a meal type")
		return model.UploadResponse{}, invalid("mealType", "Please select a meal type")
	}

	resp, err := s.d.API.UploadFoodImage(ctx, *s.image, user.ID, s.Notes)
	if err != nil {
		s.notify(SeverityError, apiclient.Message(err))
		s.d.logger().Warn("upload failed", "user_id", user.ID, "error", err)
		return resp, err
	}
	if resp.Status != model.StatusSuccess || resp.LogID == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "Analysis failed"
		}
		s.notify(SeverityError, msg)
		return resp, fmt.Errorf("%w: %s", ErrAnalysisFailed, msg)
	}

	s.d.Settings.SetMealTag(resp.LogID, s.meal)
	s.notify(SeveritySuccess, "Analysis complete!")
	s.d.Nav.Navigate(nav.Results{LogID: resp.LogID, MealType: s.meal})
	return resp, nil
}
