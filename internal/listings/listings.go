// Package listings covers browsing houses and the landlord's own listings.
package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

// MaxImages caps the photos on one listing
const MaxImages = 10

var (
	ErrNotAnImage    = errors.New("only image files can be uploaded as photos")
	ErrTooManyImages = fmt.Errorf("a listing can have at most %d photos", MaxImages)
	ErrBadBillType   = errors.New("electricity bill must be an image or a PDF")
	ErrNoFiles       = errors.New("no files selected")
)

// Config wires the service's collaborators
type Config struct {
	Logger    logrus.FieldLogger
	Notifier  notify.Notifier
	Validator *validation.Validator
}

func (c *Config) defaults() {
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	if c.Notifier == nil {
		c.Notifier = notify.Discard{}
	}
	if c.Validator == nil {
		c.Validator = validation.New()
	}
}

// Service is the listings surface for one signed-in (or anonymous) user.
// The landlord's own listings are cached after Mine and patched on writes.
type Service struct {
	client *api.Client
	cfg    Config

	mu   sync.Mutex
	mine []models.House
}

// NewService creates a listings service
func NewService(client *api.Client, cfg Config) *Service {
	cfg.defaults()
	return &Service{client: client, cfg: cfg}
}

// Browse returns approved listings matching filter
func (s *Service) Browse(ctx context.Context, filter models.HouseFilter) ([]models.House, error) {
	filter.City = strings.TrimSpace(filter.City)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.MinRent != nil && filter.MaxRent != nil && filter.MinRent.GreaterThan(*filter.MaxRent) {
		return nil, validation.Errors{"maxRent": "Max rent must be at least the min rent"}
	}

	houses, err := s.client.ListHouses(ctx, filter)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not load houses."))
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	if houses == nil {
		houses = []models.House{}
	}
	return houses, nil
}

// Get returns one listing
func (s *Service) Get(ctx context.Context, id string) (*models.House, error) {
	house, err := s.client.GetHouse(ctx, id)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not load the house."))
		return nil, fmt.Errorf("failed to get house %s: %w", id, err)
	}
	return house, nil
}

// Mine returns the landlord's listings
func (s *Service) Mine(ctx context.Context) ([]models.House, error) {
	houses, err := s.client.MyHouses(ctx)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not load your listings."))
		return nil, fmt.Errorf("failed to list landlord houses: %w", err)
	}
	s.mu.Lock()
	s.mine = houses
	s.mu.Unlock()
	return s.Cached(), nil
}

// Cached returns the landlord's listings as last loaded or patched
func (s *Service) Cached() []models.House {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.House{}, s.mine...)
}

func (s *Service) validate(in *models.HouseInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.AvailableFrom = strings.TrimSpace(in.AvailableFrom)
	if len(in.Images) > MaxImages {
		return validation.Errors{"images": ErrTooManyImages.Error()}
	}
	return s.cfg.Validator.Struct(in)
}

// Create submits a new listing for moderation
func (s *Service) Create(ctx context.Context, in models.HouseInput) (*models.House, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	house, err := s.client.CreateHouse(ctx, in)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not create the listing."))
		return nil, fmt.Errorf("failed to create house: %w", err)
	}

	s.mu.Lock()
	s.mine = append([]models.House{*house}, s.mine...)
	s.mu.Unlock()

	s.cfg.Logger.WithField("house_id", house.ID).Info("Listing created")
	s.cfg.Notifier.Success("Listing submitted for approval.")
	return house, nil
}

// Update edits a listing
func (s *Service) Update(ctx context.Context, id string, in models.HouseInput) (*models.House, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	house, err := s.client.UpdateHouse(ctx, id, in)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not update the listing."))
		return nil, fmt.Errorf("failed to update house %s: %w", id, err)
	}

	s.mu.Lock()
	for i := range s.mine {
		if s.mine[i].ID == id {
			s.mine[i] = *house
		}
	}
	s.mu.Unlock()

	s.cfg.Notifier.Success("Listing updated.")
	return house, nil
}

// Delete removes a listing
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteHouse(ctx, id); err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not delete the listing."))
		return fmt.Errorf("failed to delete house %s: %w", id, err)
	}

	s.mu.Lock()
	for i := range s.mine {
		if s.mine[i].ID == id {
			s.mine = append(s.mine[:i], s.mine[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.cfg.Notifier.Success("Listing deleted.")
	return nil
}

// UploadImages uploads listing photos and returns their URLs
func (s *Service) UploadImages(ctx context.Context, files []api.UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > MaxImages {
		return nil, ErrTooManyImages
	}
	for _, f := range files {
		if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
			return nil, fmt.Errorf("%s: %w", f.Name, ErrNotAnImage)
		}
	}

	urls, err := s.client.UploadImages(ctx, files)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not upload the photos."))
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}
	return urls, nil
}

// UploadElectricityBill uploads the bill that proves the address
func (s *Service) UploadElectricityBill(ctx context.Context, file api.UploadFile) (*models.UploadedFile, error) {
	ct := strings.ToLower(file.ContentType)
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return nil, ErrBadBillType
	}
	up, err := s.client.UploadElectricityBill(ctx, file)
	if err != nil {
		s.cfg.Notifier.Error(api.MessageOf(err, "Could not upload the bill."))
		return nil, fmt.Errorf("failed to upload electricity bill: %w", err)
	}
	if up.Type == "" {
		up.Type = file.ContentType
	}
	return up, nil
}
