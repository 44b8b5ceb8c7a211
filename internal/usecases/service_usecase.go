package usecases

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ServiceUsecase manages the service catalog
type ServiceUsecase struct {
	serviceRepo repositories.ServiceRepository
}

func NewServiceUsecase(serviceRepo repositories.ServiceRepository) *ServiceUsecase {
	return &ServiceUsecase{serviceRepo: serviceRepo}
}

// ListActive returns the services customers can apply for
func (u *ServiceUsecase) ListActive(ctx context.Context) ([]*entities.Service, error) {
	return u.serviceRepo.List(ctx, true)
}

// GetActiveBySlug hides inactive services from the public catalog
func (u *ServiceUsecase) GetActiveBySlug(ctx context.Context, slug string) (*entities.Service, error) {
	svc, err := u.serviceRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, domainerrors.ErrNotFound
	}
	return svc, nil
}

func (u *ServiceUsecase) List(ctx context.Context) ([]*entities.Service, error) {
	return u.serviceRepo.List(ctx, false)
}

func (u *ServiceUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Service, error) {
	return u.serviceRepo.GetByID(ctx, id)
}

func (u *ServiceUsecase) Create(ctx context.Context, input *entities.ServiceInput) (*entities.Service, error) {
	svc := &entities.Service{IsActive: true}
	if err := u.apply(ctx, svc, input); err != nil {
		return nil, err
	}
	if err := u.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (u *ServiceUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.ServiceInput) (*entities.Service, error) {
	svc, err := u.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.apply(ctx, svc, input); err != nil {
		return nil, err
	}
	if err := u.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Delete soft-deletes the service. Existing applications keep their reference.
func (u *ServiceUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.serviceRepo.Delete(ctx, id)
}

func (u *ServiceUsecase) apply(ctx context.Context, svc *entities.Service, input *entities.ServiceInput) error {
	if input.Price.IsNegative() {
		return domainerrors.NewError("price must not be negative", domainerrors.ErrValidation)
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return domainerrors.NewError("a slug could not be derived from the name", domainerrors.ErrValidation)
	}

	existing, err := u.serviceRepo.GetBySlug(ctx, slug)
	switch {
	case err == nil && existing.ID != svc.ID:
		return domainerrors.NewError("slug already in use", domainerrors.ErrAlreadyExists)
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return err
	}

	svc.Name = strings.TrimSpace(input.Name)
	svc.Slug = slug
	svc.Description = input.Description
	svc.Price = input.Price.Round(2)
	svc.ProcessingTime = input.ProcessingTime
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	return nil
}
