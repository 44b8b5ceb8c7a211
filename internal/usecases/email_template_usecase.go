package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/pkg/logger"
)

// EmailTemplateUsecase manages the editable notification templates
type EmailTemplateUsecase struct {
	templateRepo repositories.EmailTemplateRepository
	renderer     TemplateRenderer
	sender       EmailSender
	now          func() time.Time
}

func NewEmailTemplateUsecase(templateRepo repositories.EmailTemplateRepository, renderer TemplateRenderer, sender EmailSender) *EmailTemplateUsecase {
	return &EmailTemplateUsecase{
		templateRepo: templateRepo,
		renderer:     renderer,
		sender:       sender,
		now:          time.Now,
	}
}

func (u *EmailTemplateUsecase) List(ctx context.Context) ([]*entities.EmailTemplate, error) {
	return u.templateRepo.List(ctx)
}

func (u *EmailTemplateUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	return u.templateRepo.GetByID(ctx, id)
}

func (u *EmailTemplateUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateEmailTemplateInput) (*entities.EmailTemplate, error) {
	tpl, err := u.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Subject != nil {
		if *input.Subject == "" {
			return nil, domainerrors.NewError("subject cannot be empty", domainerrors.ErrValidation)
		}
		tpl.Subject = *input.Subject
	}
	if input.Body != nil {
		if *input.Body == "" {
			return nil, domainerrors.NewError("body cannot be empty", domainerrors.ErrValidation)
		}
		tpl.Body = *input.Body
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}
	if err := u.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Reset restores the seeded subject, body and variables of the template.
func (u *EmailTemplateUsecase) Reset(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	tpl, err := u.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def, ok := entities.DefaultEmailTemplate(tpl.Slug)
	if !ok {
		return nil, domainerrors.NewError("no default exists for this template", domainerrors.ErrInvalidState)
	}
	def.ID = tpl.ID
	if err := u.templateRepo.Upsert(ctx, &def); err != nil {
		return nil, err
	}
	return u.templateRepo.GetBySlug(ctx, tpl.Slug)
}

// Preview renders the template with sample data.
func (u *EmailTemplateUsecase) Preview(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	tpl, err := u.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rendered := u.renderer.RenderTemplate(tpl, u.sampleVars(ctx))
	preview := *tpl
	preview.Subject = rendered.Subject
	preview.Body = rendered.Markdown
	return &preview, nil
}

// SendTest renders the template with sample data and mails it to the
// given address. Inactive templates can still be tested.
func (u *EmailTemplateUsecase) SendTest(ctx context.Context, id uuid.UUID, to string) error {
	tpl, err := u.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rendered := u.renderer.RenderTemplate(tpl, u.sampleVars(ctx))
	rendered.Subject = "[TEST] " + rendered.Subject
	if err := u.sender.SendRendered(ctx, to, "", rendered); err != nil {
		logger.Error(ctx, "Template test email failed",
			zap.String("template", tpl.Slug), zap.String("to", to), zap.Error(err))
		return domainerrors.NewError("Failed to send test email: "+err.Error(), domainerrors.ErrGatewayError)
	}
	return nil
}

func (u *EmailTemplateUsecase) sampleVars(ctx context.Context) map[string]string {
	vars := u.renderer.CommonVars(ctx)
	for k, v := range entities.SampleTemplateData(u.now()) {
		vars[k] = v
	}
	return vars
}
