package repositories

import (
	"encoding/json"

	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/infrastructure/models"
)

func userToModel(u *entities.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userToEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Status:       entities.UserStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func roleToEntity(m *models.Role) *entities.Role {
	return &entities.Role{
		ID:          m.ID,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		IsSystem:    m.IsSystem,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func permissionToEntity(m *models.Permission) entities.Permission {
	return entities.Permission{
		ID:          m.ID,
		Name:        entities.PermissionName(m.Name),
		DisplayName: m.DisplayName,
		Group:       m.Group,
		Description: m.Description,
	}
}

func serviceToModel(s *entities.Service) *models.Service {
	return &models.Service{
		ID:             s.ID,
		Name:           s.Name,
		Slug:           s.Slug,
		Description:    s.Description,
		Price:          s.Price,
		ProcessingTime: s.ProcessingTime,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func serviceToEntity(m *models.Service) *entities.Service {
	return &entities.Service{
		ID:             m.ID,
		Name:           m.Name,
		Slug:           m.Slug,
		Description:    m.Description,
		Price:          m.Price,
		ProcessingTime: m.ProcessingTime,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func applicationToModel(a *entities.Application) (*models.Application, error) {
	details, err := json.Marshal(a.Details)
	if err != nil {
		return nil, err
	}
	return &models.Application{
		ID:           a.ID,
		UserID:       a.UserID,
		ServiceID:    a.ServiceID,
		CompanyName:  a.CompanyName,
		BusinessType: a.BusinessType.Ptr(),
		Details:      string(details),
		Status:       string(a.Status),
		AdminNotes:   a.AdminNotes.Ptr(),
		SubmittedAt:  a.SubmittedAt,
		CompletedAt:  a.CompletedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}, nil
}

func applicationToEntity(m *models.Application) *entities.Application {
	a := &entities.Application{
		ID:           m.ID,
		UserID:       m.UserID,
		ServiceID:    m.ServiceID,
		CompanyName:  m.CompanyName,
		BusinessType: null.StringFromPtr(m.BusinessType),
		Status:       entities.ApplicationStatus(m.Status),
		AdminNotes:   null.StringFromPtr(m.AdminNotes),
		SubmittedAt:  m.SubmittedAt,
		CompletedAt:  m.CompletedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Details != "" {
		// Rows written by this package always hold valid JSON.
		_ = json.Unmarshal([]byte(m.Details), &a.Details)
	}
	if m.Service != nil {
		a.Service = serviceToEntity(m.Service)
	}
	if m.User != nil {
		a.User = userToEntity(m.User)
	}
	for i := range m.Milestones {
		a.Milestones = append(a.Milestones, *milestoneToEntity(&m.Milestones[i]))
	}
	for i := range m.Documents {
		a.Documents = append(a.Documents, *documentToEntity(&m.Documents[i]))
	}
	for i := range m.Payments {
		a.Payments = append(a.Payments, *paymentToEntity(&m.Payments[i]))
	}
	a.ComputeProgress()
	return a
}

func milestoneToModel(ms *entities.Milestone) *models.Milestone {
	return &models.Milestone{
		ID:            ms.ID,
		ApplicationID: ms.ApplicationID,
		Title:         ms.Title,
		Description:   ms.Description,
		Status:        string(ms.Status),
		Position:      ms.Order,
		CompletedAt:   ms.CompletedAt,
		CreatedAt:     ms.CreatedAt,
		UpdatedAt:     ms.UpdatedAt,
	}
}

func milestoneToEntity(m *models.Milestone) *entities.Milestone {
	return &entities.Milestone{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		Title:         m.Title,
		Description:   m.Description,
		Status:        entities.MilestoneStatus(m.Status),
		Order:         m.Position,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func paymentToModel(p *entities.Payment) *models.Payment {
	return &models.Payment{
		ID:              p.ID,
		UserID:          p.UserID,
		ApplicationID:   p.ApplicationID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Reference:       p.Reference,
		Gateway:         p.Gateway,
		Status:          string(p.Status),
		GatewayResponse: p.GatewayResponse,
		VerifyAttempts:  p.VerifyAttempts,
		LastError:       p.LastError.Ptr(),
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func paymentToEntity(m *models.Payment) *entities.Payment {
	p := &entities.Payment{
		ID:              m.ID,
		UserID:          m.UserID,
		ApplicationID:   m.ApplicationID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Reference:       m.Reference,
		Gateway:         m.Gateway,
		Status:          entities.PaymentStatus(m.Status),
		GatewayResponse: m.GatewayResponse,
		VerifyAttempts:  m.VerifyAttempts,
		LastError:       null.StringFromPtr(m.LastError),
		PaidAt:          m.PaidAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Application != nil {
		p.Application = applicationToEntity(m.Application)
	}
	if m.User != nil {
		p.User = userToEntity(m.User)
	}
	return p
}

func documentToModel(d *entities.Document) *models.Document {
	return &models.Document{
		ID:              d.ID,
		UserID:          d.UserID,
		ApplicationID:   d.ApplicationID,
		Name:            d.Name,
		Type:            string(d.Type),
		FilePath:        d.FilePath,
		FileName:        d.FileName,
		FileSize:        d.FileSize,
		MimeType:        d.MimeType,
		Status:          string(d.Status),
		RejectionReason: d.RejectionReason.Ptr(),
		UploadedByAdmin: d.UploadedByAdmin,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func documentToEntity(m *models.Document) *entities.Document {
	d := &entities.Document{
		ID:              m.ID,
		UserID:          m.UserID,
		ApplicationID:   m.ApplicationID,
		Name:            m.Name,
		Type:            entities.DocumentType(m.Type),
		FilePath:        m.FilePath,
		FileName:        m.FileName,
		FileSize:        m.FileSize,
		MimeType:        m.MimeType,
		Status:          entities.DocumentStatus(m.Status),
		RejectionReason: null.StringFromPtr(m.RejectionReason),
		UploadedByAdmin: m.UploadedByAdmin,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.User != nil {
		d.User = userToEntity(m.User)
	}
	return d
}

func templateToModel(t *entities.EmailTemplate) (*models.EmailTemplate, error) {
	vars, err := json.Marshal(t.Variables)
	if err != nil {
		return nil, err
	}
	return &models.EmailTemplate{
		ID:          t.ID,
		Slug:        t.Slug,
		Name:        t.Name,
		Subject:     t.Subject,
		Body:        t.Body,
		Description: t.Description,
		Variables:   string(vars),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func templateToEntity(m *models.EmailTemplate) *entities.EmailTemplate {
	t := &entities.EmailTemplate{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Subject:     m.Subject,
		Body:        m.Body,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Variables != "" {
		_ = json.Unmarshal([]byte(m.Variables), &t.Variables)
	}
	return t
}
