package entities

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ApplicationStatus represents the lifecycle state of an application
type ApplicationStatus string

const (
	ApplicationStatusPendingPayment ApplicationStatus = "pending_payment"
	ApplicationStatusPending        ApplicationStatus = "pending"
	ApplicationStatusProcessing     ApplicationStatus = "processing"
	ApplicationStatusCompleted      ApplicationStatus = "completed"
	ApplicationStatusRejected       ApplicationStatus = "rejected"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPendingPayment: {ApplicationStatusPending},
	ApplicationStatusPending:        {ApplicationStatusProcessing, ApplicationStatusRejected},
	ApplicationStatusProcessing:     {ApplicationStatusCompleted, ApplicationStatusRejected},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPendingPayment, ApplicationStatusPending, ApplicationStatusProcessing,
		ApplicationStatusCompleted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application represents a customer's request for a service
type Application struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"userId"`
	ServiceID    uuid.UUID          `json:"serviceId"`
	CompanyName  string             `json:"companyName"`
	BusinessType null.String        `json:"businessType"`
	Details      ApplicationDetails `json:"details"`
	Status       ApplicationStatus  `json:"status"`
	AdminNotes   null.String        `json:"adminNotes"`
	SubmittedAt  *time.Time         `json:"submittedAt,omitempty"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`

	// Joins
	Service    *Service    `json:"service,omitempty"`
	User       *User       `json:"user,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty"`
	Documents  []Document  `json:"documents,omitempty"`
	Payments   []Payment   `json:"payments,omitempty"`

	// Derived from Milestones by ComputeProgress
	ProgressPercentage int        `json:"progressPercentage"`
	CurrentMilestone   *Milestone `json:"currentMilestone,omitempty"`
}

// IsEditable reports whether the customer may still change or delete it.
func (a *Application) IsEditable() bool {
	return a.Status == ApplicationStatusPendingPayment
}

// ComputeProgress fills the derived progress fields from Milestones.
func (a *Application) ComputeProgress() {
	a.ProgressPercentage = ProgressPercentage(a.Milestones)
	a.CurrentMilestone = CurrentMilestone(a.Milestones)
}

// MilestoneStatus represents the state of one milestone
type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusInProgress MilestoneStatus = "in_progress"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
)

// Milestone is one step of an application's fulfilment
type Milestone struct {
	ID            uuid.UUID       `json:"id"`
	ApplicationID uuid.UUID       `json:"applicationId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        MilestoneStatus `json:"status"`
	Order         int             `json:"order"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MilestoneTemplate is a title/description pair of the fixed sequence.
type MilestoneTemplate struct {
	Title       string
	Description string
}

// DefaultMilestones is the fixed fulfilment sequence.
var DefaultMilestones = []MilestoneTemplate{
	{"Payment Received", "Your payment has been confirmed"},
	{"Document Review", "We are reviewing your submitted documents"},
	{"Name Reservation", "Reserving your business name with CAC"},
	{"Registration Processing", "Processing your registration with CAC"},
	{"Certificate Issuance", "Your certificate is being prepared"},
	{"Completed", "Your registration is complete"},
}

// ReviewMilestoneOrder is the milestone started when staff approve.
const ReviewMilestoneOrder = 2

// NewDefaultMilestones builds the sequence for an application whose payment
// has just been confirmed. The first milestone starts completed.
func NewDefaultMilestones(applicationID uuid.UUID, now time.Time) []*Milestone {
	out := make([]*Milestone, 0, len(DefaultMilestones))
	for i, tpl := range DefaultMilestones {
		m := &Milestone{
			ID:            uuid.New(),
			ApplicationID: applicationID,
			Title:         tpl.Title,
			Description:   tpl.Description,
			Status:        MilestoneStatusPending,
			Order:         i + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if i == 0 {
			completedAt := now
			m.Status = MilestoneStatusCompleted
			m.CompletedAt = &completedAt
		}
		out = append(out, m)
	}
	return out
}

// ProgressPercentage is round(100 * completed / total), 0 for no milestones.
func ProgressPercentage(milestones []Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Status == MilestoneStatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) * 100 / float64(len(milestones))))
}

// CurrentMilestone returns the first non-completed milestone by order.
func CurrentMilestone(milestones []Milestone) *Milestone {
	sorted := make([]Milestone, len(milestones))
	copy(sorted, milestones)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	for i := range sorted {
		if sorted[i].Status != MilestoneStatusCompleted {
			m := sorted[i]
			return &m
		}
	}
	return nil
}

// CreateApplicationInput represents a new application before payment
type CreateApplicationInput struct {
	ServiceID    uuid.UUID          `json:"serviceId"`
	CompanyName  string             `json:"companyName" binding:"required,max=255"`
	BusinessType string             `json:"businessType" binding:"omitempty,max=100"`
	Details      ApplicationDetails `json:"details"`
}

// UpdateApplicationInput represents customer edits while payment is pending.
// Nil fields are left unchanged.
type UpdateApplicationInput struct {
	CompanyName  *string             `json:"companyName" binding:"omitempty,max=255"`
	BusinessType *string             `json:"businessType" binding:"omitempty,max=100"`
	Details      *ApplicationDetails `json:"details"`
}

// RejectApplicationInput carries the reason shown to the customer
type RejectApplicationInput struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// AdvanceMilestoneInput selects the milestone to complete
type AdvanceMilestoneInput struct {
	MilestoneID uuid.UUID `json:"milestoneId"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	UserID *uuid.UUID
	Status ApplicationStatus
	Search string
}
