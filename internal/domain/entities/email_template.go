package entities

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Template slugs
const (
	TemplateWelcome              = "welcome"
	TemplatePaymentConfirmation  = "payment_confirmation"
	TemplateApplicationStatus    = "application_status"
	TemplateRegistrationComplete = "registration_complete"
	TemplateDocumentApproved     = "document_approved"
	TemplateDocumentRejected     = "document_rejected"
)

// EmailTemplate is an editable transactional email in markdown
type EmailTemplate struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Description string    `json:"description"`
	Variables   []string  `json:"variables"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// RenderPlaceholders replaces {{key}} with vars[key]. Unknown keys are left
// untouched. Values are inserted verbatim without escaping.
func RenderPlaceholders(text string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return match
	})
}

// UpdateEmailTemplateInput edits a template. Nil fields are left unchanged.
type UpdateEmailTemplateInput struct {
	Subject  *string `json:"subject" binding:"omitempty,max=255"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"isActive"`
}

// SampleTemplateData is used when sending test emails.
func SampleTemplateData(now time.Time) map[string]string {
	return map[string]string{
		"user_name":        "Test User",
		"amount":           "50,000.00",
		"reference":        "AVL-TEST123",
		"gateway":          "Paystack",
		"paid_at":          now.Format("January 2, 2006 3:04 PM"),
		"service_name":     "Business Name Registration",
		"business_name":    "Test Company Ltd",
		"status":           "Processing",
		"milestone_info":   "**Document Review** - We are reviewing your submitted documents",
		"status_message":   "Your application is being processed.",
		"completed_at":     now.Format("January 2, 2006"),
		"document_name":    "International Passport",
		"rejection_reason": "The document is blurry. Please upload a clearer image.",
	}
}

// DefaultEmailTemplates returns the seeded templates.
func DefaultEmailTemplates() []EmailTemplate {
	return []EmailTemplate{
		{
			Slug:    TemplateWelcome,
			Name:    "Welcome Email",
			Subject: "Welcome to {{company_name}}!",
			Body: `# Welcome to {{company_name}}!

Dear {{user_name}},

Thank you for creating an account with us. We're excited to help you with your business registration and incorporation needs.

With {{company_name}}, you can:
- Register your business with CAC
- Get your business name reserved
- Obtain tax clearance and other documents
- Track your application progress in real-time

[Go to Dashboard]({{dashboard_url}})

If you have any questions, feel free to reach out to us.

Best regards,
**{{company_name}} Team**

📧 {{company_email}}
📞 {{company_phone}}`,
			Description: "Sent to users when they register an account",
			Variables:   []string{"user_name", "company_name", "company_email", "company_phone", "dashboard_url"},
			IsActive:    true,
		},
		{
			Slug:    TemplatePaymentConfirmation,
			Name:    "Payment Confirmation",
			Subject: "Payment Confirmed - {{company_name}}",
			Body: `# Payment Confirmed ✓

Dear {{user_name}},

Your payment has been successfully processed.

| Detail | Information |
|:-------|:------------|
| Amount | ₦{{amount}} |
| Reference | {{reference}} |
| Gateway | {{gateway}} |
| Date | {{paid_at}} |

**Application Details:**
- **Service:** {{service_name}}
- **Company Name:** {{business_name}}

Your application has been submitted and is now being processed.

[View Application]({{dashboard_url}})

Thank you for choosing {{company_name}}.

Best regards,
**{{company_name}} Team**`,
			Description: "Sent after a successful payment",
			Variables:   []string{"user_name", "amount", "reference", "gateway", "paid_at", "service_name", "business_name", "company_name", "dashboard_url"},
			IsActive:    true,
		},
		{
			Slug:    TemplateApplicationStatus,
			Name:    "Application Status Update",
			Subject: "Application Update - {{business_name}}",
			Body: `# Application Update

Dear {{user_name}},

We have an update on your application for **{{business_name}}**.

**Current Status:** {{status}}

{{milestone_info}}

{{status_message}}

[View Application]({{dashboard_url}})

If you have any questions about your application, please don't hesitate to contact us.

Best regards,
**{{company_name}} Team**`,
			Description: "Sent when application status or milestone changes",
			Variables:   []string{"user_name", "business_name", "status", "milestone_info", "status_message", "company_name", "dashboard_url"},
			IsActive:    true,
		},
		{
			Slug:    TemplateRegistrationComplete,
			Name:    "Registration Complete",
			Subject: "🎉 Registration Complete - {{business_name}}",
			Body: `# 🎉 Congratulations!

Dear {{user_name}},

We are thrilled to inform you that your **{{service_name}}** registration is now **complete**!

**{{business_name}}** has been successfully registered with the Corporate Affairs Commission (CAC).

**Completion Date:** {{completed_at}}

## What's Next?

You can now:
- Download your certificate from your dashboard
- Use your RC number for official purposes
- Open a corporate bank account
- Apply for business permits and licenses

[View Certificate]({{dashboard_url}})

Thank you for choosing {{company_name}} for your business registration needs. We wish you the best of success!

Best regards,
**{{company_name}} Team**`,
			Description: "Sent when CAC registration is complete",
			Variables:   []string{"user_name", "business_name", "service_name", "completed_at", "company_name", "dashboard_url"},
			IsActive:    true,
		},
		{
			Slug:    TemplateDocumentApproved,
			Name:    "Document Approved",
			Subject: "Document Approved ✓ - {{document_name}}",
			Body: `# Document Approved ✓

Dear {{user_name}},

Your document **{{document_name}}** has been reviewed and **approved**.

No further action is required for this document.

[View Documents]({{dashboard_url}})

Best regards,
**{{company_name}} Team**`,
			Description: "Sent when a document is approved",
			Variables:   []string{"user_name", "document_name", "company_name", "dashboard_url"},
			IsActive:    true,
		},
		{
			Slug:    TemplateDocumentRejected,
			Name:    "Document Rejected",
			Subject: "Document Needs Attention - {{document_name}}",
			Body: `# Document Needs Attention

Dear {{user_name}},

Your document **{{document_name}}** has been reviewed and requires your attention.

**Reason:** {{rejection_reason}}

Please log in to your account and upload a new document that addresses the above concern.

[Upload New Document]({{dashboard_url}})

If you have any questions, please contact our support team.

Best regards,
**{{company_name}} Team**`,
			Description: "Sent when a document is rejected",
			Variables:   []string{"user_name", "document_name", "rejection_reason", "company_name", "dashboard_url"},
			IsActive:    true,
		},
	}
}

// DefaultEmailTemplate returns the seeded template for slug.
func DefaultEmailTemplate(slug string) (EmailTemplate, bool) {
	for _, t := range DefaultEmailTemplates() {
		if t.Slug == slug {
			return t, true
		}
	}
	return EmailTemplate{}, false
}
