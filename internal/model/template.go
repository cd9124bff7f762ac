package model

// TemplateCategory groups notification templates for browsing.
type TemplateCategory string

const (
	TemplateWork      TemplateCategory = "work"
	TemplatePersonal  TemplateCategory = "personal"
	TemplateHealth    TemplateCategory = "health"
	TemplateFinance   TemplateCategory = "finance"
	TemplateEducation TemplateCategory = "education"
	TemplateGeneral   TemplateCategory = "general"
)

// CategoryInfo is the display metadata for a template category.
type CategoryInfo struct {
	ID    TemplateCategory `json:"id"`
	Name  string           `json:"name"`
	Icon  string           `json:"icon"`
	Color string           `json:"color"`
}

// NotificationTemplate is a named reminder preset. Its reminders carry no
// ids; ids are assigned each time the template is applied to a task.
type NotificationTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Category    TemplateCategory `json:"category"`

	// Priority is the task priority the template is meant for.
	Priority Priority `json:"priority"`

	UseCase   string     `json:"useCase"`
	Reminders []Reminder `json:"reminders"`
}
