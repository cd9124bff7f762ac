// Package catalog holds the built-in reminder presets users can apply to a
// task instead of configuring reminders one by one.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

// ErrTemplateNotFound is returned when no template has the requested id.
var ErrTemplateNotFound = errors.New("template not found")

var popularIDs = []string{
	"meeting-reminder",
	"medication-reminder",
	"bill-payment",
	"quick-reminder",
	"important-task",
}

var categories = []model.CategoryInfo{
	{ID: model.TemplateWork, Name: "Work", Icon: "💼", Color: "#3B82F6"},
	{ID: model.TemplatePersonal, Name: "Personal", Icon: "🏠", Color: "#10B981"},
	{ID: model.TemplateHealth, Name: "Health", Icon: "❤️", Color: "#EF4444"},
	{ID: model.TemplateFinance, Name: "Finance", Icon: "💰", Color: "#F59E0B"},
	{ID: model.TemplateEducation, Name: "Education", Icon: "🎓", Color: "#8B5CF6"},
	{ID: model.TemplateGeneral, Name: "General", Icon: "📋", Color: "#6B7280"},
}

func days(n int) model.Reminder { return model.Reminder{Unit: model.UnitDays, Amount: n, Enabled: true} }
func hours(n int) model.Reminder { return model.Reminder{Unit: model.UnitHours, Amount: n, Enabled: true} }
func minutes(n int) model.Reminder { return model.Reminder{Unit: model.UnitMinutes, Amount: n, Enabled: true} }

var templates = []model.NotificationTemplate{
	{
		ID: "meeting-reminder", Name: "Meeting Reminder", Icon: "👥",
		Description: "Perfect for important meetings and calls",
		UseCase:     "Get notified well in advance for meetings",
		Category:    model.TemplateWork, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(1), hours(2), minutes(15)},
	},
	{
		ID: "deadline-alert", Name: "Project Deadline", Icon: "📋",
		Description: "For important project deadlines",
		UseCase:     "Stay on top of critical deadlines",
		Category:    model.TemplateWork, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(7), days(3), days(1), hours(4)},
	},
	{
		ID: "daily-standup", Name: "Daily Standup", Icon: "🗣️",
		Description: "Quick reminder for daily team meetings",
		UseCase:     "Never miss your daily standup",
		Category:    model.TemplateWork, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{minutes(10), minutes(2)},
	},
	{
		ID: "appointment-reminder", Name: "Appointment", Icon: "🏥",
		Description: "Doctor, dentist, or other appointments",
		UseCase:     "Never miss important appointments",
		Category:    model.TemplatePersonal, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(1), hours(2), minutes(30)},
	},
	{
		ID: "social-event", Name: "Social Event", Icon: "🎉",
		Description: "Parties, dinners, and social gatherings",
		UseCase:     "Be ready for social events",
		Category:    model.TemplatePersonal, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{hours(4), hours(1)},
	},
	{
		ID: "travel-preparation", Name: "Travel Prep", Icon: "✈️",
		Description: "Flight, train, or trip preparation",
		UseCase:     "Prepare for travel in advance",
		Category:    model.TemplatePersonal, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(3), days(1), hours(4), hours(1)},
	},
	{
		ID: "medication-reminder", Name: "Medication", Icon: "💊",
		Description: "Daily medication or supplements",
		UseCase:     "Never miss your medication",
		Category:    model.TemplateHealth, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{minutes(15), minutes(5)},
	},
	{
		ID: "workout-session", Name: "Workout", Icon: "💪",
		Description: "Gym sessions or exercise routines",
		UseCase:     "Stay consistent with workouts",
		Category:    model.TemplateHealth, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{hours(1), minutes(15)},
	},
	{
		ID: "health-checkup", Name: "Health Checkup", Icon: "🩺",
		Description: "Annual checkups and health screenings",
		UseCase:     "Stay on top of preventive care",
		Category:    model.TemplateHealth, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(7), days(3), days(1)},
	},
	{
		ID: "bill-payment", Name: "Bill Payment", Icon: "💳",
		Description: "Utility bills, rent, and recurring payments",
		UseCase:     "Never miss bill payments",
		Category:    model.TemplateFinance, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(5), days(2), days(1)},
	},
	{
		ID: "tax-deadline", Name: "Tax Deadline", Icon: "📊",
		Description: "Tax filing and financial deadlines",
		UseCase:     "Stay compliant with tax deadlines",
		Category:    model.TemplateFinance, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(30), days(14), days(7), days(3)},
	},
	{
		ID: "investment-review", Name: "Investment Review", Icon: "📈",
		Description: "Portfolio reviews and financial planning",
		UseCase:     "Regular financial health checks",
		Category:    model.TemplateFinance, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{days(3), days(1)},
	},
	{
		ID: "exam-preparation", Name: "Exam Prep", Icon: "📚",
		Description: "Study sessions and exam preparation",
		UseCase:     "Prepare thoroughly for exams",
		Category:    model.TemplateEducation, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(14), days(7), days(3), days(1)},
	},
	{
		ID: "assignment-deadline", Name: "Assignment Due", Icon: "📝",
		Description: "School or course assignments",
		UseCase:     "Submit assignments on time",
		Category:    model.TemplateEducation, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{days(3), days(1), hours(6)},
	},
	{
		ID: "online-class", Name: "Online Class", Icon: "💻",
		Description: "Virtual classes and webinars",
		UseCase:     "Join online sessions on time",
		Category:    model.TemplateEducation, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{hours(1), minutes(10)},
	},
	{
		ID: "quick-reminder", Name: "Quick Reminder", Icon: "⏰",
		Description: "Simple 15-minute heads up",
		UseCase:     "Basic reminder for any task",
		Category:    model.TemplateGeneral, Priority: model.PriorityMedium,
		Reminders: []model.Reminder{minutes(15)},
	},
	{
		ID: "important-task", Name: "Important Task", Icon: "⚡",
		Description: "Critical tasks that need attention",
		UseCase:     "High-priority tasks requiring focus",
		Category:    model.TemplateGeneral, Priority: model.PriorityHigh,
		Reminders: []model.Reminder{hours(4), hours(1), minutes(15)},
	},
	{
		ID: "routine-task", Name: "Routine Task", Icon: "🔄",
		Description: "Regular daily or weekly tasks",
		UseCase:     "Consistent reminders for habits",
		Category:    model.TemplateGeneral, Priority: model.PriorityLow,
		Reminders: []model.Reminder{minutes(30)},
	},
}

func clone(t model.NotificationTemplate) model.NotificationTemplate {
	t.Reminders = slices.Clone(t.Reminders)
	return t
}

func filter(keep func(model.NotificationTemplate) bool) []model.NotificationTemplate {
	var out []model.NotificationTemplate
	for _, t := range templates {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	return out
}

// All returns every template in catalog order.
func All() []model.NotificationTemplate {
	return filter(func(model.NotificationTemplate) bool { return true })
}

// Categories returns the display metadata for each category.
func Categories() []model.CategoryInfo {
	return slices.Clone(categories)
}

// ByCategory returns the templates in one category.
func ByCategory(category model.TemplateCategory) []model.NotificationTemplate {
	return filter(func(t model.NotificationTemplate) bool { return t.Category == category })
}

// ByID looks up a single template.
func ByID(id string) (model.NotificationTemplate, error) {
	for _, t := range templates {
		if t.ID == id {
			return clone(t), nil
		}
	}
	return model.NotificationTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Popular returns the curated shortlist shown first to new users.
func Popular() []model.NotificationTemplate {
	return filter(func(t model.NotificationTemplate) bool { return slices.Contains(popularIDs, t.ID) })
}

// Search matches query case-insensitively against a template's name,
// description, and use case.
func Search(query string) []model.NotificationTemplate {
	q := strings.ToLower(query)
	return filter(func(t model.NotificationTemplate) bool {
		return strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.UseCase), q)
	})
}

// Settings builds enabled notification settings from a template, giving
// every reminder a fresh id. Each reminder keeps the template's switch.
func Settings(t model.NotificationTemplate) model.NotificationSettings {
	reminders := make([]model.Reminder, len(t.Reminders))
	for i, r := range t.Reminders {
		r.ID = uuid.NewString()
		reminders[i] = r
	}
	return model.NotificationSettings{Enabled: true, Reminders: reminders}
}

// Apply looks up a template and returns settings built from it.
func Apply(id string) (model.NotificationSettings, error) {
	t, err := ByID(id)
	if err != nil {
		return model.NotificationSettings{}, err
	}
	return Settings(t), nil
}
