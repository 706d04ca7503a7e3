// ABOUTME: Structured extraction models for medical visit transcripts
// ABOUTME: Defines the four fixed action categories plus custom category support
package models

// Category names used throughout extraction, evaluation, and confidence reporting
const (
	CategoryFollowUpTasks          = "follow_up_tasks"
	CategoryMedicationInstructions = "medication_instructions"
	CategoryClientReminders        = "client_reminders"
	CategoryClinicianTodos         = "clinician_todos"
)

// Categories lists the fixed extraction categories in canonical order
func Categories() []string {
	return []string{
		CategoryFollowUpTasks,
		CategoryMedicationInstructions,
		CategoryClientReminders,
		CategoryClinicianTodos,
	}
}

// FollowUpTask is a follow-up action extracted from a transcript
type FollowUpTask struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// MedicationInstruction is a medication directive extracted from a transcript
type MedicationInstruction struct {
	MedicationName      string `json:"medication_name"`
	Dosage              string `json:"dosage"`
	Frequency           string `json:"frequency"`
	Duration            string `json:"duration,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// ClientReminder is a patient-facing reminder extracted from a transcript
type ClientReminder struct {
	ReminderType string `json:"reminder_type"`
	Description  string `json:"description"`
	DueDate      string `json:"due_date,omitempty"`
	Priority     string `json:"priority"`
}

// ClinicianTodo is a clinician-side task extracted from a transcript
type ClinicianTodo struct {
	TaskType    string `json:"task_type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// CustomItem is a single item extracted for a caller-defined category
type CustomItem struct {
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}

// CustomExtraction holds items for one caller-defined category
type CustomExtraction struct {
	CategoryName string       `json:"category_name"`
	Items        []CustomItem `json:"items"`
}

// Extraction is the structured result of action extraction from one transcript
type Extraction struct {
	FollowUpTasks          []FollowUpTask          `json:"follow_up_tasks"`
	MedicationInstructions []MedicationInstruction `json:"medication_instructions"`
	ClientReminders        []ClientReminder        `json:"client_reminders"`
	ClinicianTodos         []ClinicianTodo         `json:"clinician_todos"`
	CustomExtractions      []CustomExtraction      `json:"custom_extractions,omitempty"`
}

// ItemCount returns the number of items in the named fixed category
func (e *Extraction) ItemCount(category string) int {
	switch category {
	case CategoryFollowUpTasks:
		return len(e.FollowUpTasks)
	case CategoryMedicationInstructions:
		return len(e.MedicationInstructions)
	case CategoryClientReminders:
		return len(e.ClientReminders)
	case CategoryClinicianTodos:
		return len(e.ClinicianTodos)
	}
	return 0
}

// TotalItems returns the total item count across all fixed categories
func (e *Extraction) TotalItems() int {
	total := 0
	for _, cat := range Categories() {
		total += e.ItemCount(cat)
	}
	return total
}

// IsEmpty reports whether the extraction contains no items at all
func (e *Extraction) IsEmpty() bool {
	return e.TotalItems() == 0 && len(e.CustomExtractions) == 0
}
