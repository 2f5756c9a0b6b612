package entities

import (
	"fmt"
	"strings"
)

// defaultDescriptions holds descriptions for well-known course attributes
var defaultDescriptions = map[string]string{
	"course_code":     "Official course code (e.g. CS101)",
	"credits":         "Credit hours awarded on completion",
	"department":      "Department offering the course",
	"description":     "Long-form course description",
	"syllabus":        "Course syllabus",
	"instructor":      "Primary instructor",
	"semester":        "Semester the course is offered in",
	"year":            "Academic year the course is offered in",
	"capacity":        "Maximum number of enrolled students",
	"prerequisites":   "Courses required before enrolling",
	"level":           "Course level (undergraduate, graduate)",
	"language":        "Language of instruction",
	"duration_weeks":  "Course length in weeks",
	"start_date":      "First day of classes",
	"end_date":        "Last day of classes",
	"is_elective":     "Whether the course is an elective",
	"room":            "Default teaching room",
	"subject_code":    "Code of the subject the course belongs to",
	"learning_goals":  "Expected learning outcomes",
	"assessment_type": "How students are assessed",
}

// DescriptionTable resolves the human-readable description given to an
// attribute when it is first created. Unknown names get a templated text.
type DescriptionTable struct {
	entries map[string]string
}

// NewDescriptionTable returns the default descriptions extended by overrides.
// Overrides replace defaults of the same name.
func NewDescriptionTable(overrides map[string]string) *DescriptionTable {
	entries := make(map[string]string, len(defaultDescriptions)+len(overrides))
	for name, desc := range defaultDescriptions {
		entries[name] = desc
	}
	for name, desc := range overrides {
		entries[name] = desc
	}
	return &DescriptionTable{entries: entries}
}

// Describe returns the description for name
func (d *DescriptionTable) Describe(name string) string {
	if d != nil {
		if desc, ok := d.entries[name]; ok {
			return desc
		}
	}
	return fmt.Sprintf("Attribute %s", strings.ReplaceAll(name, "_", " "))
}

// Len returns the number of known descriptions
func (d *DescriptionTable) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
