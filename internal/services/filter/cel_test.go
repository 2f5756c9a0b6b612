package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
)

func course(id int64, name string, attrs map[string]entities.Value) *entities.Entity {
	return &entities.Entity{
		ID:         id,
		Name:       name,
		IsActive:   true,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Attributes: attrs,
	}
}

func TestEngine_Compile(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{"comparison", `entity.credits >= 3`, false},
		{"logical", `entity.department == "CS" && entity.is_active`, false},
		{"has macro", `has(entity.syllabus)`, false},
		{"string function", `entity.name.startsWith("Intro")`, false},
		{"empty", `   `, true},
		{"syntax error", `entity.credits >=`, true},
		{"unknown variable", `course.credits > 1`, true},
		{"non-bool result", `entity.credits + 1`, true},
		{"string literal result", `"yes"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := engine.Compile(tt.expression)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile(%q) error = %v, wantErr %v", tt.expression, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, entities.ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter, got %v", err)
			}
			if err == nil && f.String() != tt.expression {
				t.Errorf("String() = %q", f.String())
			}
		})
	}
}

func TestFilter_Match(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	algorithms := course(1, "Algorithms", map[string]entities.Value{
		"credits":    entities.NumberValue(6),
		"department": entities.StringValue("CS"),
		"online":     entities.BoolValue(false),
		"start_date": entities.DateValue(time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)),
	})

	tests := []struct {
		name       string
		expression string
		want       bool
		wantErr    bool
	}{
		{"double against int literal", `entity.credits >= 3`, true, false},
		{"string equality", `entity.department == "CS"`, true, false},
		{"boolean attribute", `!entity.online`, true, false},
		{"first-class field", `entity.id == 1 && entity.name == "Algorithms"`, true, false},
		{"missing parent is null", `entity.parent_id == null`, true, false},
		{"timestamp comparison", `entity.start_date > timestamp("2024-01-01T00:00:00Z")`, true, false},
		{"no match", `entity.credits > 10`, false, false},
		{"guarded missing key", `has(entity.room) && entity.room == "B12"`, false, false},
		{"missing key errors", `entity.room == "B12"`, false, true},
		{"dyn value that is not bool", `entity.department`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := engine.Compile(tt.expression)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := f.Match(algorithms)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Match() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("non-bool evaluation is an invalid filter", func(t *testing.T) {
		f, err := engine.Compile(`entity.department`)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if _, err := f.Match(algorithms); !errors.Is(err, entities.ErrInvalidFilter) {
			t.Errorf("expected ErrInvalidFilter, got %v", err)
		}
	})
}

func TestFilter_Apply(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	list := []*entities.Entity{
		course(3, "Compilers", map[string]entities.Value{"credits": entities.NumberValue(5)}),
		course(2, "Ethics", map[string]entities.Value{"credits": entities.NumberValue(2)}),
		course(1, "Seminar", map[string]entities.Value{}),
	}

	f, err := engine.Compile(`entity.credits >= 2`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got := f.Apply(list)
	if len(got) != 2 {
		t.Fatalf("Apply() returned %d entities, want 2", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 2 {
		t.Errorf("Apply() changed order: %d, %d", got[0].ID, got[1].ID)
	}
}
