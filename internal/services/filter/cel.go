package filter

import (
	"fmt"
	"strings"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/google/cel-go/cel"
)

// entityVariable is the name under which the flattened record is exposed
const entityVariable = "entity"

// Engine compiles CEL filter expressions over catalog entities.
// Expressions see the flattened record as the map variable `entity`, e.g.
//
//	entity.credits >= 3 && entity.department == "CS"
type Engine struct {
	env *cel.Env
}

// Filter is a compiled filter expression, safe for concurrent use.
type Filter struct {
	expression string
	program    cel.Program
}

// NewEngine creates a filter engine
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable(entityVariable, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// Compile parses and type-checks expression. The expression must yield a
// boolean; failures wrap entities.ErrInvalidFilter.
func (e *Engine) Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: expression is empty", entities.ErrInvalidFilter)
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidFilter, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must return bool, got %s", entities.ErrInvalidFilter, out)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidFilter, err)
	}

	return &Filter{expression: expression, program: program}, nil
}

// String returns the source expression
func (f *Filter) String() string {
	return f.expression
}

// Match evaluates the filter against one entity. Referencing an attribute
// the entity lacks is an evaluation error; use has(entity.name) to guard.
func (f *Filter) Match(entity *entities.Entity) (bool, error) {
	result, _, err := f.program.Eval(map[string]interface{}{
		entityVariable: entity.Flatten(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter: %w", err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression evaluated to %T, not bool", entities.ErrInvalidFilter, result.Value())
	}
	return matched, nil
}

// Apply returns the entities the filter matches, keeping their order.
// Entities whose evaluation fails count as non-matching.
func (f *Filter) Apply(list []*entities.Entity) []*entities.Entity {
	matched := make([]*entities.Entity, 0, len(list))
	for _, entity := range list {
		if ok, err := f.Match(entity); err == nil && ok {
			matched = append(matched, entity)
		}
	}
	return matched
}
