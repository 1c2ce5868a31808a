// Package query compiles boolean filter expressions over documents and lists.
//
// Expressions use the expr-lang syntax and see one entity at a time through
// the variables id, kind, title, content, name, type, parentId, itemIds,
// createdAt and updatedAt. Fields that do not apply to an entity kind are
// empty. Example:
//
//	kind == "document" && lower(title) contains "idea" && parentId == ""
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
)

var ErrEmptyExpression = errors.New("query: expression must not be empty")

// Program is a compiled filter. It is safe for concurrent use.
type Program struct {
	source  string
	program *exprvm.Program
}

// Compile type-checks expression against the entity environment. Programs
// that do not yield a bool are rejected here rather than at match time.
func Compile(expression string) (*Program, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(sampleEnv()),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("query: compile %q: %w", expression, err)
	}
	return &Program{source: expression, program: program}, nil
}

// String returns the source expression.
func (p *Program) String() string { return p.source }

// MatchDocument evaluates the program against d.
func (p *Program) MatchDocument(d *models.Document) (bool, error) {
	return p.run(DocumentEnv(d))
}

// MatchList evaluates the program against l.
func (p *Program) MatchList(l *models.List) (bool, error) {
	return p.run(ListEnv(l))
}

func (p *Program) run(env map[string]any) (bool, error) {
	out, err := exprlang.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("query: eval %q: %w", p.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// sampleEnv carries one value of every variable type for the type checker.
func sampleEnv() map[string]any {
	return map[string]any{
		"id":        "",
		"kind":      "",
		"title":     "",
		"content":   "",
		"name":      "",
		"type":      "",
		"parentId":  "",
		"itemIds":   []string{},
		"createdAt": time.Time{},
		"updatedAt": time.Time{},
	}
}

// DocumentEnv exposes d to expressions.
func DocumentEnv(d *models.Document) map[string]any {
	return map[string]any{
		"id":        d.ID(),
		"kind":      "document",
		"title":     d.Title(),
		"content":   d.Content(),
		"name":      d.Title(),
		"type":      "",
		"parentId":  d.ParentID(),
		"itemIds":   []string{},
		"createdAt": d.CreatedAt(),
		"updatedAt": d.UpdatedAt(),
	}
}

// ListEnv exposes l to expressions.
func ListEnv(l *models.List) map[string]any {
	return map[string]any{
		"id":        l.ID(),
		"kind":      "list",
		"title":     "",
		"content":   "",
		"name":      l.Name(),
		"type":      string(l.Type()),
		"parentId":  l.ParentID(),
		"itemIds":   l.ItemIDs(),
		"createdAt": l.CreatedAt(),
		"updatedAt": l.UpdatedAt(),
	}
}
