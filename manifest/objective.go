package manifest

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxObjectiveLen is the longest objective name the runtime accepts.
const MaxObjectiveLen = 16

var (
	ErrObjectiveEmpty   = errors.New("empty objective name")
	ErrObjectiveTooLong = errors.New("objective name too long")
	ErrObjectiveChars   = errors.New("objective name has invalid characters")
)

// ToSnakeCase converts a name to lower snake case.
// "myVar" -> "my_var", "hit-points" -> "hit_points", "HP" -> "hp"
func ToSnakeCase(s string) string {
	var words []string
	current := ""
	var prev rune
	for _, r := range s {
		if r == '-' || r == '_' || r == ' ' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
			prev = r
			continue
		}
		if unicode.IsUpper(r) && unicode.IsLower(prev) && current != "" {
			words = append(words, current)
			current = ""
		}
		current += string(r)
		prev = r
	}
	if current != "" {
		words = append(words, current)
	}
	return strings.ToLower(strings.Join(words, "_"))
}

// ValidateObjective checks an objective name against the runtime's limits.
func ValidateObjective(name string) error {
	if name == "" {
		return ErrObjectiveEmpty
	}
	if len(name) > MaxObjectiveLen {
		return fmt.Errorf("%w: %q has %d characters, max %d", ErrObjectiveTooLong, name, len(name), MaxObjectiveLen)
	}
	for _, r := range name {
		if !isObjectiveRune(r) {
			return fmt.Errorf("%w: %q", ErrObjectiveChars, name)
		}
	}
	return nil
}

func isObjectiveRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.', r == '+':
		return true
	}
	return false
}

// Objective returns the objective backing a variable. The base is the
// explicit [variables] entry if there is one, otherwise the project prefix
// followed by the snake-cased name. Args are appended with '_'.
func (m *Manifest) Objective(name string, args []string) (string, error) {
	obj, ok := m.Variables[name]
	if !ok {
		obj = m.Project.Prefix + ToSnakeCase(name)
	}
	for _, a := range args {
		obj += "_" + ToSnakeCase(a)
	}
	if err := ValidateObjective(obj); err != nil {
		return "", err
	}
	return obj, nil
}
