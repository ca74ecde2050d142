package journal

import "fmt"

type (
	NotFound struct {
		Kind string
		ID   string
	}

	UniqueViolation struct {
		Table  string
		Column string
	}
)

func (n NotFound) Error() string {
	return fmt.Sprintf("%v %v not found", n.Kind, n.ID)
}

func (u UniqueViolation) Error() string {
	return fmt.Sprintf("another %v entry already uses the same %v", u.Table, u.Column)
}

// Is matches any UniqueViolation when target has no table set
func (u UniqueViolation) Is(target error) bool {
	other, ok := target.(UniqueViolation)
	if !ok {
		return false
	}
	return other.Table == "" || other == u
}

// Is matches any NotFound of the same kind when target has no id set
func (n NotFound) Is(target error) bool {
	other, ok := target.(NotFound)
	if !ok {
		return false
	}
	return other.Kind == n.Kind && (other.ID == "" || other.ID == n.ID)
}
