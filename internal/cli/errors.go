package cli

import "fmt"

type flagConflictError struct {
	a, b string
}

func (e flagConflictError) Error() string {
	return fmt.Sprintf("exactly one of %s or %s is required", e.a, e.b)
}

func errExactlyOneOf(a, b string) error {
	return flagConflictError{a: a, b: b}
}
