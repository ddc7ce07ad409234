package mutate

import (
	"fmt"
	"sort"
	"strings"
)

// BatchError aggregates per-item failures from one optimistic batch. The
// batch rolls back locally as a unit, so callers always see a single error.
type BatchError struct {
	Op   string
	Errs map[string]error
}

func (e BatchError) Error() string {
	ids := make([]string, 0, len(e.Errs))
	for id := range e.Errs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s failed for %d item(s): %s", e.Op, len(ids), strings.Join(ids, ", "))
}
