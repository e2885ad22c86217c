package planner

import (
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Annotation flags a best-effort outcome on an otherwise successful result.
// Annotations are not errors: the caller still gets a plan, with its gaps
// disclosed.
type Annotation string

const (
	// AnnotationRepairExhausted means the repair round budget ran out with
	// violations still attached.
	AnnotationRepairExhausted Annotation = "repair_exhausted"

	// AnnotationDeadlineExceeded means the overall deadline ended the run
	// early; the best plan so far was returned.
	AnnotationDeadlineExceeded Annotation = "deadline_exceeded"
)

// IsAmbiguous reports whether err asks the caller to re-prompt the user for
// clarification rather than retry.
func IsAmbiguous(err error) bool {
	return types.CodeOf(err) == types.EXTRACTION_AMBIGUOUS
}
