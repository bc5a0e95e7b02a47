package desk

import "github.com/cockroachdb/errors"

// ErrPreconditionViolation marks calls made with invalid input or against a
// case in the wrong state. These fail before any remote call is made.
var ErrPreconditionViolation = errors.New("precondition violation")

var (
	ErrEmptyQuestion = errors.Mark(errors.New("question is empty"), ErrPreconditionViolation)
	ErrUnknownCase   = errors.Mark(errors.New("case is not in the collection"), ErrPreconditionViolation)
	ErrInvalidIntake = errors.Mark(errors.New("invalid intake"), ErrPreconditionViolation)
)

// IsPrecondition reports whether err was rejected before reaching a collaborator.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPreconditionViolation)
}
