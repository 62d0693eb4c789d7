package repositories

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindConstraint ErrorKind = "constraint"
	KindIO         ErrorKind = "io"
	KindQuery      ErrorKind = "query"
)

var (
	ErrPersistence  = errors.New("persistence error")
	ErrDuplicateJob = errors.New("job is already in favorites")
)

// PersistenceError is returned for every failure of the local store.
type PersistenceError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func IsConstraintViolation(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr) && pErr.Kind == KindConstraint
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateJob) {
		return KindConstraint
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "constraint"):
		return KindConstraint
	case strings.Contains(msg, "syntax error"), strings.Contains(msg, "no such"):
		return KindQuery
	default:
		return KindIO
	}
}
