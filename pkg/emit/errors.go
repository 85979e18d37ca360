package emit

import (
	"github.com/pkg/errors"
)

// Errors returned by the emitter. They are wrapped with the offending identifier;
// test for them with errors.Is.
var (
	ErrAlreadyDefined         = errors.New("already defined")
	ErrUnknownDefine          = errors.New("unknown define")
	ErrUndefinedTargetDefine  = errors.New("undefined target define")
	ErrEnumAlreadyDefined     = errors.New("enum symbol already defined in this scope")
	ErrStructAlreadyDefined   = errors.New("struct symbol already defined in this scope")
	ErrUnionAlreadyDefined    = errors.New("union symbol already defined in this scope")
	ErrInconsistentVisibility = errors.New("inconsistent visibility")
	ErrConflictingCanCopy     = errors.New("conflicting can_copy")
	ErrDocsAlreadyDefined     = errors.New("docs already defined")
	ErrFieldsAlreadyDefined   = errors.New("fields already defined")
	ErrSymbolAlreadyDefined   = errors.New("symbol already defined in this scope")
	ErrUndefinedSymbol        = errors.New("undefined symbol")
	ErrAlreadyFinalized       = errors.New("module already finalized")
	ErrInvalidConfig          = errors.New("invalid config")
)
