package xmlschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Code identifies the schema rule a document violated, using the W3C
// validation-rule names where one exists.
type Code string

const (
	// CodeElementNotDeclared indicates an element with an unexpected name.
	CodeElementNotDeclared Code = "cvc-elt.1"
	// CodeTextInElementOnly indicates text appeared in element-only content.
	CodeTextInElementOnly Code = "cvc-complex-type.2.3"
	// CodeRequiredElementMissing indicates a required child element is missing.
	CodeRequiredElementMissing Code = "cvc-complex-type.2.4.b"
	// CodeUnexpectedElement indicates a child outside the content model.
	CodeUnexpectedElement Code = "cvc-complex-type.2.4.d"
	// CodeAttributeNotDeclared indicates an attribute outside the content model.
	CodeAttributeNotDeclared Code = "cvc-complex-type.3.2.1"
	// CodeRequiredAttributeMissing indicates a required attribute is missing.
	CodeRequiredAttributeMissing Code = "cvc-complex-type.4"
	// CodeDatatypeInvalid indicates a lexical value is invalid for its datatype.
	CodeDatatypeInvalid Code = "cvc-datatype-valid"
	// CodeFacetViolation indicates a value outside the type's facets.
	CodeFacetViolation Code = "cvc-facet-valid"
)

// Sentinel classes matched with errors.Is against a *ValidationError.
var (
	ErrStructure  = errors.New("schema structure violation")
	ErrConversion = errors.New("value conversion failed")
)

// ValidationError describes one schema failure found while decoding or
// validating a bound element.
type ValidationError struct {
	Code    Code
	Path    string // element path, e.g. /score-partwise/part[1]/measure[2]
	Name    string // offending attribute or child element name
	Value   string // offending lexical value, when there is one
	Message string
	Err     error // underlying cause, e.g. a parse error
}

// Error formats the failure with its code, message and location.
func (e *ValidationError) Error() string {
	if e == nil {
		return "validation <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (actual: %q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the error class and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	errs := []error{e.Code.class()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (c Code) class() error {
	switch c {
	case CodeDatatypeInvalid, CodeFacetViolation:
		return ErrConversion
	default:
		return ErrStructure
	}
}

// StructureError builds a structural ValidationError located at e.
func StructureError(code Code, e *etree.Element, name, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Path:    ElementPath(e),
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}

// ConversionError builds a value-conversion ValidationError for the named
// attribute or child of e.
func ConversionError(e *etree.Element, name, value string, err error) *ValidationError {
	return &ValidationError{
		Code:    CodeDatatypeInvalid,
		Path:    ElementPath(e),
		Name:    name,
		Value:   value,
		Message: fmt.Sprintf("invalid value for %q", name),
		Err:     err,
	}
}

// AsValidation extracts the first *ValidationError in err's tree.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
