package calculate

import (
	"fmt"
	"strings"
)

// SchemaError reports a malformed template or a reference to a category or
// field the template does not have. The call that produced it cannot proceed.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid template schema: " + strings.Join(e.Problems, "; ")
}

func schemaError(format string, args ...any) *SchemaError {
	return &SchemaError{Problems: []string{fmt.Sprintf(format, args...)}}
}

type Reason string

const (
	ReasonRequired      Reason = "required"
	ReasonNotNumeric    Reason = "not_numeric"
	ReasonNegative      Reason = "negative"
	ReasonNotRepeatable Reason = "not_repeatable"
	ReasonMixedShape    Reason = "mixed_shape"
	ReasonMalformed     Reason = "malformed"
	ReasonPolicyRange   Reason = "policy_range"
	ReasonOutOfRange    Reason = "out_of_range"
)

// Violation is a single problem found in a submission. Field is empty for
// category-level problems, Category is empty for submission-level ones.
type Violation struct {
	Category string
	Field    string
	Reason   Reason
}

func (v Violation) Message() string {
	switch v.Reason {
	case ReasonRequired:
		return fmt.Sprintf("Campo obrigatório %q não preenchido na categoria %q", v.Field, v.Category)
	case ReasonNotNumeric:
		return fmt.Sprintf("Campo %q na categoria %q deve ser numérico", v.Field, v.Category)
	case ReasonNegative:
		return fmt.Sprintf("Campo %q na categoria %q não pode ter quantidade ou custo negativo", v.Field, v.Category)
	case ReasonNotRepeatable:
		return fmt.Sprintf("Categoria %q não permite mais de um item", v.Category)
	case ReasonMixedShape:
		return "Itens devem ser todos agrupados por categoria ou todos por campo"
	case ReasonPolicyRange:
		return fmt.Sprintf("Parâmetro %q deve estar entre 0 e 1", v.Field)
	case ReasonOutOfRange:
		if v.Category == "" {
			return fmt.Sprintf("Valor %q excede o limite permitido", v.Field)
		}
		return fmt.Sprintf("Campo %q na categoria %q excede o limite permitido", v.Field, v.Category)
	default:
		return "Formato de itens inválido"
	}
}

// ValidationError carries every violation found in one pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d violation(s): %s", len(e.Violations), strings.Join(e.Messages(), "; "))
}

func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message())
	}
	return msgs
}
