package docpager

// Operator defines a comparison operator applied to a document field.
// Used in pagination filtering conditions.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"
	OperatorEQ Operator = "="
	OperatorNE Operator = "!="
)

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT || o == OperatorEQ || o == OperatorNE
}
