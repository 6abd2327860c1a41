// Package supplier provides the supplier catalog. Brazilian tax identifiers
// are enforced: a supplier carries either a CPF (natural person) or a CNPJ
// (legal entity), never both, each with its check digits verified.
package supplier

import (
	"context"
	"regexp"
	"strings"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
)

var (
	nonDigitsRE = regexp.MustCompile(`\D`)
	emailRE     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Supplier represents a business partner goods are received from.
type Supplier struct {
	entity.Catalog

	// CPF is the natural-person tax ID (11 digits). Mutually exclusive with CNPJ.
	CPF *string `db:"cpf" json:"cpf,omitempty"`

	// CNPJ is the legal-entity tax ID (14 digits). Mutually exclusive with CPF.
	CNPJ *string `db:"cnpj" json:"cnpj,omitempty"`

	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(tenantID id.ID, code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(tenantID, code, name),
	}
}

// Document returns the normalized tax identifier, CPF or CNPJ.
func (s *Supplier) Document() string {
	if s.CPF != nil && *s.CPF != "" {
		return nonDigitsRE.ReplaceAllString(*s.CPF, "")
	}
	if s.CNPJ != nil && *s.CNPJ != "" {
		return nonDigitsRE.ReplaceAllString(*s.CNPJ, "")
	}
	return ""
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	hasCPF := s.CPF != nil && *s.CPF != ""
	hasCNPJ := s.CNPJ != nil && *s.CNPJ != ""
	if hasCPF && hasCNPJ {
		return apperror.NewValidation("supplier cannot carry both CPF and CNPJ").
			WithDetail("field", "cpf")
	}
	if !hasCPF && !hasCNPJ {
		return apperror.NewValidation("supplier requires a CPF or a CNPJ").
			WithDetail("field", "cpf")
	}
	if hasCPF {
		if !IsValidCPF(*s.CPF) {
			return apperror.NewValidation("invalid CPF").
				WithDetail("field", "cpf")
		}
	}
	if hasCNPJ {
		if !IsValidCNPJ(*s.CNPJ) {
			return apperror.NewValidation("invalid CNPJ").
				WithDetail("field", "cnpj")
		}
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	return nil
}

// --- Tax identifier check digits ---

// IsValidCPF verifies an 11-digit CPF including both check digits.
// Accepts punctuated input ("123.456.789-09").
func IsValidCPF(cpf string) bool {
	digits := nonDigitsRE.ReplaceAllString(cpf, "")
	if len(digits) != 11 || allSameDigit(digits) {
		return false
	}

	// First check digit: weights 10..2 over the first nine digits.
	if int(digits[9]-'0') != cpfCheckDigit(digits[:9], 10) {
		return false
	}
	// Second check digit: weights 11..2 over the first ten digits.
	return int(digits[10]-'0') == cpfCheckDigit(digits[:10], 11)
}

func cpfCheckDigit(digits string, startWeight int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * (startWeight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// IsValidCNPJ verifies a 14-digit CNPJ including both check digits.
// Accepts punctuated input ("12.345.678/0001-95").
func IsValidCNPJ(cnpj string) bool {
	digits := nonDigitsRE.ReplaceAllString(cnpj, "")
	if len(digits) != 14 || allSameDigit(digits) {
		return false
	}

	if int(digits[12]-'0') != cnpjCheckDigit(digits[:12], cnpjFirstWeights) {
		return false
	}
	return int(digits[13]-'0') == cnpjCheckDigit(digits[:13], cnpjSecondWeights)
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSameDigit(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}
