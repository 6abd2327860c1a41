package supplier

import (
	"context"
	"testing"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
)

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		cpf  string
		want bool
	}{
		{"52998224725", true},
		{"529.982.247-25", true},
		{"11144477735", true},
		{"52998224724", false}, // wrong second check digit
		{"52998224735", false}, // wrong first check digit
		{"00000000000", false}, // repeated digits pass the checksum but are invalid
		{"11111111111", false},
		{"5299822472", false}, // too short
		{"529982247255", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidCPF(tt.cpf); got != tt.want {
			t.Errorf("IsValidCPF(%q) = %v, want %v", tt.cpf, got, tt.want)
		}
	}
}

func TestIsValidCNPJ(t *testing.T) {
	tests := []struct {
		cnpj string
		want bool
	}{
		{"11222333000181", true},
		{"11.222.333/0001-81", true},
		{"11444777000161", true},
		{"11222333000182", false}, // wrong check digit
		{"00000000000000", false},
		{"1122233300018", false}, // too short
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidCNPJ(tt.cnpj); got != tt.want {
			t.Errorf("IsValidCNPJ(%q) = %v, want %v", tt.cnpj, got, tt.want)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestSupplierValidate(t *testing.T) {
	tenantID := id.New()
	ctx := context.Background()

	valid := func() *Supplier {
		s := NewSupplier(tenantID, "SU-000001", "Cooperativa Agro Sul")
		s.CNPJ = strPtr("11222333000181")
		return s
	}

	t.Run("valid with cnpj", func(t *testing.T) {
		if err := valid().Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid with cpf only", func(t *testing.T) {
		s := valid()
		s.CNPJ = nil
		s.CPF = strPtr("529.982.247-25")
		if err := s.Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("both documents rejected", func(t *testing.T) {
		s := valid()
		s.CPF = strPtr("52998224725")
		err := s.Validate(ctx)
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("broken cpf checksum", func(t *testing.T) {
		s := valid()
		s.CNPJ = nil
		s.CPF = strPtr("52998224700")
		if err := s.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("broken cnpj checksum", func(t *testing.T) {
		s := valid()
		s.CNPJ = strPtr("11222333000199")
		if err := s.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("no document rejected", func(t *testing.T) {
		s := valid()
		s.CNPJ = nil
		if err := s.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		s := valid()
		s.Email = strPtr("not-an-email")
		if err := s.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		s := NewSupplier(tenantID, "SU-000002", "")
		if err := s.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})
}

func TestDocumentNormalization(t *testing.T) {
	s := NewSupplier(id.New(), "SU-000003", "Fazenda Boa Vista")
	s.CNPJ = strPtr("11.222.333/0001-81")
	if got := s.Document(); got != "11222333000181" {
		t.Errorf("Document() = %q, want digits only", got)
	}
}
