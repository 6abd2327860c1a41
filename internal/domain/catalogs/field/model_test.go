package field

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
)

func TestFieldValidate(t *testing.T) {
	tenantID := id.New()
	ctx := context.Background()

	valid := func() *Field {
		f := NewField(tenantID, id.New(), "FI-000001", "Talhao Norte")
		f.AreaHectares = decimal.NewFromFloat(42.5)
		return f
	}

	t.Run("valid with farm", func(t *testing.T) {
		if err := valid().Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("farm is optional", func(t *testing.T) {
		f := valid()
		f.FarmID = id.Nil()
		if err := f.Validate(ctx); err != nil {
			t.Fatalf("ungrouped plot must validate, got %v", err)
		}
	})

	t.Run("zero area rejected", func(t *testing.T) {
		f := valid()
		f.AreaHectares = decimal.Zero
		if err := f.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("negative area rejected", func(t *testing.T) {
		f := valid()
		f.AreaHectares = decimal.NewFromInt(-1)
		if err := f.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		f := NewField(tenantID, id.New(), "FI-000002", "")
		f.AreaHectares = decimal.NewFromInt(10)
		if err := f.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})
}
