package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/id"
)

// EntryFilter narrows entry listings. Zero values mean "no constraint".
type EntryFilter struct {
	ProductID  id.ID
	SupplierID id.ID
	UserID     id.ID
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// ExitFilter narrows exit listings. Zero values mean "no constraint".
type ExitFilter struct {
	ProductID id.ID
	FieldID   id.ID
	UserID    id.ID
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// MovementPage is a list page with the total count before pagination.
type MovementPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// EntryRepository persists entry movements. All methods scope by tenant.
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, tenantID, entryID id.ID) (*Entry, error)
	// Update persists the row with optimistic locking on Version and bumps it.
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, tenantID, entryID id.ID) error
	List(ctx context.Context, tenantID id.ID, filter EntryFilter) (MovementPage[*Entry], error)
	ExistsByProduct(ctx context.Context, tenantID, productID id.ID) (bool, error)
	ExistsBySupplier(ctx context.Context, tenantID, supplierID id.ID) (bool, error)
}

// ExitRepository persists exit movements. All methods scope by tenant.
type ExitRepository interface {
	Create(ctx context.Context, exit *Exit) error
	GetByID(ctx context.Context, tenantID, exitID id.ID) (*Exit, error)
	// Update persists the row with optimistic locking on Version and bumps it.
	Update(ctx context.Context, exit *Exit) error
	Delete(ctx context.Context, tenantID, exitID id.ID) error
	List(ctx context.Context, tenantID id.ID, filter ExitFilter) (MovementPage[*Exit], error)
	ExistsByProduct(ctx context.Context, tenantID, productID id.ID) (bool, error)
	ExistsByField(ctx context.Context, tenantID, fieldID id.ID) (bool, error)
}

// ReferenceResolver checks that movement references exist within the tenant
// and are active. Backed by the catalog tables.
type ReferenceResolver interface {
	ProductExists(ctx context.Context, tenantID, productID id.ID) (bool, error)
	SupplierExists(ctx context.Context, tenantID, supplierID id.ID) (bool, error)
	FieldExists(ctx context.Context, tenantID, fieldID id.ID) (bool, error)
}

// Numerator hands out sequential document numbers per tenant and document
// kind ("EN" for entries, "SA" for exits).
type Numerator interface {
	Next(ctx context.Context, tenantID id.ID, kind string) (string, error)
}

// AuditRecorder records movement mutations after commit. Failures are logged,
// never surfaced to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, userID id.ID, action, entityType string, entityID id.ID, payload any)
}
