package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/domain/catalog"
)

var CategoryAggregateContract = Contract{
	Name:             "Commerce.CategoryAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicySnapshotQueries,
	Notes:            "Keeps the category parent graph a forest; rejects cycles and deletes with dependents.",
}

// CategoryAggregate owns category hierarchy integrity.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeCycleDetected, CodePreconditionFailed,
// CodeTransactionFailure, CodeRetryable, CodeInternal.
type CategoryAggregate interface {
	Aggregate

	// Create inserts a category under an optional existing parent.
	Create(ctx context.Context, in CreateCategoryInput) (*catalog.Category, error)

	// Reparent moves a category, rejecting self-parenting and any move onto
	// one of its own descendants.
	Reparent(ctx context.Context, categoryID uuid.UUID, newParentID *uuid.UUID) (*catalog.Category, error)

	// Delete removes a category only when it has no children and no products.
	Delete(ctx context.Context, categoryID uuid.UUID) error

	// Tree returns the full forest with children ordered by sort order then name.
	Tree(ctx context.Context) ([]*catalog.CategoryNode, error)

	// Path returns the breadcrumb root -> categoryID.
	Path(ctx context.Context, categoryID uuid.UUID) ([]catalog.Category, error)

	// Descendants returns all transitive child ids of categoryID.
	Descendants(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
}

type CreateCategoryInput struct {
	Name      string
	Slug      string
	ParentID  *uuid.UUID
	SortOrder int
	IsActive  bool
}
