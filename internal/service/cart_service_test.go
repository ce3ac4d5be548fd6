package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/testutil"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

func newTestCartService(t *testing.T) (*CartService, *domain.Product) {
	t.Helper()
	products := testutil.NewProductRepo()
	product := &domain.Product{Name: "Keyboard", PriceCents: 9900, Stock: 10}
	require.NoError(t, products.Create(context.Background(), product))
	return NewCartService(testutil.NewCartRepo(products), products), product
}

func TestCartAddAndView(t *testing.T) {
	svc, product := newTestCartService(t)

	item, err := svc.AddItem(context.Background(), "u1", product.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, int64(2*9900), view.TotalCents)
}

func TestCartAddMergesExistingLine(t *testing.T) {
	svc, product := newTestCartService(t)

	_, err := svc.AddItem(context.Background(), "u1", product.ID, 2)
	require.NoError(t, err)
	merged, err := svc.AddItem(context.Background(), "u1", product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 5, merged.Quantity)

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
}

func TestCartAddValidation(t *testing.T) {
	svc, product := newTestCartService(t)

	_, err := svc.AddItem(context.Background(), "u1", product.ID, 0)
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.AddItem(context.Background(), "u1", "missing-product", 1)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, err = svc.AddItem(context.Background(), "u1", product.ID, 999)
	require.Error(t, err)
	require.Equal(t, "BAD_REQUEST", apperrors.ToDomainError(err).Code)
}

func TestCartUpdateAndRemove(t *testing.T) {
	svc, product := newTestCartService(t)

	item, err := svc.AddItem(context.Background(), "u1", product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateItem(context.Background(), "u1", item.ID, 4))

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 4, view.Lines[0].Item.Quantity)

	// Another user cannot touch the line.
	err = svc.UpdateItem(context.Background(), "u2", item.ID, 1)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	err = svc.RemoveItem(context.Background(), "u2", item.ID)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	require.NoError(t, svc.RemoveItem(context.Background(), "u1", item.ID))

	view, err = svc.View(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, view.Lines)
}
