package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendmart/storefront/internal/domain/cart"
	"github.com/trendmart/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockWishlistRepo struct {
	lists map[uuid.UUID][]Item
}

func newWishlistRepo() *mockWishlistRepo {
	return &mockWishlistRepo{lists: make(map[uuid.UUID][]Item)}
}

func (m *mockWishlistRepo) List(_ context.Context, userID uuid.UUID) ([]Item, error) {
	return append([]Item(nil), m.lists[userID]...), nil
}

func (m *mockWishlistRepo) Add(_ context.Context, userID uuid.UUID, item Item) error {
	for _, it := range m.lists[userID] {
		if it.ProductID == item.ProductID {
			return ErrDuplicate
		}
	}
	m.lists[userID] = append(m.lists[userID], item)
	return nil
}

func (m *mockWishlistRepo) Remove(_ context.Context, userID uuid.UUID, productID string) error {
	items := m.lists[userID]
	for i, it := range items {
		if it.ProductID == productID {
			m.lists[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockProductRepo struct {
	product.Repository

	byID map[string]*product.Product
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type mockCartAdder struct {
	added  []string
	addErr error
}

func (m *mockCartAdder) Add(_ context.Context, userID uuid.UUID, productID string, quantity int) (*cart.Cart, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.added = append(m.added, productID)
	return &cart.Cart{
		UserID: userID,
		Lines:  []cart.Line{{ProductID: productID, Quantity: quantity}},
	}, nil
}

// --- Helpers ---

func newTestProduct(id string) *product.Product {
	return &product.Product{ID: id, Name: id, Price: decimal.NewFromInt(10), Stock: 5}
}

func newService(products ...*product.Product) (*Service, *mockWishlistRepo, *mockCartAdder) {
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	repo := newWishlistRepo()
	carts := &mockCartAdder{}
	return NewService(repo, &mockProductRepo{byID: byID}, nil, carts), repo, carts
}

// --- Tests ---

func TestAdd_SavesItem(t *testing.T) {
	svc, _, _ := newService(newTestProduct("p1"))
	userID := uuid.New()

	item, err := svc.Add(context.Background(), userID, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", item.ProductID)
	assert.False(t, item.AddedAt.IsZero())

	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAdd_DuplicateRejected(t *testing.T) {
	svc, _, _ := newService(newTestProduct("p1"))
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, "p1")
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), userID, "p1")
	assert.ErrorIs(t, err, ErrDuplicate)

	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Add(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestList_KeepsInsertionOrder(t *testing.T) {
	svc, _, _ := newService(newTestProduct("p1"), newTestProduct("p2"), newTestProduct("p3"))
	userID := uuid.New()

	for _, id := range []string{"p2", "p3", "p1"} {
		_, err := svc.Add(context.Background(), userID, id)
		require.NoError(t, err)
	}

	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, "p3", items[1].ProductID)
	assert.Equal(t, "p1", items[2].ProductID)
}

func TestRemove_Idempotent(t *testing.T) {
	svc, _, _ := newService(newTestProduct("p1"))
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), userID, "p1"))
	// Removing again, or removing something never saved, still succeeds.
	require.NoError(t, svc.Remove(context.Background(), userID, "p1"))
	require.NoError(t, svc.Remove(context.Background(), userID, "never-added"))
}

func TestMoveToCart_AddsThenRemoves(t *testing.T) {
	svc, repo, carts := newService(newTestProduct("p1"))
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, "p1")
	require.NoError(t, err)

	c, err := svc.MoveToCart(context.Background(), userID, "p1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, cart.Line{ProductID: "p1", Quantity: 1}, c.Lines[0])
	assert.Equal(t, []string{"p1"}, carts.added)
	assert.Empty(t, repo.lists[userID])
}

func TestMoveToCart_CartFailureKeepsItem(t *testing.T) {
	svc, repo, carts := newService(newTestProduct("p1"))
	carts.addErr = &cart.InsufficientStockError{ProductID: "p1", Name: "p1", Stock: 0}
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, "p1")
	require.NoError(t, err)

	_, err = svc.MoveToCart(context.Background(), userID, "p1")
	var stockErr *cart.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// The wishlist entry survives the failed move.
	items := repo.lists[userID]
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}

func TestAdd_IndexRejectsBogusID(t *testing.T) {
	p := newTestProduct("p1")
	repo := newWishlistRepo()
	svc := NewService(repo,
		&mockProductRepo{byID: map[string]*product.Product{"p1": p}},
		product.NewIDIndex([]string{"p1"}),
		&mockCartAdder{},
	)

	_, err := svc.Add(context.Background(), uuid.New(), "never-indexed-id")
	assert.ErrorIs(t, err, product.ErrNotFound)
}
