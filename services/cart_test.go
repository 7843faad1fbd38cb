package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/models"
)

func newCartFixture() (*CartService, *fakeCatalog, *fakeCartStore) {
	catalog := newFakeCatalog()
	carts := newFakeCartStore()
	return NewCartService(carts, catalog, testLogger()), catalog, carts
}

func TestAddItem_CreatesCartAndPrices(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{
		Name: "Canvas Shoes", Slug: "canvas-shoes", MRP: 1000, DiscountPercent: 10, Stock: 5,
		Images: []string{"shoes.jpg"},
	})

	cart, err := svc.AddItem(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 900.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 1800.0, cart.Items[0].LineTotal)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, 1800.0, cart.TotalPrice)
	assert.Equal(t, "Canvas Shoes", cart.Items[0].Name)
	assert.Equal(t, "shoes.jpg", cart.Items[0].Image)
}

func TestAddItem_AccumulatesExistingLine(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Mug", MRP: 200, Stock: 10})

	_, err := svc.AddItem(context.Background(), userID, productID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(context.Background(), userID, productID, 3)
	require.NoError(t, err)

	// one entry per distinct product, quantities accumulate
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.TotalQuantity)
}

func TestAddItem_ValidatesCumulativeStock(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Lamp", MRP: 500, Stock: 3})

	_, err := svc.AddItem(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	// 2 already held, stock 3: adding 2 more must fail even though the
	// increment alone fits.
	_, err = svc.AddItem(context.Background(), userID, productID, 2)
	require.ErrorIs(t, err, models.ErrInsufficientStock)
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Pen", MRP: 50, Stock: 10})

	_, err := svc.AddItem(context.Background(), userID, productID, 0)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.AddItem(context.Background(), userID, primitive.NewObjectID(), 1)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AddItem(context.Background(), userID, productID, 11)
	require.ErrorIs(t, err, models.ErrInsufficientStock)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	first := catalog.put(models.Product{Name: "A", MRP: 999, DiscountPercent: 15, Stock: 4})
	second := catalog.put(models.Product{Name: "B", MRP: 1250, DiscountPercent: 33, Stock: 9})

	_, err := svc.AddItem(context.Background(), userID, first, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, second, 2)
	require.NoError(t, err)

	once, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	twice, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, once.TotalPrice, twice.TotalPrice)
	assert.Equal(t, once.TotalQuantity, twice.TotalQuantity)
	assert.Equal(t, once.Items, twice.Items)
}

func TestTotals_AlwaysMatchLineSums(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	ids := []primitive.ObjectID{
		catalog.put(models.Product{Name: "A", MRP: 149, DiscountPercent: 7, Stock: 20}),
		catalog.put(models.Product{Name: "B", MRP: 2599, DiscountPercent: 40, Stock: 20}),
		catalog.put(models.Product{Name: "C", MRP: 75, Stock: 20}),
	}

	for i, id := range ids {
		_, err := svc.AddItem(context.Background(), userID, id, i+1)
		require.NoError(t, err)
	}
	_, err := svc.ReduceItem(context.Background(), userID, ids[1])
	require.NoError(t, err)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)

	sumQty := 0
	sumPrice := 0.0
	for _, item := range cart.Items {
		sumQty += item.Quantity
		sumPrice += item.LineTotal
	}
	assert.Equal(t, sumQty, cart.TotalQuantity)
	assert.Equal(t, sumPrice, cart.TotalPrice)
}

func TestRecompute_PrunesOutOfStockLines(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	keep := catalog.put(models.Product{Name: "Keep", MRP: 100, Stock: 5})
	gone := catalog.put(models.Product{Name: "Gone", MRP: 100, Stock: 5})

	_, err := svc.AddItem(context.Background(), userID, keep, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, gone, 1)
	require.NoError(t, err)

	catalog.setStock(gone, 0)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, keep, cart.Items[0].ProductID)
	assert.Equal(t, 1, cart.TotalQuantity)
}

func TestReduceItem_RemovesLineAtZero(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Single", MRP: 300, Stock: 2})

	_, err := svc.AddItem(context.Background(), userID, productID, 1)
	require.NoError(t, err)

	cart, err := svc.ReduceItem(context.Background(), userID, productID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalQuantity)
	assert.Equal(t, 0.0, cart.TotalPrice)

	// the line is gone, another reduce is a not-found
	_, err = svc.ReduceItem(context.Background(), userID, productID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Chair", MRP: 4500, Stock: 8})

	_, err := svc.AddItem(context.Background(), userID, productID, 3)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), userID, productID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(context.Background(), userID, productID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestRemoveItem_NoCart(t *testing.T) {
	svc, _, _ := newCartFixture()
	_, err := svc.RemoveItem(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestClearAndGetCart_LazyCreation(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.False(t, cart.ID.IsZero())

	productID := catalog.put(models.Product{Name: "Bag", MRP: 900, Stock: 4})
	_, err = svc.AddItem(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	cleared, err := svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.Equal(t, 0, cleared.TotalQuantity)
	assert.Equal(t, 0.0, cleared.TotalPrice)
}

func TestAddItem_ConcurrentAddsSerialize(t *testing.T) {
	svc, catalog, _ := newCartFixture()
	userID := primitive.NewObjectID()
	productID := catalog.put(models.Product{Name: "Hot", MRP: 10, Stock: 1000})

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(context.Background(), userID, productID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, workers, cart.TotalQuantity)
}
