package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/notify"
	"dots-marketplace/internal/pricing"
	cartrepo "dots-marketplace/internal/repository/cart"
)

// stubRepo wraps the in-memory backend and can be told to fail.
type stubRepo struct {
	*cartrepo.Memory
	getErr error
	putErr error
	puts   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{Memory: cartrepo.NewMemory()}
}

func (s *stubRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Memory.Get(ctx, key)
}

func (s *stubRepo) Put(ctx context.Context, key string, snapshot []byte) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	return s.Memory.Put(ctx, key, snapshot)
}

func newService(t *testing.T, repo cartrepo.Repository) (*Service, *notify.Recorder) {
	t.Helper()
	calc := pricing.NewCalculator(pricing.DefaultRules())
	rec := &notify.Recorder{}
	return New(NewStore(repo, calc, zap.NewNop()), calc, rec), rec
}

func vase(price int64) domain.CartLine {
	return domain.CartLine{
		ProductID:    "vase-1",
		ProductName:  "Blue Pottery Vase",
		ProductImage: "https://cdn.dots.example/vase.jpg",
		ArtistName:   "Meera Jaipur",
		Price:        price,
	}
}

func TestScenarios(t *testing.T) {
	cases := []struct {
		name                           string
		price                          int64
		qty                            int
		subtotal, shipping, tax, total int64
	}{
		{"two at 1000", 1000, 2, 2000, 0, 360, 2360},
		{"one at 1000", 1000, 1, 1000, 100, 180, 1280},
		{"one at 3000", 3000, 1, 3000, 0, 540, 3540},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t, newStubRepo())
			cart, err := svc.AddItem(context.Background(), "", vase(tc.price), tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.subtotal, cart.Subtotal)
			assert.Equal(t, tc.shipping, cart.Shipping)
			assert.Equal(t, tc.tax, cart.Tax)
			assert.Equal(t, tc.total, cart.Total)
			assert.Equal(t, tc.qty, cart.ItemCount)
		})
	}
}

func TestAddItemMergesSameSelection(t *testing.T) {
	svc, rec := newService(t, newStubRepo())
	ctx := context.Background()

	first := vase(500)
	first.Customization = domain.Customization{"size": "M", "color": "blue"}
	second := vase(500)
	second.Customization = domain.Customization{"color": "blue", "size": "M", "personalMessage": ""}

	_, err := svc.AddItem(ctx, "s1", first, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "s1", second, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, 5, cart.ItemCount)
	assert.Len(t, rec.Events(), 2)
	assert.Equal(t, notify.EventProductAdded, rec.Events()[0].Event)
}

func TestAddItemKeepsDistinctCustomizationsApart(t *testing.T) {
	svc, _ := newService(t, newStubRepo())
	ctx := context.Background()

	small := vase(500)
	small.Customization = domain.Customization{"size": "S"}
	large := vase(500)
	large.Customization = domain.Customization{"size": "L"}

	_, err := svc.AddItem(ctx, "", small, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "", vase(500), 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "", large, 1)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 3)
	assert.Equal(t, "size=S", cart.Lines[0].Customization.Key())
	assert.Empty(t, cart.Lines[1].Customization)
	assert.Equal(t, "size=L", cart.Lines[2].Customization.Key())
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	repo := newStubRepo()
	svc, rec := newService(t, repo)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "", vase(100), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, "", vase(100), -2)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	noID := vase(100)
	noID.ProductID = "  "
	_, err = svc.AddItem(ctx, "", noID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidLine)

	_, err = svc.AddItem(ctx, "", vase(-1), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidLine)

	assert.Zero(t, repo.puts)
	assert.Empty(t, rec.Events())
}

func TestQuantityLimit(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newService(t, repo)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "", vase(1000), domain.MaxLineQuantity+1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Zero(t, repo.puts)

	cart, err := svc.AddItem(ctx, "", vase(1000), domain.MaxLineQuantity-1)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLineQuantity-1, cart.ItemCount)

	// Merging past the limit leaves the stored line as it was.
	cart, err = svc.AddItem(ctx, "", vase(1000), 2)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, domain.MaxLineQuantity-1, cart.ItemCount)
	assert.Equal(t, domain.MaxLineQuantity-1, svc.Get(ctx, "").ItemCount)

	_, err = svc.UpdateItem(ctx, "", "vase-1", domain.MaxLineQuantity+1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	cart, err = svc.UpdateItem(ctx, "", "vase-1", domain.MaxLineQuantity, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.MaxLineQuantity*1000), cart.Subtotal)
}

func TestUpdateItem(t *testing.T) {
	svc, _ := newService(t, newStubRepo())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "", vase(1000), 1)
	require.NoError(t, err)

	cart, err := svc.UpdateItem(ctx, "", "vase-1", 4, nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.Equal(t, int64(4000), cart.Subtotal)

	cart, err = svc.UpdateItem(ctx, "", "unknown", 9, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)

	cart, err = svc.UpdateItem(ctx, "", "vase-1", 0, domain.Customization{})
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, domain.Cart{Lines: []domain.CartLine{}}, cart)
	assert.True(t, svc.Get(ctx, "").IsEmpty())
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, rec := newService(t, newStubRepo())
	ctx := context.Background()

	mug := vase(300)
	mug.ProductID = "mug-7"
	_, err := svc.AddItem(ctx, "", vase(1000), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "", mug, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "", "vase-1", nil)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "mug-7", cart.Lines[0].ProductID)
	assert.Equal(t, int64(600), cart.Subtotal)
	assert.Equal(t, notify.EventProductRemoved, rec.Events()[len(rec.Events())-1].Event)

	cart, err = svc.Clear(ctx, "")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.Total)
	assert.True(t, svc.Get(ctx, "").IsEmpty())
}

func TestSaveFailureReturnsCartWithOperationError(t *testing.T) {
	repo := newStubRepo()
	svc, rec := newService(t, repo)
	repo.putErr = errors.New("disk full")

	cart, err := svc.AddItem(context.Background(), "", vase(1000), 2)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpAdd, opErr.Op)
	assert.Equal(t, "failed to add item to cart", opErr.Message())
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, int64(2360), cart.Total)
	assert.Empty(t, rec.Events())

	_, err = svc.Clear(context.Background(), "")
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpClear, opErr.Op)
}

func TestLoadFailsOpen(t *testing.T) {
	ctx := context.Background()
	calc := pricing.NewCalculator(pricing.DefaultRules())

	corrupt := map[string]string{
		"malformed":       `{"lines":[`,
		"missing id":      `{"lines":[{"productId":"","price":10,"quantity":1}]}`,
		"zero quantity":   `{"lines":[{"productId":"a","price":10,"quantity":0}]}`,
		"negative price":  `{"lines":[{"productId":"a","price":-5,"quantity":1}]}`,
		"huge quantity":   `{"lines":[{"productId":"a","price":10,"quantity":9223372036854775807}]}`,
		"duplicate lines": `{"lines":[{"productId":"a","price":10,"quantity":1},{"productId":"a","price":10,"quantity":2,"customization":{"size":""}}]}`,
	}
	for name, raw := range corrupt {
		t.Run(name, func(t *testing.T) {
			repo := cartrepo.NewMemory()
			require.NoError(t, repo.Put(ctx, StorageKey, []byte(raw)))
			core, logs := observer.New(zapcore.WarnLevel)
			store := NewStore(repo, calc, zap.New(core))

			cart := store.Load(ctx, "")
			assert.True(t, cart.IsEmpty())
			assert.Zero(t, cart.Total)
			assert.Equal(t, 1, logs.Len())
		})
	}

	t.Run("backend error", func(t *testing.T) {
		repo := newStubRepo()
		repo.getErr = errors.New("connection refused")
		cart := NewStore(repo, calc, nil).Load(ctx, "")
		assert.True(t, cart.IsEmpty())
	})
}

func TestLoadRecomputesStoredTotals(t *testing.T) {
	ctx := context.Background()
	repo := cartrepo.NewMemory()
	raw := `{"lines":[{"productId":"a","price":1000,"quantity":1}],"subtotal":1,"shipping":1,"tax":1,"total":3,"itemCount":9}`
	require.NoError(t, repo.Put(ctx, StorageKey, []byte(raw)))

	cart := NewStore(repo, pricing.NewCalculator(pricing.DefaultRules()), nil).Load(ctx, "")
	assert.Equal(t, int64(1000), cart.Subtotal)
	assert.Equal(t, int64(100), cart.Shipping)
	assert.Equal(t, int64(180), cart.Tax)
	assert.Equal(t, int64(1280), cart.Total)
	assert.Equal(t, 1, cart.ItemCount)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	calc := pricing.NewCalculator(pricing.DefaultRules())
	store := NewStore(cartrepo.NewMemory(), calc, nil)

	line := vase(700)
	line.Quantity = 3
	line.Customization = domain.Customization{"personalMessage": "for Asha"}
	saved := calc.Price([]domain.CartLine{line})
	require.NoError(t, store.Save(ctx, "shopper-9", saved))

	loaded := store.Load(ctx, "shopper-9")
	assert.Equal(t, saved, loaded)
	assert.True(t, store.Load(ctx, "someone-else").IsEmpty())
}

func TestConcurrentWritersLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	calc := pricing.NewCalculator(pricing.DefaultRules())
	store := NewStore(repo, calc, nil)

	// Two sessions read the same snapshot, then write in turn.
	a := store.Load(ctx, "")
	b := store.Load(ctx, "")
	first := vase(100)
	first.Quantity = 1
	second := vase(200)
	second.ProductID = "mug"
	second.Quantity = 1

	require.NoError(t, store.Save(ctx, "", calc.Price(append(a.Lines, first))))
	require.NoError(t, store.Save(ctx, "", calc.Price(append(b.Lines, second))))

	got := store.Load(ctx, "")
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "mug", got.Lines[0].ProductID)
}

func TestQuoteUsesAddress(t *testing.T) {
	svc, _ := newService(t, newStubRepo())
	line := vase(1999)
	line.Quantity = 1
	lines := []domain.CartLine{line}

	domestic := svc.Quote(lines, &domain.ShippingAddress{Country: "India"})
	assert.Equal(t, int64(100), domestic.Shipping)
	assert.Equal(t, int64(360), domestic.Tax)

	abroad := svc.Quote(lines, &domain.ShippingAddress{Country: "France"})
	assert.Equal(t, int64(500), abroad.Shipping)
	assert.Zero(t, abroad.Tax)
	assert.Equal(t, int64(2499), abroad.Total)
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "dots_cart", KeyFor(""))
	assert.Equal(t, "dots_cart", KeyFor("  "))
	assert.Equal(t, "dots_cart:abc", KeyFor("abc"))
}
