package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
)

// fakeRepository keeps lines in memory with the same merge semantics
// as the SQL upsert.
type fakeRepository struct {
	lines map[string]*models.CartItem
	order []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{lines: map[string]*models.CartItem{}}
}

func lineKey(userID, listingID uuid.UUID) string {
	return userID.String() + "/" + listingID.String()
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Upsert(ctx context.Context, item *models.CartItem) error {
	key := lineKey(item.UserID, item.ListingID)
	if existing, ok := f.lines[key]; ok {
		existing.Quantity++
		return nil
	}
	copied := *item
	f.lines[key] = &copied
	f.order = append(f.order, key)
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	delete(f.lines, lineKey(userID, listingID))
	return nil
}

func (f *fakeRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	for key, line := range f.lines {
		if line.UserID == userID {
			delete(f.lines, key)
		}
	}
	return nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, key := range f.order {
		line, ok := f.lines[key]
		if !ok || line.UserID != userID {
			continue
		}
		items = append(items, *line)
	}
	return items, nil
}

func (f *fakeRepository) PruneInactive(ctx context.Context) (int64, error) {
	return 0, nil
}

// attach wires a listing snapshot onto stored lines, standing in for
// the SQL preload.
func (f *fakeRepository) attach(listing *models.Listing) {
	for _, line := range f.lines {
		if line.ListingID == listing.ID {
			line.Listing = listing
		}
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeListingLoader struct {
	listings map[uuid.UUID]*models.Listing
}

func (f *fakeListingLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if listing, ok := f.listings[id]; ok {
		return listing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func priceCents(v int64) *int64 { return &v }

func newTestService(t *testing.T, repo *fakeRepository, listings ...*models.Listing) Service {
	t.Helper()
	loader := &fakeListingLoader{listings: map[uuid.UUID]*models.Listing{}}
	for _, listing := range listings {
		loader.listings[listing.ID] = listing
	}
	svc, err := NewService(repo, stubTxRunner{}, loader, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_AddItemMergesLines(t *testing.T) {
	listing := &models.Listing{ID: uuid.New(), Name: "Sourdough Loaf", PriceCents: priceCents(450)}
	repo := newFakeRepository()
	svc := newTestService(t, repo, listing)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, listing.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), userID, listing.ID)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestService_AddItemUnknownListing(t *testing.T) {
	svc := newTestService(t, newFakeRepository())

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New())
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_RemoveItemAbsentIsNoOp(t *testing.T) {
	listing := &models.Listing{ID: uuid.New(), Name: "Veggie Box", IsDonation: true}
	repo := newFakeRepository()
	svc := newTestService(t, repo, listing)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, listing.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), userID, uuid.New())
	if err != nil {
		t.Fatalf("removing an absent line should be a no-op, got %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("existing line should survive, got %d lines", len(cart.Items))
	}

	cart, err = svc.RemoveItem(context.Background(), userID, listing.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
}

func TestService_FetchTotal(t *testing.T) {
	donation := &models.Listing{ID: uuid.New(), Name: "Veggie Box", IsDonation: true}
	sale := &models.Listing{ID: uuid.New(), Name: "Sourdough Loaf", PriceCents: priceCents(450)}
	repo := newFakeRepository()
	svc := newTestService(t, repo, donation, sale)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.AddItem(context.Background(), userID, donation.ID); err != nil {
			t.Fatalf("add donation: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.AddItem(context.Background(), userID, sale.ID); err != nil {
			t.Fatalf("add sale: %v", err)
		}
	}
	repo.attach(donation)
	repo.attach(sale)

	cart, err := svc.Fetch(context.Background(), userID)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 || cart.Items[0].LineTotalCents != 0 {
		t.Fatalf("donation line should contribute zero: %+v", cart.Items[0])
	}
	if cart.Items[1].Quantity != 2 || cart.Items[1].LineTotalCents != 900 {
		t.Fatalf("sale line should total 900 cents: %+v", cart.Items[1])
	}
	if cart.TotalCents != 900 || cart.Total != "9.00" {
		t.Fatalf("expected total 9.00, got %d (%s)", cart.TotalCents, cart.Total)
	}
}

func TestService_DonationLineIgnoresStrayPrice(t *testing.T) {
	donation := &models.Listing{
		ID:         uuid.New(),
		Name:       "Veggie Box",
		IsDonation: true,
		PriceCents: priceCents(999),
	}
	repo := newFakeRepository()
	svc := newTestService(t, repo, donation)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, donation.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	repo.attach(donation)

	cart, err := svc.Fetch(context.Background(), userID)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if cart.TotalCents != 0 {
		t.Fatalf("donation must contribute zero even with a stray price, got %d", cart.TotalCents)
	}
}

func TestService_Checkout(t *testing.T) {
	sale := &models.Listing{ID: uuid.New(), Name: "Sourdough Loaf", PriceCents: priceCents(450)}
	repo := newFakeRepository()
	svc := newTestService(t, repo, sale)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.AddItem(context.Background(), userID, sale.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	repo.attach(sale)

	result, err := svc.Checkout(context.Background(), userID)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.TotalCents != 900 || result.Total != "9.00" {
		t.Fatalf("expected total 9.00, got %d (%s)", result.TotalCents, result.Total)
	}
	if result.Message != orderPlacedMessage {
		t.Fatalf("unexpected confirmation: %q", result.Message)
	}

	cart, err := svc.Fetch(context.Background(), userID)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("checkout should clear the cart, got %d lines", len(cart.Items))
	}
}

func TestService_CheckoutEmptyCart(t *testing.T) {
	svc := newTestService(t, newFakeRepository())

	_, err := svc.Checkout(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for empty cart, got %v", err)
	}
}
