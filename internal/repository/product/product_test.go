package product

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/migrate"
)

func TestMemoryUpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	first, err := repo.Upsert(ctx, domain.Product{Key: "vase", Name: "Vase", Price: 1200, Category: "Pottery"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := repo.Upsert(ctx, domain.Product{Key: "shawl", Name: "Shawl", Price: 3000, Category: "Textiles"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	again, err := repo.Upsert(ctx, domain.Product{Key: "vase", Name: "Vase v2", Price: 1500, Category: "Pottery"})
	if err != nil {
		t.Fatalf("upsert existing: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected id %s kept, got %s", first.ID, again.ID)
	}

	all, err := repo.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 products, got %d (%v)", len(all), err)
	}
	pottery, err := repo.List(ctx, "pottery")
	if err != nil || len(pottery) != 1 || pottery[0].Price != 1500 {
		t.Fatalf("unexpected pottery listing %+v (%v)", pottery, err)
	}

	byID, err := repo.GetByID(ctx, first.ID)
	if err != nil || byID.Key != "vase" {
		t.Fatalf("get by id: %+v (%v)", byID, err)
	}
	byKey, err := repo.GetByID(ctx, "shawl")
	if err != nil || byKey.Name != "Shawl" {
		t.Fatalf("get by key: %+v (%v)", byKey, err)
	}
	if _, err := repo.GetByID(ctx, "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate products: %v", err)
	}

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		Key:        "madhubani-print",
		Name:       "Madhubani Print",
		Price:      2400,
		ArtistName: "Sita Devi",
		Category:   "Paintings",
		Images:     []string{"https://cdn.dots.example/madhubani.jpg"},
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		Key:         "madhubani-print",
		Name:        "Madhubani Print (framed)",
		Description: "Framed in teak",
		Price:       3100,
		ArtistName:  "Sita Devi",
		Category:    "Paintings",
		Attributes:  map[string]interface{}{"sizes": []string{"A4", "A3"}},
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Price != 3100 || got.Description != "Framed in teak" || got.ArtistName != "Sita Devi" {
		t.Fatalf("unexpected product %+v", got)
	}

	list, err := repo.List(ctx, "paintings")
	if err != nil || len(list) != 1 {
		t.Fatalf("List by category: %d (%v)", len(list), err)
	}
	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

var searchCatalog = []domain.Product{
	{Key: "vase", Name: "Blue Vase", Price: 1000, ArtistName: "Meera Sharma", Category: "Pottery",
		Attributes: map[string]interface{}{"tags": []string{"jaipur"}, "featured": true}},
	{Key: "bowl", Name: "Clay Bowl", Description: "Wheel thrown 100% terracotta", Price: 400, ArtistName: "Meera Sharma", Category: "Pottery"},
	{Key: "print", Name: "Madhubani Print", Price: 3000, ArtistName: "Sita Devi", Category: "Paintings"},
	{Key: "mural", Name: "Gond Mural", Price: 7200, ArtistName: "Bhajju Shyam", Category: "Paintings",
		Attributes: map[string]interface{}{"tags": []string{"tribal", "jaipur-framed"}}},
}

func checkSearch(ctx context.Context, t *testing.T, repo Repository) {
	t.Helper()
	for _, p := range searchCatalog {
		if _, err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert %s: %v", p.Key, err)
		}
	}
	search := func(f domain.ProductFilter) domain.ProductPage {
		t.Helper()
		page, err := repo.Search(ctx, f.Normalize())
		if err != nil {
			t.Fatalf("search %+v: %v", f, err)
		}
		return page
	}
	keys := func(page domain.ProductPage) map[string]bool {
		out := map[string]bool{}
		for _, p := range page.Products {
			out[p.Key] = true
		}
		return out
	}

	if page := search(domain.ProductFilter{Search: "JAIPUR"}); page.Total != 2 || !keys(page)["vase"] || !keys(page)["mural"] {
		t.Fatalf("expected tag matches vase and mural, got %+v", page)
	}
	if page := search(domain.ProductFilter{Search: "100%"}); page.Total != 1 || !keys(page)["bowl"] {
		t.Fatalf("expected literal %% match on description, got %+v", page)
	}
	if page := search(domain.ProductFilter{Category: "paintings", MinPrice: 5000}); page.Total != 1 || !keys(page)["mural"] {
		t.Fatalf("expected mural only, got %+v", page)
	}
	if page := search(domain.ProductFilter{MaxPrice: 1000}); page.Total != 2 {
		t.Fatalf("expected two products up to 1000, got %+v", page)
	}
	if page := search(domain.ProductFilter{Featured: true}); page.Total != 1 || !keys(page)["vase"] {
		t.Fatalf("expected featured vase, got %+v", page)
	}

	page := search(domain.ProductFilter{Artist: "meera sharma"})
	if page.Total != 2 || len(page.Filters.Artists) != 1 || page.Filters.Artists[0].Count != 2 {
		t.Fatalf("unexpected artist search %+v", page)
	}

	all := search(domain.ProductFilter{Limit: 3})
	if all.Total != 4 || all.TotalPages != 2 || len(all.Products) != 3 {
		t.Fatalf("unexpected first page %+v", all)
	}
	wantBands := []int{1, 1, 1, 1}
	for i, f := range all.Filters.PriceRanges {
		if f.Name != domain.PriceBands[i].Label || f.Count != wantBands[i] {
			t.Fatalf("unexpected price facets %+v", all.Filters.PriceRanges)
		}
	}
	second := search(domain.ProductFilter{Limit: 3, Page: 2})
	if len(second.Products) != 1 || second.Page != 2 || keys(all)[second.Products[0].Key] {
		t.Fatalf("unexpected second page %+v", second)
	}
	if beyond := search(domain.ProductFilter{Page: 9}); beyond.Total != 4 || len(beyond.Products) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", beyond)
	}
}

func TestMemorySearch(t *testing.T) {
	checkSearch(context.Background(), t, NewMemory())
}

func TestPostgresSearch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate products: %v", err)
	}
	checkSearch(ctx, t, NewPostgres(pool, nil))
}
