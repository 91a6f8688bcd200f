package product

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/infrastructure/store/mocks"
	"github.com/example/varsha-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestProductService(t *testing.T) (*Service, *store.DocumentStore) {
	t.Helper()
	ds := store.NewDocumentStore(mocks.NewMockBackend())
	t.Cleanup(func() { _ = ds.Close() })
	return NewService(ds, Defaults{Brand: "Varsha Ayurveda", Currency: "INR"}), ds
}

func loadDoc(t *testing.T, ds *store.DocumentStore) *model.Document {
	t.Helper()
	doc, err := ds.Load(context.Background())
	require.NoError(t, err)
	return doc
}

func strPtr(s string) *string { return &s }

// ============================================
// OptionalPrice Tests
// ============================================

func TestOptionalPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		want    *float64
		wantErr bool
	}{
		{"absent", `{}`, false, nil, false},
		{"null", `{"price":null}`, true, nil, false},
		{"empty string", `{"price":""}`, true, nil, false},
		{"number", `{"price":249}`, true, floatPtr(249), false},
		{"decimal", `{"price":149.5}`, true, floatPtr(149.5), false},
		{"numeric string", `{"price":" 99.90 "}`, true, floatPtr(99.9), false},
		{"garbage string", `{"price":"cheap"}`, true, nil, true},
		{"negative", `{"price":-1}`, true, nil, true},
		{"boolean", `{"price":true}`, true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in struct {
				Price OptionalPrice `json:"price"`
			}
			err := json.Unmarshal([]byte(tt.body), &in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, in.Price.Set)
			assert.Equal(t, tt.want, in.Price.Value)
		})
	}
}

func TestOptionalPrice_UnmarshalYAML(t *testing.T) {
	var items []CreateInput
	err := yaml.Unmarshal([]byte(`
- name: Neem Tablet
  price: 120
- name: Chyawanprash
  price: ~
- name: Ashwagandha
  price: "349.00"
`), &items)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 120.0, *items[0].Price.Value)
	assert.Nil(t, items[1].Price.Value)
	assert.Equal(t, 349.0, *items[2].Price.Value)
}

func floatPtr(f float64) *float64 { return &f }

// ============================================
// Create Tests
// ============================================

func TestService_Create_Defaults(t *testing.T) {
	service, ds := newTestProductService(t)

	p, err := service.Create(context.Background(), CreateInput{Name: "  Neem Tablet "})

	require.NoError(t, err)
	assert.Regexp(t, `^prd_[0-9a-f]{10}$`, p.ID)
	assert.Equal(t, "Neem Tablet", p.Name)
	assert.Equal(t, "Varsha Ayurveda", p.Brand)
	assert.Equal(t, "Other", p.Category)
	assert.Equal(t, "INR", p.Currency)
	assert.Nil(t, p.Price)
	assert.Equal(t, []string{}, p.Tags)

	doc := loadDoc(t, ds)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, p.ID, doc.Products[0].ID)
}

func TestService_Create_PrependsAndKeepsFields(t *testing.T) {
	service, ds := newTestProductService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateInput{ID: "p1", Name: "Neem Tablet"})
	require.NoError(t, err)
	p, err := service.Create(ctx, CreateInput{
		ID:       "p2",
		Name:     "Triphala",
		Brand:    "Other Brand",
		Category: "Churna",
		Pack:     "100 g",
		Price:    PriceOf(149.5),
		Tags:     []string{"digestion", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, 149.5, *p.Price)
	assert.Equal(t, []string{"digestion"}, p.Tags)

	doc := loadDoc(t, ds)
	assert.Equal(t, "p2", doc.Products[0].ID)
	assert.Equal(t, "p1", doc.Products[1].ID)
}

func TestService_Create_Errors(t *testing.T) {
	service, ds := newTestProductService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateInput{Name: "N"})
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = service.Create(ctx, CreateInput{ID: "p1", Name: "Neem"})
	require.NoError(t, err)
	_, err = service.Create(ctx, CreateInput{ID: "p1", Name: "Neem again"})
	assert.ErrorIs(t, err, ErrProductExists)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	assert.Len(t, loadDoc(t, ds).Products, 1)
}

// ============================================
// Update Tests
// ============================================

func seedProduct(t *testing.T, service *Service) *model.Product {
	t.Helper()
	p, err := service.Create(context.Background(), CreateInput{
		ID:       "p1",
		Name:     "Neem Tablet",
		Pack:     "60 tabs",
		Price:    PriceOf(100),
		Image:    "/img/neem.jpg",
		Tags:     []string{"skin"},
		Currency: "INR",
	})
	require.NoError(t, err)
	return p
}

func TestService_Update_MergesPresentFields(t *testing.T) {
	service, _ := newTestProductService(t)
	seedProduct(t, service)

	p, err := service.Update(context.Background(), "p1", UpdateInput{
		Name: strPtr("Neem Tablets"),
		Pack: strPtr(""),
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Neem Tablets", p.Name)
	assert.Equal(t, "60 tabs", p.Pack)
	assert.Equal(t, "/img/neem.jpg", p.Image)
	assert.Equal(t, []string{"skin"}, p.Tags)
	require.NotNil(t, p.Price)
	assert.Equal(t, 100.0, *p.Price)
}

func TestService_Update_Price(t *testing.T) {
	service, ds := newTestProductService(t)
	seedProduct(t, service)
	ctx := context.Background()

	p, err := service.Update(ctx, "p1", UpdateInput{Price: PriceOf(120)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, *p.Price)

	p, err = service.Update(ctx, "p1", UpdateInput{Price: OnRequest()})
	require.NoError(t, err)
	assert.Nil(t, p.Price)
	assert.Nil(t, loadDoc(t, ds).Products[0].Price)
}

func TestService_Update_FromJSONBody(t *testing.T) {
	service, _ := newTestProductService(t)
	seedProduct(t, service)

	var in UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"id":"hijack","price":"","tags":[]}`), &in))

	p, err := service.Update(context.Background(), "p1", in)

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Nil(t, p.Price)
	assert.Equal(t, []string{}, p.Tags)
}

func TestService_Update_NotFound(t *testing.T) {
	service, _ := newTestProductService(t)

	_, err := service.Update(context.Background(), "missing", UpdateInput{})

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// ============================================
// Delete Tests
// ============================================

func TestService_Delete(t *testing.T) {
	service, ds := newTestProductService(t)
	seedProduct(t, service)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, "p1"))
	assert.Empty(t, loadDoc(t, ds).Products)

	assert.ErrorIs(t, service.Delete(ctx, "p1"), ErrProductNotFound)
}

func TestService_Delete_LeavesOrders(t *testing.T) {
	service, ds := newTestProductService(t)
	seedProduct(t, service)
	ctx := context.Background()

	doc := loadDoc(t, ds)
	price := 100.0
	doc.Orders = append(doc.Orders, model.Order{ID: "ord_1", Items: []model.LineItem{{ProductID: "p1", Qty: 1, Name: "Neem Tablet", Price: &price}}})
	require.NoError(t, ds.Save(ctx, doc))

	require.NoError(t, service.Delete(ctx, "p1"))

	doc = loadDoc(t, ds)
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, "Neem Tablet", doc.Orders[0].Items[0].Name)
}

// ============================================
// Import Tests
// ============================================

func TestService_Import(t *testing.T) {
	service, ds := newTestProductService(t)
	seedProduct(t, service)

	result, err := service.Import(context.Background(), []CreateInput{
		{ID: "p1", Name: "Neem Tablet v2", Price: PriceOf(110)},
		{ID: "p2", Name: "Triphala"},
		{ID: "p3", Name: "Brahmi"},
	})

	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Created: 2, Updated: 1}, result)

	doc := loadDoc(t, ds)
	require.Len(t, doc.Products, 3)
	assert.Equal(t, "p2", doc.Products[0].ID)
	assert.Equal(t, "p3", doc.Products[1].ID)
	assert.Equal(t, "Neem Tablet v2", doc.Products[2].Name)
}

func TestService_Import_RejectsWholeBatch(t *testing.T) {
	service, ds := newTestProductService(t)

	_, err := service.Import(context.Background(), []CreateInput{
		{ID: "p1", Name: "Neem"},
		{ID: "p2", Name: "X"},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, apperror.Message(err), "item 2")

	_, err = service.Import(context.Background(), []CreateInput{
		{ID: "p1", Name: "Neem"},
		{ID: "p1", Name: "Neem again"},
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	assert.Empty(t, loadDoc(t, ds).Products)
}
