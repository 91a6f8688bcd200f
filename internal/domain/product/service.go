package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/model"
)

const defaultCategory = "Other"

var (
	ErrProductNotFound = apperror.New(apperror.ErrNotFound, "Product not found")
	ErrProductExists   = apperror.New(apperror.ErrConflict, "Product id already exists")
	ErrInvalidName     = apperror.Validation("name is required")
)

// CreateInput is a new catalogue entry. Only Name is required.
type CreateInput struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Brand            string        `json:"brand" yaml:"brand"`
	Category         string        `json:"category" yaml:"category"`
	Pack             string        `json:"pack" yaml:"pack"`
	Price            OptionalPrice `json:"price" yaml:"price"`
	Currency         string        `json:"currency" yaml:"currency"`
	Image            string        `json:"image" yaml:"image"`
	ShortDescription string        `json:"shortDescription" yaml:"shortDescription"`
	Tags             []string      `json:"tags" yaml:"tags"`
}

// UpdateInput merges into an existing product. Nil or empty text fields
// keep the current value; Price changes only when Set.
type UpdateInput struct {
	Name             *string       `json:"name"`
	Brand            *string       `json:"brand"`
	Category         *string       `json:"category"`
	Pack             *string       `json:"pack"`
	Price            OptionalPrice `json:"price"`
	Currency         *string       `json:"currency"`
	Image            *string       `json:"image"`
	ShortDescription *string       `json:"shortDescription"`
	Tags             []string      `json:"tags"`
}

// Defaults fill fields a new product omits.
type Defaults struct {
	Brand    string
	Currency string
}

type Service struct {
	store    store.DocumentStoreInterface
	defaults Defaults
}

func NewService(ds store.DocumentStoreInterface, defaults Defaults) *Service {
	if defaults.Brand == "" {
		defaults.Brand = "Varsha Ayurveda"
	}
	if defaults.Currency == "" {
		defaults.Currency = "INR"
	}
	return &Service{store: ds, defaults: defaults}
}

// Create adds a product at the front of the catalogue.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Product, error) {
	p, err := s.build(in)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.FindProduct(p.ID) != -1 {
		return nil, ErrProductExists
	}

	doc.Products = append([]model.Product{p}, doc.Products...)
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update merges in into the product with id. The id itself never changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Product, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindProduct(id)
	if idx == -1 {
		return nil, ErrProductNotFound
	}

	p := doc.Products[idx]
	p.Name = mergeText(p.Name, in.Name)
	p.Brand = mergeText(p.Brand, in.Brand)
	p.Category = mergeText(p.Category, in.Category)
	p.Pack = mergeText(p.Pack, in.Pack)
	p.Image = mergeText(p.Image, in.Image)
	p.ShortDescription = mergeText(p.ShortDescription, in.ShortDescription)
	p.Currency = mergeText(p.Currency, in.Currency)
	if p.Currency == "" {
		p.Currency = s.defaults.Currency
	}
	if in.Tags != nil {
		p.Tags = cleanTags(in.Tags)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if in.Price.Set {
		p.Price = in.Price.Value
	}

	doc.Products[idx] = p
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product. Orders keep their line-item snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	idx := doc.FindProduct(id)
	if idx == -1 {
		return ErrProductNotFound
	}

	doc.Products = append(doc.Products[:idx], doc.Products[idx+1:]...)
	return s.store.Save(ctx, doc)
}

// ImportResult counts what Import did.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Import upserts a batch by id in one save. Existing products are replaced
// whole; new ones go to the front of the catalogue in input order.
func (s *Service) Import(ctx context.Context, inputs []CreateInput) (*ImportResult, error) {
	products := make([]model.Product, 0, len(inputs))
	for i, in := range inputs {
		p, err := s.build(in)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("item %d: %s", i+1, apperror.Message(err)))
		}
		products = append(products, p)
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	fresh := []model.Product{}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p.ID] {
			return nil, apperror.New(apperror.ErrConflict, "duplicate product id in import: "+p.ID)
		}
		seen[p.ID] = true

		if idx := doc.FindProduct(p.ID); idx != -1 {
			doc.Products[idx] = p
			result.Updated++
			continue
		}
		fresh = append(fresh, p)
		result.Created++
	}

	doc.Products = append(fresh, doc.Products...)
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) build(in CreateInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return model.Product{}, ErrInvalidName
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = model.NewID(model.ProductIDPrefix)
	}

	return model.Product{
		ID:               id,
		Name:             name,
		Brand:            orDefault(strings.TrimSpace(in.Brand), s.defaults.Brand),
		Category:         orDefault(strings.TrimSpace(in.Category), defaultCategory),
		Pack:             strings.TrimSpace(in.Pack),
		Price:            in.Price.Value,
		Currency:         orDefault(strings.TrimSpace(in.Currency), s.defaults.Currency),
		Image:            in.Image,
		ShortDescription: in.ShortDescription,
		Tags:             cleanTags(in.Tags),
	}, nil
}

func mergeText(current string, in *string) string {
	if in == nil {
		return current
	}
	if v := strings.TrimSpace(*in); v != "" {
		return v
	}
	return current
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
