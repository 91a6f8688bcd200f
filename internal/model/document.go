// Package model holds the shape of the persisted shop document.
package model

import (
	"strings"
	"time"
)

// Document is the entire persisted state. It is always loaded and saved whole.
type Document struct {
	Meta     map[string]any `json:"meta"`
	Products []Product      `json:"products"`
	Orders   []Order        `json:"orders"`
	Users    []User         `json:"users"`
}

// NewDocument returns the empty-but-valid document shape.
func NewDocument() *Document {
	return &Document{
		Meta:     map[string]any{},
		Products: []Product{},
		Orders:   []Order{},
		Users:    []User{},
	}
}

// Normalize replaces missing collections with empty ones so callers never
// have to nil-check.
func (d *Document) Normalize() {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	for i := range d.Products {
		if d.Products[i].Tags == nil {
			d.Products[i].Tags = []string{}
		}
	}
}

// Product is a catalogue entry. A nil Price means "price on request".
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Brand            string   `json:"brand"`
	Category         string   `json:"category"`
	Pack             string   `json:"pack"`
	Price            *float64 `json:"price"`
	Currency         string   `json:"currency"`
	Image            string   `json:"image"`
	ShortDescription string   `json:"shortDescription"`
	Tags             []string `json:"tags"`
}

// Roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is a User without its credential.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FindProduct returns the index of the product with id, or -1.
func (d *Document) FindProduct(id string) int {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// FindOrder returns the index of the order with id, or -1.
func (d *Document) FindOrder(id string) int {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

// FindUser returns the index of the user with id, or -1.
func (d *Document) FindUser(id string) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindUserByEmail matches case-insensitively and returns the index, or -1.
func (d *Document) FindUserByEmail(email string) int {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range d.Users {
		if strings.ToLower(d.Users[i].Email) == email {
			return i
		}
	}
	return -1
}
