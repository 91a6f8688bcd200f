package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/varsha-shop/internal/domain/product"
	"github.com/example/varsha-shop/internal/query"
)

// seedFile is the wrapped form of a product seed: {products: [...]}.
type seedFile struct {
	Products []product.CreateInput `json:"products" yaml:"products"`
}

// parseSeed decodes a product list by file extension. Both a bare list and
// a document with a products key are accepted.
func parseSeed(name string, data []byte) ([]product.CreateInput, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("seed file is empty")
	}

	var list []product.CreateInput
	var wrapped seedFile
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(trimmed, &list); err != nil {
			if err = yaml.Unmarshal(trimmed, &wrapped); err == nil {
				list = wrapped.Products
			}
		}
	case ".json":
		if trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &list)
		} else if err = json.Unmarshal(trimmed, &wrapped); err == nil {
			list = wrapped.Products
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q (use .yaml, .yml or .json)", filepath.Ext(name))
	}

	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(name), err)
	}
	if len(list) == 0 {
		return nil, errors.New("seed file has no products")
	}
	return list, nil
}

func printSummary(w io.Writer, s *query.SalesSummary) {
	fmt.Fprintln(w, "Sales Summary")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "  Orders:     %d\n", s.Counts.OrdersTotal)
	fmt.Fprintf(w, "  Paid:       %d\n", s.Counts.OrdersPaid)
	fmt.Fprintf(w, "  Users:      %d\n", s.Counts.UsersTotal)
	fmt.Fprintf(w, "  Revenue:    %s\n", money(s.Revenue.Total, s.Revenue.Currency))

	if len(s.TopProducts) == 0 {
		fmt.Fprintln(w, "\nTop products: (none)")
	} else {
		fmt.Fprintln(w, "\nTop products:")
		for _, p := range s.TopProducts {
			fmt.Fprintf(w, "  %-30s %4d  %s\n", p.Name, p.Qty, money(p.Revenue, s.Revenue.Currency))
		}
	}

	if len(s.RecentOrders) > 0 {
		fmt.Fprintln(w, "\nRecent orders:")
		for _, o := range s.RecentOrders {
			fmt.Fprintf(w, "  %-16s %-16s %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
}
