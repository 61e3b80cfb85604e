package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
)

type product struct {
	ID    int64
	Name  string
	Price decimal.NullDecimal
	Tags  sql.NullString
}

func scanProduct(row Scanner) (product, error) {
	var p product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Tags)
	return p, err
}

// schema names the three tables of one fixture.
type schema struct {
	products   string
	vendors    string
	categories string
}

func newSchema(prefix string) schema {
	return schema{
		products:   prefix + "products",
		vendors:    prefix + "vendors",
		categories: prefix + "product_categories",
	}
}

func (sc schema) table() Table {
	table := NewTable(sc.products, "id", "id", "name", "price", "tags")
	table.Relations.
		RegisterRelational("categories", sc.categories, "product_id", "id").
		RegisterReference("vendor", sc.vendors, "vendor_id", "id")
	return table
}

func (sc schema) statements() []string {
	return []string{
		fmt.Sprintf("CREATE TABLE %s (id INTEGER PRIMARY KEY, name TEXT NOT NULL)", sc.vendors),
		fmt.Sprintf("CREATE TABLE %s (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price NUMERIC(12, 2), tags TEXT, vendor_id INTEGER)", sc.products),
		fmt.Sprintf("CREATE TABLE %s (product_id INTEGER NOT NULL, name TEXT NOT NULL)", sc.categories),
		fmt.Sprintf("INSERT INTO %s (id, name) VALUES (1, 'Acme'), (2, 'Globex')", sc.vendors),
		fmt.Sprintf(`INSERT INTO %s (id, name, price, tags, vendor_id) VALUES
			(1, 'Laptop Pro', 1999.99, 'business,portable', 1),
			(2, 'Desktop PC', 1499.00, 'office', NULL),
			(3, 'Mouse', 19.90, '', 2),
			(4, 'Gift Card', NULL, 'business', NULL)`, sc.products),
		fmt.Sprintf(`INSERT INTO %s (product_id, name) VALUES
			(1, 'Computers'), (2, 'Computers'), (2, 'Office'), (3, 'Electronics')`, sc.categories),
	}
}

func (sc schema) drop() []string {
	return []string{
		"DROP TABLE IF EXISTS " + sc.categories,
		"DROP TABLE IF EXISTS " + sc.products,
		"DROP TABLE IF EXISTS " + sc.vendors,
	}
}

func execAll(t *testing.T, pool session.SessionPool, statements []string) {
	t.Helper()
	err := pool.Session(context.Background(), func(s session.Session) error {
		conn := s.(session.DbSession).Connection()
		for _, stmt := range statements {
			if _, err := conn.Exec(stmt); err != nil {
				return fmt.Errorf("%s: %w", strings.Fields(stmt)[0], err)
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func fieldConfig() query.FieldConfig {
	return query.FieldConfig{
		Filterable:  query.NewFieldSet("name", "price", "tags", "categories.name", "vendor.name"),
		Sortable:    query.NewFieldSet("name", "price", "vendor.name"),
		Aliases:     map[string]string{"category": "categories.name", "vendorName": "vendor.name"},
		Searchable:  []string{"name", "category"},
		Collections: query.NewFieldSet("categories"),
		Types: map[string]query.FieldType{
			"name":            query.TypeOf(query.KindString),
			"price":           query.TypeOf(query.KindDecimal),
			"tags":            query.TypeOf(query.KindString),
			"categories.name": query.TypeOf(query.KindString),
			"vendor.name":     query.TypeOf(query.KindString),
		},
	}
}

func names(page query.Page[product]) []string {
	result := make([]string, 0, len(page.Content))
	for _, p := range page.Content {
		result = append(result, p.Name)
	}
	return result
}
