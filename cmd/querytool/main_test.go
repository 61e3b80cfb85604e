package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = `
entities:
  products:
    table: products
    primary_key: id
    columns: [id, name, price]
    filter: [name, price, category]
    sort: [name, price]
    search: [name]
    aliases:
      category: categories.name
    types:
      name: string
      price: decimal
      categories.name: string
    collections:
      - name: categories
        table: product_categories
        foreign_keys:
          - {child: product_id, parent: id}
`

func setupDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "shop.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price NUMERIC)",
		"CREATE TABLE product_categories (product_id INTEGER NOT NULL, name TEXT NOT NULL)",
		"INSERT INTO products (id, name, price) VALUES (1, 'Laptop Pro', 1999.99), (2, 'Desktop PC', 1499), (3, 'Mouse', 19.9)",
		"INSERT INTO product_categories (product_id, name) VALUES (1, 'Computers'), (2, 'Computers'), (2, 'Office'), (3, 'Electronics')",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	profilePath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profilePath, []byte(testProfile), 0o600))

	t.Setenv("QUERY_DB_DRIVER", "sqlite")
	t.Setenv("QUERY_DB_DSN", dsn)
	t.Setenv("QUERY_PROFILE", profilePath)
	t.Setenv("QUERY_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	setupDatabase(t)

	out, err := run(t, "query", "products", "--filter", "category:eq:Computers", "--sort", "price:desc")
	require.NoError(t, err)

	var page struct {
		Content []struct {
			Name string `json:"name"`
		} `json:"content"`
		TotalElements int64 `json:"totalElements"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, int64(2), page.TotalElements)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "Laptop Pro", page.Content[0].Name)
	assert.Equal(t, "Desktop PC", page.Content[1].Name)
}

func TestQueryCommand_Paging(t *testing.T) {
	setupDatabase(t)

	out, err := run(t, "query", "products", "--sort", "name:asc", "--size", "2", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Mouse"`)
	assert.Contains(t, out, `"totalPages": 2`)
}

func TestQueryCommand_ClientError(t *testing.T) {
	setupDatabase(t)

	_, err := run(t, "query", "products", "--filter", "price:gt:cheap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestQueryCommand_UnknownEntity(t *testing.T) {
	setupDatabase(t)

	_, err := run(t, "query", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products")
}

func TestQueryCommand_ProfileFlag(t *testing.T) {
	dir := setupDatabase(t)
	t.Setenv("QUERY_PROFILE", "")

	_, err := run(t, "query", "products")
	require.Error(t, err)

	_, err = run(t, "--profile", filepath.Join(dir, "profile.yaml"), "query", "products")
	assert.NoError(t, err)
}

func TestCheckProfileCommand(t *testing.T) {
	out, err := run(t, "check-profile", "../../asceticquery/query/infrastructure/profile/testdata/shop.yaml")
	require.NoError(t, err)
	assert.Equal(t, "products\tok\nvendors\tok\n", out)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("entities:\n  x:\n    table: x\n"), 0o600))
	_, err = run(t, "check-profile", bad)
	assert.Error(t, err)
}
