// Package search maintains a SQLite symbol table over the navigation index,
// for lookups by the CLI and the documentation site.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
)

// Symbol is one searchable entry.
type Symbol struct {
	Product     definition.Product
	Kind        definition.Kind
	Name        string
	Key         string
	ClassName   string
	URLPath     string
	HTMLPath    string
	Deprecation string
}

// Store is a SQLite-backed symbol table.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		key TEXT NOT NULL,
		class_name TEXT NOT NULL DEFAULT '',
		url_path TEXT NOT NULL,
		html_path TEXT NOT NULL,
		deprecation TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_symbols_key ON symbols(key);
	CREATE INDEX IF NOT EXISTS idx_symbols_product ON symbols(product);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Replace swaps the whole table contents in one transaction.
func (s *Store) Replace(ctx context.Context, symbols []Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols"); err != nil {
		return fmt.Errorf("clear symbols: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO symbols (product, kind, name, key, class_name, url_path, html_path, deprecation) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, string(sym.Product), string(sym.Kind), sym.Name, sym.Key,
			sym.ClassName, sym.URLPath, sym.HTMLPath, sym.Deprecation); err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit symbols: %w", err)
	}
	return nil
}

// Search returns symbols whose normalized key contains query, case
// insensitively. Exact short-name matches sort first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Symbol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	q := definition.NormalizeName(strings.TrimSpace(query))
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT product, kind, name, key, class_name, url_path, html_path, deprecation
		FROM symbols
		WHERE lower(key) LIKE ? ESCAPE '\'
		ORDER BY
			CASE WHEN lower(key) = ? OR lower(key) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
			length(key), key, product
		LIMIT ?`,
		pattern, strings.ToLower(q), "%."+escapeLike(strings.ToLower(q)), limit)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Symbol
	for rows.Next() {
		var sym Symbol
		var product, kind string
		if err := rows.Scan(&product, &kind, &sym.Name, &sym.Key, &sym.ClassName, &sym.URLPath, &sym.HTMLPath, &sym.Deprecation); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		sym.Product = definition.Product(product)
		sym.Kind = definition.Kind(kind)
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Count returns the number of stored symbols.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&n); err != nil {
		return 0, fmt.Errorf("count symbols: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// SymbolsFromIndex flattens a navigation index in a stable order: products in
// build order, then kinds, then keys.
func SymbolsFromIndex(idx navindex.NavigationIndex) []Symbol {
	var out []Symbol
	for _, product := range definition.Products() {
		pi, ok := idx[product]
		if !ok {
			continue
		}
		for _, kind := range definition.ClassishKinds {
			var table map[string]navindex.ClassEntry
			switch kind {
			case definition.KindClass:
				table = pi.Class
			case definition.KindInterface:
				table = pi.Interface
			case definition.KindTrait:
				table = pi.Trait
			}
			for _, key := range sortedKeys(table) {
				c := table[key]
				out = append(out, Symbol{Product: product, Kind: kind, Name: c.Name, Key: key, URLPath: c.URLPath, HTMLPath: c.HTMLPath})
				for _, mk := range sortedKeys(c.Methods) {
					m := c.Methods[mk]
					out = append(out, Symbol{
						Product:   product,
						Kind:      definition.KindMethod,
						Name:      m.Name,
						Key:       key + "." + mk,
						ClassName: m.ClassName,
						URLPath:   m.URLPath,
						HTMLPath:  m.HTMLPath,
					})
				}
			}
		}
		for _, key := range sortedKeys(pi.Function) {
			f := pi.Function[key]
			sym := Symbol{Product: product, Kind: definition.KindFunction, Name: f.Name, Key: key, URLPath: f.URLPath, HTMLPath: f.HTMLPath}
			if f.Deprecation != nil {
				sym.Deprecation = *f.Deprecation
			}
			out = append(out, sym)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// WriteIndex builds a fresh database next to path and renames it into
// place, so readers never observe a half-written table.
func WriteIndex(ctx context.Context, path string, symbols []Symbol) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storageError(err, "create search index directory", path)
	}
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	store, err := Open(tmp)
	if err != nil {
		return storageError(err, "open search index", tmp)
	}
	if err := store.Replace(ctx, symbols); err != nil {
		_ = store.Close()
		_ = os.Remove(tmp)
		return storageError(err, "populate search index", tmp)
	}
	if err := store.Close(); err != nil {
		_ = os.Remove(tmp)
		return storageError(err, "close search index", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return storageError(err, "atomic rename search index", path)
	}
	return nil
}

func storageError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryStorage, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
