// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/models"
)

// SQLiteRepository keeps the catalog in a SQLite database and serves it
// from an in-memory snapshot.
type SQLiteRepository struct {
	snapshot
	mu sync.Mutex // serializes Reload and ImportCatalog
	db *sql.DB
}

// NewSQLiteRepository loads the catalog from an existing database. It
// never creates the file or its schema; use CreateSQLiteRepository for that.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
			"catalog database not found", err, map[string]any{"path": dbPath})
	}
	return openSQLiteRepository(dbPath, false)
}

// CreateSQLiteRepository opens dbPath, creating the file and schema when
// they do not exist yet. It is meant for importing a catalog.
func CreateSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	return openSQLiteRepository(dbPath, true)
}

func openSQLiteRepository(dbPath string, create bool) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
			"failed to open database", err, map[string]any{"path": dbPath})
	}

	repo := &SQLiteRepository{db: db}
	if create {
		if err := repo.initSchema(); err != nil {
			db.Close()
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeLoad,
				"failed to initialize schema", err, map[string]any{"path": dbPath})
		}
	}

	if err := repo.Reload(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func (s *SQLiteRepository) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS components (
        category TEXT NOT NULL,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        PRIMARY KEY (category, position)
    );

    CREATE TABLE IF NOT EXISTS proteins (
        position INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        meat_based INTEGER
    );

    CREATE TABLE IF NOT EXISTS meals (
        position INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        protein TEXT NOT NULL,
        carb TEXT NOT NULL,
        salad TEXT NOT NULL,
        extra TEXT,
        soup TEXT
    );
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// ImportCatalog replaces the stored catalog with cat and reloads it. cat is
// validated before anything is written, so a rejected import leaves the
// stored catalog untouched.
func (s *SQLiteRepository) ImportCatalog(cat *models.Catalog) error {
	if err := validateCatalog(cat, "import"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"components", "proteins", "meals"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	componentQuery := `
        INSERT INTO components (category, position, name)
        VALUES (?, ?, ?)
    `
	for _, category := range []models.Category{models.CategorySalad, models.CategoryCarb, models.CategorySoup, models.CategoryExtra} {
		for i, name := range cat.Names(category) {
			if _, err := tx.Exec(componentQuery, string(category), i, name); err != nil {
				return fmt.Errorf("failed to insert %s: %w", category, err)
			}
		}
	}

	proteinQuery := `
        INSERT INTO proteins (position, name, meat_based)
        VALUES (?, ?, ?)
    `
	for i, p := range cat.Proteins {
		meat := 0
		if p.IsMeatBased {
			meat = 1
		}
		if _, err := tx.Exec(proteinQuery, i, p.Name, meat); err != nil {
			return fmt.Errorf("failed to insert protein: %w", err)
		}
	}

	mealQuery := `
        INSERT INTO meals (position, name, protein, carb, salad, extra, soup)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	for i, rec := range toMealRecords(cat.Meals) {
		if _, err := tx.Exec(mealQuery, i, *rec.Name, *rec.Protein, *rec.Carb, *rec.Salad,
			nullString(rec.Extra), nullString(rec.Soup)); err != nil {
			return fmt.Errorf("failed to insert meal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	return s.reload()
}

// Reload re-reads every table and swaps in the new catalog. On error the
// previous catalog stays in place.
func (s *SQLiteRepository) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload()
}

func (s *SQLiteRepository) reload() error {
	cat, err := s.loadCatalog()
	if err != nil {
		return err
	}
	s.store(cat)
	slog.Info("catalog loaded",
		"source", "sqlite",
		"salads", len(cat.Salads),
		"carbs", len(cat.Carbs),
		"soups", len(cat.Soups),
		"extras", len(cat.Extras),
		"proteins", len(cat.Proteins),
		"meals", len(cat.Meals),
	)
	return nil
}

func (s *SQLiteRepository) loadCatalog() (*models.Catalog, error) {
	cat := &models.Catalog{}

	rows, err := s.db.Query(`
        SELECT category, name
        FROM components
        ORDER BY category, position
    `)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to query components", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, name string
		if err := rows.Scan(&category, &name); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to scan component", err)
		}
		if name == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeValidation,
				fmt.Sprintf("%s record is missing a name", category),
				map[string]any{"category": category, "source": "sqlite"})
		}
		switch models.Category(category) {
		case models.CategorySalad:
			cat.Salads = append(cat.Salads, models.Salad{Name: name})
		case models.CategoryCarb:
			cat.Carbs = append(cat.Carbs, models.Carb{Name: name})
		case models.CategorySoup:
			cat.Soups = append(cat.Soups, models.Soup{Name: name})
		case models.CategoryExtra:
			cat.Extras = append(cat.Extras, models.Extra{Name: name})
		default:
			return nil, apperrors.NewWithContext(apperrors.ErrCodeValidation,
				fmt.Sprintf("unknown component category %q", category),
				map[string]any{"source": "sqlite"})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to read components", err)
	}

	if cat.Proteins, err = s.loadProteins(); err != nil {
		return nil, err
	}

	recs, err := s.loadMealRecords()
	if err != nil {
		return nil, err
	}
	if cat.Meals, err = resolveMeals(cat, "sqlite", recs); err != nil {
		return nil, err
	}

	return cat, nil
}

func (s *SQLiteRepository) loadProteins() ([]models.Protein, error) {
	rows, err := s.db.Query(`
        SELECT name, meat_based
        FROM proteins
        ORDER BY position
    `)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to query proteins", err)
	}
	defer rows.Close()

	var proteins []models.Protein
	for i := 0; rows.Next(); i++ {
		var name string
		var meat sql.NullBool
		if err := rows.Scan(&name, &meat); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to scan protein", err)
		}

		rec := proteinRecord{Name: &name}
		if meat.Valid {
			rec.MeatBase = &meat.Bool
		}
		protein, verr := validateProtein(rec)
		if verr != nil {
			verr.Context = recordContext(models.CategoryProtein, "sqlite", i)
			return nil, verr
		}
		proteins = append(proteins, protein)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to read proteins", err)
	}

	return proteins, nil
}

func (s *SQLiteRepository) loadMealRecords() ([]mealRecord, error) {
	rows, err := s.db.Query(`
        SELECT name, protein, carb, salad, extra, soup
        FROM meals
        ORDER BY position
    `)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to query meals", err)
	}
	defer rows.Close()

	var recs []mealRecord
	for rows.Next() {
		var name, protein, carb, salad string
		var extra, soup sql.NullString
		if err := rows.Scan(&name, &protein, &carb, &salad, &extra, &soup); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to scan meal", err)
		}

		rec := mealRecord{Name: &name, Protein: &protein, Carb: &carb, Salad: &salad}
		if extra.Valid {
			rec.Extra = &extra.String
		}
		if soup.Valid {
			rec.Soup = &soup.String
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeLoad, "failed to read meals", err)
	}

	return recs, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
