// Command seed-categories loads the category tree of §3 from a
// delimited text file with columns `name, slug, parent_slug?, icon?`.
// The whole file commits as one transaction (§6: "seeding is
// all-or-nothing per invocation") — a single malformed or cyclic row
// aborts everything instead of leaving a half-seeded tree. Grounded on
// the teacher's single-purpose cobra root command style in
// _examples/jontk-slurm-client/cmd/slurm-cli.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"lalan-be/internal/config"
)

var (
	dryRun bool
	update bool
)

var rootCmd = &cobra.Command{
	Use:   "seed-categories <file>",
	Short: "Seed the category tree from a delimited file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readSeedFile(args[0])
		if err != nil {
			return err
		}
		ordered, err := topoSortBySlugParent(rows)
		if err != nil {
			return err
		}

		cfg, err := config.DatabaseConfig()
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cfg.DB.Close()

		tx, err := cfg.DB.Beginx()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		created, updated, skipped, err := applySeed(tx, ordered, update)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		if dryRun {
			fmt.Printf("seed-categories (dry-run): would create=%d update=%d skip=%d\n", created, updated, skipped)
			return nil
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		committed = true
		fmt.Printf("seed-categories: created=%d updated=%d skipped=%d\n", created, updated, skipped)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without committing")
	rootCmd.Flags().BoolVar(&update, "update", false, "update existing categories matched by slug instead of skipping them")
}

func main() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type seedRow struct {
	Name       string
	Slug       string
	ParentSlug string
	Icon       string
}

// readSeedFile parses the comma-delimited category file. A header row
// is tolerated and skipped if its first column reads literally "name".
func readSeedFile(path string) ([]seedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows []seedRow
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if len(rec) == 0 || strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
				continue
			}
		}
		row := seedRow{Name: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			row.Slug = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			row.ParentSlug = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 {
			row.Icon = strings.TrimSpace(rec[3])
		}
		if row.Name == "" || row.Slug == "" {
			return nil, fmt.Errorf("row %q: name and slug are required", strings.Join(rec, ","))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// topoSortBySlugParent orders rows so that a category's parent_slug,
// if it refers to another row in the same file, always appears first
// — the file is allowed to list children before parents. Cycles
// within the file are rejected; a parent_slug that resolves to
// neither a row in the file nor (later) an existing database row is
// only discovered at apply time.
func topoSortBySlugParent(rows []seedRow) ([]seedRow, error) {
	bySlug := make(map[string]seedRow, len(rows))
	for _, r := range rows {
		if _, dup := bySlug[r.Slug]; dup {
			return nil, fmt.Errorf("duplicate slug %q in seed file", r.Slug)
		}
		bySlug[r.Slug] = r
	}

	var ordered []seedRow
	visited := make(map[string]int) // 0=unvisited 1=in-progress 2=done
	var visit func(slug string) error
	visit = func(slug string) error {
		row, ok := bySlug[slug]
		if !ok {
			return nil // parent isn't in this file; resolved against the DB at apply time
		}
		switch visited[slug] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("cycle detected at slug %q", slug)
		}
		visited[slug] = 1
		if row.ParentSlug != "" {
			if err := visit(row.ParentSlug); err != nil {
				return err
			}
		}
		visited[slug] = 2
		ordered = append(ordered, row)
		return nil
	}

	for _, r := range rows {
		if err := visit(r.Slug); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// applySeed inserts or updates each row, in order, within tx. Parent
// references are resolved by slug against rows already applied in
// this same transaction or pre-existing database rows.
func applySeed(tx *sqlx.Tx, rows []seedRow, update bool) (created, updated, skipped int, err error) {
	for _, row := range rows {
		var parentID *int
		if row.ParentSlug != "" {
			var id int
			getErr := tx.Get(&id, `SELECT id FROM categories WHERE slug = $1`, row.ParentSlug)
			if getErr != nil {
				return 0, 0, 0, fmt.Errorf("category %q: parent slug %q not found", row.Slug, row.ParentSlug)
			}
			parentID = &id
		}

		var existingID int
		lookupErr := tx.Get(&existingID, `SELECT id FROM categories WHERE slug = $1`, row.Slug)
		switch {
		case lookupErr == nil && update:
			if _, err := tx.Exec(
				`UPDATE categories SET name = $1, icon = $2, parent_id = $3, updated_at = now() WHERE id = $4`,
				row.Name, row.Icon, parentID, existingID,
			); err != nil {
				return 0, 0, 0, fmt.Errorf("update %q: %w", row.Slug, err)
			}
			updated++
		case lookupErr == nil:
			skipped++
		default:
			if _, err := tx.Exec(
				`INSERT INTO categories (slug, name, icon, parent_id) VALUES ($1, $2, $3, $4)`,
				row.Slug, row.Name, row.Icon, parentID,
			); err != nil {
				return 0, 0, 0, fmt.Errorf("insert %q: %w", row.Slug, err)
			}
			created++
		}
	}
	return created, updated, skipped, nil
}
