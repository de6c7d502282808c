package cli

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/codes"
	"github.com/spf13/cobra"
	"io"
	"math/rand/v2"
)

// SeedOptions controls the generated catalog.
type SeedOptions struct {
	Count         int
	Categories    int
	Subcategories int // per category, 0 files items directly in the category
	Photo         string
	Seed          uint64
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the catalog with generated items",
		Long: `Fill the catalog with generated items for load testing.

Identifiers and codes are allocated exactly like the admin wizard does, so
seeding on top of a live catalog fills its gaps first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.pool(cmd.Context())
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer db.Close()
			n, err := Seed(cmd.Context(), &catalog.Store{DB: db}, opts, cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "created %d items\n", n)
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 100, "number of items to create")
	cmd.Flags().IntVar(&opts.Categories, "categories", 5, "number of categories to spread items over")
	cmd.Flags().IntVar(&opts.Subcategories, "subcategories", 2, "subcategories per category")
	cmd.Flags().StringVar(&opts.Photo, "photo", "seed-photo", "photo file id used for every item")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed for prices and stock")
	return cmd
}

type shelf struct {
	category        string
	categoryCode    int
	subcategory     string
	subcategoryCode int
	items           int
}

// Seed creates up to o.Count items and returns how many were created. Running
// out of identifiers stops early without an error.
func Seed(ctx context.Context, repo catalog.Repository, o SeedOptions, progress io.Writer) (int, error) {
	if o.Count < 1 || o.Categories < 1 || o.Subcategories < 0 {
		return 0, fmt.Errorf("seed: count and categories must be positive")
	}
	if o.Categories > catalog.MaxCategories || o.Subcategories > catalog.MaxSubcategoriesPerCat {
		return 0, fmt.Errorf("seed: at most %d categories with %d subcategories each",
			catalog.MaxCategories, catalog.MaxSubcategoriesPerCat)
	}
	shelves, err := seedShelves(ctx, repo, o)
	if err != nil {
		return 0, err
	}
	ids, err := repo.ItemIDs(ctx)
	if err != nil {
		return 0, err
	}
	names, err := repo.ItemNames(ctx)
	if err != nil {
		return 0, err
	}

	rnd := rand.New(rand.NewPCG(o.Seed, o.Seed^0x5eed))
	created := 0
	for created < o.Count {
		id, err := codes.ItemID(ids)
		var le *codes.LimitExceeded
		if errors.As(err, &le) {
			fmt.Fprintf(progress, "item ids exhausted at %d\n", le.Ceiling)
			return created, nil
		}
		if err != nil {
			return created, err
		}
		name := fmt.Sprintf("Seed item %d", id)
		for k := 2; catalog.ContainsName(names, name); k++ {
			name = fmt.Sprintf("Seed item %d-%d", id, k)
		}
		sh := roomiest(shelves)
		if sh == nil {
			fmt.Fprintf(progress, "every shelf holds %d items\n", catalog.MaxItemsPerGroup)
			return created, nil
		}
		it := catalog.Item{
			ID:               id,
			CategoryName:     sh.category,
			CategoryCode:     sh.categoryCode,
			SubcategoryName:  sh.subcategory,
			SubcategoryCode:  sh.subcategoryCode,
			Name:             name,
			Photos:           []string{o.Photo},
			Price:            10 + rnd.IntN(500)*10,
			Description:      fmt.Sprintf("Generated item number %d.", id),
			ShortDescription: "generated",
			Stock:            rnd.IntN(50),
			Visible:          true,
			QuickView:        fmt.Sprintf("https://example.com/items/%d", id),
		}
		if err := catalog.ValidateItem(it); err != nil {
			return created, fmt.Errorf("seed item %d: %w", id, err)
		}
		if err := repo.CreateItem(ctx, it); err != nil {
			return created, fmt.Errorf("seed item %d: %w", id, err)
		}
		ids = append(ids, id)
		names = append(names, name)
		sh.items++
		created++
		if created%100 == 0 {
			fmt.Fprintf(progress, "%d/%d\n", created, o.Count)
		}
	}
	return created, nil
}

// seedShelves reuses seed categories from an earlier run and allocates codes
// for the missing ones.
func seedShelves(ctx context.Context, repo catalog.Repository, o SeedOptions) ([]shelf, error) {
	cats, err := repo.Categories(ctx, catalog.ScopeAll)
	if err != nil {
		return nil, err
	}
	used := make([]int, 0, len(cats))
	for _, c := range cats {
		used = append(used, c.Code)
	}

	var out []shelf
	for i := 1; i <= o.Categories; i++ {
		name := fmt.Sprintf("Seed %d", i)
		cat, ok := catalog.FindCategory(cats, name)
		var subs []catalog.Subcategory
		if ok {
			if subs, err = repo.Subcategories(ctx, cat.Code, catalog.ScopeAll); err != nil {
				return nil, err
			}
		} else {
			code, err := codes.CategoryCode(used)
			if err != nil {
				return nil, err
			}
			used = append(used, code)
			cat = catalog.Category{Name: name, Code: code}
		}
		if o.Subcategories == 0 {
			n, err := repo.CountItems(ctx, cat.Code, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, shelf{category: cat.Name, categoryCode: cat.Code, items: n})
			continue
		}

		subCodes := make([]int, 0, len(subs))
		for _, s := range catalog.Named(subs) {
			subCodes = append(subCodes, s.Code)
		}
		for j := 1; j <= o.Subcategories; j++ {
			subName := fmt.Sprintf("Shelf %d", j)
			sub, ok := catalog.FindSubcategory(subs, subName)
			if !ok {
				code, err := codes.SubcategoryCode(cat.Code, subCodes)
				if err != nil {
					return nil, err
				}
				subCodes = append(subCodes, code)
				sub = catalog.Subcategory{Name: subName, Code: code}
			}
			n := 0
			if ok {
				if n, err = repo.CountItems(ctx, cat.Code, sub.Code); err != nil {
					return nil, err
				}
			}
			out = append(out, shelf{cat.Name, cat.Code, sub.Name, sub.Code, n})
		}
	}
	return out, nil
}

// roomiest picks the emptiest shelf that can still take an item.
func roomiest(shelves []shelf) *shelf {
	var best *shelf
	for i := range shelves {
		sh := &shelves[i]
		if sh.items >= catalog.MaxItemsPerGroup {
			continue
		}
		if best == nil || sh.items < best.items {
			best = sh
		}
	}
	return best
}
