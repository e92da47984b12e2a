// Command menu-export writes a seed catalog file that the storefront can load
// through STOREFRONT_CATALOG_FILE. Output ending in .gz is gzip compressed.
package main

import (
	"flag"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/seed"
)

func main() {
	var (
		out      string
		from     string
		category string
	)
	flag.StringVar(&out, "out", "menu.json", "output file (.json or .json.gz)")
	flag.StringVar(&from, "from", "", "re-export an existing catalog file instead of the built-in menu")
	flag.StringVar(&category, "category", "", "only export one category (Burgers, Sides, Drinks)")
	flag.Parse()

	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	n, err := run(out, from, category)
	if err != nil {
		lg.Error("Export failed", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("Exported catalog", zap.String("file", out), zap.Int("products", n))
}

func run(out, from, category string) (int, error) {
	products := seed.Products()
	if from != "" {
		var err error
		if products, err = seed.LoadFile(from); err != nil {
			return 0, errors.Wrap(err, "load source catalog")
		}
	}
	if category != "" {
		c, ok := product.ParseCategory(category)
		if !ok {
			return 0, errors.Errorf("unknown category %q", category)
		}
		products = product.Filter{Category: c}.Apply(products)
	}
	if len(products) == 0 {
		return 0, errors.New("nothing to export")
	}
	if err := seed.WriteFile(out, products); err != nil {
		return 0, errors.Wrap(err, "write catalog")
	}
	return len(products), nil
}
