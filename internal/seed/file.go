package seed

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// A catalog file is a JSON array of products:
//
//	[{"id":"1","name":"...","description":"...","price":12.99,"category":"Burgers","image":"..."}]
//
// Files ending in .gz are gzip compressed.

// LoadFile reads a catalog file. Every product is validated and ids must be
// unique.
func LoadFile(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if isGzip(path) {
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	products, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return products, nil
}

// WriteFile writes products as a catalog file.
func WriteFile(path string, products []product.Product) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create catalog")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close catalog")
		}
	}()

	data := Encode(products)
	if !isGzip(path) {
		_, err = f.Write(data)
		return errors.Wrap(err, "write catalog")
	}

	zw := pgzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		return errors.Wrap(err, "write gzip")
	}
	return errors.Wrap(zw.Close(), "flush gzip")
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Encode renders products as a JSON array.
func Encode(products []product.Product) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ArrStart()
	for _, p := range products {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
			e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
			e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
			e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
			e.Field("category", func(e *jx.Encoder) { e.Str(string(p.Category)) })
			e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		})
	}
	e.ArrEnd()

	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())
	return out
}

// Decode parses a JSON array of products.
func Decode(r io.Reader) ([]product.Product, error) {
	d := jx.Decode(r, 4096)

	var (
		products []product.Product
		seen     = make(map[string]struct{})
	)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return errors.Wrapf(product.ErrDuplicateID, "%q", p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, err
	}
	switch err := d.Skip(); {
	case err == nil:
		return nil, errors.New("unexpected value after catalog array")
	case !errors.Is(err, io.EOF):
		return nil, errors.Wrap(err, "trailing data after catalog array")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "category":
			var s string
			if s, err = d.Str(); err == nil {
				p.Category = product.Category(s)
			}
		case "price":
			p.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	return p, err
}

// decodeDecimal accepts a price as a JSON number or a numeric string.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = n.String()
	}
	return decimal.NewFromString(raw)
}
