package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

const attributePrefix = "attributes."

// CSVImporter reads artisan catalog exports and inserts/updates products.
//
// Expected header: id,key,name,description,price,artistName,category,images.url
// plus any number of attributes.<name> columns. A row with an empty key
// continues the previous product and may only add images.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

type csvRow struct {
	line       int
	ID         string
	Key        string
	Name       string
	Desc       string
	Price      string
	Artist     string
	Category   string
	ImageURLs  []string
	Attributes map[string]interface{}
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("read headers: key column required")
	}

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		line, _ := i.reader.FieldPos(0)
		row := parseRow(record, index, headers)
		if row == nil {
			continue
		}
		row.line = line

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("catalog import finished", zap.Int("products", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Price == "" {
		return fmt.Errorf("line %d: invalid product row (missing name or price) for key %q", row.line, row.Key)
	}
	price, err := strconv.ParseInt(row.Price, 10, 64)
	if err != nil || price < 0 {
		return fmt.Errorf("line %d: invalid price %q for key %q", row.line, row.Price, row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("line %d: invalid id for key %q: %s", row.line, row.Key, row.ID)
		}
	}

	p := domain.Product{
		ID:          row.ID,
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Desc,
		Price:       price,
		ArtistName:  row.Artist,
		Category:    row.Category,
		Images:      row.ImageURLs,
		Attributes:  row.Attributes,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	i.logger.Debug("imported product", zap.String("key", row.Key), zap.Int("images", len(row.ImageURLs)))
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, headers []string) *csvRow {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "images.url")

	if key == "" && imageURL == "" {
		return nil
	}

	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      key,
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		Price:    pick(record, index, "price"),
		Artist:   pick(record, index, "artistName"),
		Category: pick(record, index, "category"),
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}

	for pos, h := range headers {
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(h, attributePrefix) || pos >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[pos])
		if v == "" {
			continue
		}
		if row.Attributes == nil {
			row.Attributes = map[string]interface{}{}
		}
		name := strings.TrimPrefix(h, attributePrefix)
		if strings.Contains(v, ";") {
			row.Attributes[name] = splitValues(v)
		} else {
			row.Attributes[name] = v
		}
	}
	return row
}

func splitValues(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
