package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"associate-os/internal/model"
	"associate-os/internal/schema"
)

// DefaultProduct prefixes export file names.
const DefaultProduct = "lawcp"

var ErrImportInvalid = errors.New("import rejected")

// Export returns the durable document bytes verbatim.
func (d *Documents) Export(ctx context.Context) ([]byte, error) {
	return d.durableBytes(ctx)
}

// ExportFilename names an export file: <product>_backup_<YYYY-MM-DD>.json,
// or <product>_backup.json for a zero date.
func ExportFilename(product string, date time.Time) string {
	product = strings.TrimSpace(product)
	if product == "" {
		product = DefaultProduct
	}
	if date.IsZero() {
		return product + "_backup.json"
	}
	return product + "_backup_" + date.Format(model.DateLayout) + ".json"
}

// Import replaces the live document with b. b must be an aggregate document
// (top-level tasks and settings) that passes validation; otherwise the live
// document is untouched and the error wraps ErrImportInvalid.
func (d *Documents) Import(ctx context.Context, b []byte) error {
	if f := schema.DetectFormat(b); f != schema.FormatAggregate {
		return fmt.Errorf("%w: expected a JSON object with tasks and settings, got %s", ErrImportInvalid, f)
	}
	doc, err := schema.Validate(b)
	if err != nil {
		d.log.Warn("import rejected", "err", err)
		return fmt.Errorf("%w: %w", ErrImportInvalid, err)
	}
	if err := d.Replace(ctx, doc); err != nil {
		return err
	}
	d.log.Info("document imported", "tasks", len(doc.Tasks), "resources", len(doc.Resources))
	return nil
}
