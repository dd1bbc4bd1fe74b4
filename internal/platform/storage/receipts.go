// Package storage archives payment receipts in Cloud Storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/laundryhub/api/internal/services"
)

// ErrObjectExists is returned by an ObjectWriter when the object is already present.
var ErrObjectExists = errors.New("storage: object already exists")

// ObjectWriter stores data at bucket/object, failing with ErrObjectExists instead of overwriting.
type ObjectWriter func(ctx context.Context, bucket, object, contentType string, data []byte) error

// ReceiptArchiver writes receipts as JSON objects. Receipts are write-once: a retry for the same
// transaction returns the existing location.
type ReceiptArchiver struct {
	bucket string
	prefix string
	write  ObjectWriter
}

var _ services.ReceiptArchiver = (*ReceiptArchiver)(nil)

// NewReceiptArchiver archives into bucket using the Cloud Storage client.
func NewReceiptArchiver(client *storage.Client, bucket, prefix string) (*ReceiptArchiver, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	return NewReceiptArchiverWithWriter(bucket, prefix, gcsWriter(client))
}

// NewReceiptArchiverWithWriter archives through write.
func NewReceiptArchiverWithWriter(bucket, prefix string, write ObjectWriter) (*ReceiptArchiver, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: receipts bucket is required")
	}
	if write == nil {
		return nil, errors.New("storage: object writer is required")
	}
	return &ReceiptArchiver{bucket: bucket, prefix: prefix, write: write}, nil
}

// ArchiveReceipt stores receipt and returns its gs:// URI.
func (a *ReceiptArchiver) ArchiveReceipt(ctx context.Context, receipt services.Receipt) (string, error) {
	object, err := ReceiptPath(a.prefix, receipt.OrderID, receipt.TransactionID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: encode receipt: %w", err)
	}
	uri := fmt.Sprintf("gs://%s/%s", a.bucket, object)
	if err := a.write(ctx, a.bucket, object, "application/json", data); err != nil && !errors.Is(err, ErrObjectExists) {
		return "", fmt.Errorf("storage: write %s: %w", uri, err)
	}
	return uri, nil
}

func gcsWriter(client *storage.Client) ObjectWriter {
	return func(ctx context.Context, bucket, object, contentType string, data []byte) error {
		w := client.Bucket(bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
		w.ContentType = contentType
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return err
		}
		err := w.Close()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrObjectExists
		}
		return err
	}
}
