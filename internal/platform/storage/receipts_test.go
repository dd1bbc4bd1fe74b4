package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/laundryhub/api/internal/services"
)

type memoryObjects struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memoryObjects) write(_ context.Context, bucket, object, contentType string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	key := bucket + "/" + object
	if _, ok := m.objects[key]; ok {
		return ErrObjectExists
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func sampleReceipt() services.Receipt {
	return services.Receipt{
		OrderID:       "ORD-20250120-001",
		TransactionID: "TXN-4F2A",
		UserID:        "user-1",
		Method:        "upi",
		Currency:      "INR",
		Lines: []services.ReceiptLine{
			{Service: "Wash (Normal)", Garment: "T-shirt", Quality: "normal", Quantity: 3, LinePrice: 90},
		},
		Subtotal: 90,
		Discount: 9,
		Total:    81,
		PaidAt:   time.Date(2025, time.January, 20, 4, 30, 0, 0, time.UTC),
	}
}

func TestReceiptArchiverWritesJSON(t *testing.T) {
	objects := &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
	archiver, err := NewReceiptArchiverWithWriter("laundry-receipts", "", objects.write)
	if err != nil {
		t.Fatalf("NewReceiptArchiverWithWriter: %v", err)
	}

	uri, err := archiver.ArchiveReceipt(context.Background(), sampleReceipt())
	if err != nil {
		t.Fatalf("ArchiveReceipt: %v", err)
	}
	if uri != "gs://laundry-receipts/receipts/ORD-20250120-001/TXN-4F2A.json" {
		t.Fatalf("unexpected uri %s", uri)
	}

	key := "laundry-receipts/receipts/ORD-20250120-001/TXN-4F2A.json"
	if objects.types[key] != "application/json" {
		t.Fatalf("unexpected content type %q", objects.types[key])
	}
	var stored services.Receipt
	if err := json.Unmarshal(objects.objects[key], &stored); err != nil {
		t.Fatalf("decode stored receipt: %v", err)
	}
	if stored.Total != 81 || len(stored.Lines) != 1 || stored.Lines[0].Garment != "T-shirt" {
		t.Fatalf("unexpected stored receipt %+v", stored)
	}

	again, err := archiver.ArchiveReceipt(context.Background(), sampleReceipt())
	if err != nil || again != uri {
		t.Fatalf("expected retry to return existing uri, got %q, %v", again, err)
	}
}

func TestReceiptArchiverErrors(t *testing.T) {
	if _, err := NewReceiptArchiverWithWriter("", "", (&memoryObjects{}).write); err == nil {
		t.Fatalf("expected bucket to be required")
	}

	objects := &memoryObjects{err: errors.New("permission denied")}
	archiver, err := NewReceiptArchiverWithWriter("laundry-receipts", "receipts", objects.write)
	if err != nil {
		t.Fatalf("NewReceiptArchiverWithWriter: %v", err)
	}
	if _, err := archiver.ArchiveReceipt(context.Background(), sampleReceipt()); err == nil {
		t.Fatalf("expected write failure")
	}

	bad := sampleReceipt()
	bad.TransactionID = ""
	if _, err := archiver.ArchiveReceipt(context.Background(), bad); err == nil {
		t.Fatalf("expected missing transaction id to be rejected")
	}
}
