package storage

import (
	"fmt"
	"strings"
)

const defaultReceiptPrefix = "receipts"

// ReceiptPath returns "{prefix}/{orderId}/{transactionId}.json".
func ReceiptPath(prefix, orderID, transactionID string) (string, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = defaultReceiptPrefix
	}
	order, err := validateSegment("orderID", orderID)
	if err != nil {
		return "", err
	}
	txn, err := validateSegment("transactionID", transactionID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s.json", prefix, order, txn), nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", fmt.Errorf("storage: %s is required", name)
	case strings.ContainsAny(value, "/\\"):
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	case strings.Contains(value, ".."):
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
