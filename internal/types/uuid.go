package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a random v4 UUID used as the primary key of every entity
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateTraceID returns a k-sortable identifier for transactions,
// request ids and message ids ex 01HZX3A7V2J8Q0C4B5N6M7P8R9
func GenerateTraceID() string {
	return ulid.Make().String()
}

// shortHex returns the first n hex characters of a fresh UUID
func shortHex(n int) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:n]
}

// GenerateInvoiceNumber returns a human readable invoice number for the
// billing month ex INV-202501-9f86d081
func GenerateInvoiceNumber(year int, month time.Month) string {
	return fmt.Sprintf("%s%04d%02d-%s", INVOICE_NUMBER_PREFIX, year, int(month), shortHex(8))
}

// GenerateReceiptNumber returns a receipt number for a payment made on the
// given day ex RCPT-2025-01-20-3c2a1b0f
func GenerateReceiptNumber(paidAt time.Time) string {
	return fmt.Sprintf("%s%s-%s", RECEIPT_NUMBER_PREFIX, paidAt.Format("2006-01-02"), shortHex(8))
}

const (
	INVOICE_NUMBER_PREFIX = "INV-"
	RECEIPT_NUMBER_PREFIX = "RCPT-"
)
