// Package export renders the directory's filtered customer set as downloadable
// spreadsheets and PDF documents. Every function here is a pure transform of
// its input: no network, no shared state.
package export

import (
	"fmt"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// Columns of both export formats, in order.
var (
	xlsxHeader = []string{"Customer ID", "Customer Name", "Email", "Phone", "Service Name"}
	pdfHeader  = []string{"ID", "Name", "Email", "Phone", "Service"}
)

// Rows projects records into export rows, preserving order.
func Rows(records []domain.CustomerRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CustomerID.String(),
			r.Name,
			r.Email,
			r.Phone,
			r.ServiceName,
		})
	}
	return rows
}

// FileName is the download name for a store's export, e.g. customers_for_Main_store.xlsx.
func FileName(storeName, ext string) string {
	return fmt.Sprintf("customers_for_%s_store.%s", storeName, ext)
}

// Title is the heading printed on the PDF export.
func Title(storeName string) string {
	return fmt.Sprintf("Customers for %s Store", storeName)
}
