package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

// DemoClients are the client names used for demo data.
var DemoClients = []string{
	"Acme Corporation",
	"Globex Inc",
	"Initech",
	"Umbrella Corp",
	"Wayne Enterprises",
}

// DemoInvoices generates count demo invoices. Issue dates fall within the 60
// days before now, each due 30 days after issue, with amounts between 100 and
// 200.
func DemoInvoices(count int, rng *rand.Rand, now time.Time) []CreateInvoiceInput {
	statuses := []domain.InvoiceStatus{domain.InvoiceStatusPaid, domain.InvoiceStatusPending, domain.InvoiceStatusOverdue}

	out := make([]CreateInvoiceInput, 0, count)
	for i := 0; i < count; i++ {
		issued := now.AddDate(0, 0, -rng.Intn(60))
		client := DemoClients[rng.Intn(len(DemoClients))]
		out = append(out, CreateInvoiceInput{
			InvoiceNumber: fmt.Sprintf("INV-%d", 1000+i),
			ClientName:    client,
			ClientEmail:   "billing@" + strings.ToLower(strings.Join(strings.Fields(client), "")) + ".com",
			IssueDate:     issued.Format(domain.DateLayout),
			DueDate:       issued.AddDate(0, 0, 30).Format(domain.DateLayout),
			Amount:        float64(rng.Intn(10000))/100 + 100,
			Status:        statuses[rng.Intn(len(statuses))],
		})
	}
	return out
}
