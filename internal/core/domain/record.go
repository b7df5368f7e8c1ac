package domain

import (
	"fmt"
	"strings"
	"time"
)

// Operational source tables indexed for retrieval.
const (
	TableFinance     = "finance_records"
	TableHR          = "hr_records"
	TableProcurement = "procurement_records"
)

// SourceTables lists every indexable operational table.
var SourceTables = []string{TableFinance, TableHR, TableProcurement}

// Record is a semi-structured operational record that can be flattened
// into the document index.
type Record interface {
	// Table names the record's source table.
	Table() string

	// Key is the record's identifier within its table.
	Key() string

	// CanonicalText flattens the record into the labelled text that is
	// hashed, indexed and searched. Empty fields are omitted.
	CanonicalText() string

	// Summary is a one-line description used in retrieval hits.
	Summary() string
}

// FinanceRecord is a payment, invoice or other financial transaction.
type FinanceRecord struct {
	ID              string
	RecordType      string // payment, invoice, budget_transfer, expense_claim, revenue
	Department      string
	Amount          float64
	Currency        string
	TransactionDate time.Time
	Reference       string
	Description     string
	SupplierName    string
	AccountCode     string
	Status          string
	ApprovalStatus  string
}

func (r FinanceRecord) Table() string { return TableFinance }
func (r FinanceRecord) Key() string   { return r.ID }

func (r FinanceRecord) CanonicalText() string {
	return joinParts(
		labelled("Finance record type", r.RecordType),
		labelled("Department", r.Department),
		labelled("Amount", fmt.Sprintf("%.2f %s", r.Amount, r.Currency)),
		labelled("Transaction date", dateOrEmpty(r.TransactionDate)),
		labelled("Reference", r.Reference),
		labelled("Description", r.Description),
		labelled("Supplier", r.SupplierName),
		labelled("Account code", r.AccountCode),
		labelled("Status", r.Status),
		labelled("Approval", r.ApprovalStatus),
	)
}

func (r FinanceRecord) Summary() string {
	return fmt.Sprintf("%s - %s - %.2f", r.RecordType, r.Reference, r.Amount)
}

// HRRecord is an employment, salary, leave or training record.
type HRRecord struct {
	ID             string
	RecordType     string // employment, salary, leave, performance, training, termination
	Department     string
	EmployeeID     string
	EmployeeName   string
	Position       string
	EmploymentType string
	Description    string
	StartDate      time.Time
	EndDate        time.Time
	Amount         float64
	Days           int
	Status         string
	ApprovalStatus string
}

func (r HRRecord) Table() string { return TableHR }
func (r HRRecord) Key() string   { return r.ID }

func (r HRRecord) CanonicalText() string {
	amount := ""
	if r.Amount != 0 {
		amount = fmt.Sprintf("%.2f", r.Amount)
	}
	days := ""
	if r.Days != 0 {
		days = fmt.Sprintf("%d", r.Days)
	}
	return joinParts(
		labelled("HR record type", r.RecordType),
		labelled("Department", r.Department),
		labelled("Employee ID", r.EmployeeID),
		labelled("Employee", r.EmployeeName),
		labelled("Position", r.Position),
		labelled("Employment type", r.EmploymentType),
		labelled("Description", r.Description),
		labelled("Start date", dateOrEmpty(r.StartDate)),
		labelled("End date", dateOrEmpty(r.EndDate)),
		labelled("Amount", amount),
		labelled("Days", days),
		labelled("Status", r.Status),
		labelled("Approval", r.ApprovalStatus),
	)
}

func (r HRRecord) Summary() string {
	return fmt.Sprintf("%s - %s - %s", r.RecordType, r.EmployeeName, r.Position)
}

// ProcurementRecord is a contract, tender or purchase order.
type ProcurementRecord struct {
	ID             string
	RecordType     string // purchase_order, contract, tender, supplier_evaluation, delivery, payment
	Department     string
	ContractNumber string
	SupplierName   string
	SupplierABN    string
	Description    string
	ContractValue  float64
	StartDate      time.Time
	EndDate        time.Time
	Category       string
	Subcategory    string
	Status         string
	ApprovalStatus string
}

func (r ProcurementRecord) Table() string { return TableProcurement }
func (r ProcurementRecord) Key() string   { return r.ID }

func (r ProcurementRecord) CanonicalText() string {
	return joinParts(
		labelled("Procurement record type", r.RecordType),
		labelled("Department", r.Department),
		labelled("Contract number", r.ContractNumber),
		labelled("Supplier", r.SupplierName),
		labelled("Supplier ABN", r.SupplierABN),
		labelled("Description", r.Description),
		labelled("Contract value", fmt.Sprintf("%.2f", r.ContractValue)),
		labelled("Start date", dateOrEmpty(r.StartDate)),
		labelled("End date", dateOrEmpty(r.EndDate)),
		labelled("Category", r.Category),
		labelled("Subcategory", r.Subcategory),
		labelled("Status", r.Status),
		labelled("Approval", r.ApprovalStatus),
	)
}

func (r ProcurementRecord) Summary() string {
	return fmt.Sprintf("%s - %s - %s", r.RecordType, r.ContractNumber, r.SupplierName)
}

// canonicalSeparator joins the labelled fields of a flattened record.
const canonicalSeparator = " | "

func joinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, canonicalSeparator)
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func dateOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// IndexedDocument is one flattened record in the document index.
// The batch indexer writes these; the query core only reads them.
type IndexedDocument struct {
	// ID is the index entry's identifier.
	ID string

	// ContentHash is the SHA-256 of the canonical text. Unique:
	// re-indexing identical text is a no-op.
	ContentHash string

	// Content is the canonical text.
	Content string

	// SourceTable and RecordID locate the underlying record.
	SourceTable string
	RecordID    string

	// Vector is a fixed-length term-frequency vector. Stored for a
	// future embedding index; ranking never reads it.
	Vector []float64

	// IndexedAt is when the entry was written.
	IndexedAt time.Time
}
