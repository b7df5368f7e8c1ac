package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFinanceRecordCanonicalText(t *testing.T) {
	rec := FinanceRecord{
		ID:              "fin-1",
		RecordType:      "payment",
		Department:      "Department of Health",
		Amount:          184500,
		Currency:        "AUD",
		TransactionDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Reference:       "FIN-PAYMENT-0001",
		Description:     "Quarterly pathology payment",
		Status:          "completed",
	}

	text := rec.CanonicalText()

	assert.True(t, strings.HasPrefix(text, "Finance record type: payment"))
	assert.Contains(t, text, "Amount: 184500.00 AUD")
	assert.Contains(t, text, "Transaction date: 2025-03-14")
	// Empty fields are omitted entirely, label included.
	assert.NotContains(t, text, "Supplier")
	assert.NotContains(t, text, "Account code")

	for _, part := range strings.Split(text, " | ") {
		assert.Contains(t, part, ": ")
	}
}

func TestHRRecordCanonicalTextOmitsZeroValues(t *testing.T) {
	rec := HRRecord{
		ID:           "hr-1",
		RecordType:   "employment",
		Department:   "Centrelink",
		EmployeeName: "J. Okafor",
	}

	text := rec.CanonicalText()

	assert.Contains(t, text, "HR record type: employment")
	assert.NotContains(t, text, "Amount")
	assert.NotContains(t, text, "Days")
	assert.NotContains(t, text, "Start date")
}

func TestProcurementRecordSummary(t *testing.T) {
	rec := ProcurementRecord{
		RecordType:     "contract",
		ContractNumber: "CON-0001",
		SupplierName:   "Southern Cross Medical",
	}

	assert.Equal(t, "contract - CON-0001 - Southern Cross Medical", rec.Summary())
}

func TestCanonicalTextDeterministic(t *testing.T) {
	rec := ProcurementRecord{
		ID: "proc-1", RecordType: "tender", Department: "Treasury",
		ContractNumber: "CON-0002", ContractValue: 100,
	}

	assert.Equal(t, rec.CanonicalText(), rec.CanonicalText())
}

func TestQueryMethodValid(t *testing.T) {
	assert.True(t, MethodSQL.Valid())
	assert.True(t, MethodRAG.Valid())
	assert.True(t, MethodHybrid.Valid())
	assert.False(t, QueryMethod("GRAPHQL").Valid())
	assert.False(t, QueryMethod("").Valid())
}

func TestQueryResultFailed(t *testing.T) {
	var nilResult *QueryResult
	assert.True(t, nilResult.Failed())
	assert.False(t, (&QueryResult{}).Failed())
	assert.True(t, (&QueryResult{Err: "boom"}).Failed())
}
