package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// Seed loads a small demonstration dataset: ledger rows across
// portfolios and fiscal years plus a handful of operational records,
// which are then indexed. Idempotent at the index level through the
// content-hash check.
func (s *IngestService) Seed(ctx context.Context) (*driving.IndexStats, error) {
	logger.Section("Seed")

	if err := s.ledger.SaveRows(ctx, seedExpenseRows()); err != nil {
		return nil, fmt.Errorf("seed ledger rows: %w", err)
	}
	for _, rec := range seedRecords() {
		if err := s.records.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("seed %s record: %w", rec.Table(), err)
		}
	}

	return s.Reindex(ctx, false)
}

func seedExpenseRows() []domain.ExpenseRow {
	now := time.Now().UTC()
	batch := fmt.Sprintf("seed_%d", now.Unix())

	type line struct {
		portfolio, department, program, expenseType string
		amounts                                     map[string]float64
	}
	lines := []line{
		{"Health and Aged Care", "Department of Health", "Medicare Benefits", "Administered Expenses",
			map[string]float64{"2023-24": 31250.4, "2024-25": 32980.1, "2025-26": 34100.7}},
		{"Health and Aged Care", "Department of Aged Care", "Residential Care Subsidies", "Administered Expenses",
			map[string]float64{"2023-24": 15870.2, "2024-25": 16520.9, "2025-26": 17210.3}},
		{"Education", "Department of Education", "Schools Funding", "Administered Expenses",
			map[string]float64{"2023-24": 27410.5, "2024-25": 28630.0, "2025-26": 29840.6}},
		{"Education", "Australian Research Council", "Discovery Grants", "Administered Expenses",
			map[string]float64{"2023-24": 540.8, "2024-25": 562.3}},
		{"Education", "Department of Skills and Training", "Apprenticeship Incentives", "Departmental Expenses",
			map[string]float64{"2024-25": 1280.4, "2025-26": 1315.0}},
		{"Defence", "Department of Defence", "Force Structure", "Departmental Expenses",
			map[string]float64{"2023-24": 42890.0, "2024-25": 45120.6, "2025-26": 47350.2}},
		{"Defence", "Defence Science and Technology", "Research Programs", "Departmental Expenses",
			map[string]float64{"2024-25": 890.1}},
		{"Treasury", "Australian Taxation Office", "Tax Administration", "Departmental Expenses",
			map[string]float64{"2023-24": 3940.7, "2024-25": 4080.3, "2025-26": 4175.9}},
		{"Social Services", "Centrelink", "Income Support Delivery", "Administered Expenses",
			map[string]float64{"2023-24": 21560.8, "2024-25": 22410.5, "2025-26": 23180.1}},
		{"Transport and Infrastructure", "Department of Infrastructure", "Road Investment", "Administered Expenses",
			map[string]float64{"2023-24": 8740.3, "2024-25": 9120.8}},
	}

	rows := make([]domain.ExpenseRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, domain.ExpenseRow{
			ID:          uuid.NewString(),
			Portfolio:   l.portfolio,
			Department:  l.department,
			Program:     l.program,
			ExpenseType: l.expenseType,
			Amounts:     l.amounts,
			ImportBatch: batch,
			CreatedAt:   now,
		})
	}
	return rows
}

func seedRecords() []domain.Record {
	day := func(offset int) time.Time {
		return time.Now().UTC().AddDate(0, 0, -offset)
	}

	return []domain.Record{
		domain.FinanceRecord{
			ID: uuid.NewString(), RecordType: "payment", Department: "Department of Health",
			Amount: 184500.00, Currency: "AUD", TransactionDate: day(12),
			Reference: "FIN-PAYMENT-0001", Description: "Quarterly payment for pathology services",
			SupplierName: "Meridian Pathology Pty Ltd", AccountCode: "ACC-4410",
			Status: "completed", ApprovalStatus: "approved",
		},
		domain.FinanceRecord{
			ID: uuid.NewString(), RecordType: "invoice", Department: "Department of Education",
			Amount: 96750.50, Currency: "AUD", TransactionDate: day(34),
			Reference: "FIN-INVOICE-0002", Description: "Curriculum development consulting invoice",
			SupplierName: "Bluegum Consulting Pty Ltd",
			Status:       "pending", ApprovalStatus: "pending",
		},
		domain.FinanceRecord{
			ID: uuid.NewString(), RecordType: "expense_claim", Department: "Australian Taxation Office",
			Amount: 2340.80, Currency: "AUD", TransactionDate: day(5),
			Reference: "FIN-CLAIM-0003", Description: "Regional office travel expense claim",
			Status:    "approved", ApprovalStatus: "approved",
		},
		domain.HRRecord{
			ID: uuid.NewString(), RecordType: "employment", Department: "Department of Defence",
			EmployeeID: "EMP-30417", EmployeeName: "A. Ferreira", Position: "Systems Analyst",
			EmploymentType: "Full-time", Description: "New ongoing engagement, security cleared",
			StartDate:      day(90), Status: "active", ApprovalStatus: "approved",
		},
		domain.HRRecord{
			ID: uuid.NewString(), RecordType: "leave", Department: "Centrelink",
			EmployeeID: "EMP-11852", EmployeeName: "J. Okafor", Position: "Service Officer",
			EmploymentType: "Part-time", Description: "Approved long service leave",
			StartDate:      day(20), EndDate: day(-10), Days: 30,
			Status:         "active", ApprovalStatus: "approved",
		},
		domain.HRRecord{
			ID: uuid.NewString(), RecordType: "training", Department: "Department of Education",
			EmployeeID: "EMP-27063", EmployeeName: "M. Tan", Position: "Policy Officer",
			EmploymentType: "Full-time", Description: "Data analysis training program",
			StartDate:      day(45), EndDate: day(40), Amount: 3200,
			Status:         "completed", ApprovalStatus: "approved",
		},
		domain.ProcurementRecord{
			ID: uuid.NewString(), RecordType: "contract", Department: "Department of Infrastructure",
			ContractNumber: "CON-CONTRACT-0001", SupplierName: "Harbour Bridge Engineering Pty Ltd",
			SupplierABN:    "51824753556", Description: "Bridge inspection services contract",
			ContractValue:  2480000.00, StartDate: day(180), EndDate: day(-185),
			Category:       "Professional Services", Subcategory: "Maintenance",
			Status:         "active", ApprovalStatus: "approved",
		},
		domain.ProcurementRecord{
			ID: uuid.NewString(), RecordType: "tender", Department: "Department of Health",
			ContractNumber: "CON-TENDER-0002", SupplierName: "Southern Cross Medical Supplies",
			Description:    "Open tender for hospital consumables",
			ContractValue:  5600000.00, StartDate: day(60), EndDate: day(-305),
			Category:       "Office Supplies",
			Status:         "pending", ApprovalStatus: "pending",
		},
		domain.ProcurementRecord{
			ID: uuid.NewString(), RecordType: "purchase_order", Department: "Department of Education",
			ContractNumber: "CON-PO-0003", SupplierName: "Wattle IT Services Pty Ltd",
			SupplierABN:    "83914571203", Description: "Laptop fleet refresh for regional schools",
			ContractValue:  745000.00, StartDate: day(25), EndDate: day(-70),
			Category:       "IT Services", Subcategory: "Hardware",
			Status:         "active", ApprovalStatus: "approved",
		},
	}
}
