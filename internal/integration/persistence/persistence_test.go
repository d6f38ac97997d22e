package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	err = db.AutoMigrate(
		&model.ExpectedTransactionModel{},
		&model.SettlementEntryModel{},
		&model.DiscrepancyModel{},
		&model.ReconciliationReportModel{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func storedTransaction(transactionID string, amount float64, currency, processor string, date time.Time) *entity.ExpectedTransaction {
	txn := entity.NewExpectedTransaction(
		transactionID,
		decimal.NewFromFloat(amount),
		currency,
		processor,
		"BR",
		date,
		entity.TransactionStatusCaptured,
	)
	net := decimal.NewFromFloat(amount)
	txn.ExpectedNetAmount = &net
	feePct := decimal.NewFromFloat(2.5)
	txn.ExpectedFeePercent = &feePct
	return txn
}

func storedSettlement(transactionID string, gross, fee float64, currency, processor string, date time.Time) *entity.SettlementEntry {
	entry := entity.NewSettlementEntry(transactionID, processor, "settlements.csv")
	grossAmount := decimal.NewFromFloat(gross)
	feeAmount := decimal.NewFromFloat(fee)
	netAmount := grossAmount.Sub(feeAmount)
	entry.GrossAmount = &grossAmount
	entry.FeeAmount = &feeAmount
	entry.NetAmount = &netAmount
	entry.OriginalCurrency = currency
	entry.SettlementDate = &date
	entry.Status = entity.SettlementStatusCompleted
	return entry
}

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()
	jan10 := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("should create and find a transaction by external identifier", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		txn := storedTransaction("TXN-BR-2024-000001", 1000, "BRL", "payflow", jan10)
		txn.Metadata = map[string]any{"batch": "2024-01"}
		if err := repo.Create(ctx, txn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		found, err := repo.FindByTransactionID(ctx, "TXN-BR-2024-000001")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found == nil {
			t.Fatal("expected the stored transaction")
		}
		if !found.Amount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected amount 1000, got %s", found.Amount)
		}
		if found.Metadata["batch"] != "2024-01" {
			t.Errorf("expected metadata round-trip, got %+v", found.Metadata)
		}
	})

	t.Run("should return nil for an unknown identifier", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		found, err := repo.FindByTransactionID(ctx, "TXN-MISSING")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found != nil {
			t.Errorf("expected nil, got %+v", found)
		}
	})

	t.Run("should skip already-stored transactions in a batch", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		first := storedTransaction("TXN-001", 100, "BRL", "payflow", jan10)
		if err := repo.Create(ctx, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved, err := repo.CreateBatch(ctx, []*entity.ExpectedTransaction{
			storedTransaction("TXN-001", 100, "BRL", "payflow", jan10),
			storedTransaction("TXN-002", 200, "BRL", "payflow", jan10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved != 1 {
			t.Errorf("expected 1 saved, got %d", saved)
		}

		count, _ := repo.Count(ctx)
		if count != 2 {
			t.Errorf("expected 2 stored transactions, got %d", count)
		}
	})

	t.Run("should load only captured transactions inside the range", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		inRange := storedTransaction("TXN-001", 100, "BRL", "payflow", jan10)
		outOfRange := storedTransaction("TXN-002", 200, "BRL", "payflow", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
		refunded := storedTransaction("TXN-003", 300, "BRL", "payflow", jan10)
		refunded.Status = entity.TransactionStatusRefunded

		for _, txn := range []*entity.ExpectedTransaction{inRange, outOfRange, refunded} {
			if err := repo.Create(ctx, txn); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		loaded, err := repo.FindCapturedInRange(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			nil,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 1 || loaded[0].TransactionID != "TXN-001" {
			t.Errorf("expected only TXN-001, got %d rows", len(loaded))
		}
	})

	t.Run("should filter by processor names", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		_ = repo.Create(ctx, storedTransaction("TXN-001", 100, "BRL", "payflow", jan10))
		_ = repo.Create(ctx, storedTransaction("TXN-002", 200, "MXN", "transactmax", jan10))

		loaded, err := repo.FindCapturedInRange(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			[]string{"transactmax"},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 1 || loaded[0].ProcessorName != "transactmax" {
			t.Errorf("expected only transactmax rows, got %d", len(loaded))
		}
	})

	t.Run("should include transactions on the boundary days", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		lastMoment := storedTransaction("TXN-001", 100, "BRL", "payflow",
			time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC))
		_ = repo.Create(ctx, lastMoment)

		loaded, err := repo.FindCapturedInRange(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			nil,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 1 {
			t.Errorf("expected the end-of-day transaction to be included, got %d rows", len(loaded))
		}
	})
}

func TestSettlementRepository(t *testing.T) {
	ctx := context.Background()
	jan12 := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)

	t.Run("should store duplicate transaction ids as separate rows", func(t *testing.T) {
		repo := NewSettlementRepository(newTestDB(t))

		first := storedSettlement("TXN-001", 1000, 25, "BRL", "payflow", jan12)
		second := storedSettlement("TXN-001", 1000, 25, "BRL", "payflow", jan12.Add(24*time.Hour))
		if err := repo.Create(ctx, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := repo.Create(ctx, second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := repo.FindInRange(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			nil,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(loaded))
		}
		if !loaded[0].SettlementDate.Before(*loaded[1].SettlementDate) {
			t.Error("expected rows ordered by settlement date")
		}
	})

	t.Run("should round-trip the fee breakdown", func(t *testing.T) {
		repo := NewSettlementRepository(newTestDB(t))

		entry := storedSettlement("TXN-002", 1000, 25, "BRL", "payflow", jan12)
		entry.FeeBreakdown = map[string]any{"processing": 20.0, "interchange": 5.0}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := repo.FindInRange(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			nil,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("expected 1 row, got %d", len(loaded))
		}
		if loaded[0].FeeBreakdown["processing"] != 20.0 {
			t.Errorf("expected fee breakdown round-trip, got %+v", loaded[0].FeeBreakdown)
		}
	})

	t.Run("should paginate filtered listings", func(t *testing.T) {
		repo := NewSettlementRepository(newTestDB(t))

		for i := 0; i < 5; i++ {
			date := jan12.Add(time.Duration(i) * 24 * time.Hour)
			entry := storedSettlement("TXN-00"+string(rune('1'+i)), 100, 2.5, "BRL", "payflow", date)
			if err := repo.Create(ctx, entry); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		processor := "payflow"
		page, err := repo.FindByFilter(ctx,
			adapter.SettlementFilter{Processor: &processor},
			adapter.SettlementPagination{Page: 1, Limit: 2},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Total != 5 {
			t.Errorf("expected total 5, got %d", page.Total)
		}
		if len(page.Entries) != 2 {
			t.Errorf("expected 2 entries on the page, got %d", len(page.Entries))
		}
	})

	t.Run("should load only fee-eligible entries", func(t *testing.T) {
		repo := NewSettlementRepository(newTestDB(t))

		eligible := storedSettlement("TXN-001", 1000, 25, "BRL", "payflow", jan12)
		noFee := storedSettlement("TXN-002", 1000, 0, "BRL", "payflow", jan12)
		noFee.FeeAmount = nil
		noCurrency := storedSettlement("TXN-003", 1000, 25, "", "payflow", jan12)

		for _, entry := range []*entity.SettlementEntry{eligible, noFee, noCurrency} {
			if err := repo.Create(ctx, entry); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		loaded, err := repo.FindFeeEligible(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded) != 1 || loaded[0].TransactionID != "TXN-001" {
			t.Errorf("expected only TXN-001 to be eligible, got %d rows", len(loaded))
		}
	})
}

func TestReconciliationPipelineAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	transactionRepo := NewTransactionRepository(db)
	settlementRepo := NewSettlementRepository(db)
	discrepancyRepo := NewDiscrepancyRepository(db)
	reportRepo := NewReportRepository(db)

	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan12 := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	// Clean pair, amount mismatch, missing settlement and a duplicate.
	clean := storedTransaction("TXN-001", 1000, "BRL", "payflow", jan10)
	mismatched := storedTransaction("TXN-002", 2000, "BRL", "payflow", jan10)
	missing := storedTransaction("TXN-003", 10000, "BRL", "payflow",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	duplicated := storedTransaction("TXN-004", 500, "BRL", "payflow", jan10)

	for _, txn := range []*entity.ExpectedTransaction{clean, mismatched, missing, duplicated} {
		if err := transactionRepo.Create(ctx, txn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	cleanStl := storedSettlement("TXN-001", 1025.64, 25.64, "BRL", "payflow", jan12)
	mismatchedStl := storedSettlement("TXN-002", 1975, 25, "BRL", "payflow", jan12)
	dupA := storedSettlement("TXN-004", 512.82, 12.82, "BRL", "payflow", jan12)
	dupB := storedSettlement("TXN-004", 512.82, 12.82, "BRL", "payflow", jan12.Add(24*time.Hour))

	for _, entry := range []*entity.SettlementEntry{cleanStl, mismatchedStl, dupA, dupB} {
		if err := settlementRepo.Create(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	engine := reconciliation.NewRunReconciliationUseCase(
		transactionRepo, settlementRepo, discrepancyRepo, reportRepo,
		valueobject.DefaultReconciliationConfig(),
	)

	report, err := engine.Execute(ctx, reconciliation.RunReconciliationInput{
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != entity.ReportStatusCompleted {
		t.Errorf("expected completed, got %s", report.Status)
	}
	if report.TotalTransactions != 4 {
		t.Errorf("expected 4 transactions, got %d", report.TotalTransactions)
	}
	if report.MatchedCount != 3 {
		t.Errorf("expected 3 matched pairs, got %d", report.MatchedCount)
	}
	if report.MissingCount != 1 {
		t.Errorf("expected 1 missing settlement, got %d", report.MissingCount)
	}
	// amount mismatch + missing settlement + duplicate settlement
	if report.DiscrepancyCount != 3 {
		t.Errorf("expected 3 discrepancies, got %d", report.DiscrepancyCount)
	}

	persisted, err := reportRepo.FindByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persisted == nil || persisted.Status != entity.ReportStatusCompleted {
		t.Fatal("expected the completed report to be stored")
	}
	if persisted.Summary == nil {
		t.Fatal("expected the summary to survive the round-trip")
	}
	if persisted.Summary.ByType["amount_mismatch"] != 1 ||
		persisted.Summary.ByType["missing_settlement"] != 1 ||
		persisted.Summary.ByType["duplicate_settlement"] != 1 {
		t.Errorf("unexpected by_type summary: %+v", persisted.Summary.ByType)
	}

	linked, err := discrepancyRepo.FindByReport(ctx, report.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(linked) != 3 {
		t.Errorf("expected 3 stored discrepancies, got %d", len(linked))
	}

	severity := entity.SeverityCritical
	filtered, err := discrepancyRepo.FindByFilter(ctx,
		adapter.DiscrepancyFilter{Severity: &severity},
		adapter.DiscrepancyPagination{Page: 1, Limit: 50},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The 10000 BRL missing settlement is a 2000 USD impact.
	if filtered.Total != 1 {
		t.Errorf("expected 1 critical discrepancy, got %d", filtered.Total)
	}
}
