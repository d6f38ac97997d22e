//go:build integration

// Package integration exercises the full HTTP API against an in-memory
// database: ingestion, reconciliation, and the reporting surface.
package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/juandarn/fleximarket-reconciler/config"
	"github.com/juandarn/fleximarket-reconciler/internal/infra/dependency"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("ENV", "test")

	// A single shared connection keeps every session on the same in-memory
	// database, including the async job goroutine.
	sqlDB, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.ExpectedTransactionModel{},
		&model.SettlementEntryModel{},
		&model.DiscrepancyModel{},
		&model.ReconciliationReportModel{},
	); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Redis.Enabled = false

	injector := dependency.NewInjector(cfg, db)
	return injector.Router.Setup("test")
}

func performRequest(engine *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func multipartFile(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

const transactionsJSON = `[
	{
		"transaction_id": "TXN-BR-2024-000001",
		"amount": 1000.00,
		"currency": "BRL",
		"expected_fee_percent": 2.5,
		"expected_net_amount": 975.00,
		"processor_name": "PayFlow",
		"country": "BR",
		"transaction_date": "2024-01-10",
		"status": "captured"
	},
	{
		"transaction_id": "TXN-BR-2024-000002",
		"amount": 2000.00,
		"currency": "BRL",
		"expected_fee_percent": 2.5,
		"expected_net_amount": 1950.00,
		"processor_name": "PayFlow",
		"country": "BR",
		"transaction_date": "2024-01-11",
		"status": "captured"
	}
]`

// The second row settles 50 BRL short of the expected net, with the fee
// still at the expected 2.5%, so exactly one amount mismatch comes out of a
// run over this data.
const settlementCSV = `settlement_id,transaction_ref,txn_date,settle_date,original_amount,currency,processing_fee,interchange_fee,net_amount,status
PF-2024-0001,TXN-BR-2024-000001,2024-01-10,2024-01-12,1000.00,BRL,20.00,5.00,975.00,SETTLED
PF-2024-0002,TXN-BR-2024-000002,2024-01-11,2024-01-13,2000.00,BRL,40.00,10.00,1900.00,SETTLED
`

func TestReconciliationAPI(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("health check reports connected database", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/health", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["database"] != "connected" {
			t.Errorf("expected database connected, got %v", payload["database"])
		}
	})

	t.Run("loads expected transactions", func(t *testing.T) {
		body, contentType := multipartFile(t, "transactions.json", []byte(transactionsJSON))
		recorder := performRequest(engine, http.MethodPost, "/api/v1/settlement/load-transactions", body, contentType)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["status"] != "success" || payload["saved"] != float64(2) {
			t.Errorf("unexpected load result: %v", payload)
		}
	})

	t.Run("uploads a settlement file", func(t *testing.T) {
		body, contentType := multipartFile(t, "payflow_jan.csv", []byte(settlementCSV))
		recorder := performRequest(engine, http.MethodPost, "/api/v1/settlement/upload?processor=payflow", body, contentType)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["status"] != "success" || payload["entries_saved"] != float64(2) {
			t.Errorf("unexpected upload result: %v", payload)
		}
	})

	t.Run("rejects an unknown processor", func(t *testing.T) {
		body, contentType := multipartFile(t, "other.csv", []byte(settlementCSV))
		recorder := performRequest(engine, http.MethodPost, "/api/v1/settlement/upload?processor=legacypay", body, contentType)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("lists settlement entries", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/settlement/entries?processor=payflow", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["total"] != float64(2) {
			t.Errorf("expected 2 entries, got %v", payload["total"])
		}
	})

	t.Run("runs reconciliation synchronously", func(t *testing.T) {
		request := bytes.NewBufferString(`{"date_from": "2024-01-01", "date_to": "2024-01-31"}`)
		recorder := performRequest(engine, http.MethodPost, "/api/v1/reconciliation/run", request, "application/json")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["status"] != "completed" {
			t.Errorf("expected completed run, got %v", payload["status"])
		}
		if payload["total_transactions"] != float64(2) || payload["matched_count"] != float64(2) {
			t.Errorf("unexpected counts: %v", payload)
		}
		if payload["discrepancy_count"] != float64(1) {
			t.Errorf("expected 1 discrepancy, got %v", payload["discrepancy_count"])
		}
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		request := bytes.NewBufferString(`{"date_from": "2024-02-01", "date_to": "2024-01-01"}`)
		recorder := performRequest(engine, http.MethodPost, "/api/v1/reconciliation/run", request, "application/json")
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("lists reports and resolves the latest", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/reconciliation/reports", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var reports []map[string]any
		if err := json.Unmarshal(recorder.Body.Bytes(), &reports); err != nil {
			t.Fatalf("failed to decode reports: %v", err)
		}
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}

		latest := performRequest(engine, http.MethodGet, "/api/v1/reconciliation/report?date_from=2024-01-01", nil, "")
		if latest.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", latest.Code, latest.Body.String())
		}
		latestPayload := decodeJSON(t, latest)
		if latestPayload["id"] != reports[0]["id"] {
			t.Errorf("latest report mismatch: %v vs %v", latestPayload["id"], reports[0]["id"])
		}

		detail := performRequest(engine, http.MethodGet, "/api/v1/reconciliation/reports/"+reports[0]["id"].(string), nil, "")
		if detail.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", detail.Code, detail.Body.String())
		}
	})

	t.Run("summarizes discrepancies", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/discrepancies/summary", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["total_count"] != float64(1) {
			t.Errorf("expected 1 discrepancy, got %v", payload["total_count"])
		}
		byType := payload["by_type"].(map[string]any)
		if byType["amount_mismatch"] != float64(1) {
			t.Errorf("expected one amount_mismatch, got %v", byType)
		}
	})

	t.Run("filters discrepancies by severity", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/discrepancies?severity=medium", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["total"] != float64(1) {
			t.Errorf("expected 1 medium discrepancy, got %v", payload["total"])
		}
	})

	t.Run("reports transaction status", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/transactions/TXN-BR-2024-000002/status", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["settlement_count"] != float64(1) || payload["discrepancy_count"] != float64(1) {
			t.Errorf("unexpected status payload: %v", payload)
		}

		missing := performRequest(engine, http.MethodGet, "/api/v1/transactions/TXN-XX-0000-000000/status", nil, "")
		if missing.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown transaction, got %d", missing.Code)
		}
	})

	t.Run("produces the currency report", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/reports/currency", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		if payload["target_currency"] != "USD" {
			t.Errorf("expected USD target, got %v", payload["target_currency"])
		}
		// 50 BRL short at 0.20 BRL/USD
		impact, _ := payload["total_impact"].(string)
		if parsed, err := strconv.ParseFloat(impact, 64); err != nil || parsed != 10 {
			t.Errorf("expected total impact 10 USD, got %v", payload["total_impact"])
		}
	})

	t.Run("produces the fee report", func(t *testing.T) {
		recorder := performRequest(engine, http.MethodGet, "/api/v1/fees/report", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		patterns := payload["fee_patterns"].(map[string]any)
		if _, ok := patterns["PayFlow"]; !ok {
			t.Errorf("expected PayFlow fee patterns, got %v", patterns)
		}
	})

	t.Run("runs reconciliation asynchronously", func(t *testing.T) {
		request := bytes.NewBufferString(`{"date_from": "2024-01-01", "date_to": "2024-01-31"}`)
		recorder := performRequest(engine, http.MethodPost, "/api/v1/reconciliation/run-async", request, "application/json")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		payload := decodeJSON(t, recorder)
		jobID, ok := payload["job_id"].(string)
		if !ok || jobID == "" {
			t.Fatalf("expected a job ID, got %v", payload)
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			poll := performRequest(engine, http.MethodGet, "/api/v1/reconciliation/jobs/"+jobID, nil, "")
			if poll.Code != http.StatusOK {
				t.Fatalf("expected 200 polling job, got %d: %s", poll.Code, poll.Body.String())
			}
			jobPayload := decodeJSON(t, poll)
			if jobPayload["status"] == "completed" {
				if jobPayload["report_id"] == nil {
					t.Error("expected completed job to carry a report ID")
				}
				break
			}
			if jobPayload["status"] == "failed" {
				t.Fatalf("job failed: %v", jobPayload["error"])
			}
			if time.Now().After(deadline) {
				t.Fatalf("job did not complete in time, last status %v", jobPayload["status"])
			}
			time.Sleep(10 * time.Millisecond)
		}

		jobs := performRequest(engine, http.MethodGet, "/api/v1/reconciliation/jobs", nil, "")
		if jobs.Code != http.StatusOK {
			t.Fatalf("expected 200 listing jobs, got %d", jobs.Code)
		}
		jobsPayload := decodeJSON(t, jobs)
		if list, ok := jobsPayload["jobs"].([]any); !ok || len(list) != 1 {
			t.Errorf("expected 1 tracked job, got %v", jobsPayload["jobs"])
		}
	})
}
