package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/thetechguyfromvietnam/lolibub/internal/handler"
	"github.com/thetechguyfromvietnam/lolibub/internal/notify"
	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// --- Mocks ---

type mockNotifier struct {
	err      error
	zaloLink string

	mu      sync.Mutex
	calls   int
	lastRec *order.Record
	lastMsg string
}

func (m *mockNotifier) Dispatch(_ context.Context, rec *order.Record, message string) (notify.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastRec = rec
	m.lastMsg = message
	return notify.Result{ZaloLink: m.zaloLink}, m.err
}

type mockProofStore struct {
	saveErr error

	mu    sync.Mutex
	seq   int
	files map[string]bool // path -> exists
}

func newMockProofStore() *mockProofStore {
	return &mockProofStore{files: make(map[string]bool)}
}

func (m *mockProofStore) Save(_ multipart.File, header *multipart.FileHeader) (string, string, error) {
	if m.saveErr != nil {
		return "", "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	name := fmt.Sprintf("proof-%d.jpg", m.seq)
	path := "/uploads/" + name
	m.files[path] = true
	return name, path, nil
}

func (m *mockProofStore) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *mockProofStore) stored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type mockOrderLog struct {
	err     error
	records []*order.Record
}

func (m *mockOrderLog) Write(rec *order.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

// --- Helpers ---

func setupOrderRouter(n *mockNotifier, p *mockProofStore, l *mockOrderLog) *chi.Mux {
	h := handler.NewOrderHandler(n, p, l)
	r := chi.NewRouter()
	r.Route("/orders", h.RegisterRoutes)
	return r
}

const validItems = `[{"name":"Trà Đào","price":25000,"quantity":2,"category":"Trà Trái Cây"}]`

func validFields() map[string]string {
	return map[string]string{
		"customerName":  "An",
		"phone":         "0900000000",
		"address":       "X",
		"paymentMethod": "cash",
		"items":         validItems,
		"total":         "50000",
	}
}

func doMultipartRequest(t *testing.T, router http.Handler, fields map[string]string, fileName string, fileData []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="paymentProof"; filename=%q`, fileName))
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/orders", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestCreateOrder_CashSuccess(t *testing.T) {
	notifier := &mockNotifier{zaloLink: "https://zalo.me/0901234567?text=x"}
	proofs := newMockProofStore()
	orderLog := &mockOrderLog{}
	router := setupOrderRouter(notifier, proofs, orderLog)

	rr := doMultipartRequest(t, router, validFields(), "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Errorf("success: got %v, want true", resp["success"])
	}
	if resp["zaloLink"] != "https://zalo.me/0901234567?text=x" {
		t.Errorf("zaloLink: got %v", resp["zaloLink"])
	}

	msg, _ := resp["orderMessage"].(string)
	for _, want := range []string{"Trà Đào", "2", "50.000", "Tiền mặt khi nhận hàng"} {
		if !strings.Contains(msg, want) {
			t.Errorf("orderMessage missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Đã nhận chứng từ chuyển khoản") {
		t.Errorf("cash order must not carry a bank-transfer confirmation:\n%s", msg)
	}

	if notifier.calls != 1 {
		t.Errorf("notifier calls: got %d, want 1", notifier.calls)
	}
	if len(orderLog.records) != 1 {
		t.Errorf("order log records: got %d, want 1", len(orderLog.records))
	}
	if orderLog.records[0].Timestamp.IsZero() {
		t.Errorf("order record must carry an acceptance timestamp")
	}
}

func TestCreateOrder_BankTransferRequiresProof(t *testing.T) {
	notifier := &mockNotifier{}
	router := setupOrderRouter(notifier, newMockProofStore(), &mockOrderLog{})

	fields := validFields()
	fields["paymentMethod"] = "bank_transfer"

	rr := doMultipartRequest(t, router, fields, "", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if !strings.Contains(resp["error"].(string), "chứng từ") {
		t.Errorf("expected proof-required message, got %v", resp["error"])
	}
	if notifier.calls != 0 {
		t.Errorf("notifier must not be called on validation failure")
	}
}

func TestCreateOrder_DefaultMethodIsBankTransfer(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	fields := validFields()
	delete(fields, "paymentMethod")

	rr := doMultipartRequest(t, router, fields, "", nil)

	// No method given, no proof uploaded: bank transfer default kicks in
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestCreateOrder_BankTransferWithProof(t *testing.T) {
	notifier := &mockNotifier{}
	proofs := newMockProofStore()
	router := setupOrderRouter(notifier, proofs, &mockOrderLog{})

	fields := validFields()
	fields["paymentMethod"] = "bank_transfer"

	rr := doMultipartRequest(t, router, fields, "receipt.jpg", []byte("fake-image"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if proofs.stored() != 1 {
		t.Errorf("proof must be kept after a delivered order, stored=%d", proofs.stored())
	}
	if notifier.lastRec.PaymentProof == "" {
		t.Errorf("record must reference the stored proof filename")
	}

	msg := notifier.lastMsg
	if !strings.Contains(msg, "Đã nhận chứng từ chuyển khoản") {
		t.Errorf("composed message missing proof confirmation:\n%s", msg)
	}
}

func TestCreateOrder_MalformedItemsJSON(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	fields := validFields()
	fields["items"] = "not-json"

	rr := doMultipartRequest(t, router, fields, "", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "Danh sách món không hợp lệ" {
		t.Errorf("malformed items must get their own message, got %v", resp["error"])
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	fields := validFields()
	fields["items"] = "[]"

	rr := doMultipartRequest(t, router, fields, "", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rr)
	if resp["error"] == "Danh sách món không hợp lệ" {
		t.Errorf("empty cart must be distinct from malformed items")
	}
}

func TestCreateOrder_MissingCustomerInfo(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	for _, field := range []string{"customerName", "phone", "address"} {
		fields := validFields()
		delete(fields, field)

		rr := doMultipartRequest(t, router, fields, "", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("missing %s: status got %d, want %d", field, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestCreateOrder_NotificationFailureCleansUpProof(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("webhook down")}
	proofs := newMockProofStore()
	orderLog := &mockOrderLog{}
	router := setupOrderRouter(notifier, proofs, orderLog)

	fields := validFields()
	fields["paymentMethod"] = "bank_transfer"

	rr := doMultipartRequest(t, router, fields, "receipt.jpg", []byte("fake-image"))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadGateway, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["success"] != false {
		t.Errorf("success: got %v, want false", resp["success"])
	}
	if proofs.stored() != 0 {
		t.Errorf("undelivered order must not leave an orphaned proof, stored=%d", proofs.stored())
	}
	if len(orderLog.records) != 0 {
		t.Errorf("undelivered order must not be logged")
	}
}

func TestCreateOrder_ValidationFailureCleansUpProof(t *testing.T) {
	proofs := newMockProofStore()
	router := setupOrderRouter(&mockNotifier{}, proofs, &mockOrderLog{})

	fields := validFields()
	delete(fields, "address")

	rr := doMultipartRequest(t, router, fields, "receipt.jpg", []byte("fake-image"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if proofs.stored() != 0 {
		t.Errorf("rejected order must not leave an orphaned proof, stored=%d", proofs.stored())
	}
}

func TestCreateOrder_OrderLogFailureStillSucceeds(t *testing.T) {
	orderLog := &mockOrderLog{err: errors.New("disk full")}
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), orderLog)

	rr := doMultipartRequest(t, router, validFields(), "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("order log failure must not change the response, got %d", rr.Code)
	}
}

func TestCreateOrder_MissingTotalRecomputed(t *testing.T) {
	notifier := &mockNotifier{}
	router := setupOrderRouter(notifier, newMockProofStore(), &mockOrderLog{})

	fields := validFields()
	delete(fields, "total")

	rr := doMultipartRequest(t, router, fields, "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := notifier.lastRec.Total.String(); got != "50000" {
		t.Errorf("recomputed total: got %s, want 50000", got)
	}
}

func TestCreateOrder_WrongMethod(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestCreateOrder_NonMultipartBody(t *testing.T) {
	router := setupOrderRouter(&mockNotifier{}, newMockProofStore(), &mockOrderLog{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
