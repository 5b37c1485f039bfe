package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/thetechguyfromvietnam/lolibub/internal/handler"
	"github.com/thetechguyfromvietnam/lolibub/internal/menu"
)

type mockMenuProvider struct {
	menu *menu.Menu
	err  error
}

func (m *mockMenuProvider) Menu() (*menu.Menu, error) {
	return m.menu, m.err
}

func setupMenuRouter(p handler.MenuProvider) *chi.Mux {
	h := handler.NewMenuHandler(p)
	r := chi.NewRouter()
	r.Route("/menu", h.RegisterRoutes)
	return r
}

func TestGetMenu(t *testing.T) {
	provider := &mockMenuProvider{
		menu: &menu.Menu{
			Categories: []menu.Category{
				{
					Name: "Trà Trái Cây",
					Items: []menu.Item{
						{Name: "Trà Đào", Price: decimal.NewFromInt(25000)},
					},
				},
			},
		},
	}
	router := setupMenuRouter(provider)

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rr)
	categories, ok := resp["categories"].([]interface{})
	if !ok || len(categories) != 1 {
		t.Fatalf("expected 1 category, got %v", resp["categories"])
	}
}

func TestGetMenu_SourceUnreadable(t *testing.T) {
	provider := &mockMenuProvider{err: errors.New("no such file")}
	router := setupMenuRouter(provider)

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	resp := decodeResponse(t, rr)
	if resp["error"] == nil {
		t.Errorf("expected error field in response")
	}
}
