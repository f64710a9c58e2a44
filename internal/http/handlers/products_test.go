package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
)

func pathID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func decodeProduct(t *testing.T, w *httptest.ResponseRecorder) product.Product {
	t.Helper()

	var p product.Product

	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode product: %v (body %s)", err, w.Body.String())
	}

	return p
}

func TestCreateProductHandler(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid with owner",
			body:       `{"name":"Widget","price":19.99,"ownerId":` + strconv.FormatInt(alice.ID, 10) + `}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "valid without owner",
			body:       `{"name":"Orphan","price":0}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "negative price",
			body:       `{"name":"Widget","price":-1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"price":5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown owner",
			body:       `{"name":"Widget","price":5,"ownerId":999}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/api/products", "alice@example.com", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCreateProductHandlerOwnerName(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)

	body := `{"name":"Widget","price":5,"ownerId":` + strconv.FormatInt(alice.ID, 10) + `}`

	w := srv.do(http.MethodPost, "/api/products", "alice@example.com", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	p := decodeProduct(t, w)

	if p.OwnerName != "Alice" {
		t.Fatalf("owner name = %q, want Alice", p.OwnerName)
	}
}

func TestListProductsHandlerAdminGate(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "Admin", "admin@example.com", user.RoleAdmin)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)
	srv.seedProduct(t, "Widget", 5, &alice.ID)

	if w := srv.do(http.MethodGet, "/api/products", "admin@example.com", ""); w.Code != http.StatusOK {
		t.Fatalf("admin list status = %d (body %s)", w.Code, w.Body.String())
	}

	if w := srv.do(http.MethodGet, "/api/products", "alice@example.com", ""); w.Code != http.StatusForbidden {
		t.Fatalf("user list status = %d, want 403", w.Code)
	}
}

func TestListMyProductsHandler(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)
	bob := srv.seedUser(t, "Bob", "bob@example.com", user.RoleUser)

	first := srv.seedProduct(t, "Mine 1", 1, &alice.ID)
	srv.seedProduct(t, "Not mine", 2, &bob.ID)
	second := srv.seedProduct(t, "Mine 2", 3, &alice.ID)

	w := srv.do(http.MethodGet, "/api/products/my-products", "alice@example.com", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Items []product.Product `json:"items"`
		Count int               `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Fatalf("count = %d, items = %d, want 2", resp.Count, len(resp.Items))
	}

	if resp.Items[0].ID != first.ID || resp.Items[1].ID != second.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", resp.Items[0].ID, resp.Items[1].ID, first.ID, second.ID)
	}
}

func TestGetProductByIdHandler(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "Admin", "admin@example.com", user.RoleAdmin)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)
	srv.seedUser(t, "Bob", "bob@example.com", user.RoleUser)

	owned := srv.seedProduct(t, "Widget", 5, &alice.ID)
	orphan := srv.seedProduct(t, "Orphan", 5, nil)

	tests := []struct {
		name       string
		path       string
		asEmail    string
		wantStatus int
	}{
		{name: "owner reads own", path: pathID("/api/products/", owned.ID), asEmail: "alice@example.com", wantStatus: http.StatusOK},
		{name: "admin reads any", path: pathID("/api/products/", owned.ID), asEmail: "admin@example.com", wantStatus: http.StatusOK},
		{name: "non-owner denied", path: pathID("/api/products/", owned.ID), asEmail: "bob@example.com", wantStatus: http.StatusForbidden},
		{name: "ownerless denied for user", path: pathID("/api/products/", orphan.ID), asEmail: "alice@example.com", wantStatus: http.StatusForbidden},
		{name: "ownerless allowed for admin", path: pathID("/api/products/", orphan.ID), asEmail: "admin@example.com", wantStatus: http.StatusOK},
		{name: "missing product", path: "/api/products/999", asEmail: "alice@example.com", wantStatus: http.StatusNotFound},
		{name: "bad id", path: "/api/products/abc", asEmail: "alice@example.com", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(http.MethodGet, tc.path, tc.asEmail, "")

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestUpdateProductHandler(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)
	bob := srv.seedUser(t, "Bob", "bob@example.com", user.RoleUser)

	p := srv.seedProduct(t, "Widget", 5, &alice.ID)

	body := `{"name":"Widget v2","price":7.5}`

	if w := srv.do(http.MethodPut, pathID("/api/products/", p.ID), "bob@example.com", body); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update status = %d, want 403", w.Code)
	}

	w := srv.do(http.MethodPut, pathID("/api/products/", p.ID), "alice@example.com", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	got := decodeProduct(t, w)

	if got.Name != "Widget v2" || got.Price != 7.5 {
		t.Fatalf("got %q/%v", got.Name, got.Price)
	}

	// reassign to bob, then alice loses access
	reassign := `{"name":"Widget v2","price":7.5,"ownerId":` + strconv.FormatInt(bob.ID, 10) + `}`

	if w := srv.do(http.MethodPut, pathID("/api/products/", p.ID), "alice@example.com", reassign); w.Code != http.StatusOK {
		t.Fatalf("reassign status = %d (body %s)", w.Code, w.Body.String())
	}

	if w := srv.do(http.MethodGet, pathID("/api/products/", p.ID), "alice@example.com", ""); w.Code != http.StatusForbidden {
		t.Fatalf("status after handover = %d, want 403", w.Code)
	}
}

func TestDeleteProductHandler(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "Alice", "alice@example.com", user.RoleUser)
	srv.seedUser(t, "Bob", "bob@example.com", user.RoleUser)

	p := srv.seedProduct(t, "Widget", 5, &alice.ID)

	if w := srv.do(http.MethodDelete, pathID("/api/products/", p.ID), "bob@example.com", ""); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete status = %d, want 403", w.Code)
	}

	if w := srv.do(http.MethodDelete, pathID("/api/products/", p.ID), "alice@example.com", ""); w.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d (body %s)", w.Code, w.Body.String())
	}

	if w := srv.do(http.MethodGet, pathID("/api/products/", p.ID), "alice@example.com", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", w.Code)
	}
}
