package storefront

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

// fakeAPI is a scriptable stand-in for the commerce API
type fakeAPI struct {
	srv   *httptest.Server
	calls atomic.Int32

	mu       sync.Mutex
	products string // JSON array, or "" to fail the catalog fetch
	login    func(w http.ResponseWriter, body []byte)
	register func(w http.ResponseWriter, body []byte)
	orders   []models.Order
	created  []models.ProductInput
	deleted  []string
	authz    []string
	orderErr bool
	onOrder  func() // runs while the order request is in flight
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{products: `[
		{"id":7,"name":"Trail Runner","category":"sport","price":1000,"stock":5,"size":"40, 41, 42","featured":true},
		{"id":8,"name":"City Loafer","category":"ville","price":25000,"stock":2,"size":"39,40"},
		{"id":9,"name":"Beach Sandal","category":"sport","price":150000,"stock":0,"size":""}
	]`}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.authz = append(f.authz, r.Header.Get("Authorization"))

	switch {
	case r.URL.Path == "/api/products/listertoutlesproduit":
		if f.products == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, f.products)
	case r.URL.Path == "/api/auth/login":
		f.login(w, body)
	case r.URL.Path == "/api/users/creerutilisateur":
		f.register(w, body)
	case r.URL.Path == "/api/users/recuperetouslesutilisateur":
		io.WriteString(w, `[{"id":1},{"id":2},{"id":3}]`)
	case r.URL.Path == "/api/commandes" && r.Method == http.MethodPost:
		if f.orderErr {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"message":"Stock insuffisant"}`)
			return
		}
		if f.onOrder != nil {
			f.onOrder()
		}
		var o models.Order
		json.Unmarshal(body, &o)
		f.orders = append(f.orders, o)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(o)
	case r.URL.Path == "/api/commandes":
		json.NewEncoder(w).Encode(f.orders)
	case r.URL.Path == "/api/products/creerproduit":
		var p models.ProductInput
		json.Unmarshal(body, &p)
		f.created = append(f.created, p)
		io.WriteString(w, `{"id":10}`)
	default:
		if r.Method == http.MethodDelete {
			f.deleted = append(f.deleted, r.URL.Path)
			io.WriteString(w, "Produit supprimé")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) lastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.authz) == 0 {
		return ""
	}
	return f.authz[len(f.authz)-1]
}

func (f *fakeAPI) placedOrders() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order(nil), f.orders...)
}

func (f *fakeAPI) setProducts(products string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
}

func (f *fakeAPI) loginReply(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func (f *fakeAPI) registerReply(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.register = func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

const (
	customerReply = `{"success":true,"token":"tok-c","user":{"id":42,"firstName":"Awa","email":"awa@example.com","role":"customer"}}`
	adminReply    = `{"success":true,"token":"tok-a","user":{"id":1,"firstName":"Root","email":"admin@example.com","role":"admin"}}`
)

// recorder captures what the controller asks the presentation layer to do
type recorder struct {
	mu      sync.Mutex
	notices []string
	renders []View
}

func (r *recorder) Notify(kind NoticeKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, string(kind)+": "+message)
}

func (r *recorder) Render(view View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, view)
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newController(t *testing.T, f *fakeAPI, scopes storage.Scopes, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	client := api.NewClient(f.srv.URL+"/api", scopes.Token, api.WithHTTPClient(f.srv.Client()))
	opts = append([]Option{WithNotifier(rec), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(client, scopes, opts...), rec
}
