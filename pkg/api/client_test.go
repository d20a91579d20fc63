package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, storage.Scope) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tokens := storage.NewMemoryScope()
	return NewClient(srv.URL+"/api", tokens, WithHTTPClient(srv.Client())), tokens
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestRequest_PlainTextSuccessReturnedVerbatim(t *testing.T) {
	for _, body := range []string{"Connexion réussie. Token : Bearer abc", "ok", "  ", "<html>hi</html>", "{broken"} {
		c, _ := newTestClient(t, reply(http.StatusOK, body))

		res, err := c.Request(context.Background(), "/x", RequestOptions{})
		require.NoError(t, err)
		text, ok := res.Text()
		assert.True(t, ok)
		assert.Equal(t, body, text)
	}
}

func TestRequest_JSONSuccess(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusCreated, `{"reference":"CMD-1"}`))

	res, err := c.Request(context.Background(), "/commandes", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	assert.Equal(t, Structured, res.Kind())

	var order models.Order
	require.NoError(t, res.Decode(&order))
	assert.Equal(t, "CMD-1", order.Reference)
}

func TestRequest_EmptySuccessIsNull(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusNoContent, ""))

	res, err := c.Request(context.Background(), "/x", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.True(t, res.IsNull())
}

func TestRequest_JSONFailureUsesMessageField(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusConflict, `{"message":"Email déjà utilisé","code":7}`))

	_, err := c.Request(context.Background(), "/users/creerutilisateur", RequestOptions{Method: http.MethodPost})
	require.Error(t, err)
	assert.Equal(t, "Email déjà utilisé", err.Error())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, apiErr.IsNetwork())
}

func TestRequest_JSONFailureWithoutMessage(t *testing.T) {
	for _, body := range []string{`{"error":"nope"}`, `[]`, `{"message":""}`, `{"message":null}`, `42`} {
		c, _ := newTestClient(t, reply(http.StatusNotFound, body))

		_, err := c.Request(context.Background(), "/x", RequestOptions{})
		require.Error(t, err)
		assert.Equal(t, "API Error: 404 Not Found", err.Error(), body)
	}
}

func TestRequest_TextFailure(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusUnauthorized, "Échec de connexion : identifiants invalides."))
	_, err := c.Request(context.Background(), "/auth/login", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, "Échec de connexion : identifiants invalides.", err.Error())

	c, _ = newTestClient(t, reply(http.StatusInternalServerError, ""))
	_, err = c.Request(context.Background(), "/auth/login", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, "API Error: 500 Internal Server Error", err.Error())
}

func TestRequest_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(reply(http.StatusOK, "{}"))
	url := srv.URL
	srv.Close()

	c := NewClient(url+"/api", storage.NewMemoryScope())
	_, err := c.Request(context.Background(), "/x", RequestOptions{})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNetwork())
	assert.Contains(t, err.Error(), "Network error")
}

func TestRequest_HeadersAndBody(t *testing.T) {
	type seen struct {
		contentType, auth, custom, body, method string
	}
	var got seen
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = seen{r.Header.Get("Content-Type"), r.Header.Get("Authorization"), r.Header.Get("X-Trace"), string(b), r.Method}
		io.WriteString(w, "{}")
	})
	ctx := context.Background()

	_, err := c.Request(ctx, "/x", RequestOptions{Method: http.MethodPost, Body: map[string]int{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.contentType)
	assert.Empty(t, got.auth, "no token held")
	assert.JSONEq(t, `{"a":1}`, got.body)
	assert.Equal(t, http.MethodPost, got.method)

	require.NoError(t, c.SetToken(ctx, "tok"))
	_, err = c.Request(ctx, "/x", RequestOptions{Method: http.MethodPost, Body: `{"raw":true}`, Headers: map[string]string{"X-Trace": "1"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, `{"raw":true}`, got.body, "string bodies pass through")
	assert.Equal(t, "1", got.custom)

	_, err = c.Request(ctx, "/x", RequestOptions{Headers: map[string]string{"Content-Type": "text/plain", "Authorization": "Basic zzz"}})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got.contentType, "caller headers override defaults")
	assert.Equal(t, "Basic zzz", got.auth)
	assert.Equal(t, http.MethodGet, got.method)
}

func TestRequest_SpaceEncoding(t *testing.T) {
	var uri string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		uri = r.RequestURI
		io.WriteString(w, "{}")
	})

	assert.Equal(t, "http://h/api/users/recupere%20tous", NewClient("http://h/api", nil).URL("/users/recupere tous"))

	_, err := c.UpdateProduct(context.Background(), 5, models.ProductInput{Name: "Boot"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/mettre%20%C3%A0%20jour%20un%20produit/5", uri)
}

func TestToken_PersistAndClear(t *testing.T) {
	ctx := context.Background()
	tokens := storage.NewMemoryScope()

	c := NewClient("http://h/api", tokens)
	require.NoError(t, c.SetToken(ctx, "abc"))
	assert.Equal(t, "abc", c.Token())

	fresh := NewClient("http://h/api", tokens)
	assert.Empty(t, fresh.Token(), "a new client holds nothing until told to")
	tok, ok, err := fresh.StoredToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	require.NoError(t, c.ClearToken(ctx))
	assert.Empty(t, c.Token())
	_, ok, err = NewClient("http://h/api", tokens).StoredToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEndpoints(t *testing.T) {
	var method, path string
	var body []byte
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/api/products/listertoutlesproduit":
			io.WriteString(w, `[{"id":1,"name":"Runner","price":45000,"size":"40,41","featured":true}]`)
		case "/api/users/recuperetouslesutilisateur":
			io.WriteString(w, `[{"id":1,"email":"a@b.c","role":"admin"},{"id":2,"email":"d@e.f","role":"customer"}]`)
		case "/api/products/obtenirunproduitparsonid/1":
			io.WriteString(w, `{"id":1,"name":"Runner"}`)
		case "/api/commandes":
			if r.Method == http.MethodGet {
				io.WriteString(w, `[{"reference":"CMD-1","status":"En attente"}]`)
				return
			}
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"reference":"CMD-2"}`)
		case "/api/commandes/CMD-1":
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			io.WriteString(w, `{"reference":"CMD-1","totalAmount":3000}`)
		default:
			io.WriteString(w, "ok")
		}
	})
	ctx := context.Background()

	products, err := c.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Featured)
	assert.Equal(t, []string{"40", "41"}, products[0].Sizes())

	p, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Runner", p.Name)

	_, err = c.Login(ctx, models.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/login", path)
	assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, string(body))

	_, err = c.CreateUser(ctx, models.Registration{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "/api/users/creerutilisateur", path)

	_, err = c.CreateProduct(ctx, models.ProductInput{Name: "Boot"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/creerproduit", path)

	_, err = c.DeleteProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/products/supprimerunproduit/3", path)

	res, err := c.CreateOrder(ctx, models.Order{Reference: "CMD-2"})
	require.NoError(t, err)
	var created models.Order
	require.NoError(t, res.Decode(&created))
	assert.Equal(t, "CMD-2", created.Reference)
	var sent models.Order
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "CMD-2", sent.Reference)

	orders, err := c.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order, err := c.GetOrder(ctx, "CMD-1")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, order.TotalAmount)

	_, err = c.DeleteOrder(ctx, "CMD-1")
	require.NoError(t, err)

	users, err := c.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].IsAdmin())
	assert.False(t, users[1].IsAdmin())
}

func TestGetAllProducts_PlainTextIsAnError(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusOK, "maintenance"))

	_, err := c.GetAllProducts(context.Background())
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.IsNetwork())
}
