package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/cache"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

func TestInitialize_Defaults(t *testing.T) {
	f := newFakeAPI(t)
	c, rec := newController(t, f, storage.NewMemoryScopes())

	require.NoError(t, c.Initialize(context.Background()))
	assert.Nil(t, c.Session())
	assert.Empty(t, c.Cart())
	assert.Len(t, c.Products(), 3)
	assert.Contains(t, rec.renders, ViewCatalog)
}

func TestInitialize_CorruptCartIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	scopes := storage.NewMemoryScopes()
	require.NoError(t, scopes.Durable.Set(ctx, storage.KeyCart, "[{oops"))

	c, _ := newController(t, f, scopes)
	require.NoError(t, c.Initialize(ctx))
	assert.Empty(t, c.Cart())
}

func TestInitialize_DropsNonPositiveLines(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	scopes := storage.NewMemoryScopes()
	require.NoError(t, scopes.Durable.Set(ctx, storage.KeyCart,
		`[{"productId":7,"size":"40","quantity":2},{"productId":8,"size":"39","quantity":0}]`))

	c, _ := newController(t, f, scopes)
	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, []models.CartLine{{ProductID: 7, Size: "40", Quantity: 2}}, c.Cart())
}

func TestInitialize_RestoresSessionOnlyWithTokenAndUser(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)

	tokenOnly := storage.NewMemoryScopes()
	require.NoError(t, tokenOnly.Token.Set(ctx, storage.KeyAuthToken, "tok"))
	c, _ := newController(t, f, tokenOnly)
	require.NoError(t, c.Initialize(ctx))
	assert.Nil(t, c.Session())

	userOnly := storage.NewMemoryScopes()
	require.NoError(t, storage.SetJSON(ctx, userOnly.Session, storage.KeyCurrentUser, models.User{ID: 1}))
	c, _ = newController(t, f, userOnly)
	require.NoError(t, c.Initialize(ctx))
	assert.Nil(t, c.Session())

	both := storage.NewMemoryScopes()
	require.NoError(t, both.Token.Set(ctx, storage.KeyAuthToken, "tok"))
	require.NoError(t, storage.SetJSON(ctx, both.Session, storage.KeyCurrentUser, models.User{ID: 5, Role: models.RoleAdmin}))
	c, rec := newController(t, f, both)
	require.NoError(t, c.Initialize(ctx))
	require.NotNil(t, c.Session())
	assert.Equal(t, int64(5), c.Session().ID)
	assert.True(t, c.IsAdmin())
	assert.Contains(t, rec.renders, ViewAdmin)

	require.NoError(t, c.RefreshCatalog(ctx))
	assert.Equal(t, "Bearer tok", f.lastAuthorization())
}

func TestRefreshCatalog_FailureKeepsPreviousCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	c, rec := newController(t, f, storage.NewMemoryScopes())
	require.NoError(t, c.Initialize(ctx))

	f.setProducts("")
	err := c.RefreshCatalog(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.Equal(t, "API Error: 503 Service Unavailable", err.Error())
	assert.Len(t, c.Products(), 3)
	assert.Contains(t, rec.notices, "error: Failed to load products")

	f.setProducts(`[{"id":1,"name":"Only"}]`)
	require.NoError(t, c.RefreshCatalog(ctx))
	assert.Len(t, c.Products(), 1, "full replace, not merge")
}

func TestRefreshCatalog_CacheFallback(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(mr.Addr(), "")
	require.NoError(t, err)
	defer rc.Close()
	cc := cache.NewCatalogCache(rc, 0)

	f := newFakeAPI(t)
	warm, _ := newController(t, f, storage.NewMemoryScopes(), WithCatalogCache(cc))
	require.NoError(t, warm.Initialize(ctx))

	f.setProducts("")
	cold, _ := newController(t, f, storage.NewMemoryScopes(), WithCatalogCache(cc))
	err = cold.Initialize(ctx)
	require.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Len(t, cold.Products(), 3, "served from cache")
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	f.loginReply(200, customerReply)
	scopes := storage.NewMemoryScopes()
	c, _ := newController(t, f, scopes)

	_, err := c.Authenticate(ctx, models.Credentials{Email: "awa@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, c.Session())

	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Session())
	_, ok, _ := scopes.Token.Get(ctx, storage.KeyAuthToken)
	assert.False(t, ok)
	_, ok, _ = scopes.Session.Get(ctx, storage.KeyCurrentUser)
	assert.False(t, ok)

	fresh, _ := newController(t, f, scopes)
	require.NoError(t, fresh.Initialize(ctx))
	assert.Nil(t, fresh.Session())
}

func TestTokenRoundTripThroughInitialize(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	f.loginReply(200, customerReply)
	scopes := storage.NewMemoryScopes()

	c, _ := newController(t, f, scopes)
	_, err := c.Authenticate(ctx, models.Credentials{Email: "awa@example.com"})
	require.NoError(t, err)

	fresh, _ := newController(t, f, scopes)
	require.NoError(t, fresh.Initialize(ctx))
	require.NotNil(t, fresh.Session())
	assert.Equal(t, "Bearer tok-c", f.lastAuthorization())
}

func TestAsync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})

	task := Async(ctx, func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 42, ctx.Err()
	})

	<-started
	cancel()
	close(release)

	v, err := task.Wait()
	require.NoError(t, err, "cancelling the caller does not cancel an issued task")
	assert.Equal(t, 42, v)
	<-task.Done()
}

func TestAsync_ConcurrentAddsMergeIntoOneLine(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI(t)
	c, _ := newController(t, f, storage.NewMemoryScopes())
	require.NoError(t, c.Initialize(ctx))

	tasks := make([]*Task[struct{}], 10)
	for i := range tasks {
		tasks[i] = Async(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.AddToCart(ctx, 7, "41", 1)
		})
	}
	for _, task := range tasks {
		_, err := task.Wait()
		require.NoError(t, err)
	}

	require.Len(t, c.Cart(), 1)
	assert.Equal(t, 10, c.CartCount())
	assert.True(t, c.ComputeCartTotal().Equal(decimal.NewFromInt(10000)))
}
