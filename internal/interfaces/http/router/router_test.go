package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func text(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	orders := NewDomainGroup("orders", "/orders").
		GET("", text("list")).
		GET("/:id", text("one"))
	sync := NewDomainGroup("sync", "/sync").
		POST("/run", text("run"))

	NewRouter(engine).Register(orders).Register(sync).Setup()

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/orders", "list"},
		{http.MethodGet, "/api/v1/orders/abc", "one"},
		{http.MethodPost, "/api/v1/sync/run", "run"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/sync/run").Code)
}

func TestRouterMiddlewareScope(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", text("ok"))

	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	}))
	r.Register(NewDomainGroup("orders", "/orders").GET("", text("list")))
	r.Setup()

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/orders").Header().Get("X-API"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-API"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("orders", "/orders")
		assert.Equal(t, "orders", g.Name())
		assert.Equal(t, "/orders", g.Prefix())
	})

	t.Run("group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("sync", "/sync").Use(func(c *gin.Context) {
			c.Header("X-Group", "sync")
			c.Next()
		})
		g.POST("/run", text("run"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodPost, "/api/v1/sync/run")
		assert.Equal(t, "sync", w.Header().Get("X-Group"))
	})

	t.Run("subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("merchants", "/merchants")
		g.Group("revenue", "/:id/revenue").GET("", text("revenue"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/merchants/42/revenue")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "revenue", w.Body.String())
	})
}

func TestRouterRoutes(t *testing.T) {
	r := NewRouter(gin.New())
	orders := NewDomainGroup("orders", "/orders").GET("", text("")).GET("/:id/items", text(""))
	merchants := NewDomainGroup("merchants", "/merchants")
	merchants.Group("revenue", "/:id").GET("/revenue", text(""))
	r.Register(orders).Register(merchants)

	assert.Equal(t, []RouteInfo{
		{Group: "orders", Method: http.MethodGet, Path: "/api/v1/orders"},
		{Group: "orders", Method: http.MethodGet, Path: "/api/v1/orders/:id/items"},
		{Group: "revenue", Method: http.MethodGet, Path: "/api/v1/merchants/:id/revenue"},
	}, r.Routes())
}
