package api

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/example/varsha-shop/internal/api/middleware"
	"github.com/example/varsha-shop/internal/auth"
)

// RouterConfig carries the access settings the router needs.
type RouterConfig struct {
	AdminKey    string
	CORSOrigins []string
}

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	requireAdmin := middleware.RequireAdmin(cfg.AdminKey)
	admin := func(h http.HandlerFunc) http.Handler { return requireAdmin(h) }

	mux.HandleFunc("GET /api/health", handlers.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authHandlers.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))

	// Products
	mux.HandleFunc("GET /api/products", handlers.GetProducts)
	mux.HandleFunc("GET /api/products/{id}", handlers.GetProduct)

	// Orders
	mux.HandleFunc("POST /api/orders", handlers.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", handlers.GetOrder)
	mux.Handle("GET /api/my/orders", requireAuth(http.HandlerFunc(handlers.GetMyOrders)))

	// Payments
	mux.HandleFunc("POST /api/payments/razorpay/create-order", handlers.CreateRazorpayOrder)
	mux.HandleFunc("POST /api/payments/razorpay/verify", handlers.VerifyRazorpayPayment)

	// Admin
	mux.Handle("GET /api/admin/meta", admin(handlers.AdminMeta))
	mux.Handle("GET /api/admin/orders", admin(handlers.AdminListOrders))
	mux.Handle("GET /api/admin/orders/{id}", admin(handlers.AdminGetOrder))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(handlers.AdminUpdateOrderStatus))
	mux.Handle("PUT /api/admin/orders/{id}/mark-paid", admin(handlers.AdminMarkPaid))
	mux.Handle("GET /api/admin/sales/summary", admin(handlers.AdminSalesSummary))
	mux.Handle("POST /api/admin/products", admin(handlers.AdminCreateProduct))
	mux.Handle("PUT /api/admin/products/{id}", admin(handlers.AdminUpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(handlers.AdminDeleteProduct))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "Not found", http.StatusNotFound)
	})

	var h http.Handler = mux
	h = middleware.OptionalAuthMiddleware(jwtService)(h)
	h = withCORS(cfg.CORSOrigins)(h)
	h = withLogging(h)
	h = withRecovery(h)
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[API] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Printf("[API] panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				respondJSONError(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
