package routes

import (
	"net/http"
	"os"

	"dukaan/auth"
	"dukaan/cart"
	"dukaan/catalog"
	"dukaan/feedback"
	"dukaan/middleware"
	"dukaan/orders"
	"dukaan/prescriptions"
	"dukaan/ratelim"
	"dukaan/reviews"

	"github.com/julienschmidt/httprouter"
)

// Deps holds the handlers and middleware the routes are registered against.
type Deps struct {
	Auth          *middleware.Auth
	RateLimiter   *ratelim.RateLimiter
	UploadDir     string
	Users         *auth.Handler
	Catalog       *catalog.Handler
	Cart          *cart.Handler
	Orders        *orders.Handler
	Reviews       *reviews.Handler
	Feedback      *feedback.Handler
	Prescriptions *prescriptions.Handler
}

// noListFS hides directories so uploads can only be fetched by exact name.
type noListFS struct {
	fs http.FileSystem
}

func (n noListFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func AddStaticRoutes(router *httprouter.Router, d Deps) {
	router.ServeFiles("/static/uploads/*filepath", noListFS{http.Dir(d.UploadDir)})
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/login", d.RateLimiter.Limit(d.Users.Login))
	router.POST("/api/auth/mobile", d.RateLimiter.Limit(d.Users.Login))
	router.GET("/api/check-session", d.Auth.Authenticate(d.Users.CheckSession))
	router.POST("/api/logout", d.Auth.OptionalAuth(d.Users.Logout))
}

func AddCatalogRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/shops", d.Catalog.ListShops)
	router.GET("/api/shops/:shopId", d.Catalog.GetShop)
	router.GET("/api/shops/:shopId/products", d.Catalog.ShopProducts)
	router.POST("/api/shops/batch", d.Catalog.ShopsBatch)
	router.GET("/api/products/:productId", d.Catalog.GetProduct)

	router.POST("/api/shops", d.Auth.Authenticate(d.Catalog.CreateShop))
	router.POST("/api/products", d.Auth.Authenticate(d.Catalog.CreateProduct))
}

func AddCartRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/wishlist", d.Auth.Authenticate(d.Cart.GetWishlist))
	router.POST("/api/wishlist", d.Auth.Authenticate(d.Cart.AddToWishlist))
	router.PUT("/api/wishlist/:productId/quantity", d.Auth.Authenticate(d.Cart.UpdateQuantity))
	router.DELETE("/api/wishlist/:productId", d.Auth.Authenticate(d.Cart.RemoveFromWishlist))
	router.DELETE("/api/wishlist", d.Auth.Authenticate(d.Cart.ClearCart))
	router.POST("/api/clear-cart", d.Auth.Authenticate(d.Cart.ClearCart))

	router.POST("/api/checkout", d.Auth.Authenticate(d.Cart.Checkout))
	router.POST("/api/checkout/shop/:shopId", d.Auth.Authenticate(d.Cart.CheckoutShop))
}

func AddOrderRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/user/orders", d.Auth.Authenticate(d.Orders.GetUserOrders))
	router.GET("/api/user/delivery-count", d.Auth.Authenticate(d.Orders.GetDeliveryCount))
	router.PUT("/api/orders/:orderId/complete", d.Auth.Authenticate(d.Orders.CompleteOrder))
	router.GET("/api/orders/:orderId/receipt", d.Auth.Authenticate(d.Orders.DownloadReceipt))
}

func AddReviewsRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/reviews/:shopId", d.Reviews.GetReviews)
	router.POST("/api/reviews/:shopId", d.Auth.Authenticate(d.Reviews.AddReview))
	router.GET("/api/reviews/:shopId/average", d.Reviews.GetAverage)
}

func AddFeedbackRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/feedback", d.Auth.OptionalAuth(d.Feedback.SubmitFeedback))
	router.POST("/api/feedback/followup", d.Auth.OptionalAuth(d.Feedback.SubmitFollowup))
}

func AddPrescriptionRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/prescriptions/upload", d.Auth.Authenticate(d.Prescriptions.Upload))
	router.GET("/api/prescriptions", d.Auth.Authenticate(d.Prescriptions.List))
}
