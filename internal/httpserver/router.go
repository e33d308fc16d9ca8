package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopbuilder/internal/domain"
	orderrepo "shopbuilder/internal/repository/order"
	shoprepo "shopbuilder/internal/repository/shop"
	cartsvc "shopbuilder/internal/service/cart"
	checkoutsvc "shopbuilder/internal/service/checkout"
	merchantsvc "shopbuilder/internal/service/merchant"
	productsvc "shopbuilder/internal/service/product"
)

// Service boundaries the handlers depend on. Tests swap in stubs.

type CartService interface {
	Get(ctx context.Context, shopID, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, shopID, sessionID string, in cartsvc.AddInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, shopID, sessionID, itemID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, shopID, sessionID, itemID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, shopID, sessionID string) error
}

type CheckoutService interface {
	State(shopID, sessionID string) domain.CheckoutState
	SetAddress(shopID, sessionID string, patch checkoutsvc.AddressPatch) domain.CheckoutState
	SetShippingMethod(shopID, sessionID string, method domain.ShippingMethod) domain.CheckoutState
	SetPaymentMethod(shopID, sessionID string, method domain.PaymentMethod) domain.CheckoutState
	SetAgreeTerms(shopID, sessionID string, agree bool) domain.CheckoutState
	TryAdvance(shopID, sessionID string) (domain.CheckoutState, error)
	Back(shopID, sessionID string) domain.CheckoutState
	Reset(shopID, sessionID string) domain.CheckoutState
	Quote(ctx context.Context, shopID, sessionID string) (domain.Quote, error)
	Submit(ctx context.Context, shop domain.Shop, sessionID string) (*domain.Order, error)
}

type SettingsService interface {
	Get(ctx context.Context, shopID string) (domain.ShopSettings, error)
	UpdatePayments(ctx context.Context, shopID string, patch domain.PaymentPatch) (domain.ShopSettings, error)
	UpdateShipping(ctx context.Context, shopID string, patch domain.ShippingPatch) (domain.ShopSettings, error)
	UpdateGeneral(ctx context.Context, shopID string, patch domain.GeneralPatch) (domain.ShopSettings, error)
	ShippingCatalog(ctx context.Context, shopID string) ([]domain.ShippingMethod, error)
	PaymentCatalog(ctx context.Context, shopID string) ([]domain.PaymentMethod, error)
}

type ProductService interface {
	List(ctx context.Context, shopID string) ([]domain.Product, error)
	Get(ctx context.Context, shopID, id string) (*domain.Product, error)
	Upsert(ctx context.Context, shopID string, in productsvc.UpsertInput) (*domain.Product, error)
}

type OrderService interface {
	List(ctx context.Context, shopID string, filter orderrepo.ListFilter) ([]domain.Order, int64, error)
	Get(ctx context.Context, shopID, id string) (*domain.Order, error)
	Update(ctx context.Context, shopID, id string, in orderrepo.UpdateInput) (*domain.Order, error)
	Cancel(ctx context.Context, shopID, id string) (*domain.Order, error)
}

type MerchantService interface {
	Signup(ctx context.Context, in merchantsvc.SignupInput) (*domain.Merchant, error)
	Login(ctx context.Context, email, password string) (*domain.Merchant, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Merchant, error)
	AccessTTLSeconds() int
}

// Deps bundles everything the router needs.
type Deps struct {
	ShopRepo    shoprepo.Repository
	CartSvc     CartService
	CheckoutSvc CheckoutService
	SettingsSvc SettingsService
	ProductSvc  ProductService
	OrderSvc    OrderService
	MerchantSvc MerchantService
}

const (
	sessionHeader = "X-Session-Id"
	sessionCookie = "session_id"

	ctxShop     = "shop"
	ctxSession  = "sessionID"
	ctxMerchant = "merchant"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", sessionHeader)
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, sessionHeader)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	store := router.Group("/store/:slug")
	store.Use(shopMiddleware(deps.ShopRepo), sessionMiddleware())
	{
		store.GET("", shopInfoHandler)
		store.GET("/products", listProductsHandler(deps.ProductSvc))
		store.GET("/products/:id", getProductHandler(deps.ProductSvc))

		store.GET("/cart", getCartHandler(deps.CartSvc))
		store.POST("/cart/items", addCartItemHandler(deps.CartSvc))
		store.PATCH("/cart/items/:id", updateCartItemHandler(deps.CartSvc))
		store.DELETE("/cart/items/:id", removeCartItemHandler(deps.CartSvc))
		store.DELETE("/cart", clearCartHandler(deps.CartSvc, deps.CheckoutSvc))

		store.GET("/checkout", checkoutStateHandler(deps.CheckoutSvc))
		store.GET("/checkout/quote", checkoutQuoteHandler(deps.CheckoutSvc))
		store.GET("/checkout/shipping-methods", shippingMethodsHandler(deps.SettingsSvc))
		store.GET("/checkout/payment-methods", paymentMethodsHandler(deps.SettingsSvc))
		store.PUT("/checkout/address", setAddressHandler(deps.CheckoutSvc))
		store.PUT("/checkout/shipping-method", setShippingMethodHandler(deps.CheckoutSvc, deps.SettingsSvc))
		store.PUT("/checkout/payment-method", setPaymentMethodHandler(deps.CheckoutSvc, deps.SettingsSvc))
		store.PUT("/checkout/terms", setTermsHandler(deps.CheckoutSvc))
		store.POST("/checkout/advance", advanceHandler(deps.CheckoutSvc))
		store.POST("/checkout/back", backHandler(deps.CheckoutSvc))
		store.POST("/checkout/reset", resetHandler(deps.CheckoutSvc))
		store.POST("/checkout/submit", submitHandler(deps.CheckoutSvc))
	}

	router.POST("/auth/signup", signupHandler(deps.MerchantSvc))
	router.POST("/auth/login", loginHandler(deps.MerchantSvc))

	dash := router.Group("/shops")
	dash.Use(authMiddleware(deps.MerchantSvc))
	{
		dash.POST("", createShopHandler(deps.ShopRepo))

		owned := dash.Group("/:slug")
		owned.Use(ownershipMiddleware(deps.ShopRepo))
		{
			owned.GET("", shopInfoHandler)
			owned.GET("/settings", getSettingsHandler(deps.SettingsSvc))
			owned.PATCH("/settings/general", patchGeneralHandler(deps.SettingsSvc))
			owned.PATCH("/settings/payments/:provider", patchPaymentHandler(deps.SettingsSvc))
			owned.PATCH("/settings/shipping/:provider", patchShippingHandler(deps.SettingsSvc))

			owned.GET("/products", listProductsHandler(deps.ProductSvc))
			owned.POST("/products", upsertProductHandler(deps.ProductSvc))

			owned.GET("/orders", listOrdersHandler(deps.OrderSvc))
			owned.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
			owned.PATCH("/orders/:id", updateOrderHandler(deps.OrderSvc))
			owned.POST("/orders/:id/cancel", cancelOrderHandler(deps.OrderSvc))
		}
	}

	return router
}

// shopMiddleware resolves the published shop behind a storefront slug.
func shopMiddleware(shops shoprepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, err := shops.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apiNotFoundOr500(c, err, "shop not found")
			return
		}
		c.Set(ctxShop, *shop)
		c.Next()
	}
}

// sessionMiddleware propagates the storefront session id, issuing a fresh
// UUID when the shopper has none. The id is echoed in both header and cookie
// so either transport works.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader(sessionHeader)
		if sid == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				sid = cookie
			}
		}
		if sid == "" {
			sid = uuid.NewString()
		}
		c.Set(ctxSession, sid)
		c.Header(sessionHeader, sid)
		c.SetCookie(sessionCookie, sid, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		c.Next()
	}
}

func shopFromCtx(c *gin.Context) domain.Shop {
	return c.MustGet(ctxShop).(domain.Shop)
}

func sessionFromCtx(c *gin.Context) string {
	return c.MustGet(ctxSession).(string)
}
