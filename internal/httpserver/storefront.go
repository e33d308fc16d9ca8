package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopbuilder/internal/domain"
	cartsvc "shopbuilder/internal/service/cart"
	checkoutsvc "shopbuilder/internal/service/checkout"
)

func apiError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func apiNotFoundOr500(c *gin.Context, err error, msg string) {
	if errors.Is(err, domain.ErrNotFound) {
		apiError(c, http.StatusNotFound, msg)
		return
	}
	apiError(c, http.StatusInternalServerError, "internal error")
}

func shopInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, shopFromCtx(c))
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		products, err := svc.List(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		p, err := svc.Get(c.Request.Context(), shop.ID, c.Param("id"))
		if err != nil {
			apiNotFoundOr500(c, err, "product not found")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		cart, err := svc.Get(c.Request.Context(), shop.ID, sessionFromCtx(c))
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

func addCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in cartsvc.AddInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), shop.ID, sessionFromCtx(c), in)
		if err != nil {
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

func updateCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		cart, err := svc.UpdateQuantity(c.Request.Context(), shop.ID, sessionFromCtx(c), c.Param("id"), in.Quantity)
		if err != nil {
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

func removeCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		cart, err := svc.RemoveItem(c.Request.Context(), shop.ID, sessionFromCtx(c), c.Param("id"))
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// Clearing the cart also discards the checkout session: a shopper who starts
// over must not inherit half-filled wizard state.
func clearCartHandler(svc CartService, checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		sid := sessionFromCtx(c)
		if err := svc.Clear(c.Request.Context(), shop.ID, sid); err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		checkout.Reset(shop.ID, sid)
		c.JSON(http.StatusOK, cartResponse(&domain.Cart{ShopID: shop.ID, SessionID: sid}))
	}
}

func cartResponse(cart *domain.Cart) gin.H {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return gin.H{
		"items":         items,
		"count":         cart.Count(),
		"subtotalCents": cart.SubtotalCents(),
	}
}

func checkoutStateHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		c.JSON(http.StatusOK, svc.State(shop.ID, sessionFromCtx(c)))
	}
}

func checkoutQuoteHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		quote, err := svc.Quote(c.Request.Context(), shop.ID, sessionFromCtx(c))
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

func shippingMethodsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		methods, err := svc.ShippingCatalog(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if methods == nil {
			methods = []domain.ShippingMethod{}
		}
		c.JSON(http.StatusOK, gin.H{"methods": methods})
	}
}

func paymentMethodsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		methods, err := svc.PaymentCatalog(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if methods == nil {
			methods = []domain.PaymentMethod{}
		}
		c.JSON(http.StatusOK, gin.H{"methods": methods})
	}
}

func setAddressHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var patch checkoutsvc.AddressPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		c.JSON(http.StatusOK, svc.SetAddress(shop.ID, sessionFromCtx(c), patch))
	}
}

// setShippingMethodHandler freezes the selected catalog method into the
// session. Selecting an id the shop does not offer is a client error.
func setShippingMethodHandler(svc CheckoutService, settings SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.ID == "" {
			apiError(c, http.StatusBadRequest, "method id required")
			return
		}
		methods, err := settings.ShippingCatalog(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		for _, m := range methods {
			if m.ID == in.ID {
				c.JSON(http.StatusOK, svc.SetShippingMethod(shop.ID, sessionFromCtx(c), m))
				return
			}
		}
		apiError(c, http.StatusBadRequest, "unknown shipping method")
	}
}

func setPaymentMethodHandler(svc CheckoutService, settings SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&in); err != nil || in.ID == "" {
			apiError(c, http.StatusBadRequest, "method id required")
			return
		}
		methods, err := settings.PaymentCatalog(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		for _, m := range methods {
			if m.ID == in.ID {
				c.JSON(http.StatusOK, svc.SetPaymentMethod(shop.ID, sessionFromCtx(c), m))
				return
			}
		}
		apiError(c, http.StatusBadRequest, "unknown payment method")
	}
}

func setTermsHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in struct {
			AgreeTerms bool `json:"agreeTerms"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		c.JSON(http.StatusOK, svc.SetAgreeTerms(shop.ID, sessionFromCtx(c), in.AgreeTerms))
	}
}

func advanceHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		state, err := svc.TryAdvance(shop.ID, sessionFromCtx(c))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "state": state})
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func backHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		c.JSON(http.StatusOK, svc.Back(shop.ID, sessionFromCtx(c)))
	}
}

func resetHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		c.JSON(http.StatusOK, svc.Reset(shop.ID, sessionFromCtx(c)))
	}
}

func submitHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		order, err := svc.Submit(c.Request.Context(), shop, sessionFromCtx(c))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSubmitInFlight):
				apiError(c, http.StatusConflict, err.Error())
			case errors.Is(err, domain.ErrOrderNotSubmittable):
				apiError(c, http.StatusUnprocessableEntity, err.Error())
			default:
				apiError(c, http.StatusBadGateway, "order could not be placed")
			}
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}
