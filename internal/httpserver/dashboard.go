package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopbuilder/internal/domain"
	orderrepo "shopbuilder/internal/repository/order"
	shoprepo "shopbuilder/internal/repository/shop"
	merchantsvc "shopbuilder/internal/service/merchant"
	productsvc "shopbuilder/internal/service/product"
)

func signupHandler(svc MerchantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in merchantsvc.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		m, err := svc.Signup(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				apiError(c, http.StatusConflict, "account already exists")
				return
			}
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSON(http.StatusCreated, merchantResponse(m))
	}
}

func loginHandler(svc MerchantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "email and password required")
			return
		}
		m, access, refresh, err := svc.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, merchantsvc.ErrInvalidCredentials) {
				apiError(c, http.StatusUnauthorized, "invalid credentials")
				return
			}
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"merchant":     merchantResponse(m),
			"accessToken":  access,
			"refreshToken": refresh,
			"expiresIn":    svc.AccessTTLSeconds(),
		})
	}
}

func merchantResponse(m *domain.Merchant) gin.H {
	return gin.H{
		"id":        m.ID,
		"email":     m.Email,
		"firstName": m.FirstName,
		"lastName":  m.LastName,
	}
}

// authMiddleware resolves the bearer token to a merchant account.
func authMiddleware(svc MerchantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apiError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		m, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(ctxMerchant, *m)
		c.Next()
	}
}

// ownershipMiddleware resolves the dashboard slug and rejects merchants who
// do not own the shop. Foreign shops read as 404, not 403.
func ownershipMiddleware(shops shoprepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchant := c.MustGet(ctxMerchant).(domain.Merchant)
		shop, err := shops.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apiNotFoundOr500(c, err, "shop not found")
			return
		}
		if shop.MerchantID != merchant.ID {
			apiError(c, http.StatusNotFound, "shop not found")
			return
		}
		c.Set(ctxShop, *shop)
		c.Next()
	}
}

func createShopHandler(shops shoprepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchant := c.MustGet(ctxMerchant).(domain.Merchant)
		var in struct {
			Slug     string `json:"slug" binding:"required"`
			Name     string `json:"name" binding:"required"`
			Currency string `json:"currency"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "slug and name required")
			return
		}
		if in.Currency == "" {
			in.Currency = "EUR"
		}
		shop, err := shops.Create(c.Request.Context(), &domain.Shop{
			MerchantID: merchant.ID,
			Slug:       strings.ToLower(strings.TrimSpace(in.Slug)),
			Name:       strings.TrimSpace(in.Name),
			Currency:   in.Currency,
			Published:  true,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				apiError(c, http.StatusConflict, "slug already taken")
				return
			}
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusCreated, shop)
	}
}

func getSettingsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		settings, err := svc.Get(c.Request.Context(), shop.ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func patchGeneralHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var patch domain.GeneralPatch
		if err := decodeStrict(c, &patch); err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		settings, err := svc.UpdateGeneral(c.Request.Context(), shop.ID, patch)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// patchPaymentHandler decodes the body into the patch type named by the
// provider segment. Unknown providers and unknown body keys are rejected.
func patchPaymentHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)

		var patch domain.PaymentPatch
		switch domain.PaymentProvider(c.Param("provider")) {
		case domain.PaymentComgate:
			var p domain.ComgatePatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			patch = p
		case domain.PaymentGopay:
			var p domain.GopayPatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			patch = p
		case domain.PaymentBankTransfer:
			var p domain.BankTransferPatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			patch = p
		case domain.PaymentCOD:
			var p domain.CODPatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			patch = p
		default:
			apiError(c, http.StatusBadRequest, "unknown payment provider")
			return
		}

		settings, err := svc.UpdatePayments(c.Request.Context(), shop.ID, patch)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownProvider) {
				apiError(c, http.StatusBadRequest, "unknown payment provider")
				return
			}
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func patchShippingHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)

		var patch domain.ShippingPatch
		provider := domain.ShippingProvider(c.Param("provider"))
		switch provider {
		case domain.ShippingDPD, domain.ShippingZasielkovna, domain.ShippingPosta, domain.ShippingGLS:
			var p domain.CarrierPatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			p.Target = provider
			patch = p
		case domain.ShippingPersonalPickup:
			var p domain.PersonalPickupPatch
			if err := decodeStrict(c, &p); err != nil {
				apiError(c, http.StatusBadRequest, err.Error())
				return
			}
			patch = p
		default:
			apiError(c, http.StatusBadRequest, "unknown shipping provider")
			return
		}

		settings, err := svc.UpdateShipping(c.Request.Context(), shop.ID, patch)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownProvider) {
				apiError(c, http.StatusBadRequest, "unknown shipping provider")
				return
			}
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func decodeStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid body: " + err.Error())
	}
	return nil
}

func upsertProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in productsvc.UpsertInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apiError(c, http.StatusBadRequest, "invalid body")
			return
		}
		if in.Currency == "" {
			in.Currency = shop.Currency
		}
		p, err := svc.Upsert(c.Request.Context(), shop.ID, in)
		if err != nil {
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		filter := orderrepo.ListFilter{
			Status: c.Query("status"),
			Search: c.Query("search"),
		}
		filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

		orders, total, err := svc.List(c.Request.Context(), shop.ID, filter)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		o, err := svc.Get(c.Request.Context(), shop.ID, c.Param("id"))
		if err != nil {
			apiNotFoundOr500(c, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		var in struct {
			Status         *string `json:"status"`
			PaymentStatus  *string `json:"paymentStatus"`
			TrackingNumber *string `json:"trackingNumber"`
			InternalNote   *string `json:"internalNote"`
		}
		if err := decodeStrict(c, &in); err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		o, err := svc.Update(c.Request.Context(), shop.ID, c.Param("id"), orderrepo.UpdateInput{
			Status:         in.Status,
			PaymentStatus:  in.PaymentStatus,
			TrackingNumber: in.TrackingNumber,
			InternalNote:   in.InternalNote,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				apiError(c, http.StatusNotFound, "order not found")
				return
			}
			apiError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func cancelOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := shopFromCtx(c)
		o, err := svc.Cancel(c.Request.Context(), shop.ID, c.Param("id"))
		if err != nil {
			apiNotFoundOr500(c, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
