package domain

// Provider keys are a fixed, build-time enumerated set. Patches targeting
// anything else are rejected with ErrUnknownProvider.

type PaymentProvider string

const (
	PaymentComgate      PaymentProvider = "comgate"
	PaymentGopay        PaymentProvider = "gopay"
	PaymentBankTransfer PaymentProvider = "bankTransfer"
	PaymentCOD          PaymentProvider = "cod"
)

type ShippingProvider string

const (
	ShippingDPD            ShippingProvider = "dpd"
	ShippingZasielkovna    ShippingProvider = "zasielkovna"
	ShippingPosta          ShippingProvider = "posta"
	ShippingGLS            ShippingProvider = "gls"
	ShippingPersonalPickup ShippingProvider = "personalPickup"
)

type ComgateConfig struct {
	Enabled    bool   `json:"enabled"`
	TestMode   bool   `json:"testMode"`
	MerchantID string `json:"merchantId"`
	Secret     string `json:"secret"`
}

type GopayConfig struct {
	Enabled      bool   `json:"enabled"`
	TestMode     bool   `json:"testMode"`
	GoID         string `json:"goId"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type BankTransferConfig struct {
	Enabled  bool   `json:"enabled"`
	IBAN     string `json:"iban"`
	SWIFT    string `json:"swift"`
	BankName string `json:"bankName"`
}

type CODConfig struct {
	Enabled  bool  `json:"enabled"`
	FeeCents int64 `json:"feeCents"`
}

// PaymentSettings holds the per-provider payment configuration for one shop.
type PaymentSettings struct {
	Comgate      ComgateConfig      `json:"comgate"`
	Gopay        GopayConfig        `json:"gopay"`
	BankTransfer BankTransferConfig `json:"bankTransfer"`
	COD          CODConfig          `json:"cod"`
}

type CarrierConfig struct {
	Enabled       bool   `json:"enabled"`
	APIKey        string `json:"apiKey,omitempty"`
	PriceCents    int64  `json:"priceCents"`
	FreeFromCents int64  `json:"freeFromCents"`
	ShowWidget    bool   `json:"showWidget,omitempty"`
}

type PersonalPickupConfig struct {
	Enabled      bool   `json:"enabled"`
	Address      string `json:"address"`
	OpeningHours string `json:"openingHours"`
}

// ShippingSettings holds the per-carrier shipping configuration for one shop.
type ShippingSettings struct {
	DPD            CarrierConfig        `json:"dpd"`
	Zasielkovna    CarrierConfig        `json:"zasielkovna"`
	Posta          CarrierConfig        `json:"posta"`
	GLS            CarrierConfig        `json:"gls"`
	PersonalPickup PersonalPickupConfig `json:"personalPickup"`
}

// GeneralSettings are the shop-wide basics shown across the dashboard.
type GeneralSettings struct {
	ShopName string `json:"shopName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

// ShopSettings is the working copy of one shop's full configuration.
type ShopSettings struct {
	ShopID   string           `json:"-"`
	Payments PaymentSettings  `json:"payments"`
	Shipping ShippingSettings `json:"shipping"`
	General  GeneralSettings  `json:"general"`
}

// PaymentPatch is a partial update to exactly one payment provider. The
// provider is carried by the concrete type, so a patch can never merge into
// the wrong key. Nil fields leave the current value untouched.
type PaymentPatch interface {
	Provider() PaymentProvider
}

type ComgatePatch struct {
	Enabled    *bool   `json:"enabled"`
	TestMode   *bool   `json:"testMode"`
	MerchantID *string `json:"merchantId"`
	Secret     *string `json:"secret"`
}

func (ComgatePatch) Provider() PaymentProvider { return PaymentComgate }

type GopayPatch struct {
	Enabled      *bool   `json:"enabled"`
	TestMode     *bool   `json:"testMode"`
	GoID         *string `json:"goId"`
	ClientID     *string `json:"clientId"`
	ClientSecret *string `json:"clientSecret"`
}

func (GopayPatch) Provider() PaymentProvider { return PaymentGopay }

type BankTransferPatch struct {
	Enabled  *bool   `json:"enabled"`
	IBAN     *string `json:"iban"`
	SWIFT    *string `json:"swift"`
	BankName *string `json:"bankName"`
}

func (BankTransferPatch) Provider() PaymentProvider { return PaymentBankTransfer }

type CODPatch struct {
	Enabled  *bool  `json:"enabled"`
	FeeCents *int64 `json:"feeCents"`
}

func (CODPatch) Provider() PaymentProvider { return PaymentCOD }

// ShippingPatch is the carrier counterpart of PaymentPatch.
type ShippingPatch interface {
	Provider() ShippingProvider
}

// CarrierPatch applies to the four parcel carriers; the target provider is
// fixed at construction.
type CarrierPatch struct {
	Target        ShippingProvider `json:"-"`
	Enabled       *bool            `json:"enabled"`
	APIKey        *string          `json:"apiKey"`
	PriceCents    *int64           `json:"priceCents"`
	FreeFromCents *int64           `json:"freeFromCents"`
	ShowWidget    *bool            `json:"showWidget"`
}

func (p CarrierPatch) Provider() ShippingProvider { return p.Target }

type PersonalPickupPatch struct {
	Enabled      *bool   `json:"enabled"`
	Address      *string `json:"address"`
	OpeningHours *string `json:"openingHours"`
}

func (PersonalPickupPatch) Provider() ShippingProvider { return ShippingPersonalPickup }

// GeneralPatch is a partial update of GeneralSettings.
type GeneralPatch struct {
	ShopName *string `json:"shopName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Currency *string `json:"currency"`
	Language *string `json:"language"`
	Timezone *string `json:"timezone"`
}
