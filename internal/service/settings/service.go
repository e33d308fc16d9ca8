package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shopbuilder/internal/domain"
	settingsrepo "shopbuilder/internal/repository/settings"
)

// Defaults are the provider configurations a fresh shop starts with. The COD
// fee and free-shipping limits come from runtime config, not literals.
type Defaults struct {
	CODFeeCents           int64
	FreeShippingFromCents int64
}

// Service keeps a per-shop working copy of the settings and writes every
// accepted patch through to the repository. Patches merge into exactly one
// provider; siblings are never touched.
type Service struct {
	mu       sync.Mutex
	cache    map[string]*domain.ShopSettings
	repo     settingsrepo.Repository
	defaults Defaults
}

func New(repo settingsrepo.Repository, defaults Defaults) *Service {
	return &Service{
		cache:    make(map[string]*domain.ShopSettings),
		repo:     repo,
		defaults: defaults,
	}
}

// Get returns the shop's settings, loading them from the repository on first
// access and falling back to defaults for shops that never saved any.
func (s *Service) Get(ctx context.Context, shopID string) (domain.ShopSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.load(ctx, shopID)
	if err != nil {
		return domain.ShopSettings{}, err
	}
	return *loaded, nil
}

func (s *Service) load(ctx context.Context, shopID string) (*domain.ShopSettings, error) {
	if cached, ok := s.cache[shopID]; ok {
		return cached, nil
	}
	stored, err := s.repo.Get(ctx, shopID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		fresh := s.defaultSettings(shopID)
		stored = &fresh
	}
	s.cache[shopID] = stored
	return stored, nil
}

func (s *Service) defaultSettings(shopID string) domain.ShopSettings {
	return domain.ShopSettings{
		ShopID: shopID,
		Payments: domain.PaymentSettings{
			Comgate:      domain.ComgateConfig{TestMode: true},
			Gopay:        domain.GopayConfig{TestMode: true},
			BankTransfer: domain.BankTransferConfig{Enabled: true},
			COD:          domain.CODConfig{Enabled: true, FeeCents: s.defaults.CODFeeCents},
		},
		Shipping: domain.ShippingSettings{
			DPD:            domain.CarrierConfig{Enabled: true, PriceCents: 490, FreeFromCents: s.defaults.FreeShippingFromCents, ShowWidget: true},
			Zasielkovna:    domain.CarrierConfig{Enabled: true, PriceCents: 290, FreeFromCents: s.defaults.FreeShippingFromCents, ShowWidget: true},
			Posta:          domain.CarrierConfig{Enabled: true, PriceCents: 350, FreeFromCents: s.defaults.FreeShippingFromCents},
			GLS:            domain.CarrierConfig{PriceCents: 450, FreeFromCents: s.defaults.FreeShippingFromCents},
			PersonalPickup: domain.PersonalPickupConfig{Enabled: true, OpeningHours: "Po-Pi: 9:00-17:00"},
		},
		General: domain.GeneralSettings{
			Currency: "EUR",
			Language: "sk",
			Timezone: "Europe/Bratislava",
		},
	}
}

// UpdatePayments merges a payment patch into its provider's config. The
// provider is fixed by the patch's concrete type.
func (s *Service) UpdatePayments(ctx context.Context, shopID string, patch domain.PaymentPatch) (domain.ShopSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.load(ctx, shopID)
	if err != nil {
		return domain.ShopSettings{}, err
	}

	// Patch a copy; the working copy must never hold values that failed to
	// persist.
	updated := *loaded
	switch p := patch.(type) {
	case domain.ComgatePatch:
		c := &updated.Payments.Comgate
		applyBool(&c.Enabled, p.Enabled)
		applyBool(&c.TestMode, p.TestMode)
		applyString(&c.MerchantID, p.MerchantID)
		applyString(&c.Secret, p.Secret)
	case domain.GopayPatch:
		c := &updated.Payments.Gopay
		applyBool(&c.Enabled, p.Enabled)
		applyBool(&c.TestMode, p.TestMode)
		applyString(&c.GoID, p.GoID)
		applyString(&c.ClientID, p.ClientID)
		applyString(&c.ClientSecret, p.ClientSecret)
	case domain.BankTransferPatch:
		c := &updated.Payments.BankTransfer
		applyBool(&c.Enabled, p.Enabled)
		applyString(&c.IBAN, p.IBAN)
		applyString(&c.SWIFT, p.SWIFT)
		applyString(&c.BankName, p.BankName)
	case domain.CODPatch:
		c := &updated.Payments.COD
		applyBool(&c.Enabled, p.Enabled)
		applyInt64(&c.FeeCents, p.FeeCents)
	default:
		return domain.ShopSettings{}, fmt.Errorf("%w: %T", domain.ErrUnknownProvider, patch)
	}

	return s.commit(ctx, shopID, updated)
}

// UpdateShipping is the carrier counterpart of UpdatePayments.
func (s *Service) UpdateShipping(ctx context.Context, shopID string, patch domain.ShippingPatch) (domain.ShopSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.load(ctx, shopID)
	if err != nil {
		return domain.ShopSettings{}, err
	}

	updated := *loaded
	switch p := patch.(type) {
	case domain.CarrierPatch:
		var c *domain.CarrierConfig
		switch p.Target {
		case domain.ShippingDPD:
			c = &updated.Shipping.DPD
		case domain.ShippingZasielkovna:
			c = &updated.Shipping.Zasielkovna
		case domain.ShippingPosta:
			c = &updated.Shipping.Posta
		case domain.ShippingGLS:
			c = &updated.Shipping.GLS
		default:
			return domain.ShopSettings{}, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, p.Target)
		}
		applyBool(&c.Enabled, p.Enabled)
		applyString(&c.APIKey, p.APIKey)
		applyInt64(&c.PriceCents, p.PriceCents)
		applyInt64(&c.FreeFromCents, p.FreeFromCents)
		applyBool(&c.ShowWidget, p.ShowWidget)
	case domain.PersonalPickupPatch:
		c := &updated.Shipping.PersonalPickup
		applyBool(&c.Enabled, p.Enabled)
		applyString(&c.Address, p.Address)
		applyString(&c.OpeningHours, p.OpeningHours)
	default:
		return domain.ShopSettings{}, fmt.Errorf("%w: %T", domain.ErrUnknownProvider, patch)
	}

	return s.commit(ctx, shopID, updated)
}

// UpdateGeneral merges shop-wide basics.
func (s *Service) UpdateGeneral(ctx context.Context, shopID string, patch domain.GeneralPatch) (domain.ShopSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.load(ctx, shopID)
	if err != nil {
		return domain.ShopSettings{}, err
	}

	updated := *loaded
	g := &updated.General
	applyString(&g.ShopName, patch.ShopName)
	applyString(&g.Email, patch.Email)
	applyString(&g.Phone, patch.Phone)
	applyString(&g.Currency, patch.Currency)
	applyString(&g.Language, patch.Language)
	applyString(&g.Timezone, patch.Timezone)

	return s.commit(ctx, shopID, updated)
}

// commit persists the patched settings and only then replaces the cached
// working copy, so a failed save leaves Get serving the last stored values.
func (s *Service) commit(ctx context.Context, shopID string, updated domain.ShopSettings) (domain.ShopSettings, error) {
	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.ShopSettings{}, err
	}
	s.cache[shopID] = &updated
	return updated, nil
}

// ShippingCatalog lists the selectable shipping methods derived from the
// enabled carriers. The storefront freezes one of these into the checkout.
func (s *Service) ShippingCatalog(ctx context.Context, shopID string) ([]domain.ShippingMethod, error) {
	settings, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}

	var methods []domain.ShippingMethod
	add := func(id string, name, delivery string, c domain.CarrierConfig) {
		if !c.Enabled {
			return
		}
		methods = append(methods, domain.ShippingMethod{
			ID:            id,
			Name:          name,
			PriceCents:    c.PriceCents,
			DeliveryTime:  delivery,
			FreeFromCents: c.FreeFromCents,
		})
	}
	add(string(domain.ShippingZasielkovna), "Zásielkovňa", "1-2 dni", settings.Shipping.Zasielkovna)
	add(string(domain.ShippingDPD), "DPD kuriér", "1-2 dni", settings.Shipping.DPD)
	add(string(domain.ShippingGLS), "GLS kuriér", "1-2 dni", settings.Shipping.GLS)
	add(string(domain.ShippingPosta), "Slovenská pošta", "2-4 dni", settings.Shipping.Posta)
	if settings.Shipping.PersonalPickup.Enabled {
		methods = append(methods, domain.ShippingMethod{
			ID:   string(domain.ShippingPersonalPickup),
			Name: "Osobný odber",
		})
	}
	return methods, nil
}

// PaymentCatalog lists the selectable payment methods derived from the
// enabled providers.
func (s *Service) PaymentCatalog(ctx context.Context, shopID string) ([]domain.PaymentMethod, error) {
	settings, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}

	var methods []domain.PaymentMethod
	if settings.Payments.Comgate.Enabled {
		methods = append(methods, domain.PaymentMethod{
			ID: string(domain.PaymentComgate), Name: "Platba kartou (Comgate)", Type: domain.PaymentTypeCard,
		})
	}
	if settings.Payments.Gopay.Enabled {
		methods = append(methods, domain.PaymentMethod{
			ID: string(domain.PaymentGopay), Name: "GoPay", Type: domain.PaymentTypeCard,
		})
	}
	if settings.Payments.BankTransfer.Enabled {
		methods = append(methods, domain.PaymentMethod{
			ID: string(domain.PaymentBankTransfer), Name: "Bankový prevod", Type: domain.PaymentTypeBank,
		})
	}
	if settings.Payments.COD.Enabled {
		methods = append(methods, domain.PaymentMethod{
			ID: string(domain.PaymentCOD), Name: "Dobierka", Type: domain.PaymentTypeCOD, FeeCents: settings.Payments.COD.FeeCents,
		})
	}
	return methods, nil
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}
