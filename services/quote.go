package services

import "time"

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	StatusDraft     QuoteStatus = "DRAFT"
	StatusFinalized QuoteStatus = "FINALIZED"
)

// Customer is the customer snapshot embedded in a quote.
type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// QuoteItem is a single priced line. Total is always Qty * UnitPrice.
type QuoteItem struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Qty          float64        `json:"qty"`
	UnitPrice    float64        `json:"unit_price"`
	UnitType     string         `json:"unit_type"`
	Total        float64        `json:"total"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// QuoteFamily is one product-family section of a quote. MarginApplied is
// copied from the family when the section is added and never refreshed.
type QuoteFamily struct {
	FamilyID      string      `json:"family_id"`
	FamilyName    string      `json:"family_name"`
	Category      string      `json:"category,omitempty"`
	Items         []QuoteItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	MarginApplied float64     `json:"margin_applied"`
}

// Quote is a self-contained snapshot: it never references live catalog records.
type Quote struct {
	ID          string        `json:"id,omitempty"`
	DisplayID   string        `json:"display_id,omitempty"`
	Customer    Customer      `json:"customer"`
	Families    []QuoteFamily `json:"families"`
	TotalAmount float64       `json:"total_amount"`
	Status      QuoteStatus   `json:"status,omitempty"`
	TemplateID  string        `json:"template_id,omitempty"`
	DocumentURL string        `json:"document_url,omitempty"`
	DocumentKey string        `json:"-"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// ProductFamily is a catalog grouping sharing a margin policy.
type ProductFamily struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	BaseMargin   float64  `json:"base_margin"`
	DefaultItems []string `json:"default_items,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Price        float64        `json:"price"`
	FamilyID     string         `json:"family_id,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// FamilySelection is a family together with its current member products, as
// fetched at the moment it is added to a quote.
type FamilySelection struct {
	Family   ProductFamily
	Products []Product
}

// Organization is the tenant profile printed in document headers.
type Organization struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	QuotePrefix   string `json:"quote_prefix,omitempty"`
}
