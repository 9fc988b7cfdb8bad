package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

// Composition operations accepted by HandleQuoteCompose.
const (
	opAddFamilies  = "add_families"
	opAddItem      = "add_item"
	opSetField     = "set_field"
	opRemoveItem   = "remove_item"
	opRemoveFamily = "remove_family"
	opSetCustomer  = "set_customer"
	opRecompute    = "recompute"
)

type composeRequest struct {
	Quote services.Quote `json:"quote"`
	Op    string         `json:"op"`

	FamilyIDs   []string `json:"family_ids"`
	FamilyIndex int      `json:"family_index"`
	ItemIndex   int      `json:"item_index"`

	ProductID string              `json:"product_id"`
	Item      *services.QuoteItem `json:"item"`

	Key   string `json:"key"`
	Value any    `json:"value"`

	Confirmed bool `json:"confirmed"`

	CustomerID string             `json:"customer_id"`
	Customer   *services.Customer `json:"customer"`

	TemplateID string `json:"template_id"`
}

type composeResponse struct {
	Quote    services.Quote          `json:"quote"`
	Document *services.QuoteDocument `json:"document"`
}

// HandleQuoteCompose applies one edit to an unsaved quote snapshot and
// returns the new snapshot together with its resolved document, so the
// editor shows formula cells exactly as the PDF will. Nothing is persisted.
func HandleQuoteCompose(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var req composeRequest
		if err := e.BindBody(&req); err != nil {
			return badRequest(e, "invalid compose body")
		}

		q, err := applyCompose(s, id.OrgID, req)
		if err != nil {
			return respondError(e, err, "Failed to update quote")
		}

		in, err := s.RenderInputFor(id.OrgID, q, req.TemplateID)
		if err != nil {
			return respondError(e, err, "Failed to update quote")
		}
		return e.JSON(http.StatusOK, composeResponse{Quote: q, Document: docs.BuildDocument(in)})
	})
}

func applyCompose(s *store.Store, orgID string, req composeRequest) (services.Quote, error) {
	q := req.Quote
	switch req.Op {
	case opAddFamilies:
		if len(req.FamilyIDs) == 0 {
			return q, services.NewValidationError("family_ids", "choose at least one family")
		}
		sels, err := s.FamilySelections(orgID, req.FamilyIDs)
		if err != nil {
			return q, err
		}
		return services.AddFamilies(q, sels), nil

	case opAddItem:
		var item services.QuoteItem
		switch {
		case req.ProductID != "":
			p, err := s.GetProduct(orgID, req.ProductID)
			if err != nil {
				return q, err
			}
			item = services.NewQuoteItem(p)
		case req.Item != nil:
			item = *req.Item
			if item.Qty == 0 {
				item.Qty = 1
			}
			item.UnitType = services.NormalizeUnitType(item.UnitType)
		default:
			return q, services.NewValidationError("product_id", "choose a product or describe the item")
		}
		return services.AddItem(q, req.FamilyIndex, item)

	case opSetField:
		value := req.Value
		if services.CanonicalKey(req.Key) == services.KeyUnitType {
			if str, ok := value.(string); ok {
				value = services.NormalizeUnitType(str)
			}
		}
		return services.SetItemField(q, req.FamilyIndex, req.ItemIndex, req.Key, value)

	case opRemoveItem:
		return services.RemoveItem(q, req.FamilyIndex, req.ItemIndex)

	case opRemoveFamily:
		return services.RemoveFamily(q, req.FamilyIndex, req.Confirmed)

	case opSetCustomer:
		switch {
		case req.CustomerID != "":
			c, err := s.GetCustomer(orgID, req.CustomerID)
			if err != nil {
				return q, err
			}
			return services.SetCustomer(q, c), nil
		case req.Customer != nil:
			c := *req.Customer
			c.ID = ""
			return services.SetCustomer(q, c), nil
		}
		return q, services.NewValidationError("customer_id", "choose a customer")

	case opRecompute, "":
		return services.Recompute(q), nil
	}
	return q, services.NewValidationError("op", "unknown operation "+req.Op)
}
