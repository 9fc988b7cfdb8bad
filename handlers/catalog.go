package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

const maxImportBytes = 10 << 20

// ── Customers ────────────────────────────────────────────────────────────

// HandleCustomerList returns customers ordered by name.
func HandleCustomerList(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		list, err := s.ListCustomers(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load customers")
		}
		return e.JSON(http.StatusOK, list)
	})
}

func HandleCustomerGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		c, err := s.GetCustomer(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to load customer")
		}
		return e.JSON(http.StatusOK, c)
	})
}

// HandleCustomerSave creates (POST) or updates (PUT /{id}) a customer.
func HandleCustomerSave(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var c services.Customer
		if err := e.BindBody(&c); err != nil {
			return badRequest(e, "invalid customer body")
		}
		c.ID = e.Request.PathValue("id")
		saved, err := s.SaveCustomer(id.OrgID, c)
		if err != nil {
			return respondError(e, err, "Failed to save customer")
		}
		successToast(e, "Customer saved")
		return e.JSON(savedStatus(c.ID), saved)
	})
}

func HandleCustomerDelete(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := s.DeleteCustomer(id.OrgID, e.Request.PathValue("id")); err != nil {
			return respondError(e, err, "Failed to delete customer")
		}
		return e.NoContent(http.StatusNoContent)
	})
}

// ── Product families ─────────────────────────────────────────────────────

func HandleFamilyList(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		list, err := s.ListFamilies(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load families")
		}
		return e.JSON(http.StatusOK, list)
	})
}

func HandleFamilyGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		f, err := s.GetFamily(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to load family")
		}
		return e.JSON(http.StatusOK, f)
	})
}

// HandleFamilySave creates or updates a family. Margin changes never reach
// quotes that already include the family.
func HandleFamilySave(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var f services.ProductFamily
		if err := e.BindBody(&f); err != nil {
			return badRequest(e, "invalid family body")
		}
		f.ID = e.Request.PathValue("id")
		saved, err := s.SaveFamily(id.OrgID, f)
		if err != nil {
			return respondError(e, err, "Failed to save family")
		}
		successToast(e, "Family saved")
		return e.JSON(savedStatus(f.ID), saved)
	})
}

func HandleFamilyDelete(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := s.DeleteFamily(id.OrgID, e.Request.PathValue("id")); err != nil {
			return respondError(e, err, "Failed to delete family")
		}
		return e.NoContent(http.StatusNoContent)
	})
}

// ── Products ─────────────────────────────────────────────────────────────

// HandleProductList returns products, optionally filtered by ?family=.
func HandleProductList(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		list, err := s.ListProducts(id.OrgID, e.Request.URL.Query().Get("family"))
		if err != nil {
			return respondError(e, err, "Failed to load products")
		}
		return e.JSON(http.StatusOK, list)
	})
}

func HandleProductGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		p, err := s.GetProduct(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to load product")
		}
		return e.JSON(http.StatusOK, p)
	})
}

func HandleProductSave(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var p services.Product
		if err := e.BindBody(&p); err != nil {
			return badRequest(e, "invalid product body")
		}
		p.ID = e.Request.PathValue("id")
		saved, err := s.SaveProduct(id.OrgID, p)
		if err != nil {
			return respondError(e, err, "Failed to save product")
		}
		successToast(e, "Product saved")
		return e.JSON(savedStatus(p.ID), saved)
	})
}

func HandleProductDelete(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := s.DeleteProduct(id.OrgID, e.Request.PathValue("id")); err != nil {
			return respondError(e, err, "Failed to delete product")
		}
		return e.NoContent(http.StatusNoContent)
	})
}

type importResponse struct {
	services.ProductImportResult
	Created int `json:"created"`
}

// HandleProductImport reads an uploaded CSV or XLSX sheet. Headers are
// matched against column labels and keys; rows with errors are reported and
// skipped. With ?dry_run=1 nothing is written.
func HandleProductImport(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := e.Request.ParseMultipartForm(maxImportBytes); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		headers, rows, err := services.ParseProductFile(header.Filename, file)
		if err != nil {
			return respondError(e, services.NewValidationError("file", err.Error()), "")
		}
		reg, err := s.Registry(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to import products")
		}
		families, err := s.FamilyIndex(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to import products")
		}

		res := services.ImportProducts(headers, rows, reg, families)
		if res.Errors == nil {
			res.Errors = []services.ImportRowError{}
		}
		resp := importResponse{ProductImportResult: res}
		if e.Request.URL.Query().Get("dry_run") != "1" && len(res.Products) > 0 {
			if resp.Created, err = s.ImportProducts(id.OrgID, res.Products); err != nil {
				return respondError(e, err, "Failed to import products")
			}
			successToast(e, "Products imported")
		}
		return e.JSON(http.StatusOK, resp)
	})
}

func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
