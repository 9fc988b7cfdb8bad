package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrStorageDisabled is returned when no binary storage is configured.
var ErrStorageDisabled = errors.New("document storage is not configured")

// DocumentStorage stores finished documents and mints download links.
type DocumentStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// QuoteFinalizer records a stored document against a quote and marks it
// FINALIZED.
type QuoteFinalizer interface {
	MarkFinalized(ctx context.Context, orgID, quoteID, key, link string) error
}

// URLCache caches signed links. Get returns "" on a miss.
type URLCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RenderInput is everything needed to draw one quote.
type RenderInput struct {
	Quote    Quote
	Org      Organization
	Template *Template
	Custom   []Column
}

// FinalizeResult describes a stored document.
type FinalizeResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// DocumentService renders quotes and stores the finished PDFs.
type DocumentService struct {
	Pool      *RenderPool
	Logos     *LogoLoader
	Storage   DocumentStorage
	Quotes    QuoteFinalizer
	URLs      URLCache
	SignedTTL time.Duration
	Now       func() time.Time
}

func (s *DocumentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// BuildDocument resolves the quote against the organization's columns and
// the chosen template.
func (s *DocumentService) BuildDocument(in RenderInput) *QuoteDocument {
	reg := NewRegistry(in.Custom)
	cols := ResolveForTemplate(in.Template, reg)
	return BuildQuoteDocument(in.Quote, in.Org, cols, reg, s.now())
}

func (s *DocumentService) logo(ctx context.Context, org Organization) Logo {
	if s.Logos == nil {
		return Logo{}
	}
	return s.Logos.Load(ctx, org.LogoURL)
}

// RenderPDF renders the final document bytes.
func (s *DocumentService) RenderPDF(ctx context.Context, in RenderInput) ([]byte, error) {
	doc := s.BuildDocument(in)
	logo := s.logo(ctx, in.Org)

	var pdf []byte
	err := s.Pool.Do(ctx, func(context.Context) error {
		var err error
		pdf, err = GenerateQuotePDF(doc, logo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// RenderExcel renders the spreadsheet export.
func (s *DocumentService) RenderExcel(ctx context.Context, in RenderInput) ([]byte, error) {
	doc := s.BuildDocument(in)
	var out []byte
	err := s.Pool.Do(ctx, func(context.Context) error {
		var err error
		out, err = GenerateQuoteExcel(doc)
		return err
	})
	return out, err
}

// Preview returns the on-screen rendering with its logo.
func (s *DocumentService) Preview(ctx context.Context, in RenderInput) (*QuoteDocument, Logo) {
	return s.BuildDocument(in), s.logo(ctx, in.Org)
}

// DocumentKey is the storage key of a generated quote document.
func DocumentKey(orgID, quoteID string) string {
	return fmt.Sprintf("orgs/%s/quotes/%s/%s.pdf", orgID, quoteID, uuid.NewString())
}

// Finalize renders the quote, uploads it and only then marks the quote
// FINALIZED. Any failure leaves the quote untouched.
func (s *DocumentService) Finalize(ctx context.Context, orgID string, in RenderInput) (FinalizeResult, error) {
	if s.Storage == nil {
		return FinalizeResult{}, ErrStorageDisabled
	}
	if in.Quote.ID == "" {
		return FinalizeResult{}, NewValidationError("id", "save the quote before generating its document")
	}
	if err := ValidateForSave(in.Quote); err != nil {
		return FinalizeResult{}, err
	}

	pdf, err := s.RenderPDF(ctx, in)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("failed to generate document: %w", err)
	}

	key := DocumentKey(orgID, in.Quote.ID)
	link, err := s.Storage.Put(ctx, key, pdf, "application/pdf")
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("failed to store document: %w", err)
	}

	if err := s.Quotes.MarkFinalized(ctx, orgID, in.Quote.ID, key, link); err != nil {
		return FinalizeResult{}, fmt.Errorf("failed to finalize quote: %w", err)
	}

	log.Info().Str("area", "documents").Str("org", orgID).Str("quote", in.Quote.ID).
		Str("key", key).Int("bytes", len(pdf)).Msg("quote finalized")
	return FinalizeResult{Key: key, URL: link}, nil
}

// SignedURL returns a time-limited download link for key, served from the
// cache while it is still comfortably valid.
func (s *DocumentService) SignedURL(ctx context.Context, key string) (string, error) {
	if s.Storage == nil {
		return "", ErrStorageDisabled
	}
	ttl := s.SignedTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	cacheKey := "signed-url:" + key
	if s.URLs != nil {
		if cached, err := s.URLs.Get(ctx, cacheKey); err != nil {
			log.Warn().Err(err).Str("area", "documents").Msg("signed url cache read failed")
		} else if cached != "" {
			return cached, nil
		}
	}

	link, err := s.Storage.SignedURL(ctx, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign document url: %w", err)
	}
	if s.URLs != nil {
		if err := s.URLs.Set(ctx, cacheKey, link, ttl*4/5); err != nil {
			log.Warn().Err(err).Str("area", "documents").Msg("signed url cache write failed")
		}
	}
	return link, nil
}
