package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ftgifting/backoffice/internal/blob"
	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/profiles"
)

// Renderer turns a finalized document into a PDF. The company profile is
// resolved from the client country, the logo is embedded as a data URL, and
// the laid-out HTML is rasterized by Gotenberg.
type Renderer struct {
	client   *Client
	profiles *profiles.Service
	blobs    *blob.Client
	logger   *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(client *Client, profileService *profiles.Service, blobs *blob.Client, logger *slog.Logger) *Renderer {
	return &Renderer{
		client:   client,
		profiles: profileService,
		blobs:    blobs,
		logger:   logger,
	}
}

// Render produces the PDF bytes for a document.
func (r *Renderer) Render(ctx context.Context, doc *documents.Document) ([]byte, error) {
	profile := r.profiles.Resolve(ctx, doc.ClientAddress.Country)

	var logoURL string
	if profile.LogoPath != "" && r.blobs != nil {
		dataURL, err := r.blobs.FetchDataURL(ctx, profile.LogoPath)
		if err != nil {
			// Render without the logo rather than failing the document.
			r.logger.Warn("logo fetch failed", slog.String("path", profile.LogoPath), slog.Any("error", err))
		} else {
			logoURL = dataURL
		}
	}

	html, err := BuildHTML(doc, profile, logoURL)
	if err != nil {
		return nil, err
	}
	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("rasterize document: %w", err)
	}
	return pdf, nil
}
