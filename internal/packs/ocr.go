// ABOUTME: OCR tool pack: text extraction from product labels, invoices, and similar images.
// ABOUTME: Accepts a URL or inline base64 image; at least one source is required.

package packs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

type ocrHandlers struct {
	creds *credentials.Store
	httpc *http.Client
}

// OCRPack builds the text-extraction tool.
func OCRPack(creds *credentials.Store, httpc *http.Client) *tools.Pack {
	h := &ocrHandlers{creds: creds, httpc: httpc}

	return &tools.Pack{
		ID: "ocr",
		Tools: []*tools.Tool{
			{
				Descriptor: tools.Descriptor{
					Name:        "extract_image_text",
					Description: "Extract text from an image using OCR. Provide either a public image URL or a base64-encoded image.",
					Params: []tools.Param{
						{Name: "image_url", Type: tools.TypeString, Description: "Public URL of the image"},
						{Name: "image_base64", Type: tools.TypeString, Description: "Base64-encoded image data (data URI or raw base64)"},
						{Name: "language", Type: tools.TypeString, Description: "OCR language code", Default: "eng"},
					},
					Credentials: []credentials.Service{credentials.ServiceOCR},
				},
				Handler: h.extractImageText,
			},
		},
	}
}

type ocrInput struct {
	ImageURL    string `mapstructure:"image_url"`
	ImageBase64 string `mapstructure:"image_base64"`
	Language    string `mapstructure:"language"`
}

func (h *ocrHandlers) extractImageText(ctx context.Context, args map[string]any) (any, error) {
	var in ocrInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	// Both parameters are individually optional, but one image source has
	// to be present. The schema cannot express one-of, so it is checked
	// here.
	if in.ImageURL == "" && in.ImageBase64 == "" {
		return nil, &tools.InvalidArgumentError{
			Tool:   "extract_image_text",
			Field:  "image_url",
			Reason: "either image_url or image_base64 is required",
		}
	}

	b, err := h.creds.Get(credentials.ServiceOCR)
	if err != nil {
		return nil, err
	}
	client := services.NewOCR(b, h.httpc)

	form := url.Values{}
	form.Set("language", in.Language)
	if in.ImageURL != "" {
		form.Set("url", in.ImageURL)
	} else {
		form.Set("base64Image", in.ImageBase64)
	}

	result, err := client.Parse(ctx, form)
	if err != nil {
		return nil, err
	}

	if errored, _ := result["IsErroredOnProcessing"].(bool); errored {
		return nil, fmt.Errorf("ocr processing failed: %v", result["ErrorMessage"])
	}

	var texts []string
	parsed, _ := result["ParsedResults"].([]any)
	for _, entry := range parsed {
		if obj, ok := entry.(map[string]any); ok {
			if text, ok := obj["ParsedText"].(string); ok {
				texts = append(texts, text)
			}
		}
	}

	processingMS := 0
	if raw, ok := result["ProcessingTimeInMilliseconds"].(string); ok {
		if ms, err := strconv.Atoi(raw); err == nil {
			processingMS = ms
		}
	}

	return map[string]any{
		"text":               strings.Join(texts, "\n"),
		"pages":              len(parsed),
		"processing_time_ms": processingMS,
	}, nil
}
