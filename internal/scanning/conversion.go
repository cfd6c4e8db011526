package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// slipScanPrompt is the shared prompt used by all LLM providers for scanning transfer slips
const slipScanPrompt = `You are analyzing a bank transfer slip image. Carefully read all text in the image and extract the following information:

1. **Transaction ID**: Find the transaction reference printed on the slip. It is usually a long alphanumeric code labeled "Transaction ID", "Ref", "Reference No." or similar.

2. **Destination Account Number**: Find the account number the money was transferred to. Use ONLY fields labeled "To" or "To Account". Do not use the sender's account, and do not guess from unlabeled numbers.

3. **Confidence Score**: An integer from 0 to 100 reflecting how clear and legible the image is and how complete the extracted fields are.

4. **Raw Text**: All text you can read on the slip, as a single string.

Return ONLY valid JSON in this exact format:
{
  "transactionId": "string or null",
  "toAccountNumber": "string or null",
  "confidenceScore": 0,
  "rawText": "string or null"
}

Important:
- If you are not certain about a field, use null for that field - never guess or fabricate a value
- The confidenceScore must be a number (not a string) between 0 and 100
- The toAccountNumber must come from a field labeled "To" or "To Account" only
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// maxImageDimension caps the longest side of an image sent to a model.
// Phone screenshots of slips are often 3000px+; anything past 2000px adds
// upload size without improving field legibility.
const maxImageDimension = 2000

// sniffMIMEType normalizes a caller-supplied content type, falling back to
// content sniffing when the caller did not declare one
func sniffMIMEType(imageData []byte, contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(imageData).String()
	}
	// mimetype.Detect can return parameters (e.g. "text/plain; charset=utf-8")
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

// pdfToImage renders the first page of a PDF as a PNG image
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// Render the first page (e-slips are single page)
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (common for iPhone slip photos) is not supported by the
	// standard image package
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format.
// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// convertToPNG converts PDFs and non-PNG images to PNG format.
// Returns the PNG data and a boolean indicating if conversion occurred.
func convertToPNG(imageData []byte, mimeType string) ([]byte, bool, error) {
	if mimeType == "application/pdf" {
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, true, nil
	} else if mimeType != "image/png" || isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, true, nil
	}
	// Already PNG, return as-is
	return imageData, false, nil
}

// downscaleIfNeeded resizes PNG data whose longest side exceeds
// maxImageDimension, preserving aspect ratio.
// Returns the PNG data and a boolean indicating if resizing occurred.
func downscaleIfNeeded(pngData []byte) ([]byte, bool, error) {
	// Cheap dimension check before a full decode
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return nil, false, fmt.Errorf("reading PNG dimensions: %w", err)
	}
	if cfg.Width <= maxImageDimension && cfg.Height <= maxImageDimension {
		return pngData, false, nil
	}

	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, false, fmt.Errorf("decoding PNG: %w", err)
	}

	if cfg.Width > cfg.Height {
		img = imaging.Resize(img, maxImageDimension, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encoding resized PNG: %w", err)
	}

	return buf.Bytes(), true, nil
}

// prepareImageData normalizes the MIME type, converts the image to PNG if
// needed, and downscales oversized images.
// Returns the final image data, the MIME type to use, and whether the data
// was modified.
func prepareImageData(imageData []byte, contentType string) ([]byte, string, bool, error) {
	mimeType := sniffMIMEType(imageData, contentType)

	pngData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, "", false, err
	}

	finalImageData, resized, err := downscaleIfNeeded(pngData)
	if err != nil {
		return nil, "", false, err
	}

	// After prepareImageData the data is always PNG
	return finalImageData, "image/png", converted || resized, nil
}
