package render

import "errors"

var (
	// Input errors
	ErrNilInvoice          = errors.New("invoice is required")
	ErrUnsupportedLanguage = errors.New("unsupported document language")
	ErrInvalidStyle        = errors.New("invalid text style")

	// Raster errors, never surfaced by Draw
	ErrNoRasterizer = errors.New("no rasterizer configured")
	ErrBlankBitmap  = errors.New("rasterized text produced no visible pixels")

	// Logo errors, logged and swallowed by the assembler
	ErrLogoTooLarge    = errors.New("logo exceeds size limit")
	ErrUnsupportedLogo = errors.New("unsupported logo format")
)
