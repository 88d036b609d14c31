package models

import "time"

// Envelope is the uniform JSON wrapper used by nearly every route.
// Success and failure are signaled by Code (0 = success), not by the
// HTTP status, which stays 200. Existing clients depend on this.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type GenOutfitResponse struct {
	Outfits []Outfit `json:"outfits"`
}

type FlipImageResponse struct {
	FlippedImageURL  string   `json:"flipped_image_url"`
	OriginalImageURL string   `json:"original_image_url"`
	FlipType         string   `json:"flip_type"`
	Outfits          []Outfit `json:"outfits"`
}

type GenWallpaperResponse struct {
	Prompt     string      `json:"prompt"`
	Wallpapers []Wallpaper `json:"wallpapers"`
}

type ImageTextResponse struct {
	Description string    `json:"description"`
	BatchID     string    `json:"batch_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadImageResponse struct {
	URL   string `json:"url"`
	Key   string `json:"key"`
	Batch string `json:"batch"`
}

type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// OCRResult is one recognized text block with its bounding box.
type OCRResult struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence,omitempty"`
}

type RecognizeTextResponse struct {
	Results []OCRResult `json:"results"`
}

type SimilarFont struct {
	Name           string  `json:"name"`
	Similarity     float64 `json:"similarity"`
	Category       string  `json:"category"`
	GoogleFontsURL string  `json:"googleFontsUrl,omitempty"`
}

type FontRecognitionResult struct {
	DetectedFont string        `json:"detectedFont"`
	Confidence   float64       `json:"confidence"`
	SimilarFonts []SimilarFont `json:"similarFonts"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	OrderNo     string `json:"order_no"`
}

type UserCreditsResponse struct {
	LeftCredits int `json:"left_credits"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is used by the few endpoints that signal errors via
// conventional HTTP statuses instead of the envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
