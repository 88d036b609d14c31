package models

type GenOutfitRequest struct {
	BaseImageURL string `json:"base_image_url,omitempty"`
	// Image switches the request into layered decomposition mode.
	Image                string `json:"image,omitempty"`
	Description          string `json:"description,omitempty"`
	AspectRatio          string `json:"aspect_ratio,omitempty"`
	ResolutionInput      string `json:"resolution_input,omitempty"`
	NumLayers            *int   `json:"num_layers,omitempty"`
	GoFast               *bool  `json:"go_fast,omitempty"`
	OutputFormat         string `json:"output_format,omitempty"`
	OutputQuality        *int   `json:"output_quality,omitempty"`
	DisableSafetyChecker *bool  `json:"disable_safety_checker,omitempty"`
}

type GenLayeredRequest struct {
	Image         string `json:"image"`
	Description   string `json:"description,omitempty"`
	NumLayers     *int   `json:"num_layers,omitempty"`
	GoFast        *bool  `json:"go_fast,omitempty"`
	OutputFormat  string `json:"output_format,omitempty"`
	OutputQuality *int   `json:"output_quality,omitempty"`
}

type GenWallpaperRequest struct {
	Description string `json:"description"`
	UserUUID    string `json:"user_uuid,omitempty"`
}

type ImageTextRequest struct {
	BaseImageURL string `json:"base_image_url"`
	Description  string `json:"description,omitempty"`
}

type FlipImageRequest struct {
	BaseImageURL string `json:"base_image_url"`
	FlipType     string `json:"flip_type"`
	Description  string `json:"description,omitempty"`
}

type InvertImageRequest struct {
	BaseImageURL string `json:"base_image_url"`
	Description  string `json:"description,omitempty"`
}

type RecognizeRequest struct {
	// Image is base64 encoded, without the data URL prefix for OCR.
	Image string `json:"image"`
}

type UploadImageRequest struct {
	// Image is a data URL (data:image/png;base64,...).
	Image string `json:"image"`
	Type  string `json:"type,omitempty"`
}

type PresignRequest struct {
	Type   string `json:"type,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

type DownloadZipRequest struct {
	Images   []ZipImage `json:"images"`
	BaseName string     `json:"baseName,omitempty"`
}

type ZipImage struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

type SyncUserRequest struct {
	Email     string `json:"email"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
