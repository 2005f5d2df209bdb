package models

import "time"

type Country struct {
	CountryCode        string   `json:"country_code" db:"country_code"`
	CountryName        string   `json:"country_name" db:"country_name"`
	DefaultLanguage    string   `json:"default_language" db:"default_language"`
	SupportedLanguages []string `json:"supported_languages" db:"-"`
}

type Language struct {
	LanguageCode string `json:"language_code" db:"language_code"`
	LanguageName string `json:"language_name" db:"language_name"`
}

// LegalDocument is a country/language specific notice shown before submission.
type LegalDocument struct {
	DocumentType    string    `json:"document_type" db:"document_type"`
	DocumentURL     string    `json:"document_url,omitempty" db:"document_url"`
	DocumentContent string    `json:"document_content" db:"document_content"`
	ContentHTML     string    `json:"content_html,omitempty" db:"-"`
	Version         string    `json:"version" db:"version"`
	EffectiveDate   time.Time `json:"effective_date" db:"effective_date"`
}

type RepairabilityStatus struct {
	StatusCode     string `json:"status_code" db:"status_code"`
	StatusName     string `json:"status_name" db:"status_name"`
	Description    string `json:"description,omitempty" db:"description"`
	RepairLocation string `json:"repair_location,omitempty" db:"repair_location"`
}

// IssueReason is one row of the reason taxonomy table.
type IssueReason struct {
	MainReason   string `json:"main_reason" db:"main_reason"`
	SubReason    string `json:"sub_reason,omitempty" db:"sub_reason"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

// PickupWindow lists the next business days a courier can collect equipment.
type PickupWindow struct {
	CountryCode string   `json:"country_code"`
	Dates       []string `json:"dates"`
}

type Attachment struct {
	ID           int64     `json:"id" db:"id"`
	RequestID    int64     `json:"request_id" db:"request_id"`
	FileName     string    `json:"file_name" db:"file_name"`
	BlobPath     string    `json:"blob_path" db:"blob_path"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	ContentType  string    `json:"content_type" db:"content_type"`
	UploadedBy   string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedDate time.Time `json:"uploaded_date" db:"uploaded_date"`
}

// UploadResult reports the files accepted by POST /api/upload.
type UploadResult struct {
	Success bool         `json:"success"`
	Files   []Attachment `json:"files"`
	Message string       `json:"message"`
}

// DownloadLink is a short-lived URL for one attachment.
type DownloadLink struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
