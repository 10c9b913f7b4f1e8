package models

import "time"

// Шаги конвейера синхронизации
const (
	StepFetchAttributes = "fetch_attributes"
	StepResolveOrigin   = "resolve_origin"
	StepFetchProducts   = "fetch_products"
	StepCheckImages     = "check_images"
	StepUploadImages    = "upload_images"
	StepConvert         = "convert"
	StepPublish         = "publish"
	StepRecover         = "recover"
	StepSummarize       = "summarize"
)

// Статусы шагов конвейера
const (
	StepStatusSuccess = "success"
	StepStatusFailed  = "failed"
	StepStatusSkipped = "skipped"
	StepStatusWarning = "warning"
)

// StepTrace запись отладочного следа одного шага конвейера
type StepTrace struct {
	Step   string                 `json:"step"`
	Status string                 `json:"status"`
	Detail map[string]interface{} `json:"detail,omitempty"`
}

// SyncRequest параметры синхронизации одной коллекции
type SyncRequest struct {
	CollectionID    int64   `json:"collection_id"`
	CollectionTitle string  `json:"collection_title,omitempty"`
	CategoryID      int64   `json:"category_id,omitempty"`
	LogisticIDs     []int64 `json:"logistic_ids,omitempty"`
	ExchangeRate    float64 `json:"exchange_rate,omitempty"`
	MarkupRate      float64 `json:"markup_rate,omitempty"`
	Limit           int     `json:"limit,omitempty"`
	PreOrder        bool    `json:"pre_order,omitempty"`
	DaysToShip      int     `json:"days_to_ship,omitempty"`
}

// SyncResult итог обработки одного товара
type SyncResult struct {
	Success       bool        `json:"success"`
	SourceID      int64       `json:"source_id"`
	SourceTitle   string      `json:"source_title"`
	DestinationID int64       `json:"destination_id,omitempty"`
	Error         string      `json:"error,omitempty"`
	Debug         []StepTrace `json:"debug,omitempty"`
}

// SyncCounts сводные счетчики запуска
type SyncCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// CollectionSyncSummary итог синхронизации одной коллекции.
// Success выставляется, если опубликован хотя бы один товар
type CollectionSyncSummary struct {
	RunID           string       `json:"run_id"`
	CollectionID    int64        `json:"collection_id"`
	CollectionTitle string       `json:"collection_title"`
	Success         bool         `json:"success"`
	Error           string       `json:"error,omitempty"`
	Results         []SyncResult `json:"results"`
	Summary         SyncCounts   `json:"summary"`
	Steps           []StepTrace  `json:"steps,omitempty"`
	StartedAt       time.Time    `json:"started_at"`
	FinishedAt      time.Time    `json:"finished_at"`
}

// CollectionPreview краткие сведения о коллекции для предпросмотра
type CollectionPreview struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ProductsCount int    `json:"products_count"`
	FirstProduct  string `json:"first_product,omitempty"`
}

// SyncPreview картина готовности обеих сторон без публикации
type SyncPreview struct {
	SourceConnected      bool                `json:"source_connected"`
	DestinationConnected bool                `json:"destination_connected"`
	SourceShopName       string              `json:"source_shop_name,omitempty"`
	CategoriesCount      int                 `json:"categories_count"`
	Collections          []CollectionPreview `json:"collections"`
	Errors               []string            `json:"errors,omitempty"`
	GeneratedAt          time.Time           `json:"generated_at"`
}
