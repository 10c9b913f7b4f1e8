package messaging

// Темы обмена сообщениями синхронизации
const (
	// SyncCommandsTopic команды на запуск синхронизации, потребляются воркером
	SyncCommandsTopic = "sync-commands"

	// SyncEventsTopic события о завершенных запусках синхронизации
	SyncEventsTopic = "sync-events"
)

// Типы команд синхронизации
const (
	CommandSyncCollection = "sync_collection"
	CommandSyncAll        = "sync_all"
)

// SyncCommand команда на запуск синхронизации
type SyncCommand struct {
	CommandType     string  `json:"command_type"`
	CollectionID    int64   `json:"collection_id,omitempty"`
	CollectionTitle string  `json:"collection_title,omitempty"`
	CategoryID      int64   `json:"category_id,omitempty"`
	LogisticIDs     []int64 `json:"logistic_ids,omitempty"`
	ExchangeRate    float64 `json:"exchange_rate,omitempty"`
	MarkupRate      float64 `json:"markup_rate,omitempty"`
	Limit           int     `json:"limit,omitempty"`
}

// SyncCompletedEvent событие о завершении синхронизации коллекции
type SyncCompletedEvent struct {
	RunID        string `json:"run_id"`
	CollectionID int64  `json:"collection_id"`
	Success      bool   `json:"success"`
	Total        int    `json:"total"`
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`
	Error        string `json:"error,omitempty"`
}
