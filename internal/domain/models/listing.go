package models

// Состояния и константы публикуемой карточки
const (
	ConditionNew = "NEW"

	ItemStatusNormal = "NORMAL"
	ItemStatusUnlist = "UNLIST"
)

// MediaHandle представляет изображение, загруженное в медиахранилище маркетплейса
type MediaHandle struct {
	ImageID string `json:"image_id"`
	URL     string `json:"image_url,omitempty"`
}

// Dimension габариты упаковки в сантиметрах
type Dimension struct {
	PackageLength int `json:"package_length"`
	PackageWidth  int `json:"package_width"`
	PackageHeight int `json:"package_height"`
}

// ImageSection секция изображений карточки
type ImageSection struct {
	ImageIDList []string `json:"image_id_list"`
}

// LogisticChannel включенный канал доставки карточки
type LogisticChannel struct {
	LogisticID int64 `json:"logistic_id"`
	Enabled    bool  `json:"enabled"`
}

// Brand бренд карточки. BrandID 0 означает "No Brand"
type Brand struct {
	BrandID           int64  `json:"brand_id"`
	OriginalBrandName string `json:"original_brand_name"`
}

// PreOrder настройки предзаказа и срока отгрузки
type PreOrder struct {
	IsPreOrder bool `json:"is_pre_order"`
	DaysToShip int  `json:"days_to_ship"`
}

// StockEntry запись об остатке на складе продавца
type StockEntry struct {
	Stock int `json:"stock"`
}

// TierOption значение уровня вариации
type TierOption struct {
	Option string `json:"option"`
}

// TierVariation уровень вариации карточки (не более двух на карточку)
type TierVariation struct {
	Name       string       `json:"name"`
	OptionList []TierOption `json:"option_list"`
}

// ModelEntry модель многовариантной карточки.
// TierIndex содержит по одному индексу на каждый уровень вариации
type ModelEntry struct {
	TierIndex     []int        `json:"tier_index"`
	OriginalPrice int64        `json:"original_price"`
	SellerStock   []StockEntry `json:"seller_stock"`
}

// DestinationListing представляет карточку товара в формате публикации на маркетплейсе
type DestinationListing struct {
	ItemName      string                `json:"item_name"`
	Description   string                `json:"description"`
	CategoryID    int64                 `json:"category_id"`
	OriginalPrice int64                 `json:"original_price"`
	NormalStock   int                   `json:"normal_stock,omitempty"`
	SellerStock   []StockEntry          `json:"seller_stock,omitempty"`
	Weight        float64               `json:"weight"`
	Dimension     Dimension             `json:"dimension"`
	Image         ImageSection          `json:"image"`
	LogisticInfo  []LogisticChannel     `json:"logistic_info"`
	Condition     string                `json:"condition"`
	ItemStatus    string                `json:"item_status"`
	Brand         Brand                 `json:"brand"`
	AttributeList []AttributeAssignment `json:"attribute_list"`
	PreOrder      PreOrder              `json:"pre_order"`
	TierVariation []TierVariation       `json:"tier_variation,omitempty"`
	Model         []ModelEntry          `json:"model,omitempty"`
}

// MultiVariant сообщает, публикуется ли карточка с вариациями
func (l *DestinationListing) MultiVariant() bool {
	return len(l.TierVariation) > 0
}
