package models

// Attribute атрибут категории в схеме маркетплейса
type Attribute struct {
	AttributeID   int64            `json:"attribute_id"`
	OriginalName  string           `json:"original_attribute_name"`
	DisplayName   string           `json:"display_attribute_name"`
	IsMandatory   bool             `json:"is_mandatory"`
	InputType     string           `json:"input_type"`
	AttributeType string           `json:"attribute_type"`
	Values        []AttributeValue `json:"attribute_value_list"`
}

// AttributeValue допустимое значение атрибута
type AttributeValue struct {
	ValueID      int64  `json:"value_id"`
	OriginalName string `json:"original_value_name"`
	DisplayName  string `json:"display_value_name"`
}

// AttributeSchema схема атрибутов категории
type AttributeSchema struct {
	CategoryID int64       `json:"category_id"`
	Attributes []Attribute `json:"attribute_list"`
}

// ResolvedAttribute результат поиска атрибута по схеме категории.
// ValueID может быть нулевым, тогда значение передается свободным текстом
type ResolvedAttribute struct {
	AttributeID       int64  `json:"attribute_id"`
	ValueID           int64  `json:"value_id"`
	OriginalValueName string `json:"original_value_name"`
}

// AttributeAssignmentValue значение атрибута, назначаемое карточке
type AttributeAssignmentValue struct {
	ValueID           int64  `json:"value_id"`
	OriginalValueName string `json:"original_value_name,omitempty"`
}

// AttributeAssignment назначение атрибута карточке при публикации
type AttributeAssignment struct {
	AttributeID int64                      `json:"attribute_id"`
	Values      []AttributeAssignmentValue `json:"attribute_value_list"`
}

// Category категория каталога маркетплейса
type Category struct {
	CategoryID   int64  `json:"category_id"`
	ParentID     int64  `json:"parent_category_id"`
	OriginalName string `json:"original_category_name"`
	DisplayName  string `json:"display_category_name"`
	HasChildren  bool   `json:"has_children"`
}

// LogisticsChannel канал доставки, доступный магазину на маркетплейсе
type LogisticsChannel struct {
	ChannelID int64  `json:"logistics_channel_id"`
	Name      string `json:"logistics_channel_name"`
	Enabled   bool   `json:"enabled"`
}

// ShopProfile сведения о магазине на маркетплейсе
type ShopProfile struct {
	ShopName string `json:"shop_name"`
	Region   string `json:"region"`
	Status   string `json:"status"`
}
