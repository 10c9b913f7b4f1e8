package services

import "github.com/omishoninjp-sys/gotoshopee/internal/domain/models"

// Категория "禮盒" (подарочные продуктовые наборы) целевого маркетплейса
const giftFoodCategoryID int64 = 100656

// attributeTemplate фиксированный набор атрибутов, назначаемых карточке категории
type attributeTemplate []models.AttributeAssignment

// Шаблон обязательных атрибутов продуктовых категорий.
// Атрибуты с выпадающим списком передаются через value_id,
// текстовые атрибуты через original_value_name
var giftFoodTemplate = attributeTemplate{
	{
		// Region of Origin 產地
		AttributeID: 102384,
		Values:      []models.AttributeAssignmentValue{{ValueID: 17007}}, // Japan
	},
	{
		// Pork Origin Region 豬肉產地
		AttributeID: 101021,
		Values:      []models.AttributeAssignmentValue{{ValueID: 5549}}, // No Pork
	},
	{
		// Weight 重量
		AttributeID: 100095,
		Values:      []models.AttributeAssignmentValue{{ValueID: 613}}, // 500g
	},
	{
		// Shelf Life 保存期限
		AttributeID: 100010,
		Values:      []models.AttributeAssignmentValue{{ValueID: 568}}, // 2 Months
	},
	{
		// Liable Company Name 負責廠商名稱
		AttributeID: 100975,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "Omishonin Co., Ltd."}},
	},
	{
		// Liable Company Address 負責廠商地址
		AttributeID: 100976,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "New Ryogoku Heights 303, 1-28-4 Midori, Sumida-ku, Tokyo, 130-0021, Japan"}},
	},
	{
		// Liable Company Tel No. 負責廠商電話
		AttributeID: 100977,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "+81 0366593195"}},
	},
	{
		// Ingredient 成分
		AttributeID: 100974,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "詳見商品包裝"}},
	},
	{
		// Quantity 數量
		AttributeID: 100999,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "1"}},
	},
	{
		// Food Additives 食品添加物
		AttributeID: 102564,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "詳見商品包裝"}},
	},
	{
		// Nutrition Facts 營養標示
		AttributeID: 102565,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "詳見商品包裝"}},
	},
	{
		// GMO Indication 基改標示
		AttributeID: 102566,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "本產品不含基因改造成分"}},
	},
	{
		// Other Regulatory Requirements 其他法規
		AttributeID: 102567,
		Values:      []models.AttributeAssignmentValue{{OriginalValueName: "詳見商品包裝"}},
	},
}

// foodCategoryAttributes таблица политики: категория → шаблон атрибутов.
// TODO: заполнять назначения из схемы атрибутов категории вместо шаблона
var foodCategoryAttributes = map[int64]attributeTemplate{
	giftFoodCategoryID: giftFoodTemplate,
}

// attributesForCategory возвращает назначения атрибутов для категории.
// Для категорий вне таблицы возвращается пустой список, а не nil
func attributesForCategory(categoryID int64) []models.AttributeAssignment {
	template, ok := foodCategoryAttributes[categoryID]
	if !ok {
		return []models.AttributeAssignment{}
	}

	out := make([]models.AttributeAssignment, len(template))
	copy(out, template)
	return out
}
