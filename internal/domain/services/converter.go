package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

// Ограничения и значения по умолчанию целевого маркетплейса
const (
	maxTitleRunes       = 120
	maxDescriptionRunes = 3000
	maxTierRunes        = 20
	maxImagesPerListing = 9

	minListingPrice      = 10
	fallbackListingPrice = 100

	untrackedStock = 900

	defaultWeightKg   = 0.5
	minWeightKg       = 0.1
	defaultDaysToShip = 2

	packageSideCm = 10

	noBrandName = "No Brand"

	// Сентинел исходной платформы для товара без объявленных опций
	noOptionSentinel = "Default Title"
)

// Маркетинговые префиксы, добавляемые к названию и описанию карточки
const (
	titlePrefix       = "【日本直送】"
	descriptionPrefix = "【日本直送】本商品由日本直接發貨。\n\n"
)

// Коэффициенты перевода веса исходной платформы в килограммы
var weightUnitToKg = map[string]decimal.Decimal{
	"g":  decimal.NewFromFloat(0.001),
	"kg": decimal.NewFromInt(1),
	"lb": decimal.NewFromFloat(0.453592),
	"oz": decimal.NewFromFloat(0.0283495),
}

// ConvertParams параметры конвертации одного товара
type ConvertParams struct {
	CategoryID      int64
	MediaHandles    []models.MediaHandle
	CollectionTitle string
	OriginAttribute *models.ResolvedAttribute
	ExchangeRate    float64
	MarkupRate      float64
	PreOrder        bool
	DaysToShip      int
}

// Convert преобразует товар исходного каталога в карточку целевого маркетплейса.
// Чистая функция: одинаковый вход дает побайтово одинаковый выход
func Convert(product *models.SourceProduct, params ConvertParams) *models.DestinationListing {
	listing := &models.DestinationListing{
		CategoryID:    params.CategoryID,
		Condition:     models.ConditionNew,
		ItemStatus:    models.ItemStatusUnlist,
		OriginalPrice: fallbackListingPrice,
		Weight:        defaultWeightKg,
		Dimension: models.Dimension{
			PackageLength: packageSideCm,
			PackageWidth:  packageSideCm,
			PackageHeight: packageSideCm,
		},
		Image:         models.ImageSection{ImageIDList: imageIDs(params.MediaHandles)},
		LogisticInfo:  []models.LogisticChannel{},
		AttributeList: attributesForCategory(params.CategoryID),
	}

	listing.ItemName = truncateRunes(titlePrefix+product.Title, maxTitleRunes)
	listing.Description = buildDescription(product)
	listing.Brand = buildBrand(product.Vendor)
	listing.PreOrder = buildPreOrder(params.PreOrder, params.DaysToShip)

	if len(product.Variants) == 0 {
		listing.NormalStock = untrackedStock
		listing.SellerStock = []models.StockEntry{{Stock: untrackedStock}}
		return listing
	}

	first := product.Variants[0]

	basePrice := convertPrice(first.Price, params.ExchangeRate, params.MarkupRate)
	if basePrice < minListingPrice {
		basePrice = fallbackListingPrice
	}
	listing.OriginalPrice = basePrice
	listing.Weight = convertWeight(first.Weight, first.WeightUnit)

	if multiVariant(product) {
		buildVariations(listing, product, basePrice, params.ExchangeRate, params.MarkupRate)
		if listing.MultiVariant() {
			return listing
		}
	}

	stock := normalizeStock(first.InventoryQuantity)
	listing.NormalStock = stock
	listing.SellerStock = []models.StockEntry{{Stock: stock}}
	return listing
}

// multiVariant определяет вариативность товара: больше одного варианта либо
// единственный вариант с опцией, отличной от сентинела "без опций"
func multiVariant(product *models.SourceProduct) bool {
	if len(product.Variants) > 1 {
		return true
	}
	return derefString(product.Variants[0].Option1) != noOptionSentinel
}

// convertPrice переводит цену исходной валюты в целую цену целевой.
// Некорректная строка цены трактуется как ноль
func convertPrice(raw string, exchangeRate, markupRate float64) int64 {
	price := parseDecimal(raw)
	rate := decimal.NewFromFloat(exchangeRate)
	markup := decimal.NewFromFloat(markupRate)
	return price.Mul(rate).Mul(markup).Round(0).IntPart()
}

// convertWeight переводит вес варианта в килограммы: таблица коэффициентов,
// нижняя граница 0.1 кг, округление до двух знаков
func convertWeight(raw string, unit string) float64 {
	factor, ok := weightUnitToKg[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		factor = decimal.NewFromInt(1)
	}

	kg := parseDecimal(raw).Mul(factor)
	min := decimal.NewFromFloat(minWeightKg)
	if kg.LessThan(min) {
		kg = min
	}
	result, _ := kg.Round(2).Float64()
	return result
}

// normalizeStock применяет правила остатков: nil означает неотслеживаемый
// остаток и дает сентинел 900, отрицательный остаток обнуляется
func normalizeStock(inventory *int) int {
	if inventory == nil {
		return untrackedStock
	}
	if *inventory < 0 {
		return 0
	}
	return *inventory
}

// buildDescription собирает описание: префикс плюс тело без HTML-тегов,
// при пустом теле подставляется название товара
func buildDescription(product *models.SourceProduct) string {
	body := stripHTML(product.BodyHTML)
	if body == "" {
		body = product.Title
	}
	return truncateRunes(descriptionPrefix+body, maxDescriptionRunes)
}

func buildBrand(vendor string) models.Brand {
	name := strings.TrimSpace(vendor)
	if name == "" {
		name = noBrandName
	}
	// BrandID всегда 0: каталог брендов маркетплейса не используется
	return models.Brand{BrandID: 0, OriginalBrandName: name}
}

func buildPreOrder(preOrder bool, daysToShip int) models.PreOrder {
	if preOrder {
		return models.PreOrder{IsPreOrder: true, DaysToShip: daysToShip}
	}
	return models.PreOrder{IsPreOrder: false, DaysToShip: defaultDaysToShip}
}

// buildVariations строит до двух уровней вариаций из объявленных опций товара
// и модели по вариантам. Вариант, чье значение опции не найдено среди
// объявленных, молча исключается из моделей
func buildVariations(listing *models.DestinationListing, product *models.SourceProduct, basePrice int64, exchangeRate, markupRate float64) {
	optionCount := len(product.Options)
	if optionCount > 2 {
		optionCount = 2
	}
	if optionCount == 0 {
		return
	}

	tiers := make([]models.TierVariation, 0, optionCount)
	lookups := make([]map[string]int, 0, optionCount)
	for _, opt := range product.Options[:optionCount] {
		tier := models.TierVariation{Name: truncateRunes(opt.Name, maxTierRunes)}
		lookup := make(map[string]int, len(opt.Values))
		for i, value := range opt.Values {
			tier.OptionList = append(tier.OptionList, models.TierOption{Option: truncateRunes(value, maxTierRunes)})
			lookup[value] = i
		}
		tiers = append(tiers, tier)
		lookups = append(lookups, lookup)
	}

	var entries []models.ModelEntry
	for _, variant := range product.Variants {
		indices := make([]int, 0, optionCount)
		selectors := []*string{variant.Option1, variant.Option2}

		resolved := true
		for tier := 0; tier < optionCount; tier++ {
			idx, ok := lookups[tier][derefString(selectors[tier])]
			if !ok {
				resolved = false
				break
			}
			indices = append(indices, idx)
		}
		if !resolved {
			continue
		}

		// Цена модели считается по той же формуле; при недоборе минимума
		// подставляется цена уровня товара, а не фиксированный фолбэк
		price := convertPrice(variant.Price, exchangeRate, markupRate)
		if price < minListingPrice {
			price = basePrice
		}

		entries = append(entries, models.ModelEntry{
			TierIndex:     indices,
			OriginalPrice: price,
			SellerStock:   []models.StockEntry{{Stock: normalizeStock(variant.InventoryQuantity)}},
		})
	}

	if len(entries) == 0 {
		return
	}

	listing.TierVariation = tiers
	listing.Model = entries
	listing.NormalStock = 0
	listing.SellerStock = nil
}

func imageIDs(handles []models.MediaHandle) []string {
	ids := make([]string, 0, len(handles))
	for _, h := range handles {
		ids = append(ids, h.ImageID)
	}
	return ids
}

// parseDecimal разбирает числовую строку, некорректное значение дает ноль
func parseDecimal(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// stripHTML удаляет HTML-разметку, оставляя только текстовые узлы
func stripHTML(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(b.String())
}

// truncateRunes обрезает строку до limit кодовых точек
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
