package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func defaultParams() ConvertParams {
	return ConvertParams{
		CategoryID:   200100,
		ExchangeRate: 0.21,
		MarkupRate:   1.05,
	}
}

func singleVariantProduct() *models.SourceProduct {
	return &models.SourceProduct{
		ID:     1001,
		Title:  "抹茶クッキー",
		Vendor: "Omishonin",
		Variants: []models.SourceVariant{
			{
				ID:                1,
				Option1:           strPtr("Default Title"),
				Price:             "1000",
				Weight:            "500",
				WeightUnit:        "g",
				InventoryQuantity: intPtr(12),
			},
		},
	}
}

func TestConvertPrice(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		exchange float64
		markup   float64
		want     int64
	}{
		{name: "rounds half up", raw: "1000", exchange: 0.21, markup: 1.05, want: 221},
		{name: "rounds down", raw: "499", exchange: 0.21, markup: 1.0, want: 105},
		{name: "malformed price is zero", raw: "abc", exchange: 0.21, markup: 1.05, want: 0},
		{name: "empty price is zero", raw: "", exchange: 0.21, markup: 1.05, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertPrice(tt.raw, tt.exchange, tt.markup))
		})
	}
}

func TestConvertWeight(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		unit string
		want float64
	}{
		{name: "grams", raw: "500", unit: "g", want: 0.5},
		{name: "kilograms", raw: "1.5", unit: "kg", want: 1.5},
		{name: "pounds", raw: "1", unit: "lb", want: 0.45},
		{name: "ounces", raw: "10", unit: "oz", want: 0.28},
		{name: "below floor", raw: "20", unit: "g", want: 0.1},
		{name: "unknown unit treated as kg", raw: "0.7", unit: "stone", want: 0.7},
		{name: "malformed weight gets floor", raw: "n/a", unit: "kg", want: 0.1},
		{name: "unit case insensitive", raw: "500", unit: "G", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, convertWeight(tt.raw, tt.unit), 0.0001)
		})
	}
}

func TestConvertSingleVariant(t *testing.T) {
	listing := Convert(singleVariantProduct(), defaultParams())

	assert.Equal(t, "【日本直送】抹茶クッキー", listing.ItemName)
	assert.Equal(t, int64(221), listing.OriginalPrice)
	assert.InDelta(t, 0.5, listing.Weight, 0.0001)
	assert.Equal(t, 12, listing.NormalStock)
	require.Len(t, listing.SellerStock, 1)
	assert.Equal(t, 12, listing.SellerStock[0].Stock)
	assert.Empty(t, listing.TierVariation)
	assert.Equal(t, models.ConditionNew, listing.Condition)
	assert.Equal(t, models.ItemStatusUnlist, listing.ItemStatus)
	assert.Equal(t, models.Dimension{PackageLength: 10, PackageWidth: 10, PackageHeight: 10}, listing.Dimension)
	assert.False(t, listing.PreOrder.IsPreOrder)
	assert.Equal(t, 2, listing.PreOrder.DaysToShip)
}

func TestConvertPriceBelowMinimumFallsBack(t *testing.T) {
	product := singleVariantProduct()
	product.Variants[0].Price = "20" // 20 * 0.21 * 1.05 = 4 < 10

	listing := Convert(product, defaultParams())

	assert.Equal(t, int64(100), listing.OriginalPrice)
}

func TestConvertStockRules(t *testing.T) {
	t.Run("nil inventory means untracked", func(t *testing.T) {
		product := singleVariantProduct()
		product.Variants[0].InventoryQuantity = nil

		listing := Convert(product, defaultParams())

		assert.Equal(t, 900, listing.NormalStock)
	})

	t.Run("negative inventory is clamped to zero", func(t *testing.T) {
		product := singleVariantProduct()
		product.Variants[0].InventoryQuantity = intPtr(-5)

		listing := Convert(product, defaultParams())

		assert.Equal(t, 0, listing.NormalStock)
	})

	t.Run("no variants at all", func(t *testing.T) {
		product := singleVariantProduct()
		product.Variants = nil

		listing := Convert(product, defaultParams())

		assert.Equal(t, 900, listing.NormalStock)
		assert.Equal(t, int64(100), listing.OriginalPrice)
		assert.InDelta(t, 0.5, listing.Weight, 0.0001)
	})
}

func TestConvertTitleTruncation(t *testing.T) {
	product := singleVariantProduct()
	product.Title = strings.Repeat("あ", 150)

	listing := Convert(product, defaultParams())

	runes := []rune(listing.ItemName)
	assert.Len(t, runes, 120)
	assert.Equal(t, "【日本直送】", string(runes[:6]))
}

func TestConvertDescription(t *testing.T) {
	t.Run("strips html markup", func(t *testing.T) {
		product := singleVariantProduct()
		product.BodyHTML = "<p>手作り<b>クッキー</b></p>"

		listing := Convert(product, defaultParams())

		assert.Equal(t, "【日本直送】本商品由日本直接發貨。\n\n手作りクッキー", listing.Description)
	})

	t.Run("empty body falls back to title", func(t *testing.T) {
		product := singleVariantProduct()
		product.BodyHTML = ""

		listing := Convert(product, defaultParams())

		assert.Equal(t, "【日本直送】本商品由日本直接發貨。\n\n抹茶クッキー", listing.Description)
	})
}

func TestConvertBrand(t *testing.T) {
	product := singleVariantProduct()
	product.Vendor = "  "

	listing := Convert(product, defaultParams())

	assert.Equal(t, int64(0), listing.Brand.BrandID)
	assert.Equal(t, "No Brand", listing.Brand.OriginalBrandName)
}

func TestConvertPreOrder(t *testing.T) {
	params := defaultParams()
	params.PreOrder = true
	params.DaysToShip = 14

	listing := Convert(singleVariantProduct(), params)

	assert.True(t, listing.PreOrder.IsPreOrder)
	assert.Equal(t, 14, listing.PreOrder.DaysToShip)
}

func TestConvertImages(t *testing.T) {
	params := defaultParams()
	params.MediaHandles = []models.MediaHandle{
		{ImageID: "img-1"},
		{ImageID: "img-2"},
	}

	listing := Convert(singleVariantProduct(), params)

	assert.Equal(t, []string{"img-1", "img-2"}, listing.Image.ImageIDList)
}

func TestConvertAttributes(t *testing.T) {
	t.Run("gift food category gets template", func(t *testing.T) {
		params := defaultParams()
		params.CategoryID = 100656

		listing := Convert(singleVariantProduct(), params)

		require.Len(t, listing.AttributeList, 13)
		assert.Equal(t, int64(102384), listing.AttributeList[0].AttributeID)
		assert.Equal(t, int64(17007), listing.AttributeList[0].Values[0].ValueID)
	})

	t.Run("other categories get empty list", func(t *testing.T) {
		listing := Convert(singleVariantProduct(), defaultParams())

		assert.NotNil(t, listing.AttributeList)
		assert.Empty(t, listing.AttributeList)
	})
}

func TestConvertMultiVariant(t *testing.T) {
	product := &models.SourceProduct{
		ID:    1002,
		Title: "Tシャツ",
		Options: []models.SourceOption{
			{Name: "Color", Position: 1, Values: []string{"Red", "Blue"}},
			{Name: "Size", Position: 2, Values: []string{"S", "M"}},
		},
		Variants: []models.SourceVariant{
			{Option1: strPtr("Red"), Option2: strPtr("S"), Price: "1000", Weight: "200", WeightUnit: "g", InventoryQuantity: intPtr(1)},
			{Option1: strPtr("Red"), Option2: strPtr("M"), Price: "1000", Weight: "200", WeightUnit: "g", InventoryQuantity: intPtr(2)},
			{Option1: strPtr("Blue"), Option2: strPtr("S"), Price: "2000", Weight: "200", WeightUnit: "g", InventoryQuantity: intPtr(3)},
			{Option1: strPtr("Blue"), Option2: strPtr("M"), Price: "2000", Weight: "200", WeightUnit: "g", InventoryQuantity: nil},
		},
	}

	listing := Convert(product, defaultParams())

	require.True(t, listing.MultiVariant())
	require.Len(t, listing.TierVariation, 2)
	assert.Equal(t, "Color", listing.TierVariation[0].Name)
	assert.Equal(t, "Size", listing.TierVariation[1].Name)
	require.Len(t, listing.TierVariation[0].OptionList, 2)

	require.Len(t, listing.Model, 4)
	assert.Equal(t, []int{0, 0}, listing.Model[0].TierIndex)
	assert.Equal(t, []int{0, 1}, listing.Model[1].TierIndex)
	assert.Equal(t, []int{1, 0}, listing.Model[2].TierIndex)
	assert.Equal(t, []int{1, 1}, listing.Model[3].TierIndex)

	assert.Equal(t, int64(221), listing.Model[0].OriginalPrice)
	assert.Equal(t, int64(441), listing.Model[2].OriginalPrice)
	assert.Equal(t, 900, listing.Model[3].SellerStock[0].Stock)

	// Остатки уровня товара не публикуются вместе с моделями
	assert.Zero(t, listing.NormalStock)
	assert.Nil(t, listing.SellerStock)
}

func TestConvertMultiVariantModelPriceFallsBackToBase(t *testing.T) {
	product := &models.SourceProduct{
		ID:    1003,
		Title: "靴下",
		Options: []models.SourceOption{
			{Name: "Size", Position: 1, Values: []string{"S", "M"}},
		},
		Variants: []models.SourceVariant{
			{Option1: strPtr("S"), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(5)},
			{Option1: strPtr("M"), Price: "10", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(5)},
		},
	}

	listing := Convert(product, defaultParams())

	require.Len(t, listing.Model, 2)
	// Модель, не добравшая до минимума, берет цену уровня товара
	assert.Equal(t, int64(221), listing.Model[1].OriginalPrice)
}

func TestConvertMultiVariantDropsUnmappedVariant(t *testing.T) {
	product := &models.SourceProduct{
		ID:    1004,
		Title: "帽子",
		Options: []models.SourceOption{
			{Name: "Size", Position: 1, Values: []string{"S", "M"}},
		},
		Variants: []models.SourceVariant{
			{Option1: strPtr("S"), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(5)},
			{Option1: strPtr("XL"), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(5)},
		},
	}

	listing := Convert(product, defaultParams())

	require.Len(t, listing.Model, 1)
	assert.Equal(t, []int{0}, listing.Model[0].TierIndex)
}

func TestConvertMultiVariantAllUnmappedFallsBackToSingle(t *testing.T) {
	product := &models.SourceProduct{
		ID:    1005,
		Title: "鞄",
		Options: []models.SourceOption{
			{Name: "Size", Position: 1, Values: []string{"S"}},
		},
		Variants: []models.SourceVariant{
			{Option1: strPtr("XL"), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(7)},
			{Option1: strPtr("XXL"), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(7)},
		},
	}

	listing := Convert(product, defaultParams())

	assert.False(t, listing.MultiVariant())
	assert.Equal(t, 7, listing.NormalStock)
}

func TestConvertTierValueTruncatedButLookupUsesRawValue(t *testing.T) {
	longValue := strings.Repeat("x", 30)
	product := &models.SourceProduct{
		ID:    1006,
		Title: "長い値",
		Options: []models.SourceOption{
			{Name: "Kind", Position: 1, Values: []string{longValue}},
		},
		Variants: []models.SourceVariant{
			{Option1: strPtr(longValue), Price: "1000", Weight: "100", WeightUnit: "g", InventoryQuantity: intPtr(3)},
		},
	}

	listing := Convert(product, defaultParams())

	require.True(t, listing.MultiVariant())
	assert.Len(t, []rune(listing.TierVariation[0].OptionList[0].Option), 20)
	require.Len(t, listing.Model, 1)
}

func TestConvertIsDeterministic(t *testing.T) {
	product := singleVariantProduct()
	params := defaultParams()

	first := Convert(product, params)
	second := Convert(product, params)

	assert.Equal(t, first, second)
}
