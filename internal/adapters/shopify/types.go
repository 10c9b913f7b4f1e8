package shopify

import (
	"encoding/json"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

// Структуры провода Admin REST API исходной платформы.
// Числовые поля веса приходят числами JSON и переносятся в модель строками,
// чтобы разбор откладывался до конвертации

type shopEnvelope struct {
	Shop wireShop `json:"shop"`
}

type wireShop struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Email  string `json:"email"`
}

type customCollectionsEnvelope struct {
	CustomCollections []wireCollection `json:"custom_collections"`
}

type smartCollectionsEnvelope struct {
	SmartCollections []wireCollection `json:"smart_collections"`
}

type wireCollection struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	ProductsCount int    `json:"products_count"`
}

type productsEnvelope struct {
	Products []wireProduct `json:"products"`
}

type wireProduct struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	BodyHTML    string        `json:"body_html"`
	Vendor      string        `json:"vendor"`
	ProductType string        `json:"product_type"`
	Status      string        `json:"status"`
	Options     []wireOption  `json:"options"`
	Variants    []wireVariant `json:"variants"`
	Images      []wireImage   `json:"images"`
}

type wireOption struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type wireVariant struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Option1           *string     `json:"option1"`
	Option2           *string     `json:"option2"`
	Option3           *string     `json:"option3"`
	Price             string      `json:"price"`
	Weight            json.Number `json:"weight"`
	WeightUnit        string      `json:"weight_unit"`
	InventoryQuantity *int        `json:"inventory_quantity"`
}

type wireImage struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

func (c wireCollection) toModel(kind string) models.SourceCollection {
	return models.SourceCollection{
		ID:            c.ID,
		Title:         c.Title,
		Handle:        c.Handle,
		Kind:          kind,
		ProductsCount: c.ProductsCount,
	}
}

func (p wireProduct) toModel() models.SourceProduct {
	product := models.SourceProduct{
		ID:          p.ID,
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Status:      p.Status,
	}

	for _, o := range p.Options {
		product.Options = append(product.Options, models.SourceOption{
			Name:     o.Name,
			Position: o.Position,
			Values:   o.Values,
		})
	}

	for _, v := range p.Variants {
		product.Variants = append(product.Variants, models.SourceVariant{
			ID:                v.ID,
			Title:             v.Title,
			Option1:           v.Option1,
			Option2:           v.Option2,
			Option3:           v.Option3,
			Price:             v.Price,
			Weight:            v.Weight.String(),
			WeightUnit:        v.WeightUnit,
			InventoryQuantity: v.InventoryQuantity,
		})
	}

	for _, img := range p.Images {
		product.Images = append(product.Images, models.SourceImage{
			ID:       img.ID,
			Position: img.Position,
			URL:      img.Src,
		})
	}

	return product
}
