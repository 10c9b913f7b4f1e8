package models

// SourceCollection представляет коллекцию товаров в исходном каталоге.
// Ручные и автоматические коллекции приводятся к единому виду
type SourceCollection struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	Kind          string `json:"kind"` // custom | smart
	ProductsCount int    `json:"products_count"`
}

// SourceProduct представляет товар исходного каталога
type SourceProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	BodyHTML    string          `json:"body_html"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Status      string          `json:"status"`
	Options     []SourceOption  `json:"options"`
	Variants    []SourceVariant `json:"variants"`
	Images      []SourceImage   `json:"images"`
}

// SourceOption представляет объявленную опцию товара (цвет, размер и т.д.)
type SourceOption struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// SourceVariant представляет вариант товара.
// Цена и вес приходят строками и разбираются при конвертации,
// некорректные значения трактуются как ноль.
// InventoryQuantity равный nil означает, что остатки не отслеживаются
type SourceVariant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Option1           *string `json:"option1"`
	Option2           *string `json:"option2"`
	Option3           *string `json:"option3"`
	Price             string  `json:"price"`
	Weight            string  `json:"weight"`
	WeightUnit        string  `json:"weight_unit"`
	InventoryQuantity *int    `json:"inventory_quantity"`
}

// SourceImage представляет изображение товара в исходном каталоге
type SourceImage struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	URL      string `json:"src"`
}

// ShopInfo представляет сведения о подключенном исходном магазине
type ShopInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Email  string `json:"email"`
}
