package shopee

import (
	"context"
	"fmt"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

// CreateListing публикует карточку товара через add_item
// и возвращает идентификатор созданного товара
func (c *Client) CreateListing(ctx context.Context, listing *models.DestinationListing) (int64, error) {
	var response struct {
		ItemID int64 `json:"item_id"`
	}
	if err := c.shopPostJSON(ctx, c.mediaClient, pathAddItem, listing, &response); err != nil {
		return 0, err
	}
	if response.ItemID == 0 {
		return 0, fmt.Errorf("shopee: %s: response carries no item id", pathAddItem)
	}

	c.logger.InfoWithContext(ctx, "listing created",
		"item_id", response.ItemID, "item_name", listing.ItemName)
	return response.ItemID, nil
}
