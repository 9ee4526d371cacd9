package cmc

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/coinboard/coinboard/internal/model"
)

const listingsPath = "/v1/cryptocurrency/listings/latest"

// Listings fetches one page of ranked asset quotes. Any transport failure,
// non-success status, or malformed listing fails the whole call - callers
// never see partial results.
func (c *Client) Listings(ctx context.Context, start, limit int, convert string) ([]model.Coin, error) {
	query := url.Values{}
	query.Set("start", strconv.Itoa(start))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("convert", convert)

	var resp listingsResponse
	if err := c.get(ctx, listingsPath, query, &resp); err != nil {
		return nil, fmt.Errorf("get listings: %w", err)
	}

	if resp.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("get listings: provider error %d: %s",
			resp.Status.ErrorCode, resp.Status.ErrorMessage)
	}

	now := time.Now().UTC()
	coins := make([]model.Coin, 0, len(resp.Data))
	for _, listing := range resp.Data {
		coin, err := listing.toCoin(convert, now)
		if err != nil {
			return nil, fmt.Errorf("decode listings: %w", err)
		}
		coins = append(coins, coin)
	}

	return coins, nil
}
