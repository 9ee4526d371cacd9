package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/coinboard/coinboard/internal/model"
)

// Postgres stores snapshots and history in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Numeric columns are read back as text so decimal values never pass
// through a float representation.
const coinColumns = `id, name, symbol, slug, cmc_rank, date_added,
	max_supply::text, circulating_supply::text, current_price::text,
	volume_24h::text, volume_change_24h::text, market_cap::text,
	percent_change_1h::text, percent_change_24h::text, percent_change_7d::text,
	percent_change_30d::text, percent_change_60d::text, percent_change_90d::text,
	last_updated`

// UpsertCoin inserts a coin or replaces all mutable fields of the existing
// row in a single statement, so there is no window between an existence
// check and the write.
func (s *Postgres) UpsertCoin(ctx context.Context, coin model.Coin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO coins (
			id, name, symbol, slug, cmc_rank, date_added,
			max_supply, circulating_supply, current_price, volume_24h,
			volume_change_24h, market_cap,
			percent_change_1h, percent_change_24h, percent_change_7d,
			percent_change_30d, percent_change_60d, percent_change_90d,
			last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			slug = EXCLUDED.slug,
			cmc_rank = EXCLUDED.cmc_rank,
			date_added = EXCLUDED.date_added,
			max_supply = EXCLUDED.max_supply,
			circulating_supply = EXCLUDED.circulating_supply,
			current_price = EXCLUDED.current_price,
			volume_24h = EXCLUDED.volume_24h,
			volume_change_24h = EXCLUDED.volume_change_24h,
			market_cap = EXCLUDED.market_cap,
			percent_change_1h = EXCLUDED.percent_change_1h,
			percent_change_24h = EXCLUDED.percent_change_24h,
			percent_change_7d = EXCLUDED.percent_change_7d,
			percent_change_30d = EXCLUDED.percent_change_30d,
			percent_change_60d = EXCLUDED.percent_change_60d,
			percent_change_90d = EXCLUDED.percent_change_90d,
			last_updated = EXCLUDED.last_updated`,
		coin.ID, coin.Name, coin.Symbol, coin.Slug, coin.Rank, coin.DateAdded,
		decArg(coin.MaxSupply), decArg(coin.CirculatingSupply),
		coin.Price.String(), coin.Volume24h.String(),
		decArg(coin.VolumeChange24h), coin.MarketCap.String(),
		decArg(coin.PercentChange1h), decArg(coin.PercentChange24h),
		decArg(coin.PercentChange7d), decArg(coin.PercentChange30d),
		decArg(coin.PercentChange60d), decArg(coin.PercentChange90d),
		coin.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert coin %s: %w", coin.ID, err)
	}
	return nil
}

// AppendPrice records one immutable price observation.
func (s *Postgres) AppendPrice(ctx context.Context, point model.PricePoint) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_history (coin_id, price, ts)
		VALUES ($1, $2, $3)`,
		point.CoinID, point.Price.String(), point.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append price for %s: %w", point.CoinID, err)
	}
	return nil
}

// TopByMarketCap returns up to n coins ordered by market cap descending.
// cmc_rank breaks ties so repeated reads stay stable.
func (s *Postgres) TopByMarketCap(ctx context.Context, n int) ([]model.Coin, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+coinColumns+`
		FROM coins
		ORDER BY market_cap DESC, cmc_rank ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query top coins: %w", err)
	}
	defer rows.Close()

	var coins []model.Coin
	for rows.Next() {
		coin, err := scanCoin(rows)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query top coins: %w", err)
	}
	return coins, nil
}

// CoinBySlug looks up one coin by its unique slug.
func (s *Postgres) CoinBySlug(ctx context.Context, slug string) (model.Coin, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+coinColumns+`
		FROM coins
		WHERE slug = $1`, slug)
	if err != nil {
		return model.Coin{}, fmt.Errorf("query coin by slug: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Coin{}, fmt.Errorf("query coin by slug: %w", err)
		}
		return model.Coin{}, ErrNotFound
	}
	return scanCoin(rows)
}

// RecentHistory returns, per coin, its k most recent price points in
// ascending timestamp order. One batched query serves all coins; the
// rank-within-partition window caps each coin independently.
func (s *Postgres) RecentHistory(ctx context.Context, coinIDs []string, k int) (map[string][]model.PricePoint, error) {
	if len(coinIDs) == 0 {
		return map[string][]model.PricePoint{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		WITH ranked AS (
			SELECT coin_id, price::text AS price, ts,
			       row_number() OVER (PARTITION BY coin_id ORDER BY ts DESC) AS rn
			FROM price_history
			WHERE coin_id = ANY($1)
		)
		SELECT coin_id, price, ts
		FROM ranked
		WHERE rn <= $2
		ORDER BY coin_id, ts ASC`, coinIDs, k)
	if err != nil {
		return nil, fmt.Errorf("query recent history: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]model.PricePoint, len(coinIDs))
	for rows.Next() {
		point, err := scanPricePoint(rows)
		if err != nil {
			return nil, err
		}
		history[point.CoinID] = append(history[point.CoinID], point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query recent history: %w", err)
	}
	return history, nil
}

// History returns the complete price history for one coin, oldest first.
func (s *Postgres) History(ctx context.Context, coinID string) ([]model.PricePoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT coin_id, price::text, ts
		FROM price_history
		WHERE coin_id = $1
		ORDER BY ts ASC`, coinID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		point, err := scanPricePoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return points, nil
}

func scanCoin(rows pgx.Rows) (model.Coin, error) {
	var (
		c                                model.Coin
		price, volume, marketCap         string
		maxSupply, circSupply, volChange *string
		p1h, p24h, p7d, p30d, p60d, p90d *string
	)

	err := rows.Scan(
		&c.ID, &c.Name, &c.Symbol, &c.Slug, &c.Rank, &c.DateAdded,
		&maxSupply, &circSupply, &price, &volume, &volChange, &marketCap,
		&p1h, &p24h, &p7d, &p30d, &p60d, &p90d,
		&c.LastUpdated,
	)
	if err != nil {
		return model.Coin{}, fmt.Errorf("scan coin: %w", err)
	}

	if c.Price, err = decimal.NewFromString(price); err != nil {
		return model.Coin{}, fmt.Errorf("parse current_price: %w", err)
	}
	if c.Volume24h, err = decimal.NewFromString(volume); err != nil {
		return model.Coin{}, fmt.Errorf("parse volume_24h: %w", err)
	}
	if c.MarketCap, err = decimal.NewFromString(marketCap); err != nil {
		return model.Coin{}, fmt.Errorf("parse market_cap: %w", err)
	}

	for _, field := range []struct {
		src *string
		dst **decimal.Decimal
	}{
		{maxSupply, &c.MaxSupply},
		{circSupply, &c.CirculatingSupply},
		{volChange, &c.VolumeChange24h},
		{p1h, &c.PercentChange1h},
		{p24h, &c.PercentChange24h},
		{p7d, &c.PercentChange7d},
		{p30d, &c.PercentChange30d},
		{p60d, &c.PercentChange60d},
		{p90d, &c.PercentChange90d},
	} {
		if field.src == nil {
			continue
		}
		d, err := decimal.NewFromString(*field.src)
		if err != nil {
			return model.Coin{}, fmt.Errorf("parse numeric column: %w", err)
		}
		*field.dst = &d
	}

	return c, nil
}

func scanPricePoint(rows pgx.Rows) (model.PricePoint, error) {
	var (
		p     model.PricePoint
		price string
	)
	if err := rows.Scan(&p.CoinID, &price, &p.Timestamp); err != nil {
		return model.PricePoint{}, fmt.Errorf("scan price point: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("parse price: %w", err)
	}
	p.Price = d
	return p, nil
}

// decArg converts an optional decimal to a query argument, mapping absent
// values to SQL NULL.
func decArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
