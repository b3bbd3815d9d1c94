package sqlite

import (
	"context"

	"github.com/Djalobre/kvotizza/internal/domain"
)

type affiliateClicksRepo struct {
	db querier
}

func (r *affiliateClicksRepo) CreateAffiliateClick(ctx context.Context, c domain.AffiliateClick) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO affiliate_clicks (id, bookie, target, client_ip, referer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Bookie, c.Target, c.ClientIP, c.Referer, c.CreatedAt)
	return mapConstraint(err)
}

func (r *affiliateClicksRepo) CountClicksByBookie(ctx context.Context) ([]domain.BookieClickCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT bookie, COUNT(*) AS clicks
		 FROM affiliate_clicks
		 GROUP BY bookie
		 ORDER BY clicks DESC, bookie ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.BookieClickCount
	for rows.Next() {
		var c domain.BookieClickCount
		if err := rows.Scan(&c.Bookie, &c.Clicks); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
