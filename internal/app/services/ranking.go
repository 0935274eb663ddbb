package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/yigit/unicluster/internal/app/models"
)

// RankingOrder decides which pending applications are served first
type RankingOrder string

const (
	// RankDescending serves the highest cluster score first
	RankDescending RankingOrder = "descending"
	// RankAscending serves the lowest cluster score first
	RankAscending RankingOrder = "ascending"
)

// ParseRankingOrder converts a configuration value into a RankingOrder
func ParseRankingOrder(s string) (RankingOrder, error) {
	switch RankingOrder(strings.ToLower(strings.TrimSpace(s))) {
	case RankDescending, "":
		return RankDescending, nil
	case RankAscending:
		return RankAscending, nil
	default:
		return "", fmt.Errorf("unknown ranking order %q", s)
	}
}

// Sort orders applications in place. Equal scores fall back to the earlier
// application date, then the lower choice order, then the lower ID.
func (o RankingOrder) Sort(apps []*models.Application) {
	slices.SortStableFunc(apps, func(a, b *models.Application) int {
		byScore := cmp.Compare(a.ClusterScore, b.ClusterScore)
		if o != RankAscending {
			byScore = -byScore
		}
		if byScore != 0 {
			return byScore
		}
		if c := a.ApplicationDate.Compare(b.ApplicationDate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.ChoiceOrder, b.ChoiceOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// LowestIDWithCapacity returns the offerings with free seats, lowest ID first.
// The scheduler attempts them in this order.
func LowestIDWithCapacity(offerings []*models.Offering) []*models.Offering {
	open := make([]*models.Offering, 0, len(offerings))
	for _, o := range offerings {
		if o.Remaining() > 0 {
			open = append(open, o)
		}
	}
	slices.SortFunc(open, func(a, b *models.Offering) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return open
}
