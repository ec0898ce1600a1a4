package service

import (
	"context"
	"fmt"
	"masterlist-web/internal/models"
)

// PendingSetup lists the setup work still missing from the master data.
func PendingSetup(items []models.Item, boms []models.BoMEntry) []models.PendingJob {
	jobs := []models.PendingJob{}

	hasSell := false
	for _, it := range items {
		if it.Type == models.ItemTypeSell && it.ID != 0 {
			hasSell = true
			break
		}
	}
	if !hasSell {
		jobs = append(jobs, models.PendingJob{
			Type:        "sell_item",
			Title:       "Sell Items",
			Description: "Sell items must have at least one entry with a valid item_id.",
			Severity:    models.SeverityMedium,
		})
	}

	purchaseIDs := map[int64]bool{}
	for _, it := range items {
		if it.Type == models.ItemTypePurchase {
			purchaseIDs[it.ID] = true
		}
	}
	usedAsComponent := false
	for _, b := range boms {
		if purchaseIDs[b.ComponentID] {
			usedAsComponent = true
			break
		}
	}
	if !usedAsComponent {
		jobs = append(jobs, models.PendingJob{
			Type:        "purchase_item",
			Title:       "Purchase Items",
			Description: "Purchase items must have at least one entry with a valid component_id.",
			Severity:    models.SeverityMedium,
		})
	}

	for _, b := range boms {
		if b.ItemID == 0 || b.ComponentID == 0 {
			jobs = append(jobs, models.PendingJob{
				Type:        "component_item",
				Title:       "Component Item",
				Description: fmt.Sprintf("Component items must have both a valid item_id and a valid component_id (BoM %d).", b.ID),
				Severity:    models.SeverityHigh,
				RefID:       b.ID,
			})
		}
	}

	return jobs
}

// FetchPendingSetup loads the master data and runs PendingSetup.
func FetchPendingSetup(ctx context.Context, refs ReferenceSource) ([]models.PendingJob, error) {
	items, err := refs.FetchItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	boms, err := refs.FetchBoMs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill of materials: %w", err)
	}
	return PendingSetup(items, boms), nil
}
