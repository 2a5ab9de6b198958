package response

import "hotel-booking/internal/usecase/queries"

type InventoryResponse struct {
	Inventory []*queries.InventoryView `json:"inventory"`
}

type GuestListResponse struct {
	Guests []*queries.GuestView `json:"guests"`
}
