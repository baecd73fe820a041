package dto

import "github.com/noah-isme/coaching-portal/internal/models"

// LeadView is the derived state of the lead table for one request.
type LeadView struct {
	Leads           []models.Lead `json:"leads"`
	Cities          []string      `json:"cities"`
	Total           int           `json:"total"`
	Search          string        `json:"q"`
	Role            string        `json:"role"`
	City            string        `json:"city"`
	Sort            string        `json:"sort"`
	SelectedIDs     []int64       `json:"selected_ids"`
	SelectedCount   int           `json:"selected_count"`
	VisibleSelected int           `json:"visible_selected"`
	AllSelected     bool          `json:"all_selected"`
}

// IsSelected is used by templates to tick row checkboxes.
func (v LeadView) IsSelected(id int64) bool {
	for _, selected := range v.SelectedIDs {
		if selected == id {
			return true
		}
	}
	return false
}

// SelectionAction mutates the sticky lead selection.
type SelectionAction string

const (
	SelectionToggle      SelectionAction = "toggle"
	SelectionSelectAll   SelectionAction = "select_all"
	SelectionDeselectAll SelectionAction = "deselect_all"
)

// SelectionRequest is accepted by the JSON API and the HTML form alike.
type SelectionRequest struct {
	Action SelectionAction `json:"action" form:"action" validate:"required,oneof=toggle select_all deselect_all"`
	LeadID int64           `json:"lead_id" form:"lead_id"`
	Search string          `json:"q" form:"q"`
	Role   string          `json:"role" form:"role"`
	City   string          `json:"city" form:"city"`
	Sort   string          `json:"sort" form:"sort"`
}

// BulkNotifyRequest starts a bulk dispatch to the current selection.
type BulkNotifyRequest struct {
	Channel models.NotifyChannel `json:"channel" form:"channel" validate:"required,oneof=email whatsapp"`
}

// BulkResult is the aggregate outcome of a bulk dispatch. Per-lead failures
// are only counted.
type BulkResult struct {
	Channel   models.NotifyChannel `json:"channel"`
	Attempted int                  `json:"attempted"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

// Partial reports whether some recipients failed.
func (r BulkResult) Partial() bool {
	return r.Failed > 0
}

// ExportFile is a rendered lead export.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
