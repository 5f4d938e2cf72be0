package normalize

// Field is a logical column of the price table.
type Field string

const (
	FieldYear                       Field = "year"
	FieldAvailable                  Field = "available"
	FieldMinPrice                   Field = "min_price"
	FieldMaxPrice                   Field = "max_price"
	FieldNotes                      Field = "notes"
	FieldSourceHistory              Field = "source_history"
	FieldSourceCPIContext           Field = "source_cpi_context"
	FieldSourceValueMenuAnchors     Field = "source_value_menu_anchors"
	FieldSourceRecentPricingAnchors Field = "source_recent_pricing_anchors"
)

// Aliases lists, per field, the accepted column headers in resolution order.
// The first alias holding a non-empty value wins. The trailing camelCase
// names match the JSON emitted by /api/prices.
var Aliases = map[Field][]string{
	FieldYear:                       {"year", "Year"},
	FieldAvailable:                  {"available", "Available", "Availability"},
	FieldMinPrice:                   {"min_price", "Min_Price", "Minimum Price", "Price_Low_USD", "minPrice"},
	FieldMaxPrice:                   {"max_price", "Max_Price", "Maximum Price", "Price_High_USD", "maxPrice"},
	FieldNotes:                      {"notes", "Notes"},
	FieldSourceHistory:              {"source_history", "Source_History", "sourceHistory"},
	FieldSourceCPIContext:           {"source_cpi_context", "Source_CPI_Context", "sourceCpiContext"},
	FieldSourceValueMenuAnchors:     {"source_value_menu_anchors", "Source_ValueMenu_Anchors", "sourceValueMenuAnchors"},
	FieldSourceRecentPricingAnchors: {"source_recent_pricing_anchors", "Source_RecentPricing_Anchors", "sourceRecentPricingAnchors"},
}
