package metering

// Charge is a single cost line item.
type Charge struct {
	ChargeType  *string  `json:"charge_type"`
	Cost        *float64 `json:"cost"`
	ProductName *string  `json:"product_name"`
}

// CostByOrgAttributes contains the cost of one organization for one month.
type CostByOrgAttributes struct {
	AccountName     *string  `json:"account_name,omitempty"`
	AccountPublicID *string  `json:"account_public_id,omitempty"`
	Charges         []Charge `json:"charges"`
	Date            *string  `json:"date"`
	OrgName         *string  `json:"org_name"`
	PublicID        *string  `json:"public_id,omitempty"`
	Region          *string  `json:"region,omitempty"`
	TotalCost       *float64 `json:"total_cost"`
}

// CostByOrg is one record of the estimated or historical cost endpoints.
type CostByOrg struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Attributes *CostByOrgAttributes `json:"attributes"`
}

// CostByOrgResponse is the response from the estimated and historical cost endpoints.
type CostByOrgResponse struct {
	Data []CostByOrg `json:"data"`
}

// ProjectedCostAttributes contains the projected cost of one organization.
type ProjectedCostAttributes struct {
	AccountName        *string  `json:"account_name,omitempty"`
	AccountPublicID    *string  `json:"account_public_id,omitempty"`
	Charges            []Charge `json:"charges"`
	Date               *string  `json:"date"`
	OrgName            *string  `json:"org_name"`
	ProjectedTotalCost *float64 `json:"projected_total_cost"`
	PublicID           *string  `json:"public_id,omitempty"`
	Region             *string  `json:"region,omitempty"`
}

// ProjectedCost is one record of the projected cost endpoint.
type ProjectedCost struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes *ProjectedCostAttributes `json:"attributes"`
}

// ProjectedCostResponse is the response from the projected cost endpoint.
type ProjectedCostResponse struct {
	Data []ProjectedCost `json:"data"`
}

// UsageSummaryDate holds the usage of one month. Every metric is optional.
//
// IndexedEventsCountSum is the older name of LogsIndexedLogsUsageSum and is
// still returned for some organizations.
type UsageSummaryDate struct {
	Date    *string `json:"date"`
	OrgName *string `json:"org_name"`

	LogsIndexedLogsUsageSum *int64 `json:"logs_indexed_logs_usage_sum"`
	IndexedEventsCountSum   *int64 `json:"indexed_events_count_sum"`
	IngestedEventsBytesSum  *int64 `json:"ingested_events_bytes_sum"`

	InfraHostTop99p       *int64 `json:"infra_host_top99p"`
	ContainerAvg          *int64 `json:"container_avg"`
	ContainerExclAgentAvg *int64 `json:"container_excl_agent_avg"`

	ApmHostTop99p                    *int64 `json:"apm_host_top99p"`
	TraceSearchIndexedEventsCountSum *int64 `json:"trace_search_indexed_events_count_sum"`

	RumTotalSessionCountSum *int64 `json:"rum_total_session_count_sum"`

	SyntheticsCheckCallsCountSum        *int64 `json:"synthetics_check_calls_count_sum"`
	SyntheticsBrowserCheckCallsCountSum *int64 `json:"synthetics_browser_check_calls_count_sum"`

	CustomTsAvg *int64 `json:"custom_ts_avg"`
}

// UsageSummaryResponse is the response from the usage summary endpoint.
type UsageSummaryResponse struct {
	Usage []UsageSummaryDate `json:"usage"`
}

// LogsByIndexHour is the number of events indexed into one log index during one hour.
type LogsByIndexHour struct {
	EventCount *int64  `json:"event_count"`
	Hour       *string `json:"hour"`
	IndexID    *string `json:"index_id,omitempty"`
	IndexName  *string `json:"index_name"`
	OrgName    *string `json:"org_name,omitempty"`
	PublicID   *string `json:"public_id,omitempty"`
	Retention  *int64  `json:"retention,omitempty"`
}

// UsageLogsByIndexResponse is the response from the logs by index endpoint.
type UsageLogsByIndexResponse struct {
	Usage []LogsByIndexHour `json:"usage"`
}
