// Package api holds the request and response messages of the royaltysplit
// RPC services. Messages are plain structs carried as JSON; see apiconnect
// for the handlers and clients.
package api

// Contributor is one contributor's share of a category.
type Contributor struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	ProAffiliation string `json:"proAffiliation,omitempty"`
	Publisher      string `json:"publisher,omitempty"`
	Percentage     int    `json:"percentage"`
}

// SplitData holds the three categories of a split set. Each list is either
// empty or sums to exactly 100.
type SplitData struct {
	Music       []Contributor `json:"music"`
	Lyrics      []Contributor `json:"lyrics"`
	Instruments []Contributor `json:"instruments"`
}

// Song is a catalog entry with its derived figures.
type Song struct {
	ID              string    `json:"id"`
	ArtistID        string    `json:"artistId"`
	Title           string    `json:"title"`
	Splits          SplitData `json:"splits"`
	SplitPercentage string    `json:"splitPercentage"`
	NumberOfSplits  int       `json:"numberOfSplits"`
	Status          string    `json:"status"`
	CreatedAt       int64     `json:"createdAt"`
	UpdatedAt       int64     `json:"updatedAt"`
}

// ConditionalSplit is a single-category split that changes allocation once
// its threshold is met.
type ConditionalSplit struct {
	ID            string        `json:"id"`
	SongID        string        `json:"songId"`
	Category      string        `json:"category"`
	ConditionType string        `json:"conditionType"`
	Threshold     string        `json:"threshold"`
	Phase         string        `json:"phase"`
	PreSplit      []Contributor `json:"preSplit"`
	PostSplit     []Contributor `json:"postSplit"`
	CreatedAt     int64         `json:"createdAt"`
	ResolvedAt    int64         `json:"resolvedAt,omitempty"`
}

// Resolution reports a conditional split that moved to its post phase.
type Resolution struct {
	ConditionalID string `json:"conditionalId"`
	SongID        string `json:"songId"`
	ConditionType string `json:"conditionType"`
	ResolvedAt    int64  `json:"resolvedAt"`
}

// CatalogService messages.

type CreateSongRequest struct {
	Title  string     `json:"title"`
	Splits *SplitData `json:"splits,omitempty"`
}

type CreateSongResponse struct {
	Song *Song `json:"song"`
}

type GetSongRequest struct {
	SongID string `json:"songId"`
}

type GetSongResponse struct {
	Song         *Song               `json:"song"`
	Conditionals []*ConditionalSplit `json:"conditionals"`
}

type ListSongsRequest struct{}

type ListSongsResponse struct {
	Songs []*Song `json:"songs"`
}

type DeleteSongRequest struct {
	SongID string `json:"songId"`
}

type DeleteSongResponse struct{}

type CommitSplitSetRequest struct {
	SongID string    `json:"songId"`
	Splits SplitData `json:"splits"`
}

type CommitSplitSetResponse struct {
	Song *Song `json:"song"`
}

// ConditionalService messages.

type CreateConditionalSplitRequest struct {
	SongID        string        `json:"songId"`
	Category      string        `json:"category"`
	ConditionType string        `json:"conditionType"`
	Threshold     string        `json:"threshold"`
	PreSplit      []Contributor `json:"preSplit"`
	PostSplit     []Contributor `json:"postSplit"`
}

type CreateConditionalSplitResponse struct {
	Conditional *ConditionalSplit `json:"conditional"`
}

type ListConditionalSplitsRequest struct {
	SongID string `json:"songId"`
}

type ListConditionalSplitsResponse struct {
	Conditionals []*ConditionalSplit `json:"conditionals"`
}

// RevenueReport carries the cumulative revenue of one song. Amount accepts
// "750", "750.00" or "$1,250.50".
type RevenueReport struct {
	SongID string `json:"songId"`
	Amount string `json:"amount"`
}

type ReportRevenueRequest struct {
	Reports []RevenueReport `json:"reports"`
}

type ReportRevenueResponse struct {
	Resolved []*Resolution `json:"resolved"`
}

type GetActiveSplitRequest struct {
	SongID string `json:"songId"`
}

type GetActiveSplitResponse struct {
	SongID          string    `json:"songId"`
	Splits          SplitData `json:"splits"`
	SplitPercentage string    `json:"splitPercentage"`
	// Applied lists the conditional splits overlaid on the song's splits.
	Applied []string `json:"applied"`
}

// AuthoringService messages.

// Flow action types accepted by ApplyFlowAction.
const (
	ActionChooseConditionType = "choose_condition_type"
	ActionDefineThreshold     = "define_threshold"
	ActionSelectCategory      = "select_category"
	ActionAddContributor      = "add_contributor"
	ActionRemoveContributor   = "remove_contributor"
	ActionSetPercentage       = "set_percentage"
	ActionNext                = "next"
	ActionBack                = "back"
	ActionConfirm             = "confirm"
)

// FlowAction is one user input to an authoring flow. Only the fields the
// action type uses are read.
type FlowAction struct {
	Type          string       `json:"type"`
	ConditionType string       `json:"conditionType,omitempty"`
	Threshold     string       `json:"threshold,omitempty"`
	Category      string       `json:"category,omitempty"`
	Contributor   *Contributor `json:"contributor,omitempty"`
	ContributorID string       `json:"contributorId,omitempty"`
	Percentage    int          `json:"percentage,omitempty"`
}

// FlowState is the current view of an authoring session.
type FlowState struct {
	SessionID     string        `json:"sessionId"`
	SongID        string        `json:"songId"`
	Kind          string        `json:"kind"`
	Step          string        `json:"step"`
	Category      string        `json:"category,omitempty"`
	Remaining     int           `json:"remaining"`
	ConditionType string        `json:"conditionType,omitempty"`
	Threshold     string        `json:"threshold,omitempty"`
	PreSplit      []Contributor `json:"preSplit,omitempty"`
	PostSplit     []Contributor `json:"postSplit,omitempty"`
	Splits        *SplitData    `json:"splits,omitempty"`
	// Conditional and Song are set once a confirm succeeds.
	Conditional *ConditionalSplit `json:"conditional,omitempty"`
	Song        *Song             `json:"song,omitempty"`
}

type StartFlowRequest struct {
	SongID string `json:"songId"`
	Kind   string `json:"kind"`
	// Category is the category under condition; conditional flows only.
	Category string `json:"category,omitempty"`
}

type StartFlowResponse struct {
	State *FlowState `json:"state"`
}

type ApplyFlowActionRequest struct {
	SessionID string     `json:"sessionId"`
	Action    FlowAction `json:"action"`
}

// FlowError describes an action the flow refused. The flow stays at the
// step reported in the accompanying state so the input can be corrected.
type FlowError struct {
	// Kind is one of invalid_range, sum_mismatch, category_invalid,
	// invalid_threshold, not_found, wrong_step or no_condition_type.
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ApplyFlowActionResponse struct {
	State *FlowState `json:"state"`
	// ContributorID is the reference assigned by add_contributor.
	ContributorID string `json:"contributorId,omitempty"`
	// Error is set when the action was refused.
	Error *FlowError `json:"error,omitempty"`
}

type CancelFlowRequest struct {
	SessionID string `json:"sessionId"`
}

type CancelFlowResponse struct{}
