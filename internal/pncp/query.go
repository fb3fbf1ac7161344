package pncp

import "github.com/farxc/pncp_wrapper/internal/pncp/aggregate"

// RecentQuery drives the multi-modality recency aggregation. Start from
// Service.NewRecentQuery so unset fields carry the configured defaults.
type RecentQuery struct {
	Days       int              `query:"days" validate:"min=1,max=90"`
	Modalities []int            `query:"modality" validate:"omitempty,dive,min=1"`
	Limit      int              `query:"limit" validate:"min=1,max=1000"`
	PageSize   int              `query:"pageSize"`
	State      string           `query:"state" validate:"omitempty,len=2,alpha"`
	Filter     aggregate.Filter `query:"-" validate:"-"`
}

// OpenQuery lists notices still accepting proposals as of CutoffDate.
type OpenQuery struct {
	Modality   int    `query:"modality" validate:"min=1"`
	CutoffDate string `query:"cutoffDate" validate:"required,compactdate"`
	Page       int    `query:"page" validate:"min=1"`
	PageSize   int    `query:"pageSize"`
	AllPages   bool   `query:"allPages"`
	State      string `query:"state" validate:"omitempty,len=2,alpha"`
}

// PublishedQuery lists notices published between StartDate and EndDate,
// both inclusive.
type PublishedQuery struct {
	Modality  int    `query:"modality" validate:"required,min=1"`
	StartDate string `query:"startDate" validate:"required,compactdate"`
	EndDate   string `query:"endDate" validate:"required,compactdate"`
	Page      int    `query:"page" validate:"min=1"`
	PageSize  int    `query:"pageSize"`
	AllPages  bool   `query:"allPages"`
	State     string `query:"state" validate:"omitempty,len=2,alpha"`
}
