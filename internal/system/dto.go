package system

type ActivitiesResponse struct {
	Activities []*ActivityEntry `json:"activities"`
}
