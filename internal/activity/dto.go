package activity

type ActivitiesResponse struct {
	Activities []*Activity `json:"activities"`
}
