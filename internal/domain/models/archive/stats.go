package archive

// Stats summarizes archive contents for the admin overview.
type Stats struct {
	Documents int `json:"documents"`
	Folders   int `json:"folders"`
	Users     int `json:"users"`
}
