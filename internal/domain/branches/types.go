package branches

import "time"

// Branch is one office in the public branch directory. Location is a
// longitude/latitude pair filled in by the geocoder when the branch is
// registered.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Location  []float64 `json:"location,omitempty"` // (longitude, latitude)
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
