package models

// Course is one entry of the golf course search response.
type Course struct {
	ID         int            `json:"id"`
	CourseName string         `json:"course_name"`
	ClubName   string         `json:"club_name"`
	Location   CourseLocation `json:"location"`
	Tees       TeeSet         `json:"tees"`
}

// CourseLocation holds the course address.
type CourseLocation struct {
	Address   string  `json:"address"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// TeeSet groups tees by gender.
type TeeSet struct {
	Male   []Tee `json:"male"`
	Female []Tee `json:"female"`
}

// GenderTee is a tee tagged with the list it came from.
type GenderTee struct {
	Gender string
	Tee    Tee
}

// All returns male tees followed by female tees.
func (s TeeSet) All() []GenderTee {
	out := make([]GenderTee, 0, len(s.Male)+len(s.Female))
	for _, t := range s.Male {
		out = append(out, GenderTee{Gender: "male", Tee: t})
	}
	for _, t := range s.Female {
		out = append(out, GenderTee{Gender: "female", Tee: t})
	}
	return out
}

// Count returns the number of tees in both lists.
func (s TeeSet) Count() int { return len(s.Male) + len(s.Female) }

// Tee carries the yardage and rating figures for one set of tees.
type Tee struct {
	TeeName           string     `json:"tee_name"`
	TotalYards        int        `json:"total_yards"`
	CourseRating      float64    `json:"course_rating"`
	BogeyRating       float64    `json:"bogey_rating"`
	SlopeRating       int        `json:"slope_rating"`
	FrontCourseRating float64    `json:"front_course_rating"`
	FrontBogeyRating  float64    `json:"front_bogey_rating"`
	FrontSlopeRating  int        `json:"front_slope_rating"`
	BackCourseRating  float64    `json:"back_course_rating"`
	BackBogeyRating   float64    `json:"back_bogey_rating"`
	BackSlopeRating   int        `json:"back_slope_rating"`
	Holes             []HoleInfo `json:"holes"`
}

// HoleInfo is the per-hole scorecard data. Hole numbers are 1-based positions in Tee.Holes.
type HoleInfo struct {
	Par      int `json:"par"`
	Yardage  int `json:"yardage"`
	Handicap int `json:"handicap"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Courses []Course `json:"courses"`
}
