package model

type Reward struct {
	ID          string
	Title       string
	NGO         string
	Description string
	Cost        int
}
