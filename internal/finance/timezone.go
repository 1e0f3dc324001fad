package finance

import "time"

// getSeoulTime returns Asia/Seoul location, falling back to fixed KST if tzdata is missing.
func getSeoulTime() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*3600)
	}
	return loc
}
