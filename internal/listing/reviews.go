package listing

import "encoding/json"

// Aggregate returns the mean rating and count of reviews. An empty slice has
// rating 0.
func Aggregate(reviews []Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

func HasReviewed(reviews []Review, userID string) bool {
	for _, r := range reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// RemoveReview drops the review written by userID, reporting whether one existed.
func RemoveReview(reviews []Review, userID string) ([]Review, bool) {
	out := make([]Review, 0, len(reviews))
	found := false
	for _, r := range reviews {
		if r.UserID == userID {
			found = true
			continue
		}
		out = append(out, r)
	}
	return out, found
}

// DecodeReviews parses the JSONB reviews column. NULL or empty decodes to an
// empty slice so responses always carry [].
func DecodeReviews(raw []byte) ([]Review, error) {
	reviews := []Review{}
	if len(raw) == 0 {
		return reviews, nil
	}
	if err := json.Unmarshal(raw, &reviews); err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, nil
}

func EncodeReviews(reviews []Review) ([]byte, error) {
	if reviews == nil {
		reviews = []Review{}
	}
	return json.Marshal(reviews)
}
