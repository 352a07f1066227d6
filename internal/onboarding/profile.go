package onboarding

import "context"

// Profile is the profile step's data. Every field is nullable; values are
// not checked against AgeRanges or Genders.
type Profile struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	AgeRange   *string `json:"ageRange"`
	Gender     *string `json:"gender"`
	LocationID *string `json:"locationId"`
}

// GetProfile returns the saved profile.
func (s *Service) GetProfile(ctx context.Context, userID uint) (Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		AgeRange:   user.AgeRange,
		Gender:     user.Gender,
		LocationID: user.LocationID,
	}, nil
}

// SaveProfile replaces the whole profile; nil fields are cleared.
func (s *Service) SaveProfile(ctx context.Context, userID uint, p Profile) error {
	return s.writeStep(ctx, userID, "profile", StepProfile, map[string]interface{}{
		"first_name":  p.FirstName,
		"last_name":   p.LastName,
		"age_range":   p.AgeRange,
		"gender":      p.Gender,
		"location_id": p.LocationID,
	}, nil)
}
