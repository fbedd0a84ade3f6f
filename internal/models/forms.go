package models

import "strings"

// Request maps the venue form onto the API body. The image is optional;
// without one the API stores no media and the placeholder is shown.
func (f *VenueForm) Request() *VenueRequest {
	req := &VenueRequest{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Media:       []Media{},
		Price:       f.Price,
		MaxGuests:   f.MaxGuests,
		Rating:      f.Rating,
		Meta: Meta{
			Wifi:      f.Wifi.Bool(),
			Parking:   f.Parking.Bool(),
			Breakfast: f.Breakfast.Bool(),
			Pets:      f.Pets.Bool(),
		},
		Location: Location{
			Address: strings.TrimSpace(f.Address),
			City:    strings.TrimSpace(f.City),
			Zip:     strings.TrimSpace(f.Zip),
			Country: strings.TrimSpace(f.Country),
		},
	}
	if url := strings.TrimSpace(f.MediaURL); url != "" {
		req.Media = append(req.Media, Media{URL: url, Alt: strings.TrimSpace(f.MediaAlt)})
	}
	return req
}

// FormFromVenue pre-fills the edit form
func FormFromVenue(v *Venue) VenueForm {
	form := VenueForm{
		Name:        v.Name,
		Description: v.Description,
		Address:     v.Location.Address,
		City:        v.Location.City,
		Zip:         v.Location.Zip,
		Country:     v.Location.Country,
		Price:       v.Price,
		MaxGuests:   v.MaxGuests,
		Wifi:        FlexibleBool(v.Meta.Wifi),
		Parking:     FlexibleBool(v.Meta.Parking),
		Breakfast:   FlexibleBool(v.Meta.Breakfast),
		Pets:        FlexibleBool(v.Meta.Pets),
	}
	rating := v.Rating
	form.Rating = &rating
	if len(v.Media) > 0 {
		form.MediaURL = v.Media[0].URL
		form.MediaAlt = v.Media[0].Alt
	}
	return form
}
