package geocode

import "shunshun-bot/internal/models"

var osmFood = map[string]bool{
	"restaurant": true, "cafe": true, "fast_food": true, "bar": true, "pub": true,
	"food_court": true, "ice_cream": true, "biergarten": true, "bakery": true,
	"confectionery": true, "pastry": true, "deli": true, "tea": true, "coffee": true,
}

var osmStay = map[string]bool{
	"hotel": true, "hostel": true, "guest_house": true, "motel": true,
	"apartment": true, "chalet": true, "camp_site": true,
}

var osmTravel = map[string]bool{
	"attraction": true, "museum": true, "viewpoint": true, "zoo": true, "theme_park": true,
	"gallery": true, "artwork": true, "aquarium": true, "park": true, "garden": true,
	"nature_reserve": true, "place_of_worship": true, "station": true,
}

// CategoryFromOSM maps a Nominatim category/type pair to a spot category
func CategoryFromOSM(class, typ string) string {
	switch class {
	case "amenity", "shop":
		if osmFood[typ] {
			return models.CategoryFood
		}
		if typ == "place_of_worship" {
			return models.CategoryTravel
		}
	case "tourism":
		if osmStay[typ] {
			return models.CategoryStay
		}
		if osmTravel[typ] {
			return models.CategoryTravel
		}
	case "leisure":
		if osmTravel[typ] {
			return models.CategoryTravel
		}
	case "historic", "natural":
		return models.CategoryTravel
	case "railway", "public_transport":
		if osmTravel[typ] {
			return models.CategoryTravel
		}
	}
	return ""
}

// CategoryFromGoogleTypes maps Google place types to a spot category
func CategoryFromGoogleTypes(types []string) string {
	for _, t := range types {
		switch t {
		case "restaurant", "cafe", "bar", "bakery", "food", "meal_takeaway", "meal_delivery":
			return models.CategoryFood
		case "lodging":
			return models.CategoryStay
		case "tourist_attraction", "park", "museum", "natural_feature", "amusement_park",
			"zoo", "aquarium", "art_gallery", "train_station", "hindu_temple", "place_of_worship":
			return models.CategoryTravel
		}
	}
	return ""
}
