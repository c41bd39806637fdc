package foods

import "menu-optimizer/internal/catalog"

// DefaultFoods returns the seed catalog. Names are the Hebrew product names
// the supermarket sites are searched with. Prices are manual, per 100 g.
func DefaultFoods() []catalog.RawFood {
	return []catalog.RawFood{
		seed("1", "ביצים", "protein", 12.6, 155, 1, 11, 4.16, "breakfast", "dinner"),
		seed("2", "קוטג'", "protein", 11, 100, 3, 5, 3.5, "breakfast", "dinner"),
		seed("3", "יוגורט", "protein", 5, 70, 6, 3, 3, "breakfast", "snacks"),
		seed("4", "גבינה לבנה", "protein", 10, 120, 2, 5, 4, "breakfast"),
		seed("5", "חלב", "protein", 3.3, 64, 5, 3.5, 0.5, "breakfast"),
		seed("6", "גבינה צהובה", "protein", 25, 402, 1.3, 33, 5, "breakfast", "dinner"),
		seed("7", "גבינת שמנת", "protein", 6, 342, 4, 34, 4.5, "breakfast"),
		seed("8", "חזה עוף", "protein", 31, 165, 0, 3.6, 4, "lunch"),
		seed("9", "חזה הודו", "protein", 29, 135, 0, 1, 4.5, "lunch"),
		seed("10", "טונה בשמן", "protein", 26, 198, 0, 8, 2.5, "lunch", "dinner"),
		seed("11", "טונה במים", "protein", 28, 116, 0, 0.8, 2.8, "lunch", "dinner"),
		seed("12", "סלמון", "protein", 20, 208, 0, 13, 8, "lunch"),
		seed("13", "בשר בקר טחון", "protein", 26, 250, 0, 15, 5, "lunch"),
		seed("14", "סטייק בקר", "protein", 25, 271, 0, 19, 7, "lunch"),
		seed("15", "כבד עוף", "protein", 16.9, 119, 0.9, 4.8, 3, "lunch"),
		seed("16", "נקניק עוף", "protein", 12, 180, 3, 15, 3.5, "lunch"),
		seed("17", "נקניקיות הודו", "protein", 13, 170, 2, 13, 3.8, "lunch"),
		seed("21", "לחם מלא", "carb", 9, 247, 41, 3.4, 1, "breakfast", "dinner"),
		seed("22", "לחם לבן", "carb", 8.9, 265, 49, 3.2, 0.8, "breakfast", "dinner"),
		seed("23", "פיתה", "carb", 8.2, 275, 55.7, 1.2, 0.7, "breakfast", "dinner"),
		seed("24", "אורז לבן", "carb", 2.7, 130, 28, 0.3, 0.6, "lunch", "dinner"),
		seed("25", "אורז מלא", "carb", 2.6, 111, 23, 0.9, 0.8, "lunch", "dinner"),
		seed("26", "פסטה", "carb", 5, 131, 25, 1.1, 0.7, "lunch", "dinner"),
		seed("27", "קוסקוס", "carb", 3.8, 112, 23, 0.2, 0.65, "lunch", "dinner"),
		seed("28", "בורגול", "carb", 3.1, 83, 18.6, 0.2, 0.75, "lunch", "dinner"),
		seed("29", "תפוח אדמה", "carb", 2, 77, 17, 0.1, 0.4, "lunch", "dinner"),
		seed("30", "בטטה", "carb", 1.6, 86, 20, 0.1, 0.6, "lunch", "dinner"),
		seed("31", "קינואה", "carb", 4.4, 120, 21.3, 1.9, 1.5, "lunch", "dinner"),
		seed("32", "שיבולת שועל", "carb", 2.4, 71, 12, 1.4, 0.5, "breakfast"),
		seed("33", "קורנפלקס", "carb", 7, 357, 84, 0.9, 1.2, "breakfast"),
		seed("34", "גרנולה", "carb", 10, 471, 64, 20, 2, "breakfast", "snacks"),
		seed("35", "מלפפון", "vegetable", 0.7, 10, 4, 0, 1, "breakfast", "lunch", "dinner"),
		seed("36", "עגבנייה", "vegetable", 0.9, 20, 5, 0, 1, "breakfast", "lunch", "dinner"),
		seed("37", "חסה", "vegetable", 1.4, 15, 3, 0, 0.8, "breakfast", "lunch", "dinner"),
		seed("38", "פלפל אדום", "vegetable", 1, 31, 6, 0.3, 1.5, "breakfast", "lunch", "dinner"),
		seed("39", "פלפל ירוק", "vegetable", 0.9, 20, 5, 0.2, 1.2, "lunch", "dinner"),
		seed("40", "גזר", "vegetable", 0.9, 41, 10, 0.2, 0.6, "breakfast", "lunch", "dinner"),
		seed("41", "כרוב", "vegetable", 1.3, 25, 6, 0.1, 0.5, "lunch", "dinner"),
		seed("42", "ברוקולי", "vegetable", 2.8, 34, 7, 0.4, 1.5, "lunch", "dinner"),
		seed("43", "כרובית", "vegetable", 1.9, 25, 5, 0.3, 1.2, "lunch", "dinner"),
		seed("44", "תירס", "vegetable", 3.4, 86, 19, 1.4, 0.8, "lunch", "dinner"),
		seed("45", "אפונה", "vegetable", 5.4, 81, 14, 0.4, 0.9, "lunch", "dinner"),
		seed("46", "שעועית ירוקה", "vegetable", 1.8, 31, 7, 0.2, 1, "lunch", "dinner"),
		seed("47", "תפוח", "fruit", 0.3, 52, 14, 0.2, 0.8, "breakfast", "snacks"),
		seed("48", "בננה", "fruit", 1.1, 89, 23, 0.3, 0.6, "breakfast", "snacks"),
		seed("49", "תפוז", "fruit", 0.9, 47, 12, 0.1, 0.7, "breakfast", "snacks"),
		seed("50", "אגס", "fruit", 0.4, 57, 15, 0.1, 0.9, "breakfast", "snacks"),
		seed("51", "אפרסק", "fruit", 0.9, 39, 10, 0.3, 1, "breakfast", "snacks"),
		seed("52", "אבטיח", "fruit", 0.6, 30, 8, 0.2, 0.4, "snacks"),
		seed("53", "מלון", "fruit", 0.8, 34, 8, 0.2, 0.5, "snacks"),
		seed("54", "ענבים", "fruit", 0.7, 69, 18, 0.2, 1.5, "snacks"),
		seed("55", "תות שדה", "fruit", 0.7, 32, 8, 0.3, 2, "breakfast", "snacks"),
		seed("56", "קיווי", "fruit", 1.1, 61, 15, 0.5, 1.2, "breakfast", "snacks"),
		seed("57", "חמאת בוטנים", "fat", 25, 588, 20, 50, 3.5, "snacks"),
		seed("58", "שקדים", "fat", 21, 579, 22, 50, 3, "snacks"),
		seed("59", "אגוזי מלך", "fat", 15, 654, 14, 65, 3.2, "snacks"),
		seed("60", "טחינה", "fat", 17, 595, 21, 53, 2.8, "snacks"),
		seed("61", "אבוקדו", "fat", 2, 160, 9, 15, 2, "snacks"),
		seed("62", "זרעי צ'יה", "fat", 17, 486, 41, 31, 1.8, "snacks"),
		seed("63", "זרעי פשתן", "fat", 18, 534, 29, 42, 1.6, "snacks"),
		seed("64", "יוגורט 0%", "fat", 10, 59, 3.6, 0.4, 2.5, "snacks"),
		seed("65", "יוגורט 3%", "fat", 5, 61, 4.7, 3, 2.5, "snacks"),
		seed("66", "תמר", "fruit", 2.5, 277, 75, 0.2, 0.9, "snacks"),
	}
}

func seed(id, name, category string, protein, calories, carbs, fat, price float64, meals ...string) catalog.RawFood {
	return catalog.RawFood{
		ID:                id,
		Name:              name,
		Protein:           protein,
		Calories:          calories,
		Carbs:             carbs,
		Fat:               fat,
		Category:          category,
		AllowedMeals:      meals,
		Prices:            map[string]float64{catalog.ManualSource: price},
		ActivePriceSource: catalog.ManualSource,
	}
}
