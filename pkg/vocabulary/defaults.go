package vocabulary

var defaultDiseases = []Entry{
	{Name: "Diabetes", Keywords: []string{
		"diabetes", "diabetic", "dm type", "type 1 diabetes", "type 2 diabetes",
		"diabetes mellitus", "t1dm", "t2dm", "insulin dependent", "niddm", "iddm",
		"high blood sugar", "hyperglycemia", "glucose intolerance",
	}},
	{Name: "Hypertension", Keywords: []string{
		"hypertension", "high blood pressure", "hbp", "elevated bp",
		"high bp", "arterial hypertension", "essential hypertension",
	}},
	{Name: "Heart Disease", Keywords: []string{
		"heart disease", "cardiac", "cardiovascular disease", "cvd", "coronary",
		"heart attack", "myocardial infarction", "angina", "coronary artery disease",
		"cad", "heart failure", "chf", "arrhythmia",
	}},
	{Name: "Obesity", Keywords: []string{
		"obesity", "obese", "overweight", "morbid obesity", "bmi >30",
		"excess weight", "adiposity",
	}},
	{Name: "High Cholesterol", Keywords: []string{
		"high cholesterol", "hypercholesterolemia", "hyperlipidemia",
		"elevated cholesterol", "high ldl", "dyslipidemia", "cholesterol >240",
	}},
	{Name: "Kidney Disease", Keywords: []string{
		"kidney disease", "renal disease", "ckd", "chronic kidney disease",
		"renal failure", "kidney failure", "nephropathy", "renal impairment",
	}},
	{Name: "Liver Disease", Keywords: []string{
		"liver disease", "hepatic", "cirrhosis", "hepatitis", "fatty liver",
		"nafld", "liver failure", "hepatic dysfunction",
	}},
	{Name: "Thyroid Disorder", Keywords: []string{
		"thyroid", "hypothyroid", "hyperthyroid", "thyroid disease",
		"hashimoto", "graves disease", "thyroid dysfunction", "tsh abnormal",
	}},
	{Name: "PCOS", Keywords: []string{
		"pcos", "polycystic ovary", "polycystic ovarian syndrome",
		"ovarian cysts", "pcod",
	}},
	{Name: "Anemia", Keywords: []string{
		"anemia", "anaemia", "iron deficiency", "low hemoglobin",
		"low hb", "hemoglobin <12", "anemic",
	}},
	{Name: "Gluten Intolerance", Keywords: []string{
		"gluten intolerance", "celiac", "coeliac", "gluten sensitivity",
		"wheat allergy", "gluten allergy",
	}},
	{Name: "Lactose Intolerance", Keywords: []string{
		"lactose intolerance", "lactose malabsorption", "dairy intolerance",
		"milk intolerance",
	}},
	{Name: "Nut Allergy", Keywords: []string{
		"nut allergy", "peanut allergy", "tree nut allergy",
		"allergic to nuts", "nut sensitivity",
	}},
	{Name: "Osteoporosis", Keywords: []string{
		"osteoporosis", "bone density loss", "low bone density",
		"osteopenia", "brittle bones",
	}},
}

var defaultAllergies = []string{
	"peanut", "peanuts", "tree nut", "nuts", "walnut", "almond", "cashew",
	"shellfish", "shrimp", "crab", "lobster", "fish",
	"milk", "dairy", "lactose", "cheese", "butter",
	"egg", "eggs",
	"wheat", "gluten",
	"soy", "soya",
	"sesame",
	"penicillin", "aspirin", "sulfa",
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := New(defaultDiseases, defaultAllergies)
	if err != nil {
		// the built-in lists are covered by tests
		panic(err)
	}
	return v
}
