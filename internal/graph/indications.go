package graph

// symptomIndications is the curated symptom→condition mapping behind
// MAY_INDICATE edges. Keys and values are the natural codes of the facts.
// A symptom without an entry, or whose mapped conditions are absent from the
// patient's record, simply produces no edge.
var symptomIndications = map[string][]string{
	"R05":   {"J45", "J18"},        // cough → asthma, pneumonia
	"R06.0": {"J45", "I50"},        // dyspnea → asthma, heart failure
	"R07.4": {"I25", "I21"},        // chest pain → ischemic heart disease, MI
	"R35":   {"E11"},               // polyuria → type 2 diabetes
	"R42":   {"I10", "G43"},        // dizziness → hypertension, migraine
	"R51":   {"G43", "I10"},        // headache → migraine, hypertension
	"R53":   {"E03", "D50"},        // fatigue → hypothyroidism, anemia
	"R60.0": {"I50", "N18"},        // edema → heart failure, chronic kidney disease
	"R63.4": {"E11", "C80", "E05"}, // weight loss → diabetes, malignancy, hyperthyroidism
	"R73.9": {"E11"},               // hyperglycemia → type 2 diabetes
}

// IndicatedConditions returns the condition codes a symptom code may point to.
func IndicatedConditions(symptomCode string) []string {
	return symptomIndications[symptomCode]
}
