package assessment

// STOP-BANG obstructive sleep apnea screening.
const StopBangID = "stop-bang"

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

var stopBangQuestions = []Question{
	{ID: "snoring", Kind: KindBinary, Prompt: "Do you snore loudly (louder than talking or loud enough to be heard through closed doors)?"},
	{ID: "tired", Kind: KindBinary, Prompt: "Do you often feel tired, fatigued, or sleepy during the daytime?"},
	{ID: "observed", Kind: KindBinary, Prompt: "Has anyone observed you stop breathing or choking/gasping during your sleep?"},
	{ID: "pressure", Kind: KindBinary, Prompt: "Do you have or are you being treated for high blood pressure?"},
	{ID: "bmi", Kind: KindBinary, Prompt: "Is your BMI more than 35 kg/m²?", Help: "Use the health metrics calculator if you are unsure."},
	{ID: "age", Kind: KindBinary, Prompt: "Are you over 50 years old?"},
	{ID: "neck", Kind: KindBinary, Prompt: "Is your neck circumference greater than 16 inches (40 cm)?"},
	{ID: "gender", Kind: KindBinary, Prompt: "Is your sex assigned at birth male?"},
}

var stopBangBands = []Band{
	{Tier: TierLow, Min: 0, Max: 2},
	{Tier: TierMedium, Min: 3, Max: 4},
	{Tier: TierHigh, Min: 5, Max: 8},
}

var stopBangInterpretations = map[Tier]Interpretation{
	TierLow: {
		Label: "Low risk of obstructive sleep apnea",
		Narrative: "Your answers suggest a **low risk** of obstructive sleep apnea.\n\n" +
			"Good sleep still matters for weight management. If your symptoms change, retake this screening.",
		Action: Action{Kind: ActionLearn, Label: "Read about sleep and weight", Target: "/resources/sleep-and-weight"},
	},
	TierMedium: {
		Label: "Intermediate risk of obstructive sleep apnea",
		Narrative: "Your answers suggest an **intermediate risk** of obstructive sleep apnea.\n\n" +
			"Untreated sleep apnea can make weight loss harder. Consider discussing these results with a provider.",
		Action: Action{Kind: ActionBook, Label: "Talk to a provider"},
	},
	TierHigh: {
		Label: "High risk of obstructive sleep apnea",
		Narrative: "Your answers suggest a **high risk** of obstructive sleep apnea.\n\n" +
			"We recommend a formal sleep evaluation. Our providers can help you arrange one and build a plan around it.",
		Action: Action{Kind: ActionBook, Label: "Schedule a sleep evaluation"},
	},
}

// StopBang returns the built-in STOP-BANG assessment.
func StopBang() *Tiered {
	return stopBang
}

var stopBang = MustNewTiered(
	MustNewBank(StopBangID, "STOP-BANG Sleep Apnea Screening", stopBangQuestions),
	stopBangBands,
	stopBangInterpretations,
)
