package assessment

const WeightLossQuizID = "weight-loss-quiz"

const (
	FlagMedicationCandidate Flag = "medication_candidate"
	FlagMetabolicRisk       Flag = "metabolic_risk"
	FlagSleepConcern        Flag = "sleep_concern"
	FlagBehavioralSupport   Flag = "behavioral_support"
	FlagReadyToStart        Flag = "ready_to_start"
	FlagExploring           Flag = "exploring"
)

// flagOrder fixes the presentation order of triggered blocks.
var flagOrder = []Flag{
	FlagMedicationCandidate,
	FlagMetabolicRisk,
	FlagSleepConcern,
	FlagBehavioralSupport,
	FlagReadyToStart,
	FlagExploring,
}

var weightLossQuestions = []Question{
	{ID: "goal", Kind: KindSingle, Prompt: "How much weight would you like to lose?", Options: []Option{
		{Value: "under_15", Label: "Less than 15 lbs"},
		{Value: "15_30", Label: "15 to 30 lbs"},
		{Value: "30_50", Label: "30 to 50 lbs"},
		{Value: "over_50", Label: "More than 50 lbs"},
	}},
	{ID: "history", Kind: KindMulti, MaxChoices: 3, Prompt: "What have you tried before?", Help: "Choose up to 3.", Options: []Option{
		{Value: "diets", Label: "Calorie counting or diets"},
		{Value: "exercise", Label: "Exercise programs"},
		{Value: "apps", Label: "Apps or trackers"},
		{Value: "medication", Label: "Weight-loss medication"},
		{Value: "surgery", Label: "Bariatric surgery"},
		{Value: "nothing", Label: "Nothing yet"},
	}},
	{ID: "challenges", Kind: KindMulti, MaxChoices: 3, Prompt: "What gets in the way most?", Help: "Choose up to 3.", Options: []Option{
		{Value: "cravings", Label: "Cravings or hunger"},
		{Value: "emotional_eating", Label: "Emotional or stress eating"},
		{Value: "motivation", Label: "Staying motivated"},
		{Value: "time", Label: "Lack of time"},
		{Value: "plateaus", Label: "Hitting plateaus"},
		{Value: "knowledge", Label: "Not knowing what to eat"},
	}},
	{ID: "conditions", Kind: KindMulti, MaxChoices: 3, Prompt: "Do you have any of these conditions?", Help: "Choose up to 3.", Options: []Option{
		{Value: "type2_diabetes", Label: "Type 2 diabetes"},
		{Value: "prediabetes", Label: "Prediabetes or insulin resistance"},
		{Value: "hypertension", Label: "High blood pressure"},
		{Value: "pcos", Label: "PCOS"},
		{Value: "sleep_apnea", Label: "Sleep apnea"},
		{Value: "none", Label: "None of these"},
	}},
	{ID: "medication_interest", Kind: KindSingle, Prompt: "How interested are you in medication as part of your plan?", Options: []Option{
		{Value: "very", Label: "Very interested"},
		{Value: "somewhat", Label: "Somewhat interested"},
		{Value: "not_sure", Label: "Not sure yet"},
		{Value: "not_interested", Label: "Not interested"},
	}},
	{ID: "timeline", Kind: KindSingle, Prompt: "When would you like to get started?", Options: []Option{
		{Value: "asap", Label: "As soon as possible"},
		{Value: "within_month", Label: "Within the next month"},
		{Value: "few_months", Label: "In the next few months"},
		{Value: "just_researching", Label: "Just researching for now"},
	}},
	{ID: "activity", Kind: KindSingle, Prompt: "How active are you in a typical week?", Options: []Option{
		{Value: "sedentary", Label: "Mostly sitting"},
		{Value: "light", Label: "Light activity 1 to 3 days"},
		{Value: "moderate", Label: "Moderate activity 3 to 5 days"},
		{Value: "active", Label: "Active most days"},
	}},
	{ID: "sleep", Kind: KindSingle, Prompt: "How would you rate your sleep?", Options: []Option{
		{Value: "great", Label: "Great"},
		{Value: "ok", Label: "OK"},
		{Value: "poor", Label: "Poor"},
		{Value: "very_poor", Label: "Very poor"},
	}},
}

// WeightLossFlags is the typed outcome of the weight loss quiz.
type WeightLossFlags struct {
	MedicationCandidate bool `json:"medication_candidate"`
	MetabolicRisk       bool `json:"metabolic_risk"`
	SleepConcern        bool `json:"sleep_concern"`
	BehavioralSupport   bool `json:"behavioral_support"`
	ReadyToStart        bool `json:"ready_to_start"`
	Exploring           bool `json:"exploring"`
}

// Triggered lists the true flags in presentation order.
func (f WeightLossFlags) Triggered() []Flag {
	set := map[Flag]bool{
		FlagMedicationCandidate: f.MedicationCandidate,
		FlagMetabolicRisk:       f.MetabolicRisk,
		FlagSleepConcern:        f.SleepConcern,
		FlagBehavioralSupport:   f.BehavioralSupport,
		FlagReadyToStart:        f.ReadyToStart,
		FlagExploring:           f.Exploring,
	}
	var out []Flag
	for _, fl := range flagOrder {
		if set[fl] {
			out = append(out, fl)
		}
	}
	return out
}

// DeriveWeightLossFlags computes every flag from rs.
func DeriveWeightLossFlags(rs ResponseSet) WeightLossFlags {
	return WeightLossFlags{
		MedicationCandidate: MedicationCandidate(rs),
		MetabolicRisk:       MetabolicRisk(rs),
		SleepConcern:        SleepConcern(rs),
		BehavioralSupport:   BehavioralSupport(rs),
		ReadyToStart:        ReadyToStart(rs),
		Exploring:           Exploring(rs),
	}
}

var metabolicConditions = []string{"type2_diabetes", "prediabetes", "hypertension", "pcos"}

// MedicationCandidate is true when the patient is open to medication or has
// a weight-related condition.
func MedicationCandidate(rs ResponseSet) bool {
	return rs.ChoiceIn("medication_interest", "very", "somewhat") || MetabolicRisk(rs)
}

func MetabolicRisk(rs ResponseSet) bool {
	return rs.Selected("conditions", metabolicConditions...)
}

func SleepConcern(rs ResponseSet) bool {
	return rs.Selected("conditions", "sleep_apnea") || rs.ChoiceIn("sleep", "poor", "very_poor")
}

func BehavioralSupport(rs ResponseSet) bool {
	return rs.Selected("challenges", "emotional_eating", "motivation", "cravings")
}

func ReadyToStart(rs ResponseSet) bool {
	return rs.ChoiceIn("timeline", "asap", "within_month")
}

// Exploring is true for patients who are only researching options.
func Exploring(rs ResponseSet) bool {
	return rs.ChoiceIn("timeline", "just_researching")
}

var weightLossInterpretations = map[Flag]Interpretation{
	FlagMedicationCandidate: {
		Label:     "You may be a candidate for medical weight loss",
		Narrative: "Based on your answers, a GLP-1 or other prescription option **may be appropriate**. A provider will review your history before anything is prescribed.",
		Action:    Action{Kind: ActionBook, Label: "Book a medical consultation"},
	},
	FlagMetabolicRisk: {
		Label:     "Your metabolic health deserves attention",
		Narrative: "Conditions like diabetes, prediabetes, high blood pressure and PCOS often improve with weight loss. We coordinate care with these in mind.",
		Action:    Action{Kind: ActionLearn, Label: "Learn about metabolic health", Target: "/conditions"},
	},
	FlagSleepConcern: {
		Label:     "Sleep may be holding you back",
		Narrative: "Poor sleep and sleep apnea are closely linked to weight. Take the STOP-BANG screening to check your sleep apnea risk.",
		Action:    Action{Kind: ActionAssessment, Label: "Take the STOP-BANG screening", Target: StopBangID},
	},
	FlagBehavioralSupport: {
		Label:     "Behavioral support can help",
		Narrative: "Cravings, emotional eating and motivation are common hurdles. Coaching and structured habits make a real difference.",
		Action:    Action{Kind: ActionLearn, Label: "Explore coaching resources", Target: "/resources/behavioral"},
	},
	FlagReadyToStart: {
		Label:     "You're ready to start",
		Narrative: "You told us you want to begin soon. Most patients can see a provider **within a week**.",
		Action:    Action{Kind: ActionBook, Label: "Book your first visit"},
	},
	FlagExploring: {
		Label:     "Take your time",
		Narrative: "Still researching? Browse our guides and come back when you're ready.",
		Action:    Action{Kind: ActionLearn, Label: "Browse guides", Target: "/resources"},
	},
}

var weightLossDefault = Interpretation{
	Key:       "default",
	Label:     "A personalized plan can help",
	Narrative: "Every weight-loss journey is different. A provider can help you build a plan that fits your goals.",
	Action:    Action{Kind: ActionBook, Label: "Talk to a provider"},
}

// WeightLossQuiz is the flag-derived multi-dimension quiz.
type WeightLossQuiz struct {
	bank *Bank
}

var weightLossQuiz = &WeightLossQuiz{
	bank: MustNewBank(WeightLossQuizID, "Weight Loss Quiz", weightLossQuestions),
}

// NewWeightLossQuiz returns the built-in weight loss quiz.
func NewWeightLossQuiz() *WeightLossQuiz { return weightLossQuiz }

func (w *WeightLossQuiz) ID() string       { return w.bank.ID() }
func (w *WeightLossQuiz) Title() string    { return w.bank.Title() }
func (w *WeightLossQuiz) Kind() ResultKind { return ResultFlagged }
func (w *WeightLossQuiz) Bank() *Bank      { return w.bank }

func (w *WeightLossQuiz) Evaluate(rs ResponseSet) Result {
	flags := DeriveWeightLossFlags(rs).Triggered()
	return Result{
		AssessmentID: w.bank.ID(),
		Kind:         ResultFlagged,
		Score:        len(flags),
		MaxScore:     len(flagOrder),
		Flags:        flags,
	}
}

// Interpret returns one entry per triggered flag, or the default entry when
// none fired.
func (w *WeightLossQuiz) Interpret(r Result) []Interpretation {
	var out []Interpretation
	for _, f := range flagOrder {
		if !r.HasFlag(f) {
			continue
		}
		entry := weightLossInterpretations[f]
		entry.Key = string(f)
		out = append(out, entry)
	}
	if len(out) == 0 {
		out = append(out, weightLossDefault)
	}
	return out
}
