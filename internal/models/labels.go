package models

// TypeLabel is presentation metadata for a question archetype.
type TypeLabel struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// typeLabels is the static lookup keyed by the QuestionType variant, so the
// engine and presentation layer cannot drift apart on string keys.
var typeLabels = map[QuestionType]TypeLabel{
	MCQSingle:    {Label: "Multiple Choice", Icon: "radio"},
	MCQMulti:     {Label: "Multiple Select", Icon: "checkbox"},
	TrueFalse:    {Label: "True / False", Icon: "toggle"},
	ChoiceMatrix: {Label: "Choice Matrix", Icon: "grid"},
	ClozeDrag:    {Label: "Cloze (Drag)", Icon: "drag"},
	ClozeSelect:  {Label: "Cloze (Select)", Icon: "dropdown"},
	ClozeText:    {Label: "Cloze (Text)", Icon: "input"},
	MatchList:    {Label: "Match List", Icon: "link"},
	EssayRich:    {Label: "Essay (Rich Text)", Icon: "richtext"},
	EssayPlain:   {Label: "Essay (Plain Text)", Icon: "text"},
}

// LabelFor returns the presentation label for a question type.
func LabelFor(t QuestionType) (TypeLabel, bool) {
	l, ok := typeLabels[t]
	return l, ok
}
