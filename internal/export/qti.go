// Package export serializes a question collection into LMS-importable
// packages: a QTI 1.2 assessment plus manifest zipped in memory, or a flat
// CSV table. It also re-opens built packages to sanity-check them before the
// bytes are handed back to the caller.
package export

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/exambank/backend/internal/models"
	"github.com/exambank/backend/internal/notation"
)

// ── QTI 1.2 document types ─────────────────────────────

type Questestinterop struct {
	XMLName    xml.Name   `xml:"questestinterop"`
	Assessment Assessment `xml:"assessment"`
}

type Assessment struct {
	Ident   string  `xml:"ident,attr"`
	Title   string  `xml:"title,attr"`
	Section Section `xml:"section"`
}

type Section struct {
	Ident string `xml:"ident,attr"`
	Items []Item `xml:"item"`
}

type Item struct {
	Ident         string         `xml:"ident,attr"`
	Title         string         `xml:"title,attr"`
	Metadata      ItemMetadata   `xml:"itemmetadata"`
	Presentation  Presentation   `xml:"presentation"`
	Resprocessing *Resprocessing `xml:"resprocessing,omitempty"`
	Feedback      []ItemFeedback `xml:"itemfeedback,omitempty"`
}

type ItemMetadata struct {
	Fields []MetadataField `xml:"qtimetadata>qtimetadatafield"`
}

type MetadataField struct {
	Label string `xml:"fieldlabel"`
	Entry string `xml:"fieldentry"`
}

type Presentation struct {
	Material    Material     `xml:"material"`
	ResponseLid *ResponseLid `xml:"response_lid,omitempty"`
	ResponseStr *ResponseStr `xml:"response_str,omitempty"`
}

type Material struct {
	Mattext Mattext `xml:"mattext"`
}

type Mattext struct {
	TextType string `xml:"texttype,attr"`
	Text     string `xml:",chardata"`
}

type ResponseLid struct {
	Ident        string       `xml:"ident,attr"`
	RCardinality string       `xml:"rcardinality,attr"`
	RenderChoice RenderChoice `xml:"render_choice"`
}

type RenderChoice struct {
	Labels []ResponseLabel `xml:"response_label"`
}

type ResponseLabel struct {
	Ident    string   `xml:"ident,attr"`
	Material Material `xml:"material"`
}

type ResponseStr struct {
	Ident     string    `xml:"ident,attr"`
	RenderFib RenderFib `xml:"render_fib"`
}

type RenderFib struct {
	FibType string `xml:"fibtype,attr"`
}

type Resprocessing struct {
	Outcomes   Outcomes        `xml:"outcomes"`
	Conditions []RespCondition `xml:"respcondition"`
}

type Outcomes struct {
	DecVar DecVar `xml:"decvar"`
}

type DecVar struct {
	VarName  string `xml:"varname,attr"`
	VarType  string `xml:"vartype,attr"`
	MinValue string `xml:"minvalue,attr"`
	MaxValue string `xml:"maxvalue,attr"`
}

type RespCondition struct {
	Continue     string       `xml:"continue,attr"`
	ConditionVar ConditionVar `xml:"conditionvar"`
	SetVar       SetVar       `xml:"setvar"`
}

type ConditionVar struct {
	VarEqual *VarEqual `xml:"varequal,omitempty"`
	And      *AndVar   `xml:"and,omitempty"`
}

// AndVar bounds a numeric response to [answer-tolerance, answer+tolerance].
type AndVar struct {
	VarGTE VarBound `xml:"vargte"`
	VarLTE VarBound `xml:"varlte"`
}

type VarEqual struct {
	RespIdent string `xml:"respident,attr"`
	Value     string `xml:",chardata"`
}

type VarBound struct {
	RespIdent string `xml:"respident,attr"`
	Value     string `xml:",chardata"`
}

type SetVar struct {
	Action  string `xml:"action,attr"`
	VarName string `xml:"varname,attr"`
	Value   string `xml:",chardata"`
}

type ItemFeedback struct {
	Ident    string   `xml:"ident,attr"`
	Material Material `xml:"flow_mat>material"`
}

const (
	respIdent     = "response1"
	metaFieldType = "question_type"
)

// ── Item rendering ─────────────────────────────────────

// renderItem builds one assessment item for a question whose prose fields
// have already been through the notation transform. Unknown types are a
// packaging error naming the question, not a generic build failure.
func renderItem(q models.Question) (Item, error) {
	item := Item{
		Ident: q.ID,
		Title: q.ID,
		Metadata: ItemMetadata{Fields: []MetadataField{
			{Label: metaFieldType, Entry: string(q.Type)},
			{Label: "points_possible", Entry: formatFloat(q.Points)},
		}},
		Presentation: Presentation{Material: mattext(q.Text)},
	}
	if topic := q.Topic(); topic != "" {
		item.Metadata.Fields = append(item.Metadata.Fields, MetadataField{Label: "topic", Entry: topic})
	}

	switch q.Type {
	case models.TypeMultipleChoice:
		renderChoiceItem(&item, q, q.Choices)
	case models.TypeTrueFalse:
		renderChoiceItem(&item, q, []string{"True", "False"})
	case models.TypeNumerical:
		item.Presentation.ResponseStr = &ResponseStr{
			Ident:     respIdent,
			RenderFib: RenderFib{FibType: "Decimal"},
		}
		answer, err := strconv.ParseFloat(q.CorrectAnswer, 64)
		if err != nil {
			return Item{}, &models.PackagingError{QuestionID: q.ID,
				Reason: fmt.Sprintf("numerical answer %q does not parse", q.CorrectAnswer)}
		}
		item.Resprocessing = resprocessing(q.Points, RespCondition{
			Continue: "No",
			ConditionVar: ConditionVar{And: &AndVar{
				VarGTE: VarBound{RespIdent: respIdent, Value: formatFloat(answer - q.Tolerance)},
				VarLTE: VarBound{RespIdent: respIdent, Value: formatFloat(answer + q.Tolerance)},
			}},
			SetVar: scoreSetVar(),
		})
	case models.TypeFillInBlank, models.TypeShortAnswer:
		item.Presentation.ResponseStr = &ResponseStr{
			Ident:     respIdent,
			RenderFib: RenderFib{FibType: "String"},
		}
		item.Resprocessing = resprocessing(q.Points, RespCondition{
			Continue:     "No",
			ConditionVar: ConditionVar{VarEqual: &VarEqual{RespIdent: respIdent, Value: q.CorrectAnswer}},
			SetVar:       scoreSetVar(),
		})
	case models.TypeEssay:
		// Essays are hand-graded: free-text response, no answer key.
		item.Presentation.ResponseStr = &ResponseStr{
			Ident:     respIdent,
			RenderFib: RenderFib{FibType: "String"},
		}
	default:
		return Item{}, &models.PackagingError{QuestionID: q.ID,
			Reason: fmt.Sprintf("no item template for question type %q", q.Type)}
	}

	if q.FeedbackCorrect != "" {
		item.Feedback = append(item.Feedback, ItemFeedback{Ident: "correct_fb", Material: mattext(q.FeedbackCorrect)})
	}
	if q.FeedbackIncorrect != "" {
		item.Feedback = append(item.Feedback, ItemFeedback{Ident: "general_incorrect_fb", Material: mattext(q.FeedbackIncorrect)})
	}
	return item, nil
}

// renderChoiceItem fills in the response declaration listing every choice
// with a single correct-response marker.
func renderChoiceItem(item *Item, q models.Question, choices []string) {
	lid := &ResponseLid{Ident: respIdent, RCardinality: "Single"}
	correctIdent := ""
	for i, choice := range choices {
		ident := fmt.Sprintf("%s_choice_%d", q.ID, i)
		lid.RenderChoice.Labels = append(lid.RenderChoice.Labels, ResponseLabel{
			Ident:    ident,
			Material: mattext(choice),
		})
		if choice == q.CorrectAnswer {
			correctIdent = ident
		}
	}
	item.Presentation.ResponseLid = lid
	item.Resprocessing = resprocessing(q.Points, RespCondition{
		Continue:     "No",
		ConditionVar: ConditionVar{VarEqual: &VarEqual{RespIdent: respIdent, Value: correctIdent}},
		SetVar:       scoreSetVar(),
	})
}

func resprocessing(points float64, conditions ...RespCondition) *Resprocessing {
	return &Resprocessing{
		Outcomes: Outcomes{DecVar: DecVar{
			VarName:  "SCORE",
			VarType:  "Decimal",
			MinValue: "0",
			MaxValue: formatFloat(points),
		}},
		Conditions: conditions,
	}
}

func scoreSetVar() SetVar {
	return SetVar{Action: "Set", VarName: "SCORE", Value: "100"}
}

func mattext(text string) Material {
	return Material{Mattext: Mattext{TextType: "text/html", Text: text}}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// transformProse runs the notation transform over every prose field of a
// question copy: text, each choice and both feedback strings. Structural
// fields (id, type, metadata keys) are never touched.
func transformProse(q models.Question) (models.Question, error) {
	out := q.Clone()
	var err error

	if out.Text, err = notation.Transform(q.Text); err != nil {
		return models.Question{}, &models.PackagingError{QuestionID: q.ID, Reason: "text: " + err.Error()}
	}
	for i, choice := range q.Choices {
		if out.Choices[i], err = notation.Transform(choice); err != nil {
			return models.Question{}, &models.PackagingError{QuestionID: q.ID,
				Reason: fmt.Sprintf("choices[%d]: %v", i, err)}
		}
	}
	// A multiple_choice answer key is choice text, so it is rewritten in
	// lockstep with the choices it must keep matching.
	if q.Type == models.TypeMultipleChoice {
		if out.CorrectAnswer, err = notation.Transform(q.CorrectAnswer); err != nil {
			return models.Question{}, &models.PackagingError{QuestionID: q.ID, Reason: "correct_answer: " + err.Error()}
		}
	}
	if out.FeedbackCorrect, err = notation.Transform(q.FeedbackCorrect); err != nil {
		return models.Question{}, &models.PackagingError{QuestionID: q.ID, Reason: "feedback_correct: " + err.Error()}
	}
	if out.FeedbackIncorrect, err = notation.Transform(q.FeedbackIncorrect); err != nil {
		return models.Question{}, &models.PackagingError{QuestionID: q.ID, Reason: "feedback_incorrect: " + err.Error()}
	}
	return out, nil
}
