package builtin

import (
	"context"

	"github.com/sandevgo/medgraph/internal/tools"
)

// Predictor forwards a fixed feature set per model to the external risk
// prediction service.
type Predictor interface {
	Predict(ctx context.Context, model string, features map[string]any) (string, error)
}

type Predictions struct {
	client Predictor
}

func NewPredictions(client Predictor) *Predictions {
	return &Predictions{client: client}
}

func (p *Predictions) Descriptors() []tools.Descriptor {
	zero, maxAge := 0.0, 130.0
	return []tools.Descriptor{
		{
			Name:        "predict_diabetes_risk",
			Description: "Estimate a patient's type 2 diabetes risk from clinical measurements.",
			Schema: tools.ArgumentSchema{
				"glucose": {Type: tools.TypeFloat, Required: true, Minimum: &zero,
					Description: "Fasting glucose, mmol/L"},
				"bmi": {Type: tools.TypeFloat, Required: true, Minimum: &zero,
					Description: "Body mass index, kg/m2"},
				"age": {Type: tools.TypeInt, Required: true, Minimum: &zero, Maximum: &maxAge,
					Description: "Age in years"},
				"blood_pressure": {Type: tools.TypeFloat, Required: true, Minimum: &zero,
					Description: "Diastolic blood pressure, mmHg"},
			},
			Handler: p.diabetes,
		},
		{
			Name:        "predict_heart_risk",
			Description: "Estimate a patient's cardiovascular risk from clinical measurements.",
			Schema: tools.ArgumentSchema{
				"age": {Type: tools.TypeInt, Required: true, Minimum: &zero, Maximum: &maxAge,
					Description: "Age in years"},
				"cholesterol": {Type: tools.TypeFloat, Required: true, Minimum: &zero,
					Description: "Total cholesterol, mmol/L"},
				"systolic_bp": {Type: tools.TypeFloat, Required: true, Minimum: &zero,
					Description: "Systolic blood pressure, mmHg"},
				"smoker": {Type: tools.TypeBool, Required: true,
					Description: "Whether the patient currently smokes"},
			},
			Handler: p.heart,
		},
	}
}

// Only the declared fields are forwarded; the registry has already validated
// and coerced them.
func (p *Predictions) diabetes(ctx context.Context, args tools.Arguments) (string, error) {
	return p.client.Predict(ctx, "diabetes", map[string]any{
		"glucose":        args.Float("glucose"),
		"bmi":            args.Float("bmi"),
		"age":            args.Int("age"),
		"blood_pressure": args.Float("blood_pressure"),
	})
}

func (p *Predictions) heart(ctx context.Context, args tools.Arguments) (string, error) {
	return p.client.Predict(ctx, "heart", map[string]any{
		"age":         args.Int("age"),
		"cholesterol": args.Float("cholesterol"),
		"systolic_bp": args.Float("systolic_bp"),
		"smoker":      args.Bool("smoker"),
	})
}
