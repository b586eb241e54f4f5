package advisor

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/edgard/intillasense/internal/farm"
)

// TillageRecommendation is the structured reply requested from the model.
// Every field is required.
type TillageRecommendation struct {
	ResponseToUser      string            `json:"responseToUser"      description:"Direct answer to the user's latest question" validate:"required"`
	Benefits            []string          `json:"benefits"            description:"Benefits of the primary option"              validate:"required,min=1,dive,required"`
	Factors             Factors           `json:"factors"             description:"Field factors the recommendation is based on"`
	PrimaryOption       EquipmentChoice   `json:"primaryOption"       description:"Recommended tillage option"`
	AlternativeOptions  []EquipmentChoice `json:"alternativeOptions"  description:"Exactly two alternative tillage options"     validate:"len=2,dive"`
	Explanation         string            `json:"explanation"         description:"Narrative summary of the recommendation"     validate:"required"`
	OptimalTillageDates TillageWindow     `json:"optimalTillageDates" description:"Best window to perform the tillage"`
}

// Factors are the field conditions the model weighed.
type Factors struct {
	SoilType      string `json:"soilType"      description:"Dominant soil type of the field"        validate:"required"`
	RainfallTrend string `json:"rainfallTrend" description:"Recent rainfall trend" enum:"increasing,decreasing,stable" validate:"oneof=increasing decreasing stable"`
	PreviousCrop  string `json:"previousCrop"  description:"Crop grown in the previous season"      validate:"required"`
}

// EquipmentChoice is one tillage option with its cost.
type EquipmentChoice struct {
	Method      string  `json:"method"      description:"Tillage method, e.g. strip-till"                validate:"required"`
	Equipment   string  `json:"equipment"   description:"Implement or service performing the work"       validate:"required"`
	Owner       string  `json:"owner"       description:"Who operates the equipment" enum:"FARMER,CO-OP HIRED" validate:"owner"`
	CostPerAcre float64 `json:"costPerAcre" description:"Cost in US dollars per acre"                    validate:"gte=0"`
	TotalCost   float64 `json:"totalCost"   description:"Cost per acre multiplied by the farm acreage"   validate:"gte=0"`
}

// TillageWindow is the suggested date range for the operation.
type TillageWindow struct {
	StartDate string `json:"startDate" description:"Window start, YYYY-MM-DD" validate:"required"`
	EndDate   string `json:"endDate"   description:"Window end, YYYY-MM-DD"   validate:"required"`
	Rationale string `json:"rationale" description:"Why this window was chosen" validate:"required"`
}

const recommendationSchemaName = "tillage_recommendation"

var recommendationSchema = sync.OnceValues(func() (*jsonschema.Definition, error) {
	return jsonschema.GenerateSchemaForType(TillageRecommendation{})
})

// RecommendationSchema returns the JSON schema of TillageRecommendation.
func RecommendationSchema() (*jsonschema.Definition, error) {
	return recommendationSchema()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("owner", func(fl validator.FieldLevel) bool {
		return farm.Owner(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeRecommendation parses raw model output into a TillageRecommendation.
// Missing keys, wrong types, bad enum values and empty fields all yield
// ErrSchemaViolation.
func DecodeRecommendation(raw []byte) (*TillageRecommendation, error) {
	schema, err := RecommendationSchema()
	if err != nil {
		return nil, fmt.Errorf("recommendation schema: %w", err)
	}

	var rec TillageRecommendation
	if err := jsonschema.VerifySchemaAndUnmarshal(*schema, stripCodeFence(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := validate.Struct(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return &rec, nil
}

// stripCodeFence removes a surrounding ```json fence some models emit even
// in JSON mode.
func stripCodeFence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
