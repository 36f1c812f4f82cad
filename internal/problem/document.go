// Package problem loads route problems from YAML or JSON documents and turns
// them into planner queries.
package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"beta-than-ever/planner/internal/climber"
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/wall"
)

// Format selects the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension. Anything other than
// .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is the on-disk description of one route problem.
type Document struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Holds       []HoldDoc       `json:"holds" yaml:"holds" validate:"required,min=1,dive" jsonschema:"minItems=1"`
	Start       StartDoc        `json:"start" yaml:"start"`
	FootHolds   []int           `json:"foot_holds,omitempty" yaml:"foot_holds,omitempty"`
	Goal        *int            `json:"goal,omitempty" yaml:"goal,omitempty"`
	Climber     ClimberDoc      `json:"climber" yaml:"climber"`
	Constraints *ConstraintsDoc `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

type HoldDoc struct {
	ID  int     `json:"id" yaml:"id"`
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Tag string  `json:"tag,omitempty" yaml:"tag,omitempty" validate:"omitempty,oneof=foot-only" jsonschema:"enum=foot-only"`
}

// StartDoc uses pointers so a missing limb is distinguishable from hold 0.
type StartDoc struct {
	RightHand *int `json:"right_hand" yaml:"right_hand" validate:"required"`
	LeftHand  *int `json:"left_hand" yaml:"left_hand" validate:"required"`
	RightFoot *int `json:"right_foot" yaml:"right_foot" validate:"required"`
	LeftFoot  *int `json:"left_foot" yaml:"left_foot" validate:"required"`
}

// ClimberDoc gives the height either directly in wall units or in
// centimetres, in which case it is scaled by the route's vertical span.
type ClimberDoc struct {
	Height          float64 `json:"height,omitempty" yaml:"height,omitempty" validate:"gte=0"`
	HeightCM        float64 `json:"height_cm,omitempty" yaml:"height_cm,omitempty" validate:"gte=0"`
	WallHeightCM    float64 `json:"wall_height_cm,omitempty" yaml:"wall_height_cm,omitempty" validate:"gte=0"`
	HorizontalScale float64 `json:"horizontal_scale,omitempty" yaml:"horizontal_scale,omitempty" validate:"gte=0"`
}

// ConstraintsDoc overrides individual fields of planner.DefaultConstraints.
type ConstraintsDoc struct {
	VerticalReachScale   *float64 `json:"vertical_reach_scale,omitempty" yaml:"vertical_reach_scale,omitempty" validate:"omitempty,gte=0"`
	HorizontalReachScale *float64 `json:"horizontal_reach_scale,omitempty" yaml:"horizontal_reach_scale,omitempty" validate:"omitempty,gte=0"`
	FootCeiling          *string  `json:"foot_ceiling,omitempty" yaml:"foot_ceiling,omitempty" validate:"omitempty,oneof=lowest-hand centroid" jsonschema:"enum=lowest-hand,enum=centroid"`
	FootCeilingBuffer    *float64 `json:"foot_ceiling_buffer,omitempty" yaml:"foot_ceiling_buffer,omitempty" validate:"omitempty,gte=0"`
	FootSpreadScale      *float64 `json:"foot_spread_scale,omitempty" yaml:"foot_spread_scale,omitempty" validate:"omitempty,gte=0"`
	HandCost             *float64 `json:"hand_cost,omitempty" yaml:"hand_cost,omitempty" validate:"omitempty,gte=0"`
	FootCost             *float64 `json:"foot_cost,omitempty" yaml:"foot_cost,omitempty" validate:"omitempty,gte=0"`
	AllowSharedHolds     *bool    `json:"allow_shared_holds,omitempty" yaml:"allow_shared_holds,omitempty"`
	MaxExpansions        *int     `json:"max_expansions,omitempty" yaml:"max_expansions,omitempty" validate:"omitempty,gte=0"`
}

// Apply returns base with every set override replaced.
func (c *ConstraintsDoc) Apply(base planner.Constraints) planner.Constraints {
	if c == nil {
		return base
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&base.VerticalReachScale, c.VerticalReachScale)
	setFloat(&base.HorizontalReachScale, c.HorizontalReachScale)
	setFloat(&base.FootCeilingBuffer, c.FootCeilingBuffer)
	setFloat(&base.FootSpreadScale, c.FootSpreadScale)
	setFloat(&base.HandCost, c.HandCost)
	setFloat(&base.FootCost, c.FootCost)
	if c.FootCeiling != nil {
		base.FootCeiling = planner.FootCeilingRule(*c.FootCeiling)
	}
	if c.AllowSharedHolds != nil {
		base.AllowSharedHolds = *c.AllowSharedHolds
	}
	if c.MaxExpansions != nil {
		base.MaxExpansions = *c.MaxExpansions
	}
	return base
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their document names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes a document. Unknown fields are rejected in both formats.
func Parse(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: decode json: %v", planner.ErrInvalidInput, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, fmt.Errorf("%w: decode yaml: %v", planner.ErrInvalidInput, err)
		}
	default:
		return Document{}, fmt.Errorf("problem: unknown format %q", format)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Validate runs the struct tag checks and the cross-field rules.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fmt.Errorf("%w: %s", planner.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", planner.ErrInvalidInput, err)
	}
	switch {
	case d.Climber.Height == 0 && d.Climber.HeightCM == 0:
		return fmt.Errorf("%w: climber needs height or height_cm", planner.ErrInvalidInput)
	case d.Climber.Height != 0 && d.Climber.HeightCM != 0:
		return fmt.Errorf("%w: climber height and height_cm are mutually exclusive", planner.ErrInvalidInput)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Document.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// HoldSet converts the hold list.
func (d Document) HoldSet() (wall.HoldSet, error) {
	holds := make([]wall.Hold, 0, len(d.Holds))
	for _, h := range d.Holds {
		holds = append(holds, wall.Hold{
			ID:     h.ID,
			Center: wall.Vec2{X: h.X, Y: h.Y},
			Tag:    wall.HoldTag(h.Tag),
		})
	}
	set, err := wall.NewHoldSet(holds)
	if err != nil {
		return wall.HoldSet{}, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err)
	}
	return set, nil
}

// Profile derives the climber profile, scaling height_cm against the span of
// holds when needed.
func (d Document) Profile(holds wall.HoldSet) (climber.Profile, error) {
	height := d.Climber.Height
	if d.Climber.HeightCM > 0 {
		scaled, err := climber.ScaleHeight(d.Climber.HeightCM, d.Climber.WallHeightCM, holds.Span())
		if err != nil {
			return climber.Profile{}, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err)
		}
		height = scaled
	}
	profile, err := climber.NewProfileWithScale(height, d.Climber.HorizontalScale)
	if err != nil {
		return climber.Profile{}, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err)
	}
	return profile, nil
}

// Query builds the planner query. The document must have passed Validate.
func (d Document) Query() (planner.Query, error) {
	holds, err := d.HoldSet()
	if err != nil {
		return planner.Query{}, err
	}
	profile, err := d.Profile(holds)
	if err != nil {
		return planner.Query{}, err
	}
	start := planner.Assignment{
		RightHand: deref(d.Start.RightHand),
		LeftHand:  deref(d.Start.LeftHand),
		RightFoot: deref(d.Start.RightFoot),
		LeftFoot:  deref(d.Start.LeftFoot),
	}
	rules := d.Constraints.Apply(planner.DefaultConstraints())
	return planner.Query{
		Holds:       holds,
		Profile:     profile,
		Start:       start,
		FootOnly:    append([]int(nil), d.FootHolds...),
		Goal:        d.Goal,
		Constraints: &rules,
	}, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
