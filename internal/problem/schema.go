package problem

import "github.com/invopop/jsonschema"

// Schema describes Document as JSON Schema for editors and client-side
// validation. Cross-field rules (exactly one of height and height_cm, known
// hold ids) are only enforced by Validate.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Document))
	schema.Title = "Route problem"
	schema.Description = "Holds, start placement and climber for one planning query"
	return schema
}
