// internal/httpapi/schemas.go
package httpapi

// Intake payload schemas. CV and letter arrive as path or URL references;
// competences is either an object of ratings or a pre-encoded JSON string,
// both accepted because historical clients sent both.

const emploiIntakeSchema = `{
  "type": "object",
  "required": ["nom", "prenom", "email", "telephone"],
  "properties": {
    "nom":                {"type": "string", "minLength": 1},
    "prenom":             {"type": "string", "minLength": 1},
    "email":              {"type": "string", "format": "email"},
    "telephone":          {"type": "string", "minLength": 6},
    "poste":              {"type": "string"},
    "cv_path":            {"type": "string"},
    "lettre_motivation":  {"type": "string"},
    "type_etablissement": {"type": "string"},
    "diplome":            {"type": "string"},
    "competences":        {"type": ["object", "string", "null"]},
    "experience":         {"type": ["integer", "null"], "minimum": 0},
    "offre_id":           {"type": ["integer", "null"]}
  },
  "additionalProperties": true
}`

const stageIntakeSchema = `{
  "type": "object",
  "required": ["nom", "prenom", "email", "telephone"],
  "properties": {
    "nom":                {"type": "string", "minLength": 1},
    "prenom":             {"type": "string", "minLength": 1},
    "email":              {"type": "string", "format": "email"},
    "telephone":          {"type": "string", "minLength": 6},
    "domaine":            {"type": "string"},
    "duree":              {"type": "string"},
    "cv_path":            {"type": "string"},
    "lettre_motivation":  {"type": "string"},
    "type_etablissement": {"type": "string"},
    "diplome":            {"type": "string"},
    "competences":        {"type": ["object", "string", "null"]},
    "experience":         {"type": ["integer", "null"], "minimum": 0}
  },
  "additionalProperties": true
}`

const spontaneeIntakeSchema = stageIntakeSchema

const contactSchema = `{
  "type": "object",
  "required": ["firstName", "lastName", "email", "subject", "message"],
  "properties": {
    "firstName": {"type": "string", "minLength": 1},
    "lastName":  {"type": "string", "minLength": 1},
    "email":     {"type": "string", "format": "email"},
    "phone":     {"type": "string"},
    "subject":   {"type": "string", "minLength": 1},
    "message":   {"type": "string", "minLength": 1}
  },
  "additionalProperties": false
}`
