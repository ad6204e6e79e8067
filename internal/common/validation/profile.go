package validation

// Amounts and counts arrive either as JSON numbers or as digit strings with
// thousands separators. Negative values are rejected here so the engine never
// sees them, and magnitudes are capped at 10^15 (15 digits) so they always fit
// an int64.
const definitions = `
  "definitions": {
    "amount": {
      "oneOf": [
        {"type": "number", "minimum": 0, "maximum": 1e15},
        {"type": "string", "pattern": "^\\s*([0-9]{1,15}|[0-9]{1,3}(,[0-9]{3}){1,4})(\\.[0-9]+)?\\s*$"},
        {"type": "null"}
      ]
    },
    "signedAmount": {
      "oneOf": [
        {"type": "number", "minimum": -1e15, "maximum": 1e15},
        {"type": "string", "pattern": "^\\s*-?([0-9]{1,15}|[0-9]{1,3}(,[0-9]{3}){1,4})(\\.[0-9]+)?\\s*$"},
        {"type": "null"}
      ]
    },
    "flag": {
      "oneOf": [
        {"type": "boolean"},
        {"type": "string", "enum": ["true", "false", "TRUE", "FALSE", "Y", "N", "y", "n", "yes", "no", "1", "0", ""]},
        {"type": "number", "enum": [0, 1]},
        {"type": "null"}
      ]
    }
  }`

// ProfileSchema accepts either field-naming convention of the applicant profile.
var ProfileSchema = MustCompile("applicant profile", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "credit_score_primary":         {"$ref": "#/definitions/amount"},
    "credit_score_secondary":       {"$ref": "#/definitions/amount"},
    "nice_score":                   {"$ref": "#/definitions/amount"},
    "kcb_score":                    {"$ref": "#/definitions/amount"},
    "annual_revenue":               {"$ref": "#/definitions/amount"},
    "revenue":                      {"$ref": "#/definitions/amount"},
    "total_debt":                   {"$ref": "#/definitions/amount"},
    "debt":                         {"$ref": "#/definitions/amount"},
    "policy_fund_debt":             {"$ref": "#/definitions/amount"},
    "debt_policy_fund":             {"$ref": "#/definitions/amount"},
    "credit_loan_debt":             {"$ref": "#/definitions/amount"},
    "debt_credit_loan":             {"$ref": "#/definitions/amount"},
    "secondary_loan_debt":          {"$ref": "#/definitions/amount"},
    "debt_secondary_loan":          {"$ref": "#/definitions/amount"},
    "card_loan_debt":               {"$ref": "#/definitions/amount"},
    "debt_card_loan":               {"$ref": "#/definitions/amount"},
    "business_age_years":           {"$ref": "#/definitions/amount"},
    "business_years":               {"$ref": "#/definitions/amount"},
    "employee_count":               {"$ref": "#/definitions/amount"},
    "employees":                    {"$ref": "#/definitions/amount"},
    "applicant_age":                {"$ref": "#/definitions/amount"},
    "age":                          {"$ref": "#/definitions/amount"},
    "has_technology_certification": {"$ref": "#/definitions/flag"},
    "has_tech_cert":                {"$ref": "#/definitions/flag"}
  },
  `+definitions+`
}`)

// StatementSeriesSchema validates a 1-3 entry financial statement history.
var StatementSeriesSchema = MustCompile("financial statements", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "maxItems": 3,
  "items": {
    "type": "object",
    "required": ["revenue"],
    "properties": {
      "year":              {"type": "integer", "minimum": 1900},
      "revenue":           {"$ref": "#/definitions/amount"},
      "operating_profit":  {"$ref": "#/definitions/amount"},
      "net_profit":        {"$ref": "#/definitions/signedAmount"},
      "total_assets":      {"$ref": "#/definitions/amount"},
      "total_liabilities": {"$ref": "#/definitions/amount"},
      "equity":            {"$ref": "#/definitions/amount"}
    }
  },
  `+definitions+`
}`)
