package handler

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const esgRequestSchema = `{
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"}
  }
}`

const reportRequestSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "riskScore": {"type": "number", "minimum": 0},
    "approvalStatus": {"enum": ["", "PENDING", "APPROVED", "REJECTED"]},
    "notes": {"type": "string"},
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {
          "label": {"type": "string"},
          "value": {"type": "string"},
          "unit": {"type": "string"}
        }
      }
    },
    "borrower": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "industry": {"type": "string"},
        "jurisdiction": {"type": "string"},
        "facilityType": {"type": "string"},
        "facilityValue": {"type": "string"},
        "creditRating": {"type": "string"}
      }
    },
    "auditTrail": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["actor", "action"],
        "properties": {
          "timestamp": {"type": "string"},
          "actor": {"type": "string"},
          "action": {"type": "string"},
          "detail": {"type": "string"}
        }
      }
    },
    "esg": {"type": ["object", "null"]}
  }
}`

var (
	esgSchema    = mustCompile("esg_request.json", esgRequestSchema)
	reportSchema = mustCompile("report_request.json", reportRequestSchema)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic("add schema " + name + ": " + err.Error())
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic("compile schema " + name + ": " + err.Error())
	}
	return schema
}
