// Package docs holds the Swagger document served at /swagger/index.html.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.healthResponse"}}
                }
            }
        },
        "/presets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "List assessment presets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.presetListResponse"}}
                }
            }
        },
        "/presets/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Full preset configuration",
                "parameters": [
                    {"type": "string", "description": "Preset name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presets.Preset"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/weights/normalize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scoring"],
                "summary": "Normalise raw weights to fractions summing to one",
                "parameters": [
                    {"description": "Raw weights", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.normalizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.normalizeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/assess": {
            "post": {
                "description": "Composite score, ranked gaps, top priorities and improvement potential.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scoring"],
                "summary": "Evaluate an assessment",
                "parameters": [
                    {"description": "Assessment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.assessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.assessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/assess/project": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scoring"],
                "summary": "What-if projection for one category",
                "parameters": [
                    {"description": "Assessment plus the category to move", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.projectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.projectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "JSON metrics snapshot",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/cache/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Response cache statistics",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        }
    },
    "definitions": {
        "errors.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "category": {"type": "string"},
                "kind": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "main.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"},
                "timestamp": {"type": "string"},
                "presets": {"type": "integer"}
            }
        },
        "main.presetListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "presets": {"type": "array", "items": {"$ref": "#/definitions/presets.Summary"}}
            }
        },
        "main.normalizeRequest": {
            "type": "object",
            "required": ["weights"],
            "properties": {
                "preset": {"type": "string", "example": "civic-kpis"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "weights": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "main.normalizeResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"type": "string"}},
                "normalized_weights": {"type": "object", "additionalProperties": {"type": "number"}},
                "normalization": {"$ref": "#/definitions/scoring.NormalizationReport"}
            }
        },
        "main.assessRequest": {
            "type": "object",
            "required": ["performance"],
            "properties": {
                "preset": {"type": "string", "example": "ims-pia"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "weights": {"type": "object", "additionalProperties": {"type": "number"}},
                "performance": {"type": "object", "additionalProperties": {"type": "number"}},
                "target": {"type": "object", "additionalProperties": {"type": "number"}},
                "rank_mode": {"type": "string", "enum": ["gap", "weighted_gap", "priority_score"], "example": "weighted_gap"},
                "top_n": {"type": "integer", "example": 3}
            }
        },
        "main.projectRequest": {
            "type": "object",
            "required": ["performance", "category", "value"],
            "properties": {
                "preset": {"type": "string", "example": "ims-pia"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "weights": {"type": "object", "additionalProperties": {"type": "number"}},
                "performance": {"type": "object", "additionalProperties": {"type": "number"}},
                "category": {"type": "string", "example": "privacy"},
                "value": {"type": "number", "example": 0.75}
            }
        },
        "main.assessResponse": {
            "type": "object",
            "properties": {
                "preset": {"type": "string"},
                "labels": {"type": "object", "additionalProperties": {"type": "string"}},
                "normalized_weights": {"type": "object", "additionalProperties": {"type": "number"}},
                "normalization": {"$ref": "#/definitions/scoring.NormalizationReport"},
                "composite_score": {"type": "number"},
                "rank_mode": {"type": "string"},
                "gaps": {"type": "array", "items": {"$ref": "#/definitions/scoring.GapEntry"}},
                "priorities": {"type": "array", "items": {"$ref": "#/definitions/scoring.GapEntry"}},
                "improvement_potential": {"type": "number"}
            }
        },
        "main.projectResponse": {
            "type": "object",
            "properties": {
                "projection": {"$ref": "#/definitions/scoring.Projection"},
                "summary": {"type": "string"}
            }
        },
        "presets.Summary": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "title": {"type": "string"},
                "categories": {"type": "array", "items": {"type": "string"}}
            }
        },
        "presets.Preset": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "weight_range": {"type": "object", "additionalProperties": {"type": "number"}},
                "nominal_total": {"type": "number"},
                "rank_mode": {"type": "string"},
                "thresholds": {"$ref": "#/definitions/scoring.Thresholds"},
                "categories": {"type": "array", "items": {"type": "object"}}
            }
        },
        "scoring.Thresholds": {
            "type": "object",
            "properties": {
                "attention": {"type": "number"},
                "critical": {"type": "number"},
                "strict": {"type": "boolean"}
            }
        },
        "scoring.NormalizationReport": {
            "type": "object",
            "properties": {
                "raw_total": {"type": "number"},
                "uniform_fallback": {"type": "boolean"},
                "nominal_total": {"type": "number"},
                "rescaled": {"type": "boolean"}
            }
        },
        "scoring.GapEntry": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "current": {"type": "number"},
                "target": {"type": "number"},
                "weight": {"type": "number"},
                "gap": {"type": "number"},
                "weighted_gap": {"type": "number"},
                "priority_score": {"type": "number"},
                "status": {"type": "string", "enum": ["on_track", "needs_attention", "critical"]}
            }
        },
        "scoring.Projection": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "from": {"type": "number"},
                "to": {"type": "number"},
                "baseline_score": {"type": "number"},
                "projected_score": {"type": "number"},
                "delta": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Public Interest Scorecard API",
	Description:      "Weighted scoring and gap prioritisation for public-interest self-assessments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
