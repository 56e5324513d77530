// Package docs MatchRoute Service API.
//
// Подбор парковки перед матчем: для каждой парковки считается поездка на машине
// с учётом пробок и дальнейший путь до стадиона пешком или на транспорте.
// Варианты ранжируются по общему времени в пути.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@matchroute.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Состояние сервиса",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/routes/recommend": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "Рекомендация парковки",
                "parameters": [
                    {
                        "description": "Старт, стадион и парковки-кандидаты",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.RecommendRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuggestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/parking/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["parking"],
                "summary": "Живая загрузка всех парковок",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.OccupancyOverview"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/parking/live/match": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["parking"],
                "summary": "Живые данные для одной парковки",
                "parameters": [
                    {
                        "description": "Парковка-кандидат",
                        "name": "candidate",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CandidateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LiveMatchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CandidateRequest": {
            "type": "object",
            "required": ["id", "name", "lat", "lng"],
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "dto.VenueRequest": {
            "type": "object",
            "required": ["name", "lat", "lng"],
            "properties": {
                "name": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "dto.RecommendRequest": {
            "type": "object",
            "required": ["start_address", "venue"],
            "properties": {
                "start_address": {"type": "string"},
                "venue": {"$ref": "#/definitions/dto.VenueRequest"},
                "candidates": {"type": "array", "items": {"$ref": "#/definitions/dto.CandidateRequest"}},
                "weather": {"type": "string"}
            }
        },
        "dto.SuggestResponse": {
            "type": "object",
            "properties": {
                "recommended": {"type": "object"},
                "alternatives": {"type": "array", "items": {"type": "object"}},
                "meta": {"type": "object"}
            }
        },
        "dto.LiveMatchResponse": {
            "type": "object",
            "properties": {
                "candidate": {"$ref": "#/definitions/dto.CandidateRequest"},
                "has_live_data": {"type": "boolean"},
                "occupancy": {"type": "object"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "domain.OccupancyOverview": {
            "type": "object",
            "properties": {
                "total_locations": {"type": "integer"},
                "total_capacity": {"type": "integer"},
                "total_free": {"type": "integer"},
                "avg_occupancy_rate": {"type": "number"},
                "last_updated": {"type": "string"},
                "locations": {"type": "array", "items": {"type": "object"}}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "MatchRoute Service API",
	Description:      "Подбор парковки перед матчем с учётом пробок, пересадки и живой загрузки.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
